package follows

import (
	"context"
	"fmt"
	"slices"

	"soundcircle/internal/store"
	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/models"
)

// Store captures the persistence needs of the follow graph.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, bool)
	AddFollow(ctx context.Context, followerID, followedID int64) (*models.Follow, bool, error)
	FindFollow(ctx context.Context, followerID, followedID int64) (*models.Follow, bool)
	RemoveFollow(ctx context.Context, followerID, followedID int64) (bool, error)
	ListFollows(ctx context.Context) ([]*models.Follow, error)
}

// Service derives follower and following sets and maintains follow edges.
type Service interface {
	Followers(ctx context.Context, userID int64) ([]*models.User, error)
	Following(ctx context.Context, userID int64) ([]*models.User, error)
	Follow(ctx context.Context, followerID, followedID int64) (*models.Follow, error)
	Unfollow(ctx context.Context, followerID, followedID int64) error
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Followers(ctx context.Context, userID int64) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.collect(ctx, func(f *models.Follow) (int64, bool) {
		return f.FollowerID, f.FollowedID == userID
	})
}

func (s *service) Following(ctx context.Context, userID int64) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.collect(ctx, func(f *models.Follow) (int64, bool) {
		return f.FollowedID, f.FollowerID == userID
	})
}

func (s *service) Follow(ctx context.Context, followerID, followedID int64) (*models.Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if followerID == followedID {
		return nil, fmt.Errorf("cannot follow yourself: %w", store.ErrInvalidOperation)
	}
	for _, id := range []int64{followerID, followedID} {
		if _, ok := s.store.GetUser(ctx, id); !ok {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
	}

	follow, created, err := s.store.AddFollow(ctx, followerID, followedID)
	if err != nil {
		return nil, fmt.Errorf("add follow: %w", err)
	}
	if created {
		logging.WithContext(ctx).Info().
			Int64("follower_id", followerID).
			Int64("followed_id", followedID).
			Msg("user followed")
	}
	return follow, nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed, err := s.store.RemoveFollow(ctx, followerID, followedID)
	if err != nil {
		return fmt.Errorf("remove follow: %w", err)
	}
	if removed {
		logging.WithContext(ctx).Info().
			Int64("follower_id", followerID).
			Int64("followed_id", followedID).
			Msg("user unfollowed")
	}
	return nil
}

func (s *service) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.store.FindFollow(ctx, followerID, followedID)
	return ok, nil
}

// collect resolves the users picked out of the follow edges, ordered by id.
// Ids that no longer resolve to a user are skipped.
func (s *service) collect(ctx context.Context, pick func(*models.Follow) (int64, bool)) ([]*models.User, error) {
	edges, err := s.store.ListFollows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}

	ids := make([]int64, 0)
	for _, edge := range edges {
		if id, ok := pick(edge); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.store.GetUser(ctx, id); ok {
			users = append(users, user)
		}
	}
	return users, nil
}
