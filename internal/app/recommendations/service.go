package recommendations

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"soundcircle/shared/go/models"
)

// Limit caps the number of recommendations returned.
const Limit = 6

// Store captures the persistence needs of the recommendation engine.
type Store interface {
	ListPlaylistsByUser(ctx context.Context, userID int64) ([]*models.Playlist, error)
}

// Graph resolves who a user follows.
type Graph interface {
	Following(ctx context.Context, userID int64) ([]*models.User, error)
}

// Service suggests playlists through the follow graph.
type Service interface {
	ForUser(ctx context.Context, userID int64) ([]models.Recommendation, error)
}

type service struct {
	store Store
	graph Graph
}

// New constructs a Service backed by the provided Store and Graph.
func New(store Store, graph Graph) Service {
	return &service{store: store, graph: graph}
}

// ForUser returns the most recent playlists owned by accounts userID follows.
// Playlist ids grow with creation, so the highest ids are the newest.
func (s *service) ForUser(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	following, err := s.graph.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve following: %w", err)
	}

	recs := make([]models.Recommendation, 0)
	for _, user := range following {
		playlists, err := s.store.ListPlaylistsByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list playlists for user %d: %w", user.ID, err)
		}
		for _, playlist := range playlists {
			recs = append(recs, models.Recommendation{
				Playlist: *playlist,
				Reason:   Reason(user.Username),
			})
		}
	}

	slices.SortFunc(recs, func(a, b models.Recommendation) int {
		return cmp.Compare(b.ID, a.ID)
	})
	if len(recs) > Limit {
		recs = recs[:Limit]
	}
	return recs, nil
}

// Reason explains why a playlist owned by username was recommended.
func Reason(username string) string {
	return fmt.Sprintf("From %s who you follow", username)
}
