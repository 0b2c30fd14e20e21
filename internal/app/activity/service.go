package activity

import (
	"context"
	"fmt"

	"soundcircle/shared/go/models"
)

// Store captures the persistence needs of the activity feed.
type Store interface {
	ListComments(ctx context.Context) ([]*models.Comment, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, bool)
}

// Graph resolves who a user follows.
type Graph interface {
	Following(ctx context.Context, userID int64) ([]*models.User, error)
}

// Service builds activity feeds from the follow graph.
type Service interface {
	Feed(ctx context.Context, userID int64) ([]models.ActivityItem, error)
}

type service struct {
	store Store
	graph Graph
}

// New constructs a Service backed by the provided Store and Graph.
func New(store Store, graph Graph) Service {
	return &service{store: store, graph: graph}
}

// Feed returns comments written by the accounts userID follows, newest first.
// Comments on playlists that no longer exist are left out.
func (s *service) Feed(ctx context.Context, userID int64) ([]models.ActivityItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	following, err := s.graph.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve following: %w", err)
	}

	items := make([]models.ActivityItem, 0)
	if len(following) == 0 {
		return items, nil
	}

	authors := make(map[int64]*models.User, len(following))
	for _, user := range following {
		authors[user.ID] = user
	}

	// ListComments is already newest first.
	comments, err := s.store.ListComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	playlists := make(map[int64]*models.Playlist)
	for _, comment := range comments {
		author, ok := authors[comment.UserID]
		if !ok {
			continue
		}

		playlist, seen := playlists[comment.PlaylistID]
		if !seen {
			playlist, _ = s.store.GetPlaylist(ctx, comment.PlaylistID)
			playlists[comment.PlaylistID] = playlist
		}
		if playlist == nil {
			continue
		}

		items = append(items, models.ActivityItem{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			User:      author.Summary(),
			Playlist:  models.PlaylistSummary{ID: playlist.ID, Name: playlist.Name},
		})
	}
	return items, nil
}
