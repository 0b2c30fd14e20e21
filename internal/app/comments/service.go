package comments

import (
	"context"
	"fmt"
	"strings"

	"soundcircle/internal/store"
	"soundcircle/shared/go/models"
)

// Store captures the persistence needs of playlist comments.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, bool)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, bool)
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListCommentsByPlaylist(ctx context.Context, playlistID int64) ([]*models.Comment, error)
}

// Service coordinates commenting on playlists.
type Service interface {
	Create(ctx context.Context, authorID, playlistID int64, content string) (*models.Comment, error)
	ListByPlaylist(ctx context.Context, playlistID int64) ([]models.CommentWithAuthor, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, authorID, playlistID int64, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is required: %w", store.ErrInvalidOperation)
	}
	if _, ok := s.store.GetPlaylist(ctx, playlistID); !ok {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, store.ErrNotFound)
	}

	return s.store.CreateComment(ctx, &models.Comment{
		Content:    content,
		UserID:     authorID,
		PlaylistID: playlistID,
	})
}

// ListByPlaylist returns the playlist's comments newest first, each with its author.
func (s *service) ListByPlaylist(ctx context.Context, playlistID int64) ([]models.CommentWithAuthor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := s.store.GetPlaylist(ctx, playlistID); !ok {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, store.ErrNotFound)
	}

	comments, err := s.store.ListCommentsByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	result := make([]models.CommentWithAuthor, 0, len(comments))
	for _, comment := range comments {
		entry := models.CommentWithAuthor{Comment: *comment}
		if author, ok := s.store.GetUser(ctx, comment.UserID); ok {
			entry.User = author.Summary()
		}
		result = append(result, entry)
	}
	return result, nil
}
