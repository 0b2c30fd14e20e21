package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"soundcircle/shared/go/models"
)

// CreateComment stores a comment and stamps its creation time.
//
// Timestamps never go backwards relative to identifier order, even if the
// clock does.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if comment == nil {
		return nil, errors.New("comment is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *comment
	stored.ID = s.seq.Next()
	stored.CreatedAt = s.now()
	if stored.CreatedAt.Before(s.lastCommentAt) {
		stored.CreatedAt = s.lastCommentAt
	}
	s.lastCommentAt = stored.CreatedAt
	s.comments[stored.ID] = &stored

	created := stored
	return &created, nil
}

// GetComment returns the comment with the given id, if any.
func (s *Store) GetComment(_ context.Context, id int64) (*models.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, false
	}
	found := *comment
	return &found, true
}

// ListCommentsByPlaylist returns the comments on a playlist, newest first.
func (s *Store) ListCommentsByPlaylist(ctx context.Context, playlistID int64) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.filterComments(func(c *models.Comment) bool { return c.PlaylistID == playlistID }), nil
}

// ListComments returns every comment, newest first.
func (s *Store) ListComments(ctx context.Context) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.filterComments(func(*models.Comment) bool { return true }), nil
}

func (s *Store) filterComments(match func(*models.Comment) bool) []*models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Comment, 0)
	for _, comment := range s.comments {
		if match(comment) {
			c := *comment
			result = append(result, &c)
		}
	}
	SortNewestFirst(result)
	return result
}

// SortNewestFirst orders comments by creation time, newest first. Comments
// created at the same instant stay in creation order.
func SortNewestFirst(comments []*models.Comment) {
	slices.SortFunc(comments, func(a, b *models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
