package store

import (
	"cmp"
	"context"
	"slices"

	"soundcircle/shared/go/models"
)

// AddFollow records that followerID follows followedID. When the edge already
// exists it is returned as is and created is false.
func (s *Store) AddFollow(ctx context.Context, followerID, followedID int64) (follow *models.Follow, created bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findFollowLocked(followerID, followedID); existing != nil {
		f := *existing
		return &f, false, nil
	}

	stored := &models.Follow{
		ID:         s.seq.Next(),
		FollowerID: followerID,
		FollowedID: followedID,
	}
	s.follows[stored.ID] = stored

	f := *stored
	return &f, true, nil
}

// FindFollow returns the edge from followerID to followedID, if any.
func (s *Store) FindFollow(_ context.Context, followerID, followedID int64) (*models.Follow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.findFollowLocked(followerID, followedID)
	if found == nil {
		return nil, false
	}
	f := *found
	return &f, true
}

// RemoveFollow deletes the edge from followerID to followedID and reports
// whether one existed.
func (s *Store) RemoveFollow(ctx context.Context, followerID, followedID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.findFollowLocked(followerID, followedID)
	if found == nil {
		return false, nil
	}
	delete(s.follows, found.ID)
	return true, nil
}

// DeleteFollow removes an edge by id. Deleting a missing edge is a no-op.
func (s *Store) DeleteFollow(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows, id)
	return nil
}

// ListFollows returns every edge ordered by id.
func (s *Store) ListFollows(ctx context.Context) ([]*models.Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Follow, 0, len(s.follows))
	for _, follow := range s.follows {
		f := *follow
		result = append(result, &f)
	}
	slices.SortFunc(result, func(a, b *models.Follow) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

// findFollowLocked returns the oldest matching edge. Callers hold s.mu.
func (s *Store) findFollowLocked(followerID, followedID int64) *models.Follow {
	var found *models.Follow
	for _, follow := range s.follows {
		if follow.FollowerID != followerID || follow.FollowedID != followedID {
			continue
		}
		if found == nil || follow.ID < found.ID {
			found = follow
		}
	}
	return found
}
