package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"soundcircle/shared/go/models"
)

// UserUpdate lists the user fields that may change after creation.
// Nil fields keep their current value.
type UserUpdate struct {
	ExternalID   *string
	AccessToken  *string
	RefreshToken *string
}

// CreateUser stores a new user and returns it with its identifier assigned.
// Username uniqueness is the caller's concern.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *user
	stored.ID = s.seq.Next()
	s.users[stored.ID] = &stored

	created := stored
	return &created, nil
}

// GetUser returns the user with the given id, if any.
func (s *Store) GetUser(_ context.Context, id int64) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, false
	}
	found := *user
	return &found, true
}

// UserByUsername finds a user by exact username.
func (s *Store) UserByUsername(_ context.Context, username string) (*models.User, bool) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

// UserByExternalID finds the user linked to an external identity.
func (s *Store) UserByExternalID(_ context.Context, externalID string) (*models.User, bool) {
	if externalID == "" {
		return nil, false
	}
	return s.findUser(func(u *models.User) bool { return u.ExternalID == externalID })
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		result = append(result, &u)
	}
	slices.SortFunc(result, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

// UpdateUser merges the non-nil fields of update into the stored user.
func (s *Store) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	merged := *user
	if update.ExternalID != nil {
		merged.ExternalID = *update.ExternalID
	}
	if update.AccessToken != nil {
		merged.AccessToken = *update.AccessToken
	}
	if update.RefreshToken != nil {
		merged.RefreshToken = *update.RefreshToken
	}
	s.users[id] = &merged

	updated := merged
	return &updated, nil
}

func (s *Store) findUser(match func(*models.User) bool) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.User
	for _, user := range s.users {
		if !match(user) {
			continue
		}
		// Lowest id wins so the answer does not depend on map order.
		if found == nil || user.ID < found.ID {
			found = user
		}
	}
	if found == nil {
		return nil, false
	}
	u := *found
	return &u, true
}
