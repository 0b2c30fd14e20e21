package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"soundcircle/internal/store"
	"soundcircle/shared/go/auth"
	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/models"
)

// dummyPasswordHash is compared against when the username is unknown so a
// failed login costs the same either way.
const dummyPasswordHash = "1f56b9d78673b4e449b6d8478fe89695a3c192c344b8fc6be554ee9ed1c3b0d287e6f9a53fed693510963248792025be35414e9809f14d278ab24495f2f8808a.73e7b0846cafc2d12de55a250b8db9ac"

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, bool)
	UserByUsername(ctx context.Context, username string) (*models.User, bool)
	UserByExternalID(ctx context.Context, externalID string) (*models.User, bool)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, update store.UserUpdate) (*models.User, error)
}

// Service maps local credentials and external identities to user records.
type Service interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	AuthenticateExternal(ctx context.Context, profile models.ExternalProfile, accessToken, refreshToken string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type service struct {
	store Store

	// mu serialises the username check with user creation.
	mu sync.Mutex
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", store.ErrInvalidOperation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.store.UserByUsername(ctx, username); exists {
		return nil, fmt.Errorf("username %q: %w", username, store.ErrConflict)
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.WithContext(ctx).Info().Int64("new_user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if !ok {
		_ = auth.VerifyPassword(password, dummyPasswordHash)
		return nil, store.ErrUnauthorized
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, store.ErrUnauthorized
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return user, nil
}

func (s *service) AuthenticateExternal(ctx context.Context, profile models.ExternalProfile, accessToken, refreshToken string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("external profile id is required: %w", store.ErrInvalidOperation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.WithContext(ctx)

	if existing, ok := s.store.UserByExternalID(ctx, profile.ID); ok {
		updated, err := s.store.UpdateUser(ctx, existing.ID, store.UserUpdate{
			AccessToken:  &accessToken,
			RefreshToken: &refreshToken,
		})
		if err != nil {
			return nil, fmt.Errorf("refresh external tokens: %w", err)
		}
		log.Info().Int64("linked_user_id", updated.ID).Msg("external tokens refreshed")
		return updated, nil
	}

	password, err := auth.RandomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	base := strings.TrimSpace(profile.DisplayName)
	if base == "" {
		base = profile.ID
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Username:     s.availableUsername(ctx, base),
		PasswordHash: hash,
		ExternalID:   profile.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("create external user: %w", err)
	}

	log.Info().Int64("new_user_id", user.ID).Str("username", user.Username).Msg("user created from external profile")
	return user, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, ok := s.store.GetUser(ctx, id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// availableUsername returns base, or base with the first free numeric suffix.
// Callers hold s.mu.
func (s *service) availableUsername(ctx context.Context, base string) string {
	candidate := base
	for n := 2; ; n++ {
		if _, taken := s.store.UserByUsername(ctx, candidate); !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
