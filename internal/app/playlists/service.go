package playlists

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"soundcircle/internal/store"
	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/models"
)

// DiscoverLimit caps the explore listing.
const DiscoverLimit = 24

// Store captures the persistence needs for playlist workflows.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, bool)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, bool)
	ListPlaylistsByUser(ctx context.Context, userID int64) ([]*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
}

// Input carries the fields of a new playlist.
type Input struct {
	Name        string
	Description string
	ExternalID  string
	Tracks      json.RawMessage
}

// Service coordinates playlist-related operations.
type Service interface {
	Create(ctx context.Context, ownerID int64, input Input) (*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Discover(ctx context.Context, viewerID int64) ([]*models.Playlist, error)
	Update(ctx context.Context, callerID, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	Delete(ctx context.Context, callerID, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, ownerID int64, input Input) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("playlist name is required: %w", store.ErrInvalidOperation)
	}
	if _, ok := s.store.GetUser(ctx, ownerID); !ok {
		return nil, fmt.Errorf("owner %d: %w", ownerID, store.ErrNotFound)
	}

	return s.store.CreatePlaylist(ctx, &models.Playlist{
		Name:        input.Name,
		Description: input.Description,
		UserID:      ownerID,
		ExternalID:  input.ExternalID,
		Tracks:      input.Tracks,
	})
}

func (s *service) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlist, ok := s.store.GetPlaylist(ctx, id)
	if !ok {
		return nil, fmt.Errorf("playlist %d: %w", id, store.ErrNotFound)
	}
	return playlist, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistsByUser(ctx, userID)
}

// Discover lists the newest playlists the viewer does not own.
func (s *service) Discover(ctx context.Context, viewerID int64) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	others := slices.DeleteFunc(all, func(p *models.Playlist) bool { return p.UserID == viewerID })
	slices.SortFunc(others, func(a, b *models.Playlist) int { return cmp.Compare(b.ID, a.ID) })
	if len(others) > DiscoverLimit {
		others = others[:DiscoverLimit]
	}
	return others, nil
}

func (s *service) Update(ctx context.Context, callerID, id int64, update store.PlaylistUpdate) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, fmt.Errorf("playlist name cannot be blank: %w", store.ErrInvalidOperation)
	}
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return nil, err
	}
	return s.store.UpdatePlaylist(ctx, id, update)
}

func (s *service) Delete(ctx context.Context, callerID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	logging.WithContext(ctx).Info().Int64("playlist_id", id).Msg("playlist deleted")
	return nil
}

// owned loads playlist id and checks that callerID owns it.
func (s *service) owned(ctx context.Context, callerID, id int64) (*models.Playlist, error) {
	playlist, ok := s.store.GetPlaylist(ctx, id)
	if !ok {
		return nil, fmt.Errorf("playlist %d: %w", id, store.ErrNotFound)
	}
	if playlist.UserID != callerID {
		return nil, fmt.Errorf("playlist %d is owned by another user: %w", id, store.ErrForbidden)
	}
	return playlist, nil
}
