package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"soundcircle/shared/go/models"
)

var emptyTracks = json.RawMessage("[]")

// PlaylistUpdate lists the playlist fields an owner may change.
// Nil fields keep their current value; the owner itself can never change.
type PlaylistUpdate struct {
	Name        *string
	Description *string
	ExternalID  *string
	Tracks      json.RawMessage
}

// CreatePlaylist stores a new playlist and returns it with its identifier assigned.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if playlist == nil {
		return nil, errors.New("playlist is required")
	}

	stored := playlist.Clone()
	if len(stored.Tracks) == 0 {
		stored.Tracks = append(json.RawMessage(nil), emptyTracks...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored.ID = s.seq.Next()
	s.playlists[stored.ID] = stored

	return stored.Clone(), nil
}

// GetPlaylist returns the playlist with the given id, if any.
func (s *Store) GetPlaylist(_ context.Context, id int64) (*models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlist, ok := s.playlists[id]
	if !ok {
		return nil, false
	}
	return playlist.Clone(), true
}

// ListPlaylistsByUser returns the playlists owned by userID ordered by id.
func (s *Store) ListPlaylistsByUser(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.filterPlaylists(func(p *models.Playlist) bool { return p.UserID == userID }), nil
}

// ListPlaylists returns every playlist ordered by id.
func (s *Store) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.filterPlaylists(func(*models.Playlist) bool { return true }), nil
}

// UpdatePlaylist merges the non-nil fields of update into the stored playlist.
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, update PlaylistUpdate) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.playlists[id]
	if !ok {
		return nil, fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}

	merged := existing.Clone()
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Description != nil {
		merged.Description = *update.Description
	}
	if update.ExternalID != nil {
		merged.ExternalID = *update.ExternalID
	}
	if update.Tracks != nil {
		merged.Tracks = append(json.RawMessage(nil), update.Tracks...)
	}
	s.playlists[id] = merged

	return merged.Clone(), nil
}

// DeletePlaylist removes a playlist. Deleting a missing playlist is a no-op.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.playlists, id)
	return nil
}

func (s *Store) filterPlaylists(match func(*models.Playlist) bool) []*models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Playlist, 0)
	for _, playlist := range s.playlists {
		if match(playlist) {
			result = append(result, playlist.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *models.Playlist) int { return cmp.Compare(a.ID, b.ID) })
	return result
}
