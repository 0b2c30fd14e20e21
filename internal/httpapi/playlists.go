package httpapi

import (
	"net/http"

	"github.com/goccy/go-json"

	"soundcircle/internal/app/playlists"
	"soundcircle/internal/store"
	"soundcircle/shared/go/logging"
)

type createPlaylistRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	SpotifyID   string          `json:"spotifyId" validate:"max=64"`
	Tracks      json.RawMessage `json:"tracks"`
}

type updatePlaylistRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	SpotifyID   *string         `json:"spotifyId" validate:"omitempty,max=64"`
	Tracks      json.RawMessage `json:"tracks"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

func (s *Server) handleListOwnPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	owned, err := s.playlists.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, owned)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createPlaylistRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !validTracks(req.Tracks) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tracks must be a JSON array"})
		return
	}

	created, err := s.playlists.Create(r.Context(), userID, playlists.Input{
		Name:        req.Name,
		Description: req.Description,
		ExternalID:  req.SpotifyID,
		Tracks:      trackBytes(req.Tracks),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	// Anonymous viewers see everything.
	viewerID, _ := logging.UserID(r.Context())

	found, err := s.playlists.Discover(r.Context(), viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updatePlaylistRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !validTracks(req.Tracks) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tracks must be a JSON array"})
		return
	}

	update := store.PlaylistUpdate{
		Name:        req.Name,
		Description: req.Description,
		ExternalID:  req.SpotifyID,
	}
	if tracks := trackBytes(req.Tracks); tracks != nil {
		update.Tracks = tracks
	}

	updated, err := s.playlists.Update(r.Context(), userID, id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.playlists.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	comments, err := s.comments.ListByPlaylist(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !s.decode(w, r, &req) {
		return
	}

	comment, err := s.comments.Create(r.Context(), userID, id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// validTracks accepts an absent or null value, or a JSON array.
func validTracks(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var items []json.RawMessage
	return json.Unmarshal(raw, &items) == nil
}

// trackBytes returns nil for an absent or null value.
func trackBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}
