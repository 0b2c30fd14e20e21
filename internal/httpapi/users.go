package httpapi

import (
	"net/http"

	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/models"
)

type profileResponse struct {
	User        *models.User `json:"user"`
	Followers   int          `json:"followers"`
	Following   int          `json:"following"`
	IsFollowing bool         `json:"isFollowing"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	user, err := s.users.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	followers, err := s.follows.Followers(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	following, err := s.follows.Following(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := profileResponse{
		User:      user,
		Followers: len(followers),
		Following: len(following),
	}
	if viewerID, ok := logging.UserID(ctx); ok && viewerID != id {
		if resp.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if _, err := s.users.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	playlists, err := s.playlists.ListByUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	follow, err := s.follows.Follow(r.Context(), userID, targetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, follow)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.follows.Unfollow(r.Context(), userID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	users, err := s.follows.Followers(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	users, err := s.follows.Following(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
