package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"soundcircle/internal/store"
	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/models"
)

const oauthStateCookie = "soundcircle_oauth_state"

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
			return
		}
		writeError(w, r, err)
		return
	}

	s.writeSession(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid username or password"})
			return
		}
		writeError(w, r, err)
		return
	}

	s.writeSession(w, r, http.StatusOK, user)
}

// handleLogout acknowledges the request; tokens are stateless and the client discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := logging.UserID(r.Context()); ok {
		logging.WithContext(r.Context()).Debug().Int64("logout_user_id", userID).Msg("user logged out")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleSpotifyLogin(w http.ResponseWriter, r *http.Request) {
	if s.spotify == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "spotify login is not configured"})
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/spotify",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.spotify.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSpotifyCallback(w http.ResponseWriter, r *http.Request) {
	if s.spotify == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "spotify login is not configured"})
		return
	}

	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "spotify authorization failed: " + reason})
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid oauth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/api/auth/spotify",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
	})

	code := query.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing authorization code"})
		return
	}

	identity, err := s.spotify.Exchange(r.Context(), code)
	if err != nil {
		logging.WithContext(r.Context()).Warn().Err(err).Msg("spotify token exchange failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not complete spotify login"})
		return
	}

	user, err := s.users.AuthenticateExternal(r.Context(), identity.Profile, identity.AccessToken, identity.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The callback is a browser navigation, so the session goes back to the
	// frontend in the URL fragment, which browsers never send to a server.
	target := s.opts.FrontendURL
	if target == "" {
		target = "/"
	}
	fragment := url.Values{"token": {token}}.Encode()
	http.Redirect(w, r, target+"#"+fragment, http.StatusFound)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{User: user, Token: token})
}
