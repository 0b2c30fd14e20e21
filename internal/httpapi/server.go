package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"soundcircle/internal/app/playlists"
	"soundcircle/internal/musicapi"
	"soundcircle/internal/store"
	"soundcircle/shared/go/logging"
	"soundcircle/shared/go/middleware"
	"soundcircle/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	AuthenticateExternal(ctx context.Context, profile models.ExternalProfile, accessToken, refreshToken string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Create(ctx context.Context, ownerID int64, input playlists.Input) (*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Discover(ctx context.Context, viewerID int64) ([]*models.Playlist, error)
	Update(ctx context.Context, callerID, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	Delete(ctx context.Context, callerID, id int64) error
}

// CommentService coordinates playlist comments.
type CommentService interface {
	Create(ctx context.Context, authorID, playlistID int64, content string) (*models.Comment, error)
	ListByPlaylist(ctx context.Context, playlistID int64) ([]models.CommentWithAuthor, error)
}

// FollowService exposes the follow graph.
type FollowService interface {
	Followers(ctx context.Context, userID int64) ([]*models.User, error)
	Following(ctx context.Context, userID int64) ([]*models.User, error)
	Follow(ctx context.Context, followerID, followedID int64) (*models.Follow, error)
	Unfollow(ctx context.Context, followerID, followedID int64) error
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
}

// ActivityService builds activity feeds.
type ActivityService interface {
	Feed(ctx context.Context, userID int64) ([]models.ActivityItem, error)
}

// RecommendationService suggests playlists.
type RecommendationService interface {
	ForUser(ctx context.Context, userID int64) ([]models.Recommendation, error)
}

// TokenManager issues and verifies session tokens.
type TokenManager interface {
	GenerateToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
}

// ExternalAuth runs the OAuth authorization code flow with a music provider.
type ExternalAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*musicapi.Identity, error)
}

// Services groups the application services the handlers call into.
type Services struct {
	Users           UserService
	Playlists       PlaylistService
	Comments        CommentService
	Follows         FollowService
	Activity        ActivityService
	Recommendations RecommendationService
	Tokens          TokenManager
	// Spotify is nil when external login is not configured.
	Spotify ExternalAuth
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// LoginRateLimit is the number of auth requests allowed per IP per minute.
	// Zero disables limiting.
	LoginRateLimit int
	Metrics        *middleware.Metrics
	// SecureCookies marks the OAuth state cookie as Secure.
	SecureCookies bool
	// FrontendURL receives browser logins after the OAuth callback, with the
	// session token in the fragment. Defaults to "/".
	FrontendURL string
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users           UserService
	playlists       PlaylistService
	comments        CommentService
	follows         FollowService
	activity        ActivityService
	recommendations RecommendationService
	tokens          TokenManager
	spotify         ExternalAuth

	opts     Options
	validate *validator.Validate
}

// New configures a Server around the given services.
func New(services Services, opts Options) *Server {
	return &Server{
		users:           services.Users,
		playlists:       services.Playlists,
		comments:        services.Comments,
		follows:         services.Follows,
		activity:        services.Activity,
		recommendations: services.Recommendations,
		tokens:          services.Tokens,
		spotify:         services.Spotify,
		opts:            opts,
		validate:        newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes exposes the HTTP handlers wrapped in the shared middleware chain.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Authenticate(s.tokens))
	if s.opts.Metrics != nil {
		router.Use(s.opts.Metrics.Middleware)
		router.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	limit := func(h http.HandlerFunc) http.Handler { return h }
	if s.opts.LoginRateLimit > 0 {
		limiter := httprate.LimitByIP(s.opts.LoginRateLimit, time.Minute)
		limit = func(h http.HandlerFunc) http.Handler { return limiter(h) }
	}

	// Auth routes
	api.Handle("/register", limit(s.handleRegister)).Methods(http.MethodPost)
	api.Handle("/login", limit(s.handleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/user", s.handleCurrentUser).Methods(http.MethodGet)
	api.Handle("/auth/spotify", limit(s.handleSpotifyLogin)).Methods(http.MethodGet)
	api.Handle("/auth/spotify/callback", limit(s.handleSpotifyCallback)).Methods(http.MethodGet)

	// User and graph routes
	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/playlists", s.handleUserPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/follow", s.handleFollow).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}/follow", s.handleUnfollow).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id:[0-9]+}/followers", s.handleFollowers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/following", s.handleFollowing).Methods(http.MethodGet)

	// Playlist routes
	api.HandleFunc("/playlists", s.handleListOwnPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/playlists", s.handleCreatePlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/discover", s.handleDiscover).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.handleGetPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.handleUpdatePlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.handleDeletePlaylist).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}/comments", s.handleCreateComment).Methods(http.MethodPost)

	// Derived views
	api.HandleFunc("/activity", s.handleActivity).Methods(http.MethodGet)
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods(http.MethodGet)

	var handler http.Handler = router
	handler = middleware.CORS(s.opts.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// decode reads a JSON body into dst and validates its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	first := verrs[0]
	switch first.Tag() {
	case "required":
		return first.Field() + " is required"
	case "min":
		return first.Field() + " must be at least " + first.Param() + " characters"
	case "max":
		return first.Field() + " must be at most " + first.Param() + " characters"
	default:
		return first.Field() + " is invalid"
	}
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrInvalidOperation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// requireUser returns the authenticated caller or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return 0, false
	}
	return userID, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
