package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"soundcircle/internal/app/activity"
	"soundcircle/internal/app/comments"
	"soundcircle/internal/app/follows"
	"soundcircle/internal/app/playlists"
	"soundcircle/internal/app/recommendations"
	"soundcircle/internal/app/users"
	"soundcircle/internal/musicapi"
	"soundcircle/internal/store"
	"soundcircle/shared/go/auth"
	"soundcircle/shared/go/middleware"
	"soundcircle/shared/go/models"
)

type stubTokens struct{}

func (stubTokens) GenerateToken(userID int64) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

func (stubTokens) ParseToken(token string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(token, "token-"), 10, 64)
	if err != nil || !strings.HasPrefix(token, "token-") {
		return 0, errors.New("invalid token")
	}
	return id, nil
}

type stubUserService struct {
	registerErr error
	authErr     error
	user        *models.User

	lastUsername string
	lastProfile  models.ExternalProfile
}

func (s *stubUserService) Register(_ context.Context, username, _ string) (*models.User, error) {
	s.lastUsername = username
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.User{ID: 1, Username: username}, nil
}

func (s *stubUserService) Authenticate(_ context.Context, username, _ string) (*models.User, error) {
	s.lastUsername = username
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &models.User{ID: 1, Username: username}, nil
}

func (s *stubUserService) AuthenticateExternal(_ context.Context, profile models.ExternalProfile, _, _ string) (*models.User, error) {
	s.lastProfile = profile
	return &models.User{ID: 5, Username: profile.DisplayName, ExternalID: profile.ID}, nil
}

func (s *stubUserService) Get(_ context.Context, id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, store.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUserService) List(context.Context) ([]*models.User, error) {
	return []*models.User{}, nil
}

type stubPlaylistService struct {
	err         error
	lastCaller  int64
	lastInput   playlists.Input
	lastUpdate  store.PlaylistUpdate
	discoverFor int64
}

func (s *stubPlaylistService) Create(_ context.Context, ownerID int64, input playlists.Input) (*models.Playlist, error) {
	s.lastCaller = ownerID
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Playlist{ID: 10, Name: input.Name, UserID: ownerID, Tracks: input.Tracks}, nil
}

func (s *stubPlaylistService) Get(_ context.Context, id int64) (*models.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Playlist{ID: id, Name: "Mix", UserID: 1, Tracks: json.RawMessage("[]")}, nil
}

func (s *stubPlaylistService) ListByUser(context.Context, int64) ([]*models.Playlist, error) {
	return []*models.Playlist{}, s.err
}

func (s *stubPlaylistService) Discover(_ context.Context, viewerID int64) ([]*models.Playlist, error) {
	s.discoverFor = viewerID
	return []*models.Playlist{}, s.err
}

func (s *stubPlaylistService) Update(_ context.Context, callerID, id int64, update store.PlaylistUpdate) (*models.Playlist, error) {
	s.lastCaller = callerID
	s.lastUpdate = update
	if s.err != nil {
		return nil, s.err
	}
	return &models.Playlist{ID: id, UserID: callerID}, nil
}

func (s *stubPlaylistService) Delete(_ context.Context, callerID, _ int64) error {
	s.lastCaller = callerID
	return s.err
}

type stubExternalAuth struct {
	lastState string
	exchange  error
}

func (s *stubExternalAuth) AuthCodeURL(state string) string {
	s.lastState = state
	return "https://accounts.example.test/authorize?state=" + url.QueryEscape(state)
}

func (s *stubExternalAuth) Exchange(_ context.Context, code string) (*musicapi.Identity, error) {
	if s.exchange != nil {
		return nil, s.exchange
	}
	return &musicapi.Identity{
		Provider:     musicapi.ProviderSpotify,
		Profile:      models.ExternalProfile{ID: "sp-" + code, DisplayName: "Avery"},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil
}

func newStubServer(usersSvc *stubUserService, playlistSvc *stubPlaylistService, spotify ExternalAuth) http.Handler {
	st := store.New()
	graph := follows.New(st)
	return New(Services{
		Users:           usersSvc,
		Playlists:       playlistSvc,
		Comments:        comments.New(st),
		Follows:         graph,
		Activity:        activity.New(st, graph),
		Recommendations: recommendations.New(st, graph),
		Tokens:          stubTokens{},
		Spotify:         spotify,
	}, Options{}).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newStubServer(&stubUserService{}, &stubPlaylistService{}, nil)
	rec := doRequest(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
	}{
		{name: "created", body: map[string]string{"username": "alice", "password": "secret1"}, wantStatus: http.StatusCreated},
		{name: "duplicate", body: map[string]string{"username": "alice", "password": "secret1"}, serviceErr: fmt.Errorf("wrap: %w", store.ErrConflict), wantStatus: http.StatusConflict},
		{name: "short password", body: map[string]string{"username": "alice", "password": "123"}, wantStatus: http.StatusBadRequest},
		{name: "missing username", body: map[string]string{"password": "secret1"}, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "internal", body: map[string]string{"username": "alice", "password": "secret1"}, serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usersSvc := &stubUserService{registerErr: tt.serviceErr}
			h := newStubServer(usersSvc, &stubPlaylistService{}, nil)

			rec := doRequest(t, h, http.MethodPost, "/api/register", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				resp := decodeBody[sessionResponse](t, rec)
				if resp.Token != "token-1" || resp.User.Username != "alice" {
					t.Fatalf("response = %+v", resp)
				}
			}
		})
	}
}

func TestRegisterValidationNamesJSONField(t *testing.T) {
	h := newStubServer(&stubUserService{}, &stubPlaylistService{}, nil)
	rec := doRequest(t, h, http.MethodPost, "/api/register", "", map[string]string{"username": "al", "password": "secret1"})
	resp := decodeBody[errorResponse](t, rec)
	if !strings.HasPrefix(resp.Error, "username ") {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		authErr    error
		wantStatus int
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "bad credentials", authErr: store.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "internal", authErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newStubServer(&stubUserService{authErr: tt.authErr}, &stubPlaylistService{}, nil)
			rec := doRequest(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "pw"})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	st := store.New()
	graph := follows.New(st)
	h := New(Services{
		Users:     &stubUserService{},
		Playlists: &stubPlaylistService{},
		Follows:   graph,
		Tokens:    stubTokens{},
	}, Options{LoginRateLimit: 2}).Routes()

	body := map[string]string{"username": "alice", "password": "pw"}
	for i := 0; i < 2; i++ {
		if rec := doRequest(t, h, http.MethodPost, "/api/login", "", body); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d", i+1, rec.Code)
		}
	}
	if rec := doRequest(t, h, http.MethodPost, "/api/login", "", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt status = %d, want 429", rec.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	usersSvc := &stubUserService{user: &models.User{ID: 3, Username: "carol", PasswordHash: "secret-hash"}}
	h := newStubServer(usersSvc, &stubPlaylistService{}, nil)

	if rec := doRequest(t, h, http.MethodGet, "/api/user", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/api/user", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}

	rec := doRequest(t, h, http.MethodGet, "/api/user", "token-3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatal("password hash leaked into response")
	}
}

func TestPlaylistErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		path       string
		token      string
		body       any
		wantStatus int
	}{
		{name: "update forbidden", err: store.ErrForbidden, method: http.MethodPut, path: "/api/playlists/4", token: "token-2", body: map[string]string{"name": "x"}, wantStatus: http.StatusForbidden},
		{name: "delete forbidden", err: store.ErrForbidden, method: http.MethodDelete, path: "/api/playlists/4", token: "token-2", wantStatus: http.StatusForbidden},
		{name: "get missing", err: store.ErrNotFound, method: http.MethodGet, path: "/api/playlists/4", wantStatus: http.StatusNotFound},
		{name: "create invalid", err: store.ErrInvalidOperation, method: http.MethodPost, path: "/api/playlists", token: "token-2", body: map[string]string{"name": "x"}, wantStatus: http.StatusBadRequest},
		{name: "create anonymous", method: http.MethodPost, path: "/api/playlists", body: map[string]string{"name": "x"}, wantStatus: http.StatusUnauthorized},
		{name: "create without name", method: http.MethodPost, path: "/api/playlists", token: "token-2", body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "create with object tracks", method: http.MethodPost, path: "/api/playlists", token: "token-2", body: `{"name":"x","tracks":{"a":1}}`, wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, path: "/api/playlists/abc", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newStubServer(&stubUserService{}, &stubPlaylistService{err: tt.err}, nil)
			rec := doRequest(t, h, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCreatePlaylistPassesTracksThrough(t *testing.T) {
	playlistSvc := &stubPlaylistService{}
	h := newStubServer(&stubUserService{}, playlistSvc, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/playlists", "token-7", `{"name":"Mix","tracks":[{"uri":"spotify:track:1"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if playlistSvc.lastCaller != 7 {
		t.Errorf("owner = %d, want 7", playlistSvc.lastCaller)
	}
	if got := string(playlistSvc.lastInput.Tracks); got != `[{"uri":"spotify:track:1"}]` {
		t.Errorf("tracks = %s", got)
	}
}

func TestDiscoverUsesViewer(t *testing.T) {
	playlistSvc := &stubPlaylistService{}
	h := newStubServer(&stubUserService{}, playlistSvc, nil)

	doRequest(t, h, http.MethodGet, "/api/playlists/discover", "token-9", nil)
	if playlistSvc.discoverFor != 9 {
		t.Fatalf("viewer = %d, want 9", playlistSvc.discoverFor)
	}
	doRequest(t, h, http.MethodGet, "/api/playlists/discover", "", nil)
	if playlistSvc.discoverFor != 0 {
		t.Fatalf("anonymous viewer = %d, want 0", playlistSvc.discoverFor)
	}
}

func TestSpotifyLoginFlow(t *testing.T) {
	usersSvc := &stubUserService{}
	spotify := &stubExternalAuth{}
	h := newStubServer(usersSvc, &stubPlaylistService{}, spotify)

	rec := doRequest(t, h, http.MethodGet, "/api/auth/spotify", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.example.test/authorize") {
		t.Fatalf("location = %q", rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != spotify.lastState {
		t.Fatalf("state cookie = %+v", cookies)
	}
	state := cookies[0]

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/spotify/callback?code=abc&state=other", nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/spotify/callback?code=abc&state="+url.QueryEscape(state.Value), nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
		}
		if usersSvc.lastProfile.ID != "sp-abc" {
			t.Fatalf("profile = %+v", usersSvc.lastProfile)
		}
		if loc := rec.Header().Get("Location"); loc != "/#token=token-5" {
			t.Fatalf("location = %q, want /#token=token-5", loc)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		spotify.exchange = errors.New("upstream down")
		defer func() { spotify.exchange = nil }()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/spotify/callback?code=abc&state="+url.QueryEscape(state.Value), nil)
		req.AddCookie(state)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestSpotifyNotConfigured(t *testing.T) {
	h := newStubServer(&stubUserService{}, &stubPlaylistService{}, nil)
	if rec := doRequest(t, h, http.MethodGet, "/api/auth/spotify", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := middleware.NewMetrics()
	h := New(Services{Tokens: stubTokens{}}, Options{Metrics: metrics}).Routes()

	doRequest(t, h, http.MethodGet, "/health", "", nil)
	rec := doRequest(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/health"`) {
		t.Fatalf("health request not recorded:\n%s", rec.Body.String())
	}
}

// newRealServer wires the HTTP layer to real services over one in-memory store.
func newRealServer() http.Handler {
	return newServerOver(store.New(), stubTokens{})
}

func newServerOver(st *store.Store, tokens TokenManager) http.Handler {
	graph := follows.New(st)
	return New(Services{
		Users:           users.New(st),
		Playlists:       playlists.New(st),
		Comments:        comments.New(st),
		Follows:         graph,
		Activity:        activity.New(st, graph),
		Recommendations: recommendations.New(st, graph),
		Tokens:          tokens,
	}, Options{}).Routes()
}

func TestSocialFlow(t *testing.T) {
	h := newRealServer()

	register := func(username string) sessionResponse {
		t.Helper()
		rec := doRequest(t, h, http.MethodPost, "/api/register", "", map[string]string{"username": username, "password": "password1"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("register %s: status %d (%s)", username, rec.Code, rec.Body.String())
		}
		return decodeBody[sessionResponse](t, rec)
	}
	alice := register("alice")
	bob := register("bob")

	rec := doRequest(t, h, http.MethodPost, "/api/playlists", bob.Token, map[string]any{"name": "Late Night", "tracks": []string{"t1"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create playlist: %d (%s)", rec.Code, rec.Body.String())
	}
	playlist := decodeBody[models.Playlist](t, rec)

	followPath := fmt.Sprintf("/api/users/%d/follow", bob.User.ID)
	if rec := doRequest(t, h, http.MethodPost, followPath, alice.Token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("follow: %d (%s)", rec.Code, rec.Body.String())
	}
	selfPath := fmt.Sprintf("/api/users/%d/follow", alice.User.ID)
	if rec := doRequest(t, h, http.MethodPost, selfPath, alice.Token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("self follow: %d", rec.Code)
	}

	commentPath := fmt.Sprintf("/api/playlists/%d/comments", playlist.ID)
	if rec := doRequest(t, h, http.MethodPost, commentPath, bob.Token, map[string]string{"content": "new mix is up"}); rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/api/activity", alice.Token, nil)
	feed := decodeBody[[]models.ActivityItem](t, rec)
	if len(feed) != 1 || feed[0].User.Username != "bob" || feed[0].Playlist.ID != playlist.ID {
		t.Fatalf("feed = %+v", feed)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/recommendations", alice.Token, nil)
	recs := decodeBody[[]models.Recommendation](t, rec)
	if len(recs) != 1 || recs[0].ID != playlist.ID || recs[0].Reason != "From bob who you follow" {
		t.Fatalf("recommendations = %+v", recs)
	}

	rec = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d", bob.User.ID), alice.Token, nil)
	profile := decodeBody[profileResponse](t, rec)
	if profile.Followers != 1 || !profile.IsFollowing {
		t.Fatalf("profile = %+v", profile)
	}

	playlistPath := fmt.Sprintf("/api/playlists/%d", playlist.ID)
	if rec := doRequest(t, h, http.MethodDelete, playlistPath, alice.Token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodDelete, followPath, alice.Token, nil)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("unfollow: %d (%q)", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, h, http.MethodGet, "/api/activity", alice.Token, nil)
	if feed := decodeBody[[]models.ActivityItem](t, rec); len(feed) != 0 {
		t.Fatalf("feed after unfollow = %+v", feed)
	}

	if rec := doRequest(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password login: %d", rec.Code)
	}

	if rec := doRequest(t, h, http.MethodDelete, playlistPath, bob.Token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, playlistPath, bob.Token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
}

func TestSessionTokenBoundToStore(t *testing.T) {
	const secret = "0123456789abcdef-secret"
	before := store.New()
	after := store.New()
	oldServer := newServerOver(before, auth.NewTokenManager(secret).WithAudience(before.Epoch()))
	newServer := newServerOver(after, auth.NewTokenManager(secret).WithAudience(after.Epoch()))

	register := func(h http.Handler, username string) sessionResponse {
		t.Helper()
		rec := doRequest(t, h, http.MethodPost, "/api/register", "", map[string]string{"username": username, "password": "password1"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("register %s: status %d (%s)", username, rec.Code, rec.Body.String())
		}
		return decodeBody[sessionResponse](t, rec)
	}
	alice := register(oldServer, "alice")
	mallory := register(newServer, "mallory")
	if alice.User.ID != mallory.User.ID {
		t.Fatalf("ids %d and %d should collide across stores", alice.User.ID, mallory.User.ID)
	}

	if rec := doRequest(t, newServer, http.MethodGet, "/api/user", alice.Token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("token from another store: status %d (%s)", rec.Code, rec.Body.String())
	}
	followPath := fmt.Sprintf("/api/users/%d/follow", mallory.User.ID+1)
	if rec := doRequest(t, newServer, http.MethodPost, followPath, alice.Token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("follow with token from another store: status %d", rec.Code)
	}

	rec := doRequest(t, newServer, http.MethodGet, "/api/user", mallory.Token, nil)
	if rec.Code != http.StatusOK || decodeBody[models.User](t, rec).Username != "mallory" {
		t.Fatalf("own token: status %d (%s)", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, oldServer, http.MethodGet, "/api/user", alice.Token, nil)
	if rec.Code != http.StatusOK || decodeBody[models.User](t, rec).Username != "alice" {
		t.Fatalf("issuing store: status %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestSpotifyCallbackRedirectsToFrontend(t *testing.T) {
	st := store.New()
	h := New(Services{
		Users:   &stubUserService{},
		Follows: follows.New(st),
		Tokens:  stubTokens{},
		Spotify: &stubExternalAuth{},
	}, Options{FrontendURL: "https://app.example/home"}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/spotify/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "https://app.example/home#token=token-5" {
		t.Fatalf("location = %q", loc)
	}
}
