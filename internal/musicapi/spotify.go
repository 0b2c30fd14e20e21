package musicapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyScopes are requested during login so playlists can be read and written later.
var SpotifyScopes = []string{
	"user-read-email",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
}

type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyAuth runs the authorization code flow against Spotify.
type SpotifyAuth struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// SpotifyOption customises a SpotifyAuth.
type SpotifyOption func(*SpotifyAuth)

// WithSpotifyEndpoints points the client at alternative accounts and API hosts.
func WithSpotifyEndpoints(authURL, tokenURL, apiBaseURL string) SpotifyOption {
	return func(a *SpotifyAuth) {
		a.config.Endpoint.AuthURL = authURL
		a.config.Endpoint.TokenURL = tokenURL
		a.apiBaseURL = apiBaseURL
	}
}

// WithHTTPClient sets the client used for token exchange and profile requests.
func WithHTTPClient(client *http.Client) SpotifyOption {
	return func(a *SpotifyAuth) {
		a.httpClient = client
	}
}

// NewSpotifyAuth creates a Spotify OAuth client.
func NewSpotifyAuth(clientID, clientSecret, redirectURL string, opts ...SpotifyOption) (*SpotifyAuth, error) {
	if clientID == "" {
		return nil, errors.New("missing spotify client id")
	}
	if clientSecret == "" {
		return nil, errors.New("missing spotify client secret")
	}
	if redirectURL == "" {
		return nil, errors.New("missing spotify redirect url")
	}

	a := &SpotifyAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyAuthURL,
				TokenURL:  spotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiBaseURL: spotifyBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AuthCodeURL returns the consent page URL carrying state.
func (a *SpotifyAuth) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and fetches the profile they belong to.
func (a *SpotifyAuth) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange auth code: %w", err)
	}

	user, err := a.currentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		Provider:     ProviderSpotify,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	identity.Profile.ID = user.ID
	identity.Profile.DisplayName = user.DisplayName
	return identity, nil
}

func (a *SpotifyAuth) currentUser(ctx context.Context, token *oauth2.Token) (*spotifyUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBaseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}

	resp, err := a.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	var user spotifyUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("spotify profile has no id")
	}
	return &user, nil
}
