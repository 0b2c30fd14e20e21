package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"soundcircle/internal/app/activity"
	"soundcircle/internal/app/comments"
	"soundcircle/internal/app/follows"
	"soundcircle/internal/app/playlists"
	"soundcircle/internal/app/recommendations"
	"soundcircle/internal/app/users"
	"soundcircle/internal/httpapi"
	"soundcircle/internal/musicapi"
	"soundcircle/internal/store"
	"soundcircle/shared/go/auth"
	"soundcircle/shared/go/config"
	"soundcircle/shared/go/middleware"
)

// application holds the services built over one store.
type application struct {
	users           users.Service
	playlists       playlists.Service
	comments        comments.Service
	follows         follows.Service
	activity        activity.Service
	recommendations recommendations.Service

	// epoch scopes session tokens to the store the user ids came from.
	epoch string
}

func newApplication(dataStore *store.Store) *application {
	// Base services
	userSvc := users.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	commentSvc := comments.New(dataStore)
	graph := follows.New(dataStore)

	// Derived services read the follow graph
	return &application{
		users:           userSvc,
		playlists:       playlistSvc,
		comments:        commentSvc,
		follows:         graph,
		activity:        activity.New(dataStore, graph),
		recommendations: recommendations.New(dataStore, graph),
		epoch:           dataStore.Epoch(),
	}
}

func newHTTPHandler(cfg *config.Config, app *application) (http.Handler, error) {
	services := httpapi.Services{
		Users:           app.users,
		Playlists:       app.playlists,
		Comments:        app.comments,
		Follows:         app.follows,
		Activity:        app.activity,
		Recommendations: app.recommendations,
		Tokens:          auth.NewTokenManager(cfg.Security.JWTSecret).WithAudience(app.epoch),
	}

	if cfg.Spotify.Enabled() {
		spotify, err := musicapi.NewSpotifyAuth(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURL)
		if err != nil {
			return nil, fmt.Errorf("configure spotify login: %w", err)
		}
		services.Spotify = spotify
		log.Info().Msg("Spotify login enabled")
	} else {
		log.Info().Msg("Spotify credentials not provided, Spotify login disabled")
	}

	metrics := middleware.NewMetrics()
	metrics.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return httpapi.New(services, httpapi.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LoginRateLimit: cfg.Security.LoginRateLimit,
		Metrics:        metrics,
		FrontendURL:    cfg.Server.FrontendURL,
	}).Routes(), nil
}
