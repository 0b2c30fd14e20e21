package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"soundcircle/internal/app/playlists"
	"soundcircle/internal/store"
)

const demoPassword = "demo123"

type seedPlaylist struct {
	Name        string
	Description string
	Tracks      []string
}

type seedUser struct {
	Username  string
	Playlists []seedPlaylist
}

var demoUsers = []seedUser{
	{
		Username: "demo",
		Playlists: []seedPlaylist{
			{Name: "Sunday Morning", Description: "Slow coffee, slower records", Tracks: []string{"Teardrop", "Glory Box", "Roygbiv"}},
		},
	},
	{
		Username: "maya",
		Playlists: []seedPlaylist{
			{Name: "Trip Hop Essentials", Description: "Bristol and beyond", Tracks: []string{"Angel", "Sour Times", "Inertia Creeps"}},
			{Name: "Night Drive", Tracks: []string{"Aquarius", "Airbag"}},
		},
	},
	{
		Username: "theo",
		Playlists: []seedPlaylist{
			{Name: "Warehouse Warmup", Description: "Before the lights go down", Tracks: []string{"Nova", "Windowlicker"}},
		},
	},
}

// seedDemoData registers a small community so a fresh instance has something
// to show. It does nothing if the demo account already exists.
func seedDemoData(ctx context.Context, app *application) error {
	ids := make(map[string]int64, len(demoUsers))

	for _, su := range demoUsers {
		user, err := app.users.Register(ctx, su.Username, demoPassword)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil
			}
			return fmt.Errorf("seed user %s: %w", su.Username, err)
		}
		ids[su.Username] = user.ID

		for _, sp := range su.Playlists {
			tracks, err := json.Marshal(sp.Tracks)
			if err != nil {
				return fmt.Errorf("encode seed tracks: %w", err)
			}
			if _, err := app.playlists.Create(ctx, user.ID, playlists.Input{
				Name:        sp.Name,
				Description: sp.Description,
				Tracks:      tracks,
			}); err != nil {
				return fmt.Errorf("seed playlist %q: %w", sp.Name, err)
			}
		}
	}

	for _, edge := range [][2]string{{"demo", "maya"}, {"demo", "theo"}, {"maya", "theo"}} {
		if _, err := app.follows.Follow(ctx, ids[edge[0]], ids[edge[1]]); err != nil {
			return fmt.Errorf("seed follow %s -> %s: %w", edge[0], edge[1], err)
		}
	}

	theirs, err := app.playlists.ListByUser(ctx, ids["theo"])
	if err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	for _, p := range theirs {
		if _, err := app.comments.Create(ctx, ids["maya"], p.ID, "Added this to my rotation"); err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
	}

	log.Info().Int("users", len(demoUsers)).Msg("demo data seeded")
	return nil
}
