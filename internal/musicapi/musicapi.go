// Package musicapi talks to external music services on behalf of users.
package musicapi

import "soundcircle/shared/go/models"

// MusicProvider represents a music streaming service
type MusicProvider string

const (
	ProviderSpotify MusicProvider = "spotify"
)

// Identity is the result of a completed OAuth authorization: who the user is
// at the provider and the tokens issued for them.
type Identity struct {
	Provider     MusicProvider
	Profile      models.ExternalProfile
	AccessToken  string
	RefreshToken string
}
