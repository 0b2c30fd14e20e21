package models

// User is an account, either registered locally or linked to Spotify.
//
// The credential and token fields never leave the server.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	ExternalID   string `json:"spotifyId,omitempty"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// Summary returns the public projection embedded in denormalized records.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// UserSummary identifies a user inside another record.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ExternalProfile is the identity returned by an external provider after token exchange.
type ExternalProfile struct {
	ID          string
	DisplayName string
}
