package models

import "encoding/json"

// Playlist captures a user-curated list of tracks.
//
// Tracks holds the ordered track references exactly as the client sent them;
// nothing on the server interprets their shape.
type Playlist struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UserID      int64           `json:"userId"`
	ExternalID  string          `json:"spotifyId,omitempty"`
	Tracks      json.RawMessage `json:"tracks"`
}

// TrackCount reports how many entries Tracks holds when it is a JSON array.
func (p *Playlist) TrackCount() int {
	var items []json.RawMessage
	if err := json.Unmarshal(p.Tracks, &items); err != nil {
		return 0
	}
	return len(items)
}

// Clone returns a deep copy so callers never share the Tracks buffer.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Tracks != nil {
		clone.Tracks = append(json.RawMessage(nil), p.Tracks...)
	}
	return &clone
}

// Recommendation is a playlist suggested through the follow graph.
type Recommendation struct {
	Playlist
	Reason string `json:"reason"`
}
