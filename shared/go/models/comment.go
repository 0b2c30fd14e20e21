package models

import "time"

// Comment is a note left by a user on a playlist.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	UserID     int64     `json:"userId"`
	PlaylistID int64     `json:"playlistId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommentWithAuthor embeds the author so clients can render without a lookup.
type CommentWithAuthor struct {
	Comment
	User UserSummary `json:"user"`
}

// PlaylistSummary identifies a playlist inside another record.
type PlaylistSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ActivityItem is one entry of a user's activity feed.
type ActivityItem struct {
	ID        int64           `json:"id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	User      UserSummary     `json:"user"`
	Playlist  PlaylistSummary `json:"playlist"`
}
