package models

// Follow records that FollowerID follows FollowedID.
type Follow struct {
	ID         int64 `json:"id"`
	FollowerID int64 `json:"followerId"`
	FollowedID int64 `json:"followedId"`
}
