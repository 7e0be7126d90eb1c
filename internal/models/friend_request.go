package models

import "time"

// Friend request statuses.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
)

// FriendRequest links two users, from sender to recipient. Sender and
// Recipient are populated from the users table on read.
type FriendRequest struct {
	ID        string    `json:"id"`
	Sender    User      `json:"sender"`
	Recipient User      `json:"recipient"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
