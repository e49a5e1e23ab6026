package model

import "time"

// Note is a user-owned document stored in MongoDB.
//
// The ID is the hex form of the Mongo ObjectID. OwnerID references the owning
// User; every repository query is scoped by it, so one user can never observe
// another user's notes — a foreign note simply reads as not found.
type Note struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
