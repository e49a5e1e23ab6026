// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email and Username are both unique across all users — the repository layer
// enforces this with UNIQUE constraints so concurrent registrations cannot
// produce duplicates.
//
// HashedPassword carries the bcrypt digest, never the plaintext. The `json:"-"`
// tag guarantees it is stripped from every API response.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"fullName,omitempty"`
	IsActive       bool      `json:"isActive"`
	IsSuperuser    bool      `json:"isSuperuser"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
