// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email and username are each globally unique, enforced by UNIQUE
// constraints in the database and pre-checked in the service layer so the
// API can report which field collided. PasswordHash never leaves the
// server; json:"-" keeps it out of every response body.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
