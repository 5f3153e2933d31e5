package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// Everything else in this module only ever sees the user's ID.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique login name.
	Username string

	// Email is the user's email address (unique).
	Email string

	// DisplayName is shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser builds a User with a fresh ID and creation timestamps.
func NewUser(username, email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	if displayName == "" {
		displayName = username
	}
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
