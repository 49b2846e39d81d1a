package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // "-" hides from JSON output
	DisplayName  string    `db:"display_name" json:"displayName"`
	Bio          *string   `db:"bio" json:"bio"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// Actor is the authenticated user on whose behalf a request runs.
type Actor struct {
	UserID   uuid.UUID
	Username string
}

// Profile is the public view of a user. Following is relative to the acting user.
type Profile struct {
	ID             uuid.UUID `db:"id" json:"-"`
	Username       string    `db:"username" json:"username"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	Bio            *string   `db:"bio" json:"bio"`
	Image          *string   `db:"image" json:"image"`
	Following      bool      `db:"-" json:"following"`
	FollowersCount int       `db:"followers_count" json:"followersCount"`
	FollowingCount int       `db:"following_count" json:"followingCount"`
	Photos         []Photo   `db:"-" json:"photos,omitempty"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse is returned by register, login and current-user.
type AccountResponse struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Image       *string `json:"image"`
	Token       string  `json:"token"`
}

// Error codes for authentication failures
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
