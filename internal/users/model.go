package users

import "errors"

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")

	// ErrConflict is returned when a username is already taken.
	ErrConflict = errors.New("username already taken")
)

// User is a user profile. Credentials are never part of it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserUpdate is the JSON body accepted by updateUser.
type UserUpdate struct {
	Email string `json:"email"`
}

// AvatarInfo describes a stored avatar.
type AvatarInfo struct {
	UserID      int64  `json:"user_id"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// SeedUser is a sample account inserted into an empty store.
type SeedUser struct {
	Username string
	Email    string
	Password string
}

// DefaultSeed is inserted by Store.Seed.
var DefaultSeed = []SeedUser{
	{Username: "picard", Email: "foobar@example.com", Password: "engage"},
	{Username: "riker", Email: "riker@example.com", Password: "number-one"},
	{Username: "data", Email: "data@example.com", Password: "spot"},
}
