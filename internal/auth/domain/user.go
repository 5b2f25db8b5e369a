package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a human principal that logs in with a username and password.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Scopes       []string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the user may log in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// RegisterUserInput contains the parameters for creating a user.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	Scopes   []string
}
