package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaims are the claims carried by a bearer token. They are a projection
// of a Session and are never stored.
type TokenClaims struct {
	SessionID   string
	PrincipalID uuid.UUID
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsExpired reports whether the claims expired at now.
func (c TokenClaims) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
