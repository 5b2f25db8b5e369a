// Package domain defines the authenticator domain models: user principals,
// sessions, bearer token claims, captcha challenges and the signing key ring.
package domain

import "time"

// UserStatus describes whether a user principal may authenticate.
type UserStatus string

const (
	// UserStatusActive users can log in.
	UserStatusActive UserStatus = "active"

	// UserStatusDisabled users are temporarily blocked.
	UserStatusDisabled UserStatus = "disabled"

	// UserStatusRevoked users are permanently blocked.
	UserStatusRevoked UserStatus = "revoked"
)

// IsValid reports whether s is a known status.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusDisabled, UserStatusRevoked:
		return true
	}
	return false
}

// TokenVersion is the version carried in the token header. Tokens with any
// other version are rejected.
const TokenVersion = 1

// TokenType is returned to clients alongside the bearer token.
const TokenType = "Bearer"

// Audit event types submitted to the async task runner.
const (
	EventSessionLogin       = "session.login"
	EventSessionLoginFailed = "session.login_failed"
	EventSessionRefreshed   = "session.refreshed"
	EventSessionRevoked     = "session.revoked"
	EventUserRegistered     = "user.registered"
	EventUserUpdated        = "user.updated"
)

// Default lifetimes used when configuration leaves them unset.
const (
	DefaultSessionTTL = time.Hour
	DefaultCaptchaTTL = 5 * time.Minute
)
