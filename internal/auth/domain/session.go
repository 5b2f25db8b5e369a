package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is the server-held record of one login. It lives in the session
// cache; the cache entry is the authority on whether the session is live.
type Session struct {
	ID              string     `json:"id"`
	PrincipalID     uuid.UUID  `json:"principal_id"`
	Scopes          []string   `json:"scopes"`
	IssuedAt        time.Time  `json:"issued_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	LastRefreshedAt time.Time  `json:"last_refreshed_at"`
	IPAddress       string     `json:"ip_address,omitempty"`
	UserAgent       string     `json:"user_agent,omitempty"`
	Revoked         bool       `json:"revoked"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// IsExpired reports whether the session validity window has passed at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CanRefresh reports whether the last refresh happened within window of now.
func (s *Session) CanRefresh(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastRefreshedAt) <= window
}

// Claims projects the session onto the token claims.
func (s *Session) Claims() TokenClaims {
	return TokenClaims{
		SessionID:   s.ID,
		PrincipalID: s.PrincipalID,
		IssuedAt:    s.LastRefreshedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// Info returns the caller facing view of the session.
func (s *Session) Info() *SessionInfo {
	return &SessionInfo{
		SessionID:   s.ID,
		PrincipalID: s.PrincipalID,
		Scopes:      slices.Clone(s.Scopes),
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// SessionRevision is an opaque marker of the stored value a session was read
// from. Writes conditioned on a revision fail if anyone wrote in between.
type SessionRevision []byte

// SessionInfo is returned by a successful verification.
type SessionInfo struct {
	SessionID   string
	PrincipalID uuid.UUID
	Scopes      []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// HasScope reports whether the session was granted scope.
func (i *SessionInfo) HasScope(scope string) bool {
	return slices.Contains(i.Scopes, scope)
}

// LoginInput contains the parameters for a login attempt.
type LoginInput struct {
	Username      string
	Password      string
	ChallengeID   string
	CaptchaAnswer string
	IPAddress     string
	UserAgent     string
}

// LoginOutput is returned by login and refresh. Token is only ever handed out here.
type LoginOutput struct {
	Token     string
	TokenType string
	SessionID string
	ExpiresAt time.Time
}
