// Package usecase defines the authenticator business logic: login, session
// verification, refresh and revocation, captcha challenges and user accounts.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

// UserRepository defines persistence operations for user principals.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	// Create stores a new user. Returns ErrUserAlreadyExists on a duplicate username or email.
	Create(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if not found.
	GetByUsername(ctx context.Context, username string) (*authDomain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)

	// UpdatePassword replaces the password hash. Returns ErrUserNotFound if not found.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error

	// UpdateStatus changes the status. Returns ErrUserNotFound if not found.
	UpdateStatus(ctx context.Context, userID uuid.UUID, status authDomain.UserStatus, updatedAt time.Time) error
}

// SessionRepository stores live sessions in the shared cache.
type SessionRepository interface {
	// Create stores a new session with create-if-absent semantics.
	Create(ctx context.Context, session *authDomain.Session, ttl time.Duration) error

	// Get returns the session and the revision it was read at, or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*authDomain.Session, authDomain.SessionRevision, error)

	// CompareAndSwap writes session only if the stored value is still at revision.
	CompareAndSwap(
		ctx context.Context,
		session *authDomain.Session,
		revision authDomain.SessionRevision,
		ttl time.Duration,
	) (bool, error)

	// ListIDsByPrincipal returns the session ids indexed for a principal.
	ListIDsByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error)

	// RemoveFromIndex drops ids from the principal index.
	RemoveFromIndex(ctx context.Context, principalID uuid.UUID, sessionIDs ...string) error
}

// CaptchaRepository stores captcha challenges.
type CaptchaRepository interface {
	// Create stores a challenge for ttl.
	Create(ctx context.Context, challenge *authDomain.CaptchaChallenge, ttl time.Duration) error

	// Consume atomically removes and returns a challenge, or ErrCaptchaNotFound.
	Consume(ctx context.Context, challengeID string) (*authDomain.CaptchaChallenge, error)
}

// TaskSubmitter hands work to the async task runner. Submit never blocks and
// reports whether the task was accepted.
type TaskSubmitter interface {
	Submit(task outboxDomain.Task) bool
}

// SessionUseCase owns the session lifecycle. The session cache is the single
// source of truth for whether a session is live; token claims are only a fast path.
type SessionUseCase interface {
	// Login verifies the captcha and the credentials, creates a session and
	// returns a token bound to it. Failures are ErrCaptchaFailed or
	// ErrInvalidCredentials regardless of the underlying reason.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.LoginOutput, error)

	// Verify returns the session behind token. Revoked or unknown sessions
	// yield ErrSessionRevoked even when the token itself is still valid.
	Verify(ctx context.Context, token string) (*authDomain.SessionInfo, error)

	// Refresh extends the session behind token and returns a new token bound to
	// the same session id.
	Refresh(ctx context.Context, token string) (*authDomain.LoginOutput, error)

	// Revoke marks a session revoked. Revoking an unknown or revoked session is a no-op.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAll revokes every session of a principal.
	RevokeAll(ctx context.Context, principalID uuid.UUID) error

	// Logout revokes the session behind token. The token may already be expired.
	Logout(ctx context.Context, token string) error

	// ListSessions returns the live sessions of a principal.
	ListSessions(ctx context.Context, principalID uuid.UUID) ([]*authDomain.SessionInfo, error)
}

// CaptchaUseCase issues and verifies single-use captcha challenges.
type CaptchaUseCase interface {
	// Issue creates a challenge and returns its id and prompt.
	Issue(ctx context.Context) (*authDomain.IssuedCaptcha, error)

	// Verify consumes the challenge and checks answer. Every failure, including
	// a store failure, is ErrCaptchaFailed.
	Verify(ctx context.Context, challengeID, answer string) error
}

// UserUseCase manages user principals.
type UserUseCase interface {
	// Register creates an active user with a hashed password.
	Register(ctx context.Context, input *authDomain.RegisterUserInput) (*authDomain.User, error)

	// UsernameExists reports whether a user with username exists.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// EmailExists reports whether a user with email exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// ChangePassword replaces the password and revokes every session of the user.
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error

	// SetStatus changes the status. Leaving the active status revokes every session.
	SetStatus(ctx context.Context, userID uuid.UUID, status authDomain.UserStatus) error
}
