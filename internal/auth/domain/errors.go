package domain

import (
	"github.com/allisson/gatekeeper/internal/errors"
)

// Authentication errors. Callers see these kinds as the response code; the finer
// reason for a failure (unknown user, bad signature) is kept in logs and audit events.
var (
	// ErrInvalidCredentials covers unknown users, wrong passwords and inactive users.
	ErrInvalidCredentials = errors.WrapWithCode(
		errors.ErrUnauthorized,
		"invalid credentials",
		"invalid_credentials",
	)

	// ErrCaptchaFailed covers missing, expired, consumed and wrong captcha answers.
	ErrCaptchaFailed = errors.WrapWithCode(
		errors.ErrUnauthorized,
		"captcha failed",
		"captcha_failed",
	)

	// ErrInvalidToken indicates the token is structurally invalid or not signed by a known key.
	ErrInvalidToken = errors.WrapWithCode(errors.ErrUnauthorized, "invalid token", "invalid_token")

	// ErrTokenMalformed indicates the token could not be parsed.
	ErrTokenMalformed = errors.Wrap(ErrInvalidToken, "malformed")

	// ErrTokenBadSignature indicates the signature does not verify with any key in the ring.
	ErrTokenBadSignature = errors.Wrap(ErrInvalidToken, "bad signature")

	// ErrTokenUnsupportedVersion indicates the token header carries an unknown version.
	ErrTokenUnsupportedVersion = errors.Wrap(ErrInvalidToken, "unsupported version")

	// ErrTokenExpired indicates the token or its session expired, or the refresh window elapsed.
	ErrTokenExpired = errors.WrapWithCode(errors.ErrUnauthorized, "token expired", "token_expired")

	// ErrSessionRevoked indicates the session is unknown to the cache or was revoked.
	ErrSessionRevoked = errors.WrapWithCode(
		errors.ErrUnauthorized,
		"session revoked",
		"session_revoked",
	)

	// ErrSessionConflict indicates a concurrent writer changed the session first.
	ErrSessionConflict = errors.WrapWithCode(
		errors.ErrConflict,
		"session was modified concurrently",
		"session_conflict",
	)

	// ErrSessionNotFound indicates the session is absent from the cache.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "session not found")

	// ErrCaptchaNotFound indicates the challenge is absent, expired or already consumed.
	ErrCaptchaNotFound = errors.Wrap(errors.ErrNotFound, "captcha challenge not found")

	// ErrUserNotFound indicates a user with the specified ID or username was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates the username or email is taken.
	ErrUserAlreadyExists = errors.WrapWithCode(
		errors.ErrConflict,
		"user already exists",
		"user_already_exists",
	)

	// ErrInvalidUserStatus indicates an unknown status value.
	ErrInvalidUserStatus = errors.Wrap(errors.ErrInvalidInput, "invalid user status")

	// ErrSigningKeysNotSet indicates no signing key was configured.
	ErrSigningKeysNotSet = errors.New("signing keys not set")

	// ErrInvalidSigningKeysFormat indicates SIGNING_KEYS is not a list of "kid:base64key".
	ErrInvalidSigningKeysFormat = errors.New("invalid signing keys format")

	// ErrInvalidSigningKeySize indicates a signing key is shorter than MinSigningKeySize.
	ErrInvalidSigningKeySize = errors.New("invalid signing key size")

	// ErrDuplicateSigningKeyID indicates two signing keys share an id.
	ErrDuplicateSigningKeyID = errors.New("duplicate signing key id")
)
