package domain

import (
	"github.com/allisson/gatekeeper/internal/errors"
)

// Registry errors.
var (
	// ErrClientNotFound indicates the client id is unknown.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrInvalidClientSecret covers unknown clients and wrong secrets.
	ErrInvalidClientSecret = errors.WrapWithCode(
		errors.ErrUnauthorized,
		"invalid client credentials",
		"invalid_client_secret",
	)

	// ErrClientRevoked indicates the client is disabled or revoked. Not retryable.
	ErrClientRevoked = errors.WrapWithCode(errors.ErrForbidden, "client revoked", "client_revoked")

	// ErrClientConflict indicates a concurrent write changed the client first.
	ErrClientConflict = errors.WrapWithCode(
		errors.ErrConflict,
		"client was modified concurrently",
		"client_conflict",
	)
)
