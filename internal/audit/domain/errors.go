package domain

import (
	"github.com/allisson/gatekeeper/internal/errors"
)

var (
	// ErrSignatureInvalid indicates an audit log signature does not match its content.
	ErrSignatureInvalid = errors.New("audit log signature invalid")

	// ErrSigningKeyUnknown indicates the key that signed an audit log is no longer in the ring.
	ErrSigningKeyUnknown = errors.New("audit log signing key unknown")

	// ErrInvalidPayload indicates an audit task payload could not be decoded.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid audit payload")
)
