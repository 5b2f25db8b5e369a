package service

import (
	"crypto/rand"
	"encoding/base64"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// sessionIDBytes gives session ids 256 bits of entropy.
const sessionIDBytes = 32

// GenerateSessionID returns a new unguessable, URL-safe session id.
func GenerateSessionID() (string, error) {
	randomBytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate session id")
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
