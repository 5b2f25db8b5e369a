// Package service provides the cryptographic building blocks of the authenticator:
// password hashing, bearer token encoding and captcha generation.
package service

import (
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns an Argon2id PHC string for password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. It runs in constant time
	// with respect to the password.
	Compare(password, hash string) bool

	// CompareDummy performs a comparison against a fixed hash so callers can
	// spend the same time on unknown principals as on known ones.
	CompareDummy(password string)
}

// TokenCodec encodes session claims into signed bearer tokens and back.
type TokenCodec interface {
	// Encode signs claims with the active key of the ring.
	Encode(claims authDomain.TokenClaims) (string, error)

	// Decode verifies structure and signature and returns the claims. It does not
	// judge expiry. Errors wrap authDomain.ErrInvalidToken.
	Decode(token string) (authDomain.TokenClaims, error)
}

// CaptchaService renders challenges and hashes their answers.
type CaptchaService interface {
	// Generate returns a human readable prompt and its expected answer.
	Generate() (prompt string, answer string, err error)

	// HashAnswer binds answer to challengeID and returns a hex HMAC.
	HashAnswer(challengeID, answer string) (string, error)

	// CompareAnswer reports whether answer hashes to expectedHash, in constant time.
	CompareAnswer(challengeID, answer, expectedHash string) bool
}
