package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// dummyPassword is hashed once at startup; CompareDummy verifies against it.
const dummyPassword = "gatekeeper-dummy-password"

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// Hash hashes a plain text password using Argon2id.
func (p *passwordService) Hash(password string) (string, error) {
	hash, err := p.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Compare performs a constant-time comparison between a password and its hash.
func (p *passwordService) Compare(password, hash string) bool {
	ok, err := p.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}

// CompareDummy burns one verification against the dummy hash.
func (p *passwordService) CompareDummy(password string) {
	_ = p.Compare(password, p.dummyHash)
}

// NewPasswordService creates a PasswordService using the Interactive Argon2id
// policy, which suits login latency.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	dummyHash, err := hasher.Hash([]byte(dummyPassword))
	if err != nil {
		panic(err)
	}

	return &passwordService{
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}
