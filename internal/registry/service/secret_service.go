// Package service provides client secret generation and verification.
package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// SecretSize is the number of random bytes in a client secret (256 bits).
const SecretSize = 32

const dummySecret = "gatekeeper-dummy-client-secret"

// SecretService generates client secrets and verifies them against stored hashes.
type SecretService interface {
	// GenerateSecret returns a fresh base64url secret and its Argon2id hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain secret using Argon2id.
	HashSecret(plainSecret string) (string, error)

	// CompareSecret reports whether plainSecret matches hashedSecret in constant time.
	CompareSecret(plainSecret, hashedSecret string) bool

	// CompareDummy burns one verification so unknown clients cost the same as known ones.
	CompareDummy(plainSecret string)
}

// secretService implements SecretService using Argon2id for hashing.
type secretService struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// GenerateSecret creates a new cryptographically secure 32-byte random secret.
func (s *secretService) GenerateSecret() (string, string, error) {
	randomBytes := make([]byte, SecretSize)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret := base64.RawURLEncoding.EncodeToString(randomBytes)

	hashedSecret, err := s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes a plain text secret using Argon2id.
func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashedSecret, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret performs a constant-time comparison between a plain secret and its hash.
func (s *secretService) CompareSecret(plainSecret, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// CompareDummy verifies plainSecret against a fixed hash and discards the result.
func (s *secretService) CompareDummy(plainSecret string) {
	_ = s.CompareSecret(plainSecret, s.dummyHash)
}

// NewSecretService creates a new SecretService instance using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	dummyHash, err := hasher.Hash([]byte(dummySecret))
	if err != nil {
		panic(err)
	}

	return &secretService{
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}
