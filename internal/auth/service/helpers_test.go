package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// newTestKey returns a signing key whose material is seed repeated.
func newTestKey(t *testing.T, id string, seed byte) *authDomain.SigningKey {
	t.Helper()
	key, err := authDomain.NewSigningKey(id, bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return key
}

func newTestRing(t *testing.T, keys ...*authDomain.SigningKey) *authDomain.SigningKeyRing {
	t.Helper()
	ring, err := authDomain.NewSigningKeyRing(keys...)
	require.NoError(t, err)
	return ring
}
