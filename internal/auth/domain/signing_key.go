package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
)

// MinSigningKeySize is the minimum size in bytes of an HMAC signing key.
const MinSigningKeySize = 32

// KeyDecrypter unwraps KMS-encrypted key material. *secrets.Keeper satisfies it.
type KeyDecrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// SigningKey is one HMAC key of the ring. The key material is kept sealed in a
// memguard enclave and only opened for the duration of a sign or verify call.
type SigningKey struct {
	ID      string
	enclave *memguard.Enclave
}

// NewSigningKey seals key into an enclave. key is wiped.
func NewSigningKey(id string, key []byte) (*SigningKey, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty key id", ErrInvalidSigningKeysFormat)
	}
	if len(key) < MinSigningKeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf(
			"%w: signing key %s must be at least %d bytes, got %d",
			ErrInvalidSigningKeySize,
			id,
			MinSigningKeySize,
			len(key),
		)
	}
	return &SigningKey{ID: id, enclave: memguard.NewEnclave(key)}, nil
}

// WithKey opens the enclave, calls fn with the plaintext key and destroys the
// buffer afterwards. fn must not retain the slice.
func (k *SigningKey) WithKey(fn func(key []byte) error) error {
	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("opening signing key %s: %w", k.ID, err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

// SigningKeyRing is the immutable, ordered set of currently valid signing keys.
// The first key signs; every key verifies. Rotation happens by restarting the
// process with a new ring, never by mutating one.
type SigningKeyRing struct {
	keys []*SigningKey
	byID map[string]*SigningKey
}

// NewSigningKeyRing builds a ring from keys ordered newest first.
func NewSigningKeyRing(keys ...*SigningKey) (*SigningKeyRing, error) {
	if len(keys) == 0 {
		return nil, ErrSigningKeysNotSet
	}
	ring := &SigningKeyRing{
		keys: make([]*SigningKey, 0, len(keys)),
		byID: make(map[string]*SigningKey, len(keys)),
	}
	for _, key := range keys {
		if _, ok := ring.byID[key.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigningKeyID, key.ID)
		}
		ring.keys = append(ring.keys, key)
		ring.byID[key.ID] = key
	}
	return ring, nil
}

// Active returns the key used for signing.
func (r *SigningKeyRing) Active() *SigningKey {
	return r.keys[0]
}

// Get returns the key with the given id.
func (r *SigningKeyRing) Get(id string) (*SigningKey, bool) {
	key, ok := r.byID[id]
	return key, ok
}

// IDs returns the key ids, newest first.
func (r *SigningKeyRing) IDs() []string {
	ids := make([]string, len(r.keys))
	for i, key := range r.keys {
		ids[i] = key.ID
	}
	return ids
}

// ParseSigningKeyRing parses a comma-separated list of "kid:base64key" entries,
// newest first. When decrypter is not nil each value is a base64 KMS ciphertext
// that is unwrapped before sealing.
//
//	SIGNING_KEYS="key-2026-10:czNjcjN0...,key-2026-07:b2xkZXI..."
func ParseSigningKeyRing(ctx context.Context, raw string, decrypter KeyDecrypter) (*SigningKeyRing, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSigningKeysNotSet
	}

	var keys []*SigningKey
	for part := range strings.SplitSeq(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 || p[0] == "" || p[1] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSigningKeysFormat, part)
		}
		id := p[0]

		decoded, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 for %s: %v", ErrInvalidSigningKeysFormat, id, err)
		}

		if decrypter != nil {
			plaintext, err := decrypter.Decrypt(ctx, decoded)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt signing key %s: %w", id, err)
			}
			decoded = plaintext
		}

		key, err := NewSigningKey(id, decoded)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return NewSigningKeyRing(keys...)
}
