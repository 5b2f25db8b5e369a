package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

func testClaims() authDomain.TokenClaims {
	now := time.Now().UTC().Truncate(time.Second)
	return authDomain.TokenClaims{
		SessionID:   "session-id",
		PrincipalID: uuid.Must(uuid.NewV7()),
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}
}

func decodeSegment(t *testing.T, segment string) map[string]any {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec(newTestRing(t, newTestKey(t, "k1", 1)))
	claims := testClaims()

	token, err := codec.Encode(claims)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, claims, decoded)
}

func TestTokenCodec_WireFormat(t *testing.T) {
	codec := NewTokenCodec(newTestRing(t, newTestKey(t, "k1", 1)))
	claims := testClaims()

	token, err := codec.Encode(claims)
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	header := decodeSegment(t, segments[0])
	assert.Equal(t, "HS256", header["alg"])
	assert.Equal(t, "k1", header["kid"])
	assert.Equal(t, float64(1), header["ver"])

	payload := decodeSegment(t, segments[1])
	assert.Equal(t, claims.PrincipalID.String(), payload["sub"])
	assert.Equal(t, claims.SessionID, payload["sid"])
	assert.Equal(t, float64(claims.IssuedAt.Unix()), payload["iat"])
	assert.Equal(t, float64(claims.ExpiresAt.Unix()), payload["exp"])

	again, err := codec.Encode(claims)
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestTokenCodec_DoesNotJudgeExpiry(t *testing.T) {
	codec := NewTokenCodec(newTestRing(t, newTestKey(t, "k1", 1)))
	claims := testClaims()
	claims.IssuedAt = claims.IssuedAt.Add(-2 * time.Hour)
	claims.ExpiresAt = claims.IssuedAt.Add(time.Hour)

	token, err := codec.Encode(claims)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.True(t, decoded.IsExpired(time.Now()))
}

func TestTokenCodec_KeyRotation(t *testing.T) {
	oldKey := newTestKey(t, "old", 1)
	newKey := newTestKey(t, "new", 2)
	claims := testClaims()

	before := NewTokenCodec(newTestRing(t, oldKey))
	token, err := before.Encode(claims)
	require.NoError(t, err)

	t.Run("retired key still verifies during rotation window", func(t *testing.T) {
		during := NewTokenCodec(newTestRing(t, newKey, oldKey))
		decoded, err := during.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, claims, decoded)

		fresh, err := during.Encode(claims)
		require.NoError(t, err)
		header := decodeSegment(t, strings.Split(fresh, ".")[0])
		assert.Equal(t, "new", header["kid"])
	})

	t.Run("removed key fails with bad signature", func(t *testing.T) {
		after := NewTokenCodec(newTestRing(t, newKey))
		_, err := after.Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrTokenBadSignature)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}

func TestTokenCodec_DecodeErrors(t *testing.T) {
	ring := newTestRing(t, newTestKey(t, "k1", 1))
	codec := NewTokenCodec(ring)
	claims := testClaims()

	valid, err := codec.Encode(claims)
	require.NoError(t, err)
	segments := strings.Split(valid, ".")

	signWith := func(header map[string]any, secret []byte, method jwt.SigningMethod) string {
		token := jwt.NewWithClaims(method, jwt.MapClaims{
			"sub": claims.PrincipalID.String(),
			"sid": claims.SessionID,
			"iat": claims.IssuedAt.Unix(),
			"exp": claims.ExpiresAt.Unix(),
		})
		for k, v := range header {
			token.Header[k] = v
		}
		signed, err := token.SignedString(secret)
		require.NoError(t, err)
		return signed
	}
	key := []byte(strings.Repeat("\x01", 32))

	tests := []struct {
		name     string
		token    string
		expected error
	}{
		{name: "empty", token: "", expected: authDomain.ErrTokenMalformed},
		{name: "two segments", token: segments[0] + "." + segments[1], expected: authDomain.ErrTokenMalformed},
		{name: "garbage", token: "a.b.c", expected: authDomain.ErrTokenMalformed},
		{
			name:     "tampered payload",
			token:    segments[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`)) + "." + segments[2],
			expected: authDomain.ErrTokenBadSignature,
		},
		{
			name:     "tampered signature",
			token:    segments[0] + "." + segments[1] + "." + base64.RawURLEncoding.EncodeToString([]byte("forged")),
			expected: authDomain.ErrTokenBadSignature,
		},
		{
			name:     "unknown kid",
			token:    signWith(map[string]any{"kid": "other", "ver": 1}, key, jwt.SigningMethodHS256),
			expected: authDomain.ErrTokenBadSignature,
		},
		{
			name:     "wrong secret",
			token:    signWith(map[string]any{"kid": "k1", "ver": 1}, []byte(strings.Repeat("x", 32)), jwt.SigningMethodHS256),
			expected: authDomain.ErrTokenBadSignature,
		},
		{
			name:     "unsupported version",
			token:    signWith(map[string]any{"kid": "k1", "ver": 2}, key, jwt.SigningMethodHS256),
			expected: authDomain.ErrTokenUnsupportedVersion,
		},
		{
			name:     "missing version",
			token:    signWith(map[string]any{"kid": "k1"}, key, jwt.SigningMethodHS256),
			expected: authDomain.ErrTokenUnsupportedVersion,
		},
		{
			name:     "other algorithm",
			token:    signWith(map[string]any{"kid": "k1", "ver": 1}, key, jwt.SigningMethodHS512),
			expected: authDomain.ErrTokenBadSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			assert.ErrorIs(t, err, tt.expected)
			assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
		})
	}

	t.Run("matching secret from outside the codec verifies", func(t *testing.T) {
		token := signWith(map[string]any{"kid": "k1", "ver": 1}, key, jwt.SigningMethodHS256)
		decoded, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, claims, decoded)
	})

	t.Run("invalid subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "not-a-uuid", "sid": "s", "iat": 1, "exp": 2,
		})
		token.Header["kid"] = "k1"
		token.Header["ver"] = 1
		signed, err := token.SignedString(key)
		require.NoError(t, err)

		_, err = codec.Decode(signed)
		assert.ErrorIs(t, err, authDomain.ErrTokenMalformed)
	})

	t.Run("missing session id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": claims.PrincipalID.String(), "iat": 1, "exp": 2,
		})
		token.Header["kid"] = "k1"
		token.Header["ver"] = 1
		signed, err := token.SignedString(key)
		require.NoError(t, err)

		_, err = codec.Decode(signed)
		assert.ErrorIs(t, err, authDomain.ErrTokenMalformed)
	})
}

func TestTokenCodec_EncodeRequiresIdentifiers(t *testing.T) {
	codec := NewTokenCodec(newTestRing(t, newTestKey(t, "k1", 1)))

	_, err := codec.Encode(authDomain.TokenClaims{PrincipalID: uuid.Must(uuid.NewV7())})
	assert.Error(t, err)

	_, err = codec.Encode(authDomain.TokenClaims{SessionID: "s"})
	assert.Error(t, err)
}
