package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

const (
	headerKeyID   = "kid"
	headerVersion = "ver"
)

// wireClaims is the JSON payload of a token: {"sub","sid","iat","exp"}.
type wireClaims struct {
	Subject   string           `json:"sub"`
	SessionID string           `json:"sid"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c wireClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c wireClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c wireClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c wireClaims) GetIssuer() (string, error)                   { return "", nil }
func (c wireClaims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c wireClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// tokenCodec implements TokenCodec as an HS256 JWT whose header names the
// signing key ("kid") and the token format version ("ver").
type tokenCodec struct {
	ring *authDomain.SigningKeyRing
}

// NewTokenCodec creates a TokenCodec backed by ring. The ring is shared and
// never mutated.
func NewTokenCodec(ring *authDomain.SigningKeyRing) TokenCodec {
	return &tokenCodec{ring: ring}
}

// Encode signs claims with the active key.
func (c *tokenCodec) Encode(claims authDomain.TokenClaims) (string, error) {
	if claims.SessionID == "" || claims.PrincipalID == uuid.Nil {
		return "", errors.New("claims require a session id and a principal id")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		Subject:   claims.PrincipalID.String(),
		SessionID: claims.SessionID,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	key := c.ring.Active()
	token.Header[headerKeyID] = key.ID
	token.Header[headerVersion] = authDomain.TokenVersion

	var signed string
	err := key.WithKey(func(secret []byte) error {
		var err error
		signed, err = token.SignedString(secret)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token against the key named in its header.
func (c *tokenCodec) Decode(tokenString string) (authDomain.TokenClaims, error) {
	var secret []byte
	defer func() { memguard.WipeBytes(secret) }()

	keyFunc := func(token *jwt.Token) (any, error) {
		if !hasSupportedVersion(token.Header) {
			return nil, authDomain.ErrTokenUnsupportedVersion
		}
		kid, _ := token.Header[headerKeyID].(string)
		key, ok := c.ring.Get(kid)
		if !ok {
			return nil, authDomain.ErrTokenBadSignature
		}
		err := key.WithKey(func(k []byte) error {
			secret = bytes.Clone(k)
			return nil
		})
		return secret, err
	}

	claims := &wireClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return authDomain.TokenClaims{}, mapJWTError(err)
	}

	principalID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return authDomain.TokenClaims{}, fmt.Errorf("%w: invalid sub claim", authDomain.ErrTokenMalformed)
	}
	if claims.SessionID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return authDomain.TokenClaims{}, fmt.Errorf("%w: missing required claims", authDomain.ErrTokenMalformed)
	}

	return authDomain.TokenClaims{
		SessionID:   claims.SessionID,
		PrincipalID: principalID,
		IssuedAt:    claims.IssuedAt.UTC(),
		ExpiresAt:   claims.ExpiresAt.UTC(),
	}, nil
}

func hasSupportedVersion(header map[string]any) bool {
	// encoding/json decodes numbers into float64.
	version, ok := header[headerVersion].(float64)
	return ok && version == authDomain.TokenVersion
}

// mapJWTError translates golang-jwt errors into the codec error kinds.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, authDomain.ErrTokenUnsupportedVersion):
		return authDomain.ErrTokenUnsupportedVersion
	case errors.Is(err, authDomain.ErrTokenBadSignature):
		return authDomain.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", authDomain.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", authDomain.ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", authDomain.ErrTokenMalformed, err)
	}
}
