// Package service signs audit logs so tampering with stored rows can be detected.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
)

const auditKeyInfo = "gatekeeper-audit-log-v1"

// AuditSigner computes and checks HMAC-SHA256 signatures over audit logs.
type AuditSigner interface {
	// Sign returns the signature of log under a key derived from signingKey.
	Sign(signingKey []byte, log *auditDomain.AuditLog) ([]byte, error)

	// Verify returns auditDomain.ErrSignatureInvalid when log.Signature does not match.
	Verify(signingKey []byte, log *auditDomain.AuditLog) error
}

type auditSigner struct{}

// NewAuditSigner creates an AuditSigner. Keys are derived with HKDF-SHA256 so the
// token signing keys are never used directly for audit signatures.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

func (a *auditSigner) deriveKey(signingKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, signingKey, nil, []byte(auditKeyInfo))

	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// canonicalize encodes log as
// id || event_type || principal_id || session_id || metadata || created_at
// with variable length fields length-prefixed.
func (a *auditSigner) canonicalize(log *auditDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, log.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(log.EventType))

	if log.PrincipalID != nil {
		buf = append(buf, 1)
		buf = append(buf, log.PrincipalID[:]...)
	} else {
		buf = append(buf, 0)
	}

	buf = appendLengthPrefixed(buf, []byte(log.SessionID))

	if len(log.Metadata) > 0 {
		// encoding/json sorts map keys, so the encoding is stable across round trips.
		metadata, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadata)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(log.CreatedAt.UnixMicro()))

	return buf, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature of log.
func (a *auditSigner) Sign(signingKey []byte, log *auditDomain.AuditLog) ([]byte, error) {
	key, err := a.deriveKey(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive audit key: %w", err)
	}
	defer memguard.WipeBytes(key)

	canonical, err := a.canonicalize(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize audit log: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks log.Signature in constant time.
func (a *auditSigner) Verify(signingKey []byte, log *auditDomain.AuditLog) error {
	expected, err := a.Sign(signingKey, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
