// Package domain defines audit log records produced from async audit tasks.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventPayload is the payload of an audit task. It is JSON encoded in the outbox.
type EventPayload struct {
	PrincipalID *uuid.UUID     `json:"principal_id,omitempty"`
	SessionID   string         `json:"session_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AuditLog is an immutable audit record. ID equals the id of the task that
// produced it, so redelivered tasks map onto the same row.
type AuditLog struct {
	ID          uuid.UUID
	EventType   string
	PrincipalID *uuid.UUID
	SessionID   string
	Metadata    map[string]any
	Signature   []byte
	KeyID       *string
	CreatedAt   time.Time
}

// IsSigned reports whether the record carries an HMAC signature.
func (a *AuditLog) IsSigned() bool {
	return len(a.Signature) > 0 && a.KeyID != nil
}
