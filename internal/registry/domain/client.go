// Package domain defines the client registry models: OAuth2-style client
// credentials owned by a principal and consumed by downstream services.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClientStatus describes whether a client may authenticate.
type ClientStatus string

const (
	// ClientStatusActive clients can authenticate and rotate their secret.
	ClientStatusActive ClientStatus = "active"

	// ClientStatusDisabled clients are temporarily blocked.
	ClientStatusDisabled ClientStatus = "disabled"

	// ClientStatusRevoked clients are permanently blocked.
	ClientStatusRevoked ClientStatus = "revoked"
)

// Audit event types submitted to the async task runner.
const (
	EventClientRegistered    = "client.registered"
	EventClientSecretRotated = "client.secret_rotated"
	EventClientRevoked       = "client.revoked"
	EventClientAuthFailed    = "client.authentication_failed"
)

// Client is a machine principal identified by its id and a shared secret.
// Version increases on every write and guards concurrent rotations.
type Client struct {
	ID               uuid.UUID
	Name             string
	SecretHash       string
	OwnerPrincipalID uuid.UUID
	Scopes           []string
	Status           ClientStatus
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive reports whether the client may authenticate.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// RegisterClientInput contains the parameters for registering a client.
type RegisterClientInput struct {
	Name             string
	OwnerPrincipalID uuid.UUID
	Scopes           []string
}

// RegisterClientOutput carries the client id and its plaintext secret.
// The secret is returned only once and never stored.
type RegisterClientOutput struct {
	ClientID    uuid.UUID
	PlainSecret string
}
