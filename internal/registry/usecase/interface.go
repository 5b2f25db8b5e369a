// Package usecase implements the client registry: registration, secret
// authentication, rotation and revocation of client credentials.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

// ClientRepository defines persistence operations for client credentials.
// Implementations must support transaction-aware operations via context propagation.
type ClientRepository interface {
	// Create stores a new client.
	Create(ctx context.Context, client *registryDomain.Client) error

	// Get retrieves a client by ID. Returns ErrClientNotFound if not found.
	Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error)

	// List returns clients ordered by ID descending.
	List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error)

	// UpdateSecret replaces the secret hash only if the client is active and still at
	// expectedVersion. Returns ErrClientConflict otherwise.
	UpdateSecret(
		ctx context.Context,
		clientID uuid.UUID,
		secretHash string,
		expectedVersion int64,
		updatedAt time.Time,
	) error

	// UpdateStatus changes the status. Returns ErrClientNotFound if not found.
	UpdateStatus(
		ctx context.Context,
		clientID uuid.UUID,
		status registryDomain.ClientStatus,
		updatedAt time.Time,
	) error
}

// TaskSubmitter hands work to the async task runner without blocking.
type TaskSubmitter interface {
	Submit(task outboxDomain.Task) bool
}

// ClientUseCase manages client credentials.
type ClientUseCase interface {
	// Register creates an active client and returns its plaintext secret once.
	Register(
		ctx context.Context,
		input *registryDomain.RegisterClientInput,
	) (*registryDomain.RegisterClientOutput, error)

	// Authenticate verifies a client secret and returns the client scopes.
	// Unknown clients and wrong secrets yield ErrInvalidClientSecret; disabled
	// and revoked clients yield ErrClientRevoked.
	Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) ([]string, error)

	// RotateSecret replaces the secret and returns the new plaintext secret once.
	// The previous secret stops authenticating immediately.
	RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error)

	// Revoke permanently blocks a client. Revoking a revoked client is a no-op.
	Revoke(ctx context.Context, clientID uuid.UUID) error

	// Get retrieves a client by ID.
	Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error)

	// List returns clients ordered by ID descending with pagination.
	List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error)
}
