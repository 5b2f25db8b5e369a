package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/gatekeeper/internal/metrics"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *clientUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "registry", operation, status)
	c.metrics.RecordDuration(ctx, "registry", operation, time.Since(start), status)
}

// Register records metrics for client registration.
func (c *clientUseCaseWithMetrics) Register(
	ctx context.Context,
	input *registryDomain.RegisterClientInput,
) (*registryDomain.RegisterClientOutput, error) {
	start := time.Now()
	output, err := c.next.Register(ctx, input)
	c.record(ctx, "client_register", start, err)
	return output, err
}

// Authenticate records metrics for client authentication.
func (c *clientUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) ([]string, error) {
	start := time.Now()
	scopes, err := c.next.Authenticate(ctx, clientID, plainSecret)
	c.record(ctx, "client_authenticate", start, err)
	return scopes, err
}

// RotateSecret records metrics for secret rotation.
func (c *clientUseCaseWithMetrics) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	start := time.Now()
	plainSecret, err := c.next.RotateSecret(ctx, clientID)
	c.record(ctx, "client_rotate_secret", start, err)
	return plainSecret, err
}

// Revoke records metrics for client revocation.
func (c *clientUseCaseWithMetrics) Revoke(ctx context.Context, clientID uuid.UUID) error {
	start := time.Now()
	err := c.next.Revoke(ctx, clientID)
	c.record(ctx, "client_revoke", start, err)
	return err
}

// Get records metrics for client retrieval.
func (c *clientUseCaseWithMetrics) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Get(ctx, clientID)
	c.record(ctx, "client_get", start, err)
	return client, err
}

// List records metrics for client listing.
func (c *clientUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*registryDomain.Client, error) {
	start := time.Now()
	clients, err := c.next.List(ctx, offset, limit)
	c.record(ctx, "client_list", start, err)
	return clients, err
}
