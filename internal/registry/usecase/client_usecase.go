package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/config"
	"github.com/allisson/gatekeeper/internal/database"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
	registryService "github.com/allisson/gatekeeper/internal/registry/service"
	appValidation "github.com/allisson/gatekeeper/internal/validation"
)

// clientUseCase implements ClientUseCase.
type clientUseCase struct {
	config        *config.Config
	txManager     database.TxManager
	clientRepo    ClientRepository
	secretService registryService.SecretService
	tasks         TaskSubmitter
	logger        *slog.Logger
	clock         func() time.Time
}

func validateRegisterClientInput(input *registryDomain.RegisterClientInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.OwnerPrincipalID, appValidation.NotNilUUID),
		validation.Field(&input.Scopes, validation.Each(appValidation.Scope)),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates an active client. Only the secret hash is stored; the
// plaintext secret is returned to the caller once.
func (c *clientUseCase) Register(
	ctx context.Context,
	input *registryDomain.RegisterClientInput,
) (*registryDomain.RegisterClientOutput, error) {
	if err := validateRegisterClientInput(input); err != nil {
		return nil, err
	}

	plainSecret, secretHash, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	scopes := input.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	now := c.now()
	client := &registryDomain.Client{
		ID:               uuid.Must(uuid.NewV7()),
		Name:             input.Name,
		SecretHash:       secretHash,
		OwnerPrincipalID: input.OwnerPrincipalID,
		Scopes:           scopes,
		Status:           registryDomain.ClientStatusActive,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	if err := c.clientRepo.Create(storeCtx, client); err != nil {
		return nil, err
	}

	c.submit(registryDomain.EventClientRegistered, client.ID, map[string]any{
		"name":               client.Name,
		"owner_principal_id": client.OwnerPrincipalID.String(),
		"scopes":             client.Scopes,
	})

	return &registryDomain.RegisterClientOutput{
		ClientID:    client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Authenticate verifies plainSecret against the stored hash in constant time.
// The status is checked before the secret, so a revoked client is reported as
// such even with a wrong secret.
func (c *clientUseCase) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) ([]string, error) {
	storeCtx, cancel := c.storeContext(ctx)
	client, err := c.clientRepo.Get(storeCtx, clientID)
	cancel()
	if err != nil {
		if errors.Is(err, registryDomain.ErrClientNotFound) {
			c.secretService.CompareDummy(plainSecret)
			c.submit(registryDomain.EventClientAuthFailed, clientID, map[string]any{"reason": "unknown_client"})
			return nil, registryDomain.ErrInvalidClientSecret
		}
		return nil, err
	}

	if !client.IsActive() {
		c.submit(registryDomain.EventClientAuthFailed, clientID, map[string]any{
			"reason": "inactive_client",
			"status": string(client.Status),
		})
		return nil, registryDomain.ErrClientRevoked
	}

	if !c.secretService.CompareSecret(plainSecret, client.SecretHash) {
		c.submit(registryDomain.EventClientAuthFailed, clientID, map[string]any{"reason": "wrong_secret"})
		return nil, registryDomain.ErrInvalidClientSecret
	}

	scopes := make([]string, len(client.Scopes))
	copy(scopes, client.Scopes)
	return scopes, nil
}

// RotateSecret generates a new secret and swaps the stored hash with a single
// conditional update on the version read. A concurrent rotation makes the
// update miss and returns ErrClientConflict; a concurrent revocation returns
// ErrClientRevoked.
func (c *clientUseCase) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	plainSecret, secretHash, err := c.secretService.GenerateSecret()
	if err != nil {
		return "", err
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()

	err = c.txManager.WithTx(storeCtx, func(txCtx context.Context) error {
		client, err := c.clientRepo.Get(txCtx, clientID)
		if err != nil {
			return err
		}
		if !client.IsActive() {
			return registryDomain.ErrClientRevoked
		}
		return c.clientRepo.UpdateSecret(txCtx, clientID, secretHash, client.Version, c.now())
	})
	if errors.Is(err, registryDomain.ErrClientConflict) {
		if client, getErr := c.clientRepo.Get(storeCtx, clientID); getErr == nil && !client.IsActive() {
			return "", registryDomain.ErrClientRevoked
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	c.submit(registryDomain.EventClientSecretRotated, clientID, nil)

	return plainSecret, nil
}

// Revoke sets the client status to revoked. Already revoked clients are left untouched.
func (c *clientUseCase) Revoke(ctx context.Context, clientID uuid.UUID) error {
	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()

	revoked := false
	err := c.txManager.WithTx(storeCtx, func(txCtx context.Context) error {
		client, err := c.clientRepo.Get(txCtx, clientID)
		if err != nil {
			return err
		}
		if client.Status == registryDomain.ClientStatusRevoked {
			return nil
		}
		if err := c.clientRepo.UpdateStatus(txCtx, clientID, registryDomain.ClientStatusRevoked, c.now()); err != nil {
			return err
		}
		revoked = true
		return nil
	})
	if err != nil {
		return err
	}

	if revoked {
		c.submit(registryDomain.EventClientRevoked, clientID, nil)
	}
	return nil
}

// Get retrieves a client by ID.
func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	return c.clientRepo.Get(storeCtx, clientID)
}

// List retrieves clients ordered by ID descending with pagination.
func (c *clientUseCase) List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error) {
	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	return c.clientRepo.List(storeCtx, offset, limit)
}

func (c *clientUseCase) now() time.Time {
	return c.clock().UTC().Truncate(time.Second)
}

func (c *clientUseCase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.StoreTimeout)
}

func (c *clientUseCase) submit(eventType string, clientID uuid.UUID, metadata map[string]any) {
	accepted := c.tasks.Submit(outboxDomain.Task{
		EventType: eventType,
		Payload: auditDomain.EventPayload{
			PrincipalID: &clientID,
			Metadata:    metadata,
		},
	})
	if !accepted {
		c.logger.Warn("audit task dropped", slog.String("event_type", eventType))
	}
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	config *config.Config,
	txManager database.TxManager,
	clientRepo ClientRepository,
	secretService registryService.SecretService,
	tasks TaskSubmitter,
	logger *slog.Logger,
) ClientUseCase {
	return &clientUseCase{
		config:        config,
		txManager:     txManager,
		clientRepo:    clientRepo,
		secretService: secretService,
		tasks:         tasks,
		logger:        logger,
		clock:         time.Now,
	}
}
