package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditService "github.com/allisson/gatekeeper/internal/audit/service"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

type eventProcessor struct {
	auditLogRepo AuditLogRepository
	signer       auditService.AuditSigner
	ring         *authDomain.SigningKeyRing
	logger       *slog.Logger
}

// Process stores event as a signed audit log whose ID is the event ID. A redelivered
// event hits the existing row and is absorbed by the repository.
func (p *eventProcessor) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	var payload auditDomain.EventPayload
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return fmt.Errorf("%w: %v", auditDomain.ErrInvalidPayload, err)
	}

	auditLog := &auditDomain.AuditLog{
		ID:          event.ID,
		EventType:   event.EventType,
		PrincipalID: payload.PrincipalID,
		SessionID:   payload.SessionID,
		Metadata:    payload.Metadata,
		// Both databases store microseconds; sign what will be read back.
		CreatedAt: event.CreatedAt.UTC().Truncate(time.Microsecond),
	}

	key := p.ring.Active()
	err := key.WithKey(func(signingKey []byte) error {
		signature, err := p.signer.Sign(signingKey, auditLog)
		if err != nil {
			return err
		}
		auditLog.Signature = signature
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign audit log: %w", err)
	}
	kid := key.ID
	auditLog.KeyID = &kid

	if err := p.auditLogRepo.Create(ctx, auditLog); err != nil {
		return err
	}

	p.logger.Debug("audit log recorded",
		slog.String("audit_log_id", auditLog.ID.String()),
		slog.String("event_type", auditLog.EventType),
	)
	return nil
}

// NewEventProcessor creates an EventProcessor that signs logs with the active key of ring.
func NewEventProcessor(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditSigner,
	ring *authDomain.SigningKeyRing,
	logger *slog.Logger,
) EventProcessor {
	return &eventProcessor{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		ring:         ring,
		logger:       logger,
	}
}
