// Package usecase records audit events delivered by the async task runner and
// maintains the resulting audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

// AuditLogRepository defines persistence operations for audit logs.
type AuditLogRepository interface {
	// Create inserts an audit log. Inserting an existing ID is a no-op.
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error

	// List returns audit logs newest first. Nil bounds are not applied.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// DeleteOlderThan removes, or with dryRun counts, logs created before olderThan.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// VerificationReport summarizes a batch signature check.
type VerificationReport struct {
	TotalChecked    int64
	SignedCount     int64
	UnsignedCount   int64
	ValidCount      int64
	InvalidCount    int64
	UnknownKeyCount int64
	InvalidLogs     []uuid.UUID
}

// AuditLogUseCase exposes the audit trail.
type AuditLogUseCase interface {
	// List returns audit logs newest first with pagination and optional time bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// VerifyBatch checks the signature of every log created within [startTime, endTime].
	VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*VerificationReport, error)

	// DeleteOlderThan removes logs older than days. With dryRun it only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}

// EventProcessor turns outbox events into audit logs.
type EventProcessor interface {
	Process(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
