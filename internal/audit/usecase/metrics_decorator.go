package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/metrics"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func recordAudit(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, "audit", operation, status)
	m.RecordDuration(ctx, "audit", operation, time.Since(start), status)
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	start := time.Now()
	auditLogs, err := a.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	recordAudit(ctx, a.metrics, "audit_log_list", start, err)
	return auditLogs, err
}

// VerifyBatch records metrics for batch signature verification.
func (a *auditLogUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := a.next.VerifyBatch(ctx, startTime, endTime)
	recordAudit(ctx, a.metrics, "audit_log_verify_batch", start, err)
	return report, err
}

// DeleteOlderThan records metrics for audit log cleanup.
func (a *auditLogUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	recordAudit(ctx, a.metrics, "audit_log_delete", start, err)
	return count, err
}

// eventProcessorWithMetrics decorates EventProcessor with metrics instrumentation.
type eventProcessorWithMetrics struct {
	next    EventProcessor
	metrics metrics.BusinessMetrics
}

// NewEventProcessorWithMetrics wraps an EventProcessor with metrics recording.
func NewEventProcessorWithMetrics(processor EventProcessor, m metrics.BusinessMetrics) EventProcessor {
	return &eventProcessorWithMetrics{
		next:    processor,
		metrics: m,
	}
}

// Process records metrics for audit event processing.
func (p *eventProcessorWithMetrics) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	start := time.Now()
	err := p.next.Process(ctx, event)
	recordAudit(ctx, p.metrics, "audit_event_process", start, err)
	return err
}
