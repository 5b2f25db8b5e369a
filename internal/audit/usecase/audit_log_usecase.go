package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditService "github.com/allisson/gatekeeper/internal/audit/service"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

const verifyBatchSize = 500

type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	signer       auditService.AuditSigner
	ring         *authDomain.SigningKeyRing
	clock        func() time.Time
}

// List retrieves audit logs newest first with pagination and optional time bounds.
func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}

// VerifyBatch pages through the logs in the time range and checks each signature
// against the ring key named by its kid. Logs signed by a key that left the ring
// are counted separately and do not fail the report.
func (a *auditLogUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	if a.ring == nil {
		return nil, authDomain.ErrSigningKeysNotSet
	}

	report := &VerificationReport{InvalidLogs: make([]uuid.UUID, 0)}

	for offset := 0; ; offset += verifyBatchSize {
		auditLogs, err := a.auditLogRepo.List(ctx, offset, verifyBatchSize, &startTime, &endTime)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit logs")
		}

		for _, auditLog := range auditLogs {
			report.TotalChecked++
			if !auditLog.IsSigned() {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++

			err := a.verify(auditLog)
			switch {
			case err == nil:
				report.ValidCount++
			case errors.Is(err, auditDomain.ErrSigningKeyUnknown):
				report.UnknownKeyCount++
			case errors.Is(err, auditDomain.ErrSignatureInvalid):
				report.InvalidCount++
				report.InvalidLogs = append(report.InvalidLogs, auditLog.ID)
			default:
				return nil, err
			}
		}

		if len(auditLogs) < verifyBatchSize {
			return report, nil
		}
	}
}

func (a *auditLogUseCase) verify(auditLog *auditDomain.AuditLog) error {
	key, ok := a.ring.Get(*auditLog.KeyID)
	if !ok {
		return auditDomain.ErrSigningKeyUnknown
	}
	return key.WithKey(func(signingKey []byte) error {
		return a.signer.Verify(signingKey, auditLog)
	})
}

// DeleteOlderThan removes logs created more than days ago.
func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must be zero or positive, got %d", days)
	}

	olderThan := a.clock().UTC().AddDate(0, 0, -days)
	count, err := a.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return count, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase. ring may be nil when only
// List and DeleteOlderThan are needed.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditSigner,
	ring *authDomain.SigningKeyRing,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		ring:         ring,
		clock:        time.Now,
	}
}
