// Package repository implements audit log persistence for PostgreSQL and MySQL.
//
// Audit logs are keyed by the id of the task that produced them. Inserting an
// existing id is a no-op, so redelivered tasks never duplicate a record.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

const auditLogColumns = `id, event_type, principal_id, session_id, metadata, signature, kid, created_at`

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts auditLog unless a record with the same id exists.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(auditLog.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (id) DO NOTHING`

	_, err = querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.EventType,
		auditLog.PrincipalID,
		nullString(auditLog.SessionID),
		metadataJSON,
		auditLog.Signature,
		auditLog.KeyID,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create audit log")
	}
	return nil
}

// List retrieves audit logs newest first with pagination and optional inclusive
// created_at bounds.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		auditLog, err := scanAuditLog(rows, nil)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// DeleteOlderThan removes audit logs created before olderThan. With dryRun it only
// counts them.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Unavailable(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAuditLog reads one row in auditLogColumns order. A nil decodeID scans
// native UUID columns; otherwise ids arrive as raw bytes.
func scanAuditLog(row rowScanner, decodeID func(b []byte, id *uuid.UUID) error) (*auditDomain.AuditLog, error) {
	var auditLog auditDomain.AuditLog
	var sessionID sql.NullString
	var metadataJSON []byte

	var err error
	if decodeID == nil {
		var principalID uuid.NullUUID
		err = row.Scan(&auditLog.ID, &auditLog.EventType, &principalID, &sessionID,
			&metadataJSON, &auditLog.Signature, &auditLog.KeyID, &auditLog.CreatedAt)
		if err == nil && principalID.Valid {
			auditLog.PrincipalID = &principalID.UUID
		}
	} else {
		var idBytes, principalBytes []byte
		err = row.Scan(&idBytes, &auditLog.EventType, &principalBytes, &sessionID,
			&metadataJSON, &auditLog.Signature, &auditLog.KeyID, &auditLog.CreatedAt)
		if err == nil {
			err = decodeID(idBytes, &auditLog.ID)
		}
		if err == nil && principalBytes != nil {
			var principalID uuid.UUID
			if err = decodeID(principalBytes, &principalID); err == nil {
				auditLog.PrincipalID = &principalID
			}
		}
	}
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to scan audit log")
	}

	auditLog.SessionID = sessionID.String
	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &auditLog.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log metadata")
		}
	}

	return &auditLog, nil
}

// marshalMetadata returns the JSON text of metadata, or nil for SQL NULL.
func marshalMetadata(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log metadata")
	}
	return string(metadataJSON), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
