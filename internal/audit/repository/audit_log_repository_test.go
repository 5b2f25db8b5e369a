package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

var auditLogRowColumns = []string{
	"id", "event_type", "principal_id", "session_id", "metadata", "signature", "kid", "created_at",
}

func newTestAuditLog() *auditDomain.AuditLog {
	principalID := uuid.Must(uuid.NewV7())
	kid := "key-1"
	return &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		EventType:   "session.login",
		PrincipalID: &principalID,
		SessionID:   "sid",
		Metadata:    map[string]any{"ip_address": "10.0.0.1"},
		Signature:   []byte("signature-bytes-signature-bytes!"),
		KeyID:       &kid,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func binaryID(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)

	t.Run("Success", func(t *testing.T) {
		auditLog := newTestAuditLog()
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
			WithArgs(
				auditLog.ID,
				auditLog.EventType,
				*auditLog.PrincipalID,
				"sid",
				`{"ip_address":"10.0.0.1"}`,
				auditLog.Signature,
				"key-1",
				auditLog.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), auditLog))
	})

	t.Run("Success_NullableFields", func(t *testing.T) {
		auditLog := &auditDomain.AuditLog{
			ID:        uuid.Must(uuid.NewV7()),
			EventType: "client.authentication_failed",
			CreatedAt: time.Now().UTC(),
		}
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WithArgs(auditLog.ID, auditLog.EventType, nil, nil, nil, sqlmock.AnyArg(), nil, auditLog.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), auditLog))
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WillReturnError(driver.ErrBadConn)

		err := repo.Create(context.Background(), newTestAuditLog())
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	auditLog := newTestAuditLog()

	t.Run("WithTimeRange", func(t *testing.T) {
		from := auditLog.CreatedAt.Add(-time.Hour)
		to := auditLog.CreatedAt.Add(time.Hour)

		rows := sqlmock.NewRows(auditLogRowColumns).
			AddRow(
				auditLog.ID.String(),
				auditLog.EventType,
				auditLog.PrincipalID.String(),
				auditLog.SessionID,
				[]byte(`{"ip_address":"10.0.0.1"}`),
				auditLog.Signature,
				*auditLog.KeyID,
				auditLog.CreatedAt,
			).
			AddRow(uuid.Must(uuid.NewV7()).String(), "client.revoked", nil, nil, nil, nil, nil, auditLog.CreatedAt)

		mock.ExpectQuery(regexp.QuoteMeta(
			"WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
		)).
			WithArgs(from, to, 100, 0).
			WillReturnRows(rows)

		logs, err := repo.List(context.Background(), 0, 100, &from, &to)
		require.NoError(t, err)
		require.Len(t, logs, 2)

		assert.Equal(t, auditLog.ID, logs[0].ID)
		assert.Equal(t, auditLog.PrincipalID, logs[0].PrincipalID)
		assert.Equal(t, "sid", logs[0].SessionID)
		assert.Equal(t, map[string]any{"ip_address": "10.0.0.1"}, logs[0].Metadata)
		assert.True(t, logs[0].IsSigned())

		assert.Nil(t, logs[1].PrincipalID)
		assert.Empty(t, logs[1].SessionID)
		assert.Nil(t, logs[1].Metadata)
		assert.False(t, logs[1].IsSigned())
	})

	t.Run("NoFilters", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
			WithArgs(10, 20).
			WillReturnRows(sqlmock.NewRows(auditLogRowColumns))

		logs, err := repo.List(context.Background(), 20, 10, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuditLogRepository(db)
	olderThan := time.Now().UTC().AddDate(0, 0, -90)

	t.Run("DryRun", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE created_at < $1")).
			WithArgs(olderThan).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		count, err := repo.DeleteOlderThan(context.Background(), olderThan, true)
		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
	})

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE created_at < $1")).
			WithArgs(olderThan).
			WillReturnResult(sqlmock.NewResult(0, 7))

		count, err := repo.DeleteOlderThan(context.Background(), olderThan, false)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)
	auditLog := newTestAuditLog()

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE id = id")).
		WithArgs(
			binaryID(t, auditLog.ID),
			auditLog.EventType,
			binaryID(t, *auditLog.PrincipalID),
			"sid",
			`{"ip_address":"10.0.0.1"}`,
			auditLog.Signature,
			"key-1",
			auditLog.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), auditLog))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)
	auditLog := newTestAuditLog()
	from := auditLog.CreatedAt.Add(-time.Minute)

	rows := sqlmock.NewRows(auditLogRowColumns).AddRow(
		binaryID(t, auditLog.ID),
		auditLog.EventType,
		binaryID(t, *auditLog.PrincipalID),
		auditLog.SessionID,
		[]byte(`{"ip_address":"10.0.0.1"}`),
		auditLog.Signature,
		*auditLog.KeyID,
		auditLog.CreatedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs(from, 50, 0).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), 0, 50, &from, nil)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, auditLog.ID, logs[0].ID)
	assert.Equal(t, *auditLog.PrincipalID, *logs[0].PrincipalID)
	assert.Equal(t, "key-1", *logs[0].KeyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLAuditLogRepository(db)
	olderThan := time.Now().UTC().AddDate(0, 0, -30)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE created_at < ?")).
		WithArgs(olderThan).
		WillReturnError(driver.ErrBadConn)

	_, err = repo.DeleteOlderThan(context.Background(), olderThan, false)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
