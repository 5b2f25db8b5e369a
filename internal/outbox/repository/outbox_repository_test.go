package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/outbox/domain"
)

var outboxRowColumns = []string{
	"id", "event_type", "payload", "status", "retries", "last_error", "processed_at", "created_at", "updated_at",
}

func newTestEvent() *domain.OutboxEvent {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: "session.login",
		Payload:   `{"session_id":"sid"}`,
		Status:    domain.OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func binaryID(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestPostgreSQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newTestEvent()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
			WithArgs(event.ID, event.EventType, event.Payload, event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("DuplicateIgnored", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnError(driver.ErrBadConn)

		err := repo.Create(context.Background(), event)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newTestEvent()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(outboxRowColumns).AddRow(
			event.ID.String(), event.EventType, event.Payload, "pending", 0, nil, nil, event.CreatedAt, event.UpdatedAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
			WithArgs(domain.OutboxEventStatusPending, 10).
			WillReturnRows(rows)

		events, err := repo.GetPendingEvents(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, event.ID, events[0].ID)
		assert.Equal(t, domain.OutboxEventStatusPending, events[0].Status)
		assert.Nil(t, events[0].LastError)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
			WithArgs(domain.OutboxEventStatusPending, 10).
			WillReturnRows(sqlmock.NewRows(outboxRowColumns))

		events, err := repo.GetPendingEvents(context.Background(), 10)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
			WillReturnError(context.DeadlineExceeded)

		_, err := repo.GetPendingEvents(context.Background(), 10)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newTestEvent()
	processedAt := event.CreatedAt.Add(time.Second)
	event.Status = domain.OutboxEventStatusProcessed
	event.ProcessedAt = &processedAt
	event.UpdatedAt = processedAt

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs(event.Status, 0, nil, processedAt, processedAt, event.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txManager := database.NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return repo.Update(ctx, event)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLOutboxEventRepository(db)
	event := newTestEvent()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs(binaryID(t, event.ID), event.EventType, event.Payload, event.Status, 0, nil, nil,
				event.CreatedAt, event.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("DuplicateIgnored", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		assert.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnError(driver.ErrBadConn)

		err := repo.Create(context.Background(), event)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLOutboxEventRepository(db)
	event := newTestEvent()
	lastError := "boom"

	rows := sqlmock.NewRows(outboxRowColumns).AddRow(
		binaryID(t, event.ID), event.EventType, event.Payload, "pending", 1, lastError, nil, event.CreatedAt, event.UpdatedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = ?")).
		WithArgs(domain.OutboxEventStatusPending, 5).
		WillReturnRows(rows)

	events, err := repo.GetPendingEvents(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, 1, events[0].Retries)
	require.NotNil(t, events[0].LastError)
	assert.Equal(t, lastError, *events[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLOutboxEventRepository(db)
	event := newTestEvent()
	lastError := "boom"
	event.Retries = 1
	event.LastError = &lastError

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WithArgs(event.Status, 1, lastError, nil, event.UpdatedAt, binaryID(t, event.ID)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), event))
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WillReturnError(sql.ErrConnDone)

		assert.Error(t, repo.Update(context.Background(), event))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
