package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

var clientRowColumns = []string{
	"id", "name", "secret_hash", "owner_principal_id", "scopes", "status", "version", "created_at", "updated_at",
}

func newTestClient() *registryDomain.Client {
	now := time.Now().UTC()
	return &registryDomain.Client{
		ID:               uuid.Must(uuid.NewV7()),
		Name:             "billing-service",
		SecretHash:       "$argon2id$v=19$m=65536,t=3,p=4$hash",
		OwnerPrincipalID: uuid.Must(uuid.NewV7()),
		Scopes:           []string{"invoices.read", "invoices.write"},
		Status:           registryDomain.ClientStatusActive,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func addClientRow(rows *sqlmock.Rows, client *registryDomain.Client, id, ownerID any) *sqlmock.Rows {
	return rows.AddRow(
		id,
		client.Name,
		client.SecretHash,
		ownerID,
		[]byte(`["invoices.read","invoices.write"]`),
		string(client.Status),
		client.Version,
		client.CreatedAt,
		client.UpdatedAt,
	)
}

func TestPostgreSQLClientRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLClientRepository(db)
	client := newTestClient()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients")).
			WithArgs(
				client.ID,
				client.Name,
				client.SecretHash,
				client.OwnerPrincipalID,
				`["invoices.read","invoices.write"]`,
				client.Status,
				client.Version,
				client.CreatedAt,
				client.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), client))
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), client)
		assert.ErrorIs(t, err, registryDomain.ErrClientConflict)
	})

	t.Run("Error_Timeout", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients")).
			WillReturnError(context.DeadlineExceeded)

		err := repo.Create(context.Background(), client)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLClientRepository(db)
	client := newTestClient()

	t.Run("Success", func(t *testing.T) {
		rows := addClientRow(sqlmock.NewRows(clientRowColumns), client, client.ID.String(), client.OwnerPrincipalID.String())
		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).
			WithArgs(client.ID).
			WillReturnRows(rows)

		got, err := repo.Get(context.Background(), client.ID)
		require.NoError(t, err)
		assert.Equal(t, client.ID, got.ID)
		assert.Equal(t, client.OwnerPrincipalID, got.OwnerPrincipalID)
		assert.Equal(t, client.Scopes, got.Scopes)
		assert.Equal(t, registryDomain.ClientStatusActive, got.Status)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).
			WithArgs(client.ID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), client.ID)
		assert.ErrorIs(t, err, registryDomain.ErrClientNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLClientRepository(db)
	first := newTestClient()
	second := newTestClient()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(clientRowColumns)
		addClientRow(rows, second, second.ID.String(), second.OwnerPrincipalID.String())
		addClientRow(rows, first, first.ID.String(), first.OwnerPrincipalID.String())
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id DESC")).
			WithArgs(10, 0).
			WillReturnRows(rows)

		clients, err := repo.List(context.Background(), 0, 10)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, second.ID, clients[0].ID)
		assert.Equal(t, first.ID, clients[1].ID)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id DESC")).
			WithArgs(10, 20).
			WillReturnRows(sqlmock.NewRows(clientRowColumns))

		clients, err := repo.List(context.Background(), 20, 10)
		require.NoError(t, err)
		assert.NotNil(t, clients)
		assert.Empty(t, clients)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_UpdateSecret(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLClientRepository(db)
	clientID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET secret_hash = $1, version = version + 1")).
			WithArgs("new-hash", now, clientID, int64(3), registryDomain.ClientStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateSecret(context.Background(), clientID, "new-hash", 3, now))
	})

	t.Run("Error_StaleVersion", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET secret_hash = $1, version = version + 1")).
			WithArgs("new-hash", now, clientID, int64(3), registryDomain.ClientStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateSecret(context.Background(), clientID, "new-hash", 3, now)
		assert.ErrorIs(t, err, registryDomain.ErrClientConflict)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLClientRepository(db)
	clientID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("Success_InTransaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET status = $1")).
			WithArgs(registryDomain.ClientStatusRevoked, now, clientID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txManager := database.NewTxManager(db)
		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return repo.UpdateStatus(ctx, clientID, registryDomain.ClientStatusRevoked, now)
		})
		assert.NoError(t, err)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET status = $1")).
			WithArgs(registryDomain.ClientStatusRevoked, now, clientID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), clientID, registryDomain.ClientStatusRevoked, now)
		assert.ErrorIs(t, err, registryDomain.ErrClientNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
