package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

// MySQLClientRepository implements Client persistence for MySQL using BINARY(16) ids.
type MySQLClientRepository struct {
	db *sql.DB
}

func unmarshalBinaryID(raw []byte, id *uuid.UUID) error {
	if err := id.UnmarshalBinary(raw); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal id")
	}
	return nil
}

// Create inserts a new Client.
func (m *MySQLClientRepository) Create(ctx context.Context, client *registryDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	id, err := client.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	ownerID, err := client.OwnerPrincipalID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner principal id")
	}

	scopesJSON, err := marshalScopes(client.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		client.Name,
		client.SecretHash,
		ownerID,
		scopesJSON,
		client.Status,
		client.Version,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return registryDomain.ErrClientConflict
		}
		return apperrors.Unavailable(err, "failed to create client")
	}
	return nil
}

// Get retrieves a Client by ID. Returns ErrClientNotFound if absent.
func (m *MySQLClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(querier.QueryRowContext(ctx, query, id), unmarshalBinaryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrClientNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get client")
	}
	return client, nil
}

// List returns clients ordered by ID descending (newest first).
func (m *MySQLClientRepository) List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + clientColumns + ` FROM clients
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list clients")
	}
	defer func() { _ = rows.Close() }()

	clients := make([]*registryDomain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows, unmarshalBinaryID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan client")
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate clients")
	}

	return clients, nil
}

// UpdateSecret replaces the secret hash if the stored version still equals
// expectedVersion and the client is active. Returns ErrClientConflict otherwise.
func (m *MySQLClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash string,
	expectedVersion int64,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `UPDATE clients
			  SET secret_hash = ?, version = version + 1, updated_at = ?
			  WHERE id = ? AND version = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		secretHash,
		updatedAt,
		id,
		expectedVersion,
		registryDomain.ClientStatusActive,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update client secret")
	}
	return checkRowsAffected(result, registryDomain.ErrClientConflict)
}

// UpdateStatus changes the status of a client.
func (m *MySQLClientRepository) UpdateStatus(
	ctx context.Context,
	clientID uuid.UUID,
	status registryDomain.ClientStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `UPDATE clients SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update client status")
	}
	return checkRowsAffected(result, registryDomain.ErrClientNotFound)
}

// NewMySQLClientRepository creates a new MySQL Client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
