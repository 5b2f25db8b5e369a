// Package repository implements client persistence for PostgreSQL and MySQL.
//
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types. Every
// write bumps the version column so concurrent rotations are detected by a
// single conditional UPDATE.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

const clientColumns = `id, name, secret_hash, owner_principal_id, scopes, status, version, created_at, updated_at`

// PostgreSQLClientRepository implements Client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *registryDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := marshalScopes(client.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.SecretHash,
		client.OwnerPrincipalID,
		string(scopesJSON),
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
func (p *PostgreSQLClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(querier.QueryRowContext(ctx, query, clientID), nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrClientNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get client")
	}
	return client, nil
}

// List returns clients ordered by ID descending (newest first).
func (p *PostgreSQLClientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*registryDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + clientColumns + ` FROM clients
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list clients")
	}
	defer func() { _ = rows.Close() }()

	clients := make([]*registryDomain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows, nil)
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
func (p *PostgreSQLClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash string,
	expectedVersion int64,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients
			  SET secret_hash = $1, version = version + 1, updated_at = $2
			  WHERE id = $3 AND version = $4 AND status = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		secretHash,
		updatedAt,
		clientID,
		expectedVersion,
		registryDomain.ClientStatusActive,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update client secret")
	}
	return checkRowsAffected(result, registryDomain.ErrClientConflict)
}

// UpdateStatus changes the status of a client.
func (p *PostgreSQLClientRepository) UpdateStatus(
	ctx context.Context,
	clientID uuid.UUID,
	status registryDomain.ClientStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, clientID)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update client status")
	}
	return checkRowsAffected(result, registryDomain.ErrClientNotFound)
}

// NewPostgreSQLClientRepository creates a new PostgreSQL Client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanClient reads one row. decodeID converts raw id columns for drivers
// without native UUID support; nil scans straight into uuid.UUID.
func scanClient(row rowScanner, decodeID func(raw []byte, id *uuid.UUID) error) (*registryDomain.Client, error) {
	var client registryDomain.Client
	var scopesJSON []byte
	var err error

	if decodeID == nil {
		err = row.Scan(
			&client.ID,
			&client.Name,
			&client.SecretHash,
			&client.OwnerPrincipalID,
			&scopesJSON,
			&client.Status,
			&client.Version,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
	} else {
		var idBytes, ownerBytes []byte
		err = row.Scan(
			&idBytes,
			&client.Name,
			&client.SecretHash,
			&ownerBytes,
			&scopesJSON,
			&client.Status,
			&client.Version,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err == nil {
			err = decodeID(idBytes, &client.ID)
		}
		if err == nil {
			err = decodeID(ownerBytes, &client.OwnerPrincipalID)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopesJSON, &client.Scopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client scopes")
	}

	return &client, nil
}

func marshalScopes(scopes []string) ([]byte, error) {
	if scopes == nil {
		scopes = []string{}
	}
	scopesJSON, err := json.Marshal(scopes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal scopes")
	}
	return scopesJSON, nil
}

func checkRowsAffected(result sql.Result, notAffected error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return notAffected
	}
	return nil
}
