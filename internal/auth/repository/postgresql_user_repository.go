// Package repository implements persistence for the authenticator: users in the
// relational store, sessions and captcha challenges in the shared cache.
//
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

const postgresUserColumns = `id, username, email, password_hash, scopes, status, created_at, updated_at`

// Create inserts a new User. Returns ErrUserAlreadyExists when the username or email is taken.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := marshalScopes(user.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + postgresUserColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(scopesJSON),
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Unavailable(err, "failed to create user")
	}
	return nil
}

// Get retrieves a User by ID.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE id = $1`
	return p.getOne(ctx, query, userID)
}

// GetByUsername retrieves a User by username.
func (p *PostgreSQLUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE username = $1`
	return p.getOne(ctx, query, username)
}

// GetByEmail retrieves a User by email.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE email = $1`
	return p.getOne(ctx, query, email)
}

func (p *PostgreSQLUserRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	var user authDomain.User
	var scopesJSON []byte

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&scopesJSON,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get user")
	}

	if err := json.Unmarshal(scopesJSON, &user.Scopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user scopes")
	}

	return &user, nil
}

// UpdatePassword replaces the password hash of a user.
func (p *PostgreSQLUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, passwordHash, updatedAt, userID)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update user password")
	}
	return checkUserRowsAffected(result)
}

// UpdateStatus changes the status of a user.
func (p *PostgreSQLUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, userID)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update user status")
	}
	return checkUserRowsAffected(result)
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
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

func checkUserRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return authDomain.ErrUserNotFound
	}
	return nil
}
