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

// MySQLUserRepository implements User persistence for MySQL using BINARY(16) ids.
type MySQLUserRepository struct {
	db *sql.DB
}

const mysqlUserColumns = `id, username, email, password_hash, scopes, status, created_at, updated_at`

// Create inserts a new User. Returns ErrUserAlreadyExists when the username or email is taken.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	scopesJSON, err := marshalScopes(user.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + mysqlUserColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		user.Username,
		user.Email,
		user.PasswordHash,
		scopesJSON,
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
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`
	return m.getOne(ctx, query, id)
}

// GetByUsername retrieves a User by username.
func (m *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE username = ?`
	return m.getOne(ctx, query, username)
}

// GetByEmail retrieves a User by email.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE email = ?`
	return m.getOne(ctx, query, email)
}

func (m *MySQLUserRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	var user authDomain.User
	var idBytes []byte
	var scopesJSON []byte

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
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

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	if err := json.Unmarshal(scopesJSON, &user.Scopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user scopes")
	}

	return &user, nil
}

// UpdatePassword replaces the password hash of a user.
func (m *MySQLUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, passwordHash, updatedAt, id)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update user password")
	}
	return checkUserRowsAffected(result)
}

// UpdateStatus changes the status of a user.
func (m *MySQLUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update user status")
	}
	return checkUserRowsAffected(result)
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
