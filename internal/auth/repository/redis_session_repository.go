package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/cache"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

const (
	sessionKeyPrefix          = "session:"
	principalSessionKeyPrefix = "principal_sessions:"
)

// RedisSessionRepository stores sessions as JSON values in the shared cache and
// keeps a per-principal index of session ids for bulk revocation.
type RedisSessionRepository struct {
	cache cache.Cache
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func principalSessionsKey(principalID uuid.UUID) string {
	return principalSessionKeyPrefix + principalID.String()
}

// Create stores a new session. A session id is never reused: if the key already
// exists, ErrSessionConflict is returned and nothing is overwritten.
func (r *RedisSessionRepository) Create(ctx context.Context, session *authDomain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session")
	}

	// Index first: a dangling index entry is harmless, an unindexed session
	// would escape bulk revocation.
	if err := r.cache.SAdd(ctx, principalSessionsKey(session.PrincipalID), ttl, session.ID); err != nil {
		return apperrors.Wrap(err, "failed to index session")
	}

	ok, err := r.cache.CompareAndSet(ctx, sessionKey(session.ID), nil, data, ttl)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	if !ok {
		return authDomain.ErrSessionConflict
	}
	return nil
}

// Get returns the session and the revision it was read at.
func (r *RedisSessionRepository) Get(
	ctx context.Context,
	sessionID string,
) (*authDomain.Session, authDomain.SessionRevision, error) {
	data, err := r.cache.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil, authDomain.ErrSessionNotFound
		}
		return nil, nil, apperrors.Wrap(err, "failed to get session")
	}

	var session authDomain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to unmarshal session")
	}
	return &session, authDomain.SessionRevision(data), nil
}

// CompareAndSwap writes session only if the stored value is still at revision.
// It reports whether the write happened.
func (r *RedisSessionRepository) CompareAndSwap(
	ctx context.Context,
	session *authDomain.Session,
	revision authDomain.SessionRevision,
	ttl time.Duration,
) (bool, error) {
	if revision == nil {
		return false, apperrors.Wrap(apperrors.ErrInvalidInput, "revision is required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal session")
	}

	ok, err := r.cache.CompareAndSet(ctx, sessionKey(session.ID), revision, data, ttl)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to update session")
	}
	if ok {
		if err := r.cache.SAdd(ctx, principalSessionsKey(session.PrincipalID), ttl, session.ID); err != nil {
			return true, apperrors.Wrap(err, "failed to index session")
		}
	}
	return ok, nil
}

// ListIDsByPrincipal returns the ids indexed for principalID. Some may have expired.
func (r *RedisSessionRepository) ListIDsByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error) {
	ids, err := r.cache.SMembers(ctx, principalSessionsKey(principalID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list principal sessions")
	}
	return ids, nil
}

// RemoveFromIndex drops session ids from the principal index.
func (r *RedisSessionRepository) RemoveFromIndex(
	ctx context.Context,
	principalID uuid.UUID,
	sessionIDs ...string,
) error {
	if err := r.cache.SRem(ctx, principalSessionsKey(principalID), sessionIDs...); err != nil {
		return apperrors.Wrap(err, "failed to clean principal sessions")
	}
	return nil
}

// NewRedisSessionRepository creates a session repository on top of c.
func NewRedisSessionRepository(c cache.Cache) *RedisSessionRepository {
	return &RedisSessionRepository{cache: c}
}
