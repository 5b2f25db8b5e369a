package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	session := &Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, session.IsExpired(now))
	assert.False(t, session.IsExpired(now.Add(59*time.Minute)))
	assert.True(t, session.IsExpired(now.Add(time.Hour)))
	assert.True(t, session.IsExpired(now.Add(2*time.Hour)))
}

func TestSession_CanRefresh(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	session := &Session{LastRefreshedAt: now}

	assert.True(t, session.CanRefresh(now.Add(10*time.Minute), 10*time.Minute))
	assert.False(t, session.CanRefresh(now.Add(10*time.Minute+time.Second), 10*time.Minute))
}

func TestSession_ClaimsAndInfo(t *testing.T) {
	issuedAt := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	refreshedAt := issuedAt.Add(30 * time.Minute)
	session := &Session{
		ID:              "sid",
		PrincipalID:     uuid.Must(uuid.NewV7()),
		Scopes:          []string{"registry:admin"},
		IssuedAt:        issuedAt,
		LastRefreshedAt: refreshedAt,
		ExpiresAt:       refreshedAt.Add(time.Hour),
	}

	claims := session.Claims()
	assert.Equal(t, "sid", claims.SessionID)
	assert.Equal(t, session.PrincipalID, claims.PrincipalID)
	assert.Equal(t, refreshedAt, claims.IssuedAt)
	assert.Equal(t, session.ExpiresAt, claims.ExpiresAt)

	info := session.Info()
	assert.Equal(t, "sid", info.SessionID)
	assert.Equal(t, issuedAt, info.IssuedAt)
	assert.True(t, info.HasScope("registry:admin"))
	assert.False(t, info.HasScope("other"))

	info.Scopes[0] = "mutated"
	assert.Equal(t, "registry:admin", session.Scopes[0])
}

func TestUserStatus_IsValid(t *testing.T) {
	assert.True(t, UserStatusActive.IsValid())
	assert.True(t, UserStatusDisabled.IsValid())
	assert.True(t, UserStatusRevoked.IsValid())
	assert.False(t, UserStatus("deleted").IsValid())
}

func TestUser_IsActive(t *testing.T) {
	assert.True(t, (&User{Status: UserStatusActive}).IsActive())
	assert.False(t, (&User{Status: UserStatusDisabled}).IsActive())
	assert.False(t, (&User{Status: UserStatusRevoked}).IsActive())
}
