// Package mocks provides testify mock implementations of the auth usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// GetByUsername mocks the GetByUsername method.
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// GetByEmail mocks the GetByEmail method.
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// UpdatePassword mocks the UpdatePassword method.
func (m *MockUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash string,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, userID, passwordHash, updatedAt)
	return args.Error(0)
}

// UpdateStatus mocks the UpdateStatus method.
func (m *MockUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, userID, status, updatedAt)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSessionRepository) Create(ctx context.Context, session *authDomain.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSessionRepository) Get(
	ctx context.Context,
	sessionID string,
) (*authDomain.Session, authDomain.SessionRevision, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var revision authDomain.SessionRevision
	if args.Get(1) != nil {
		revision = args.Get(1).(authDomain.SessionRevision)
	}
	return args.Get(0).(*authDomain.Session), revision, args.Error(2)
}

// CompareAndSwap mocks the CompareAndSwap method.
func (m *MockSessionRepository) CompareAndSwap(
	ctx context.Context,
	session *authDomain.Session,
	revision authDomain.SessionRevision,
	ttl time.Duration,
) (bool, error) {
	args := m.Called(ctx, session, revision, ttl)
	return args.Bool(0), args.Error(1)
}

// ListIDsByPrincipal mocks the ListIDsByPrincipal method.
func (m *MockSessionRepository) ListIDsByPrincipal(ctx context.Context, principalID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// RemoveFromIndex mocks the RemoveFromIndex method.
func (m *MockSessionRepository) RemoveFromIndex(
	ctx context.Context,
	principalID uuid.UUID,
	sessionIDs ...string,
) error {
	args := m.Called(ctx, principalID, sessionIDs)
	return args.Error(0)
}

// MockCaptchaRepository is a mock implementation of CaptchaRepository.
type MockCaptchaRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockCaptchaRepository) Create(
	ctx context.Context,
	challenge *authDomain.CaptchaChallenge,
	ttl time.Duration,
) error {
	args := m.Called(ctx, challenge, ttl)
	return args.Error(0)
}

// Consume mocks the Consume method.
func (m *MockCaptchaRepository) Consume(ctx context.Context, challengeID string) (*authDomain.CaptchaChallenge, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CaptchaChallenge), args.Error(1)
}

// MockTaskSubmitter is a mock implementation of TaskSubmitter.
type MockTaskSubmitter struct {
	mock.Mock
}

// Submit mocks the Submit method.
func (m *MockTaskSubmitter) Submit(task outboxDomain.Task) bool {
	args := m.Called(task)
	return args.Bool(0)
}

// MockSessionUseCase is a mock implementation of SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockSessionUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockSessionUseCase) Verify(ctx context.Context, token string) (*authDomain.SessionInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.SessionInfo), args.Error(1)
}

// Refresh mocks the Refresh method.
func (m *MockSessionUseCase) Refresh(ctx context.Context, token string) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockSessionUseCase) Revoke(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// RevokeAll mocks the RevokeAll method.
func (m *MockSessionUseCase) RevokeAll(ctx context.Context, principalID uuid.UUID) error {
	args := m.Called(ctx, principalID)
	return args.Error(0)
}

// Logout mocks the Logout method.
func (m *MockSessionUseCase) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// ListSessions mocks the ListSessions method.
func (m *MockSessionUseCase) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*authDomain.SessionInfo, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.SessionInfo), args.Error(1)
}

// MockCaptchaUseCase is a mock implementation of CaptchaUseCase.
type MockCaptchaUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockCaptchaUseCase) Issue(ctx context.Context) (*authDomain.IssuedCaptcha, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedCaptcha), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockCaptchaUseCase) Verify(ctx context.Context, challengeID, answer string) error {
	args := m.Called(ctx, challengeID, answer)
	return args.Error(0)
}

// MockUserUseCase is a mock implementation of UserUseCase.
type MockUserUseCase struct {
	mock.Mock
}

// Register mocks the Register method.
func (m *MockUserUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterUserInput,
) (*authDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// UsernameExists mocks the UsernameExists method.
func (m *MockUserUseCase) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// EmailExists mocks the EmailExists method.
func (m *MockUserUseCase) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// Get mocks the Get method.
func (m *MockUserUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// ChangePassword mocks the ChangePassword method.
func (m *MockUserUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

// SetStatus mocks the SetStatus method.
func (m *MockUserUseCase) SetStatus(ctx context.Context, userID uuid.UUID, status authDomain.UserStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}
