// Package mocks provides testify mocks for the registry usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

// MockTxManager is a mock implementation of database.TxManager. Unless a
// non-nil error is configured, it runs fn with the given context.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockClientRepository) Create(ctx context.Context, client *registryDomain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Client), args.Error(1)
}

// List mocks the List method.
func (m *MockClientRepository) List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Client), args.Error(1)
}

// UpdateSecret mocks the UpdateSecret method.
func (m *MockClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash string,
	expectedVersion int64,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, clientID, secretHash, expectedVersion, updatedAt)
	return args.Error(0)
}

// UpdateStatus mocks the UpdateStatus method.
func (m *MockClientRepository) UpdateStatus(
	ctx context.Context,
	clientID uuid.UUID,
	status registryDomain.ClientStatus,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, clientID, status, updatedAt)
	return args.Error(0)
}

// MockSecretService is a mock implementation of service.SecretService.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashSecret mocks the HashSecret method.
func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

// CompareSecret mocks the CompareSecret method.
func (m *MockSecretService) CompareSecret(plainSecret, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

// CompareDummy mocks the CompareDummy method.
func (m *MockSecretService) CompareDummy(plainSecret string) {
	m.Called(plainSecret)
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

// MockClientUseCase is a mock implementation of ClientUseCase.
type MockClientUseCase struct {
	mock.Mock
}

// Register mocks the Register method.
func (m *MockClientUseCase) Register(
	ctx context.Context,
	input *registryDomain.RegisterClientInput,
) (*registryDomain.RegisterClientOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.RegisterClientOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockClientUseCase) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) ([]string, error) {
	args := m.Called(ctx, clientID, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// RotateSecret mocks the RotateSecret method.
func (m *MockClientUseCase) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockClientUseCase) Revoke(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockClientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*registryDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Client), args.Error(1)
}

// List mocks the List method.
func (m *MockClientUseCase) List(ctx context.Context, offset, limit int) ([]*registryDomain.Client, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Client), args.Error(1)
}
