package app_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"streamnest/internal/auth/domain/entities"
	"streamnest/internal/auth/domain/services"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) StoreRefreshToken(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) RotateRefreshToken(ctx context.Context, user *entities.User, previousHash string) error {
	return m.Called(ctx, user, previousHash).Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateAccessToken(ctx context.Context, claims services.Claims) (string, time.Time, error) {
	args := m.Called(ctx, claims)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) RecoverPrincipal(ctx context.Context, token string) (*services.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Principal), args.Error(1)
}

func (m *mockTokenService) ValidateAccessToken(ctx context.Context, token string) (*services.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Principal), args.Error(1)
}

type mockRefreshService struct {
	mock.Mock
}

func (m *mockRefreshService) Generate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRefreshService) Hash(token string) string {
	return m.Called(token).String(0)
}

func (m *mockRefreshService) IssueAndStore(ctx context.Context, user *entities.User, populateExpiry bool) (string, error) {
	args := m.Called(ctx, user, populateExpiry)
	return args.String(0), args.Error(1)
}

func (m *mockRefreshService) Validate(ctx context.Context, user *entities.User, token string) error {
	return m.Called(ctx, user, token).Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) ObserveAttempt(operation, result string) {
	m.Called(operation, result)
}

type mockProfileCache struct {
	mock.Mock
}

func (m *mockProfileCache) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *mockProfileCache) Set(ctx context.Context, profile *entities.Profile) error {
	return m.Called(ctx, profile).Error(0)
}
