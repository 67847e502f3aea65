package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/clarity-cash/claritycash/aggregator"
	"github.com/clarity-cash/claritycash/domain"
)

// --- Mock Implementations ---

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) CreateLinkToken(ctx context.Context, userID string) (*domain.LinkTokenGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkTokenGrant), args.Error(1)
}

func (m *MockAggregator) ExchangePublicToken(ctx context.Context, publicToken string) (*aggregator.ExchangeResult, error) {
	args := m.Called(ctx, publicToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregator.ExchangeResult), args.Error(1)
}

func (m *MockAggregator) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, accessToken, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockAggregator) GetAccounts(ctx context.Context, accessToken string) ([]aggregator.Account, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]aggregator.Account), args.Error(1)
}

func (m *MockAggregator) SandboxCreatePublicToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, cred *domain.AccessCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) GetByItem(ctx context.Context, userID, itemID string) (*domain.AccessCredential, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessCredential), args.Error(1)
}

func (m *MockCredentialRepository) ListByUser(ctx context.Context, userID string) ([]*domain.AccessCredential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccessCredential), args.Error(1)
}

func (m *MockCredentialRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Put(ctx context.Context, grant *domain.LinkTokenGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockTokenStore) Get(ctx context.Context) (*domain.LinkTokenGrant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkTokenGrant), args.Error(1)
}

func (m *MockTokenStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func authedContext(uid string) context.Context {
	return domain.ContextWithIdentity(context.Background(), &domain.UserIdentity{
		UID:   uid,
		Email: uid + "@example.com",
	})
}
