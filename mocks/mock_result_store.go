package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parseview/internal/domain"
)

// MockResultStore is a mock implementation of port.ResultStore.
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Put(ctx context.Context, result *domain.SessionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultStore) Get(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionResult), args.Error(1)
}

func (m *MockResultStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockResultStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
