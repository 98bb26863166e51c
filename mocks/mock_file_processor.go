package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parseview/internal/domain"
	"parseview/internal/service"
)

// MockFileProcessor is a mock implementation of service.FileProcessor.
type MockFileProcessor struct {
	mock.Mock
}

func (m *MockFileProcessor) Validate(fileName string, size int64) error {
	args := m.Called(fileName, size)
	return args.Error(0)
}

func (m *MockFileProcessor) Process(ctx context.Context, input service.ProcessInput) (*domain.ParseResult, *domain.DocumentInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ParseResult), args.Get(1).(*domain.DocumentInfo), args.Error(2)
}
