package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bananaledger/internal/domain"
	"bananaledger/internal/service"
)

// MockCorrectionService is a mock implementation of service.CorrectionService.
type MockCorrectionService struct {
	mock.Mock
}

func (m *MockCorrectionService) Submit(ctx context.Context, input *service.SubmitCorrectionInput) (*domain.CorrectionRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorrectionRecord), args.Error(1)
}

func (m *MockCorrectionService) RecentExamples(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionExample, error) {
	args := m.Called(ctx, source, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrectionExample), args.Error(1)
}

func (m *MockCorrectionService) ListRecent(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error) {
	args := m.Called(ctx, source, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrectionRecord), args.Error(1)
}
