package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bananaledger/internal/domain"
)

// MockCorrectionRepo is a mock implementation of port.CorrectionRepository.
type MockCorrectionRepo struct {
	mock.Mock
}

func (m *MockCorrectionRepo) Insert(ctx context.Context, rec *domain.CorrectionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCorrectionRepo) ListRecentBySource(ctx context.Context, source domain.Source, limit int) ([]domain.CorrectionRecord, error) {
	args := m.Called(ctx, source, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrectionRecord), args.Error(1)
}
