package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bananaledger/internal/domain"
	"bananaledger/internal/service"
)

// MockConversionService is a mock implementation of service.ConversionService.
type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Convert(ctx context.Context, input *service.ConvertInput) (*domain.Conversion, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversion), args.Error(1)
}
