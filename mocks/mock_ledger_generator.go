package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bananaledger/internal/port"
)

// MockLedgerGenerator is a mock implementation of port.LedgerGenerator.
type MockLedgerGenerator struct {
	mock.Mock
}

func (m *MockLedgerGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GenerateOutput), args.Error(1)
}

func (m *MockLedgerGenerator) Repair(ctx context.Context, input port.RepairInput) (*port.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GenerateOutput), args.Error(1)
}
