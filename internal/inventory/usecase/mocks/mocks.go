// Package mocks provides mock implementations of the inventory use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storesync/internal/inventory/domain"
	"github.com/allisson/storesync/internal/session"
)

// MockPackUseCase is a mock implementation of usecase.PackUseCase.
type MockPackUseCase struct {
	mock.Mock
}

// ReceivePack mocks the ReceivePack method.
func (m *MockPackUseCase) ReceivePack(
	ctx context.Context,
	sess session.Session,
	input domain.ReceivePackInput,
) (*domain.Pack, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}

// ActivatePack mocks the ActivatePack method.
func (m *MockPackUseCase) ActivatePack(
	ctx context.Context,
	sess session.Session,
	input domain.ActivatePackInput,
) (*domain.ActivationResult, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActivationResult), args.Error(1)
}

// DepletePack mocks the DepletePack method.
func (m *MockPackUseCase) DepletePack(ctx context.Context, sess session.Session, packID uuid.UUID) (*domain.Pack, error) {
	args := m.Called(ctx, sess, packID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}

// ReturnPack mocks the ReturnPack method.
func (m *MockPackUseCase) ReturnPack(
	ctx context.Context,
	sess session.Session,
	input domain.ReturnPackInput,
) (*domain.Pack, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}

// GetPack mocks the GetPack method.
func (m *MockPackUseCase) GetPack(ctx context.Context, storeID, packID uuid.UUID) (*domain.Pack, error) {
	args := m.Called(ctx, storeID, packID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}
