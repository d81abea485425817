// Package mocks provides mock implementations of the business day use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storesync/internal/businessday/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// MockDayCloseUseCase is a mock implementation of usecase.DayCloseUseCase.
type MockDayCloseUseCase struct {
	mock.Mock
}

// CurrentDay mocks the CurrentDay method.
func (m *MockDayCloseUseCase) CurrentDay(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDay), args.Error(1)
}

// Get mocks the Get method.
func (m *MockDayCloseUseCase) Get(ctx context.Context, storeID, dayID uuid.UUID) (*domain.BusinessDay, error) {
	args := m.Called(ctx, storeID, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDay), args.Error(1)
}

// PrepareClose mocks the PrepareClose method.
func (m *MockDayCloseUseCase) PrepareClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
	closings []domain.ClosingInput,
) (*domain.ClosePreview, error) {
	args := m.Called(ctx, sess, dayID, closings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosePreview), args.Error(1)
}

// CommitClose mocks the CommitClose method.
func (m *MockDayCloseUseCase) CommitClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	args := m.Called(ctx, sess, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDay), args.Error(1)
}

// CancelClose mocks the CancelClose method.
func (m *MockDayCloseUseCase) CancelClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	args := m.Called(ctx, sess, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessDay), args.Error(1)
}

// RequeueForSync mocks the RequeueForSync method.
func (m *MockDayCloseUseCase) RequeueForSync(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*outboxDomain.OutboxItem, error) {
	args := m.Called(ctx, sess, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outboxDomain.OutboxItem), args.Error(1)
}

// RecordActivation mocks the RecordActivation method.
func (m *MockDayCloseUseCase) RecordActivation(ctx context.Context, storeID uuid.UUID) error {
	args := m.Called(ctx, storeID)
	return args.Error(0)
}
