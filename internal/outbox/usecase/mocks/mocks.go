// Package mocks provides mock implementations of the outbox use cases for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/outbox/usecase"
)

// MockOutboxStore is a mock implementation of usecase.OutboxStore.
type MockOutboxStore struct {
	mock.Mock
}

// Enqueue mocks the Enqueue method.
func (m *MockOutboxStore) Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.OutboxItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxItem), args.Error(1)
}

// EnqueueBestEffort mocks the EnqueueBestEffort method.
func (m *MockOutboxStore) EnqueueBestEffort(ctx context.Context, req domain.EnqueueRequest) domain.EnqueueResult {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.EnqueueResult)
}

// Get mocks the Get method.
func (m *MockOutboxStore) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxItem), args.Error(1)
}

// FindLatestForEntity mocks the FindLatestForEntity method.
func (m *MockOutboxStore) FindLatestForEntity(
	ctx context.Context,
	storeID uuid.UUID,
	entityType domain.EntityType,
	entityID uuid.UUID,
	op domain.Operation,
) (*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, entityType, entityID, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxItem), args.Error(1)
}

// ListRetryable mocks the ListRetryable method.
func (m *MockOutboxStore) ListRetryable(ctx context.Context, storeID uuid.UUID, limit int) ([]*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxItem), args.Error(1)
}

// MarkSynced mocks the MarkSynced method.
func (m *MockOutboxStore) MarkSynced(ctx context.Context, item *domain.OutboxItem, result *domain.SendResult) error {
	args := m.Called(ctx, item, result)
	return args.Error(0)
}

// CountByStatus mocks the CountByStatus method.
func (m *MockOutboxStore) CountByStatus(ctx context.Context, storeID uuid.UUID) (*domain.StatusCounts, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusCounts), args.Error(1)
}

// ListStoresWithRetryable mocks the ListStoresWithRetryable method.
func (m *MockOutboxStore) ListStoresWithRetryable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// PurgeSynced mocks the PurgeSynced method.
func (m *MockOutboxStore) PurgeSynced(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

var _ usecase.OutboxStore = (*MockOutboxStore)(nil)

// MockDeadLetterUseCase is a mock implementation of usecase.DeadLetterUseCase.
type MockDeadLetterUseCase struct {
	mock.Mock
}

// RecordFailure mocks the RecordFailure method.
func (m *MockDeadLetterUseCase) RecordFailure(
	ctx context.Context,
	item *domain.OutboxItem,
	outcome domain.AttemptOutcome,
) error {
	args := m.Called(ctx, item, outcome)
	return args.Error(0)
}

// Restore mocks the Restore method.
func (m *MockDeadLetterUseCase) Restore(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxItem), args.Error(1)
}

// RestoreMany mocks the RestoreMany method.
func (m *MockDeadLetterUseCase) RestoreMany(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, storeID, ids)
	return args.Int(0), args.Error(1)
}

// ManualDeadLetter mocks the ManualDeadLetter method.
func (m *MockDeadLetterUseCase) ManualDeadLetter(
	ctx context.Context,
	storeID, id uuid.UUID,
	note string,
) (*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxItem), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockDeadLetterUseCase) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	args := m.Called(ctx, storeID, id)
	return args.Error(0)
}

// Stats mocks the Stats method.
func (m *MockDeadLetterUseCase) Stats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeadLetterStats), args.Error(1)
}

// List mocks the List method.
func (m *MockDeadLetterUseCase) List(
	ctx context.Context,
	storeID uuid.UUID,
	filter domain.DeadLetterFilter,
	offset, limit int,
) ([]*domain.OutboxItem, error) {
	args := m.Called(ctx, storeID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxItem), args.Error(1)
}

var _ usecase.DeadLetterUseCase = (*MockDeadLetterUseCase)(nil)

// MockDispatcherUseCase is a mock implementation of usecase.DispatcherUseCase.
type MockDispatcherUseCase struct {
	mock.Mock
}

// Start mocks the Start method.
func (m *MockDispatcherUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Trigger mocks the Trigger method.
func (m *MockDispatcherUseCase) Trigger(storeID uuid.UUID) bool {
	args := m.Called(storeID)
	return args.Bool(0)
}

// DispatchStore mocks the DispatchStore method.
func (m *MockDispatcherUseCase) DispatchStore(ctx context.Context, storeID uuid.UUID) (*usecase.DispatchReport, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DispatchReport), args.Error(1)
}

var _ usecase.DispatcherUseCase = (*MockDispatcherUseCase)(nil)
