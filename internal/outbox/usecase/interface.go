// Package usecase implements the sync outbox: durable enqueueing inside domain transactions,
// dead-letter management and the dispatcher that drains each store's queue to the remote
// authority.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/outbox/domain"
)

// OutboxItemRepository defines the persistence operations of outbox items.
type OutboxItemRepository interface {
	Create(ctx context.Context, item *domain.OutboxItem) error
	Update(ctx context.Context, item *domain.OutboxItem) error
	Get(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error)
	ListRetryable(ctx context.Context, storeID uuid.UUID, now time.Time, limit int) ([]*domain.OutboxItem, error)
	ListDeadLettered(
		ctx context.Context,
		storeID uuid.UUID,
		filter domain.DeadLetterFilter,
		offset, limit int,
	) ([]*domain.OutboxItem, error)
	FindLatestForEntity(
		ctx context.Context,
		storeID uuid.UUID,
		entityType domain.EntityType,
		entityID uuid.UUID,
		op domain.Operation,
	) (*domain.OutboxItem, error)
	CountByStatus(ctx context.Context, storeID uuid.UUID, now time.Time) (*domain.StatusCounts, error)
	DeadLetterStats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	ListStoresWithRetryable(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ListStoresWithSynced(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error)
	PurgeSynced(ctx context.Context, storeID uuid.UUID, olderThan time.Time) (int64, error)
}

// Transport delivers one outbox item to the remote authority.
//
// A returned error means the delivery did not happen and is always retried, unless it wraps
// domain.ErrPayloadRejected. A non-nil result without error carries the remote verdict.
type Transport interface {
	Send(ctx context.Context, item *domain.OutboxItem) (*domain.SendResult, error)
}

// OutboxStore is the durable queue. Enqueue never performs network I/O and joins the
// transaction carried by ctx.
type OutboxStore interface {
	Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.OutboxItem, error)
	// EnqueueBestEffort enqueues inside a savepoint. A failure is rolled back alone and
	// reported in the result, leaving the surrounding transaction usable.
	EnqueueBestEffort(ctx context.Context, req domain.EnqueueRequest) domain.EnqueueResult
	Get(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error)
	FindLatestForEntity(
		ctx context.Context,
		storeID uuid.UUID,
		entityType domain.EntityType,
		entityID uuid.UUID,
		op domain.Operation,
	) (*domain.OutboxItem, error)
	ListRetryable(ctx context.Context, storeID uuid.UUID, limit int) ([]*domain.OutboxItem, error)
	MarkSynced(ctx context.Context, item *domain.OutboxItem, result *domain.SendResult) error
	CountByStatus(ctx context.Context, storeID uuid.UUID) (*domain.StatusCounts, error)
	ListStoresWithRetryable(ctx context.Context, limit int) ([]uuid.UUID, error)
	// PurgeSynced removes delivered items older than retention across every store.
	PurgeSynced(ctx context.Context, retention time.Duration) (int64, error)
}

// DeadLetterUseCase applies failure outcomes and manages the dead-letter queue.
type DeadLetterUseCase interface {
	RecordFailure(ctx context.Context, item *domain.OutboxItem, outcome domain.AttemptOutcome) error
	Restore(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error)
	RestoreMany(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) (int, error)
	ManualDeadLetter(ctx context.Context, storeID, id uuid.UUID, note string) (*domain.OutboxItem, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	Stats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error)
	List(
		ctx context.Context,
		storeID uuid.UUID,
		filter domain.DeadLetterFilter,
		offset, limit int,
	) ([]*domain.OutboxItem, error)
}

// DispatcherUseCase drains store queues.
type DispatcherUseCase interface {
	// Start runs the scheduler and partition workers until ctx is cancelled.
	Start(ctx context.Context) error
	// Trigger schedules a drain of the store without blocking. It reports false when the
	// store's partition queue is full.
	Trigger(storeID uuid.UUID) bool
	DispatchStore(ctx context.Context, storeID uuid.UUID) (*DispatchReport, error)
}

// DispatchReport summarizes one drain of a store queue.
type DispatchReport struct {
	StoreID      uuid.UUID `json:"store_id"`
	Fetched      int       `json:"fetched"`
	Synced       int       `json:"synced"`
	Retrying     int       `json:"retrying"`
	DeadLettered int       `json:"dead_lettered"`
	// Aborted is set when cancellation stopped the drain between two items.
	Aborted bool `json:"aborted"`
}
