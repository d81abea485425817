// Package usecase implements the business day close coordinator: a two-phase
// prepare/commit/cancel protocol with a time-boxed lease, plus the requeue path that
// recovers day-close sync items lost while offline.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/businessday/domain"
	inventoryDomain "github.com/allisson/storesync/internal/inventory/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// BusinessDayRepository defines the business day persistence operations.
type BusinessDayRepository interface {
	Create(ctx context.Context, day *domain.BusinessDay) error
	Get(ctx context.Context, storeID, id uuid.UUID) (*domain.BusinessDay, error)
	GetByDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (*domain.BusinessDay, error)
	GetCurrent(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error)
	Update(ctx context.Context, day *domain.BusinessDay) error
	IncrementActivations(ctx context.Context, storeID, id uuid.UUID, now time.Time) error
	CreateClosing(ctx context.Context, closing *domain.DayPackClosing) error
	ListClosings(ctx context.Context, storeID, dayID uuid.UUID) ([]domain.DayPackClosing, error)
}

// PackRepository defines the pack operations a day close needs.
type PackRepository interface {
	Get(ctx context.Context, storeID, id uuid.UUID) (*inventoryDomain.Pack, error)
	Update(ctx context.Context, pack *inventoryDomain.Pack) error
}

// GameRepository defines the game lookups.
type GameRepository interface {
	Get(ctx context.Context, storeID, id uuid.UUID) (*inventoryDomain.Game, error)
}

// OutboxStore is the part of the outbox a day close writes to.
type OutboxStore interface {
	Enqueue(ctx context.Context, req outboxDomain.EnqueueRequest) (*outboxDomain.OutboxItem, error)
	EnqueueBestEffort(ctx context.Context, req outboxDomain.EnqueueRequest) outboxDomain.EnqueueResult
	FindLatestForEntity(
		ctx context.Context,
		storeID uuid.UUID,
		entityType outboxDomain.EntityType,
		entityID uuid.UUID,
		op outboxDomain.Operation,
	) (*outboxDomain.OutboxItem, error)
}

// DayCloseUseCase defines the business day operations.
type DayCloseUseCase interface {
	// CurrentDay returns the store's day that is not CLOSED, opening one for today when
	// there is none.
	CurrentDay(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error)
	Get(ctx context.Context, storeID, dayID uuid.UUID) (*domain.BusinessDay, error)
	// PrepareClose validates the closings and reserves the day for a commit within the
	// lease. No pack is mutated and nothing is enqueued.
	PrepareClose(
		ctx context.Context,
		sess session.Session,
		dayID uuid.UUID,
		closings []domain.ClosingInput,
	) (*domain.ClosePreview, error)
	// CommitClose applies the prepared closings and closes the day. Sync items are
	// enqueued best effort.
	CommitClose(ctx context.Context, sess session.Session, dayID uuid.UUID) (*domain.BusinessDay, error)
	CancelClose(ctx context.Context, sess session.Session, dayID uuid.UUID) (*domain.BusinessDay, error)
	// RequeueForSync enqueues the day_close item of a CLOSED day unless a live one exists,
	// then the UPDATE of each pack the close depleted that lost its own. It returns the
	// day_close item.
	RequeueForSync(ctx context.Context, sess session.Session, dayID uuid.UUID) (*outboxDomain.OutboxItem, error)
	RecordActivation(ctx context.Context, storeID uuid.UUID) error
}
