// Package usecase implements the pack lifecycle: receiving packs, activating them in bins
// (resolving bin collisions), depleting and returning them. Every mutation enqueues its
// sync item in the same transaction.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/inventory/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// PackRepository defines the pack persistence operations.
type PackRepository interface {
	Create(ctx context.Context, pack *domain.Pack) error
	Get(ctx context.Context, storeID, id uuid.UUID) (*domain.Pack, error)
	GetByNumber(ctx context.Context, storeID, gameID uuid.UUID, packNumber string) (*domain.Pack, error)
	Update(ctx context.Context, pack *domain.Pack) error
	ListActiveInBin(ctx context.Context, storeID, binID uuid.UUID) ([]*domain.Pack, error)
}

// GameRepository defines the game lookups.
type GameRepository interface {
	Get(ctx context.Context, storeID, id uuid.UUID) (*domain.Game, error)
}

// OutboxEnqueuer queues sync items without ever failing the caller's transaction.
type OutboxEnqueuer interface {
	EnqueueBestEffort(ctx context.Context, req outboxDomain.EnqueueRequest) outboxDomain.EnqueueResult
}

// ActivationRecorder counts activations on the store's current business day.
type ActivationRecorder interface {
	RecordActivation(ctx context.Context, storeID uuid.UUID) error
}

// PackUseCase defines the pack lifecycle operations. Audit fields are always taken
// from sess.
type PackUseCase interface {
	ReceivePack(ctx context.Context, sess session.Session, input domain.ReceivePackInput) (*domain.Pack, error)
	ActivatePack(
		ctx context.Context,
		sess session.Session,
		input domain.ActivatePackInput,
	) (*domain.ActivationResult, error)
	// DepletePack marks an ACTIVE pack sold out at its last ticket.
	DepletePack(ctx context.Context, sess session.Session, packID uuid.UUID) (*domain.Pack, error)
	ReturnPack(ctx context.Context, sess session.Session, input domain.ReturnPackInput) (*domain.Pack, error)
	GetPack(ctx context.Context, storeID, packID uuid.UUID) (*domain.Pack, error)
}
