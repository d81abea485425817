package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/storesync/internal/errors"
	"github.com/allisson/storesync/internal/inventory/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// CollisionResolver frees a bin before a new pack is activated into it.
//
// It must run inside the activation transaction: the occupant's depletion item is enqueued
// before the activation item, so FIFO dispatch shows the remote the bin vacated before it
// is reoccupied.
type CollisionResolver struct {
	packs  PackRepository
	games  GameRepository
	outbox OutboxEnqueuer
	logger *slog.Logger
}

// NewCollisionResolver creates a CollisionResolver.
func NewCollisionResolver(
	packs PackRepository,
	games GameRepository,
	outbox OutboxEnqueuer,
	logger *slog.Logger,
) *CollisionResolver {
	return &CollisionResolver{
		packs:  packs,
		games:  games,
		outbox: outbox,
		logger: logger,
	}
}

// Resolve checks the bin and, when depletePrevious is set, depletes its occupant assuming
// the whole pack sold. Without the flag an occupied bin fails with ErrBinOccupied.
// It returns nil when the bin is empty.
func (r *CollisionResolver) Resolve(
	ctx context.Context,
	sess session.Session,
	binID uuid.UUID,
	depletePrevious bool,
	now time.Time,
) (*domain.AutoDepletion, error) {
	occupants, err := r.packs.ListActiveInBin(ctx, sess.StoreID, binID)
	if err != nil {
		return nil, err
	}

	switch {
	case len(occupants) == 0:
		return nil, nil
	case len(occupants) > 1:
		r.logger.Error("bin has more than one active pack",
			slog.String("store_id", sess.StoreID.String()),
			slog.String("bin_id", binID.String()),
			slog.Int("active_packs", len(occupants)),
		)
		return nil, apperrors.Wrapf(apperrors.ErrInvariantViolation, "bin %s has %d active packs", binID, len(occupants))
	case !depletePrevious:
		return nil, domain.ErrBinOccupied
	}

	occupant := occupants[0]
	game, err := r.games.Get(ctx, sess.StoreID, occupant.GameID)
	if err != nil {
		return nil, err
	}

	closing, err := domain.LastSerial(occupant.OpeningSerial, game.TicketsPerPack)
	if err != nil {
		return nil, err
	}
	ticketsSold := game.TicketsPerPack
	sales := game.SalesFor(ticketsSold)

	// counters of an auto-replaced pack hold the whole pack, earlier settlements included
	occupant.TicketsSoldCount = 0
	occupant.SalesAmount = decimal.Zero

	actor := domain.Actor{UserID: sess.UserID, ShiftID: sess.ShiftIDPtr()}
	if err := occupant.Deplete(closing, ticketsSold, sales, domain.DepletionReasonAutoReplaced, actor, now); err != nil {
		return nil, err
	}
	if err := r.packs.Update(ctx, occupant); err != nil {
		return nil, err
	}

	queued := r.outbox.EnqueueBestEffort(ctx, outboxDomain.EnqueueRequest{
		StoreID:    sess.StoreID,
		EntityType: outboxDomain.EntityTypePack,
		EntityID:   occupant.ID,
		Operation:  outboxDomain.OperationUpdate,
		Payload:    domain.NewPackSnapshot(occupant),
		Priority:   outboxDomain.PriorityNormal,
	}).OK()

	r.logger.Info("auto-depleted bin occupant",
		slog.String("store_id", sess.StoreID.String()),
		slog.String("bin_id", binID.String()),
		slog.String("pack_id", occupant.ID.String()),
		slog.String("closing_serial", closing),
	)

	return &domain.AutoDepletion{
		PackID:          occupant.ID,
		PackNumber:      occupant.PackNumber,
		BinID:           binID,
		ClosingSerial:   closing,
		TicketsSold:     ticketsSold,
		SalesAmount:     sales,
		DepletedAt:      now,
		DepletedBy:      sess.UserID,
		DepletedShiftID: sess.ShiftIDPtr(),
		Queued:          queued,
	}, nil
}
