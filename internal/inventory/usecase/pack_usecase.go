package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allisson/storesync/internal/database"
	apperrors "github.com/allisson/storesync/internal/errors"
	"github.com/allisson/storesync/internal/inventory/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

type packUseCase struct {
	txManager database.TxManager
	packs     PackRepository
	games     GameRepository
	resolver  *CollisionResolver
	outbox    OutboxEnqueuer
	recorder  ActivationRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewPackUseCase creates the pack lifecycle use case. recorder may be nil.
func NewPackUseCase(
	txManager database.TxManager,
	packs PackRepository,
	games GameRepository,
	resolver *CollisionResolver,
	outbox OutboxEnqueuer,
	recorder ActivationRecorder,
	logger *slog.Logger,
) PackUseCase {
	return &packUseCase{
		txManager: txManager,
		packs:     packs,
		games:     games,
		resolver:  resolver,
		outbox:    outbox,
		recorder:  recorder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (uc *packUseCase) ReceivePack(
	ctx context.Context,
	sess session.Session,
	input domain.ReceivePackInput,
) (*domain.Pack, error) {
	if _, err := domain.ParseSerial(input.OpeningSerial); err != nil {
		return nil, err
	}

	var pack *domain.Pack
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := uc.games.Get(ctx, sess.StoreID, input.GameID); err != nil {
			return err
		}

		_, err := uc.packs.GetByNumber(ctx, sess.StoreID, input.GameID, input.PackNumber)
		switch {
		case err == nil:
			return domain.ErrPackAlreadyExists
		case !apperrors.Is(err, domain.ErrPackNotFound):
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate pack id: %w", err)
		}

		now := uc.now()
		pack = &domain.Pack{
			ID:            id,
			StoreID:       sess.StoreID,
			GameID:        input.GameID,
			PackNumber:    input.PackNumber,
			Status:        domain.PackStatusReceived,
			OpeningSerial: input.OpeningSerial,
			SalesAmount:   decimal.Zero,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.packs.Create(ctx, pack); err != nil {
			return err
		}

		uc.enqueue(ctx, pack, outboxDomain.OperationCreate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pack, nil
}

// ActivatePack resolves any bin collision, then activates the pack. Depletion and
// activation happen in the same transaction, in that order.
func (uc *packUseCase) ActivatePack(
	ctx context.Context,
	sess session.Session,
	input domain.ActivatePackInput,
) (*domain.ActivationResult, error) {
	var result *domain.ActivationResult
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		pack, err := uc.packs.Get(ctx, sess.StoreID, input.PackID)
		if err != nil {
			return err
		}
		if pack.Status != domain.PackStatusReceived {
			return domain.ErrInvalidPackTransition
		}

		now := uc.now()
		autoDepleted, err := uc.resolver.Resolve(ctx, sess, input.BinID, input.DepletePrevious, now)
		if err != nil {
			return err
		}

		actor := domain.Actor{UserID: sess.UserID, ShiftID: sess.ShiftIDPtr()}
		if err := pack.Activate(input.BinID, actor, now); err != nil {
			return err
		}
		if err := uc.packs.Update(ctx, pack); err != nil {
			return err
		}

		// an ACTIVATE queued without the occupant's UPDATE ahead of it would reach the remote
		// as a second pack in the bin
		if autoDepleted != nil && !autoDepleted.Queued {
			uc.logger.Warn("skipping activation sync item, bin occupant depletion was not queued",
				slog.String("store_id", sess.StoreID.String()),
				slog.String("pack_id", pack.ID.String()),
				slog.String("depleted_pack_id", autoDepleted.PackID.String()),
			)
		} else {
			uc.enqueue(ctx, pack, outboxDomain.OperationActivate)
		}

		if uc.recorder != nil {
			if err := uc.recorder.RecordActivation(ctx, sess.StoreID); err != nil {
				return err
			}
		}

		result = &domain.ActivationResult{Pack: pack, AutoDepleted: autoDepleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *packUseCase) DepletePack(ctx context.Context, sess session.Session, packID uuid.UUID) (*domain.Pack, error) {
	var pack *domain.Pack
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		pack, err = uc.packs.Get(ctx, sess.StoreID, packID)
		if err != nil {
			return err
		}
		if pack.Status != domain.PackStatusActive {
			return domain.ErrPackNotActive
		}

		game, err := uc.games.Get(ctx, sess.StoreID, pack.GameID)
		if err != nil {
			return err
		}

		closing, err := domain.LastSerial(pack.OpeningSerial, game.TicketsPerPack)
		if err != nil {
			return err
		}
		sold, err := domain.TicketsSold(pack.CurrentSerial(), closing, true)
		if err != nil {
			return err
		}

		actor := domain.Actor{UserID: sess.UserID, ShiftID: sess.ShiftIDPtr()}
		err = pack.Deplete(closing, sold, game.SalesFor(sold), domain.DepletionReasonManualSoldOut, actor, uc.now())
		if err != nil {
			return err
		}
		if err := uc.packs.Update(ctx, pack); err != nil {
			return err
		}

		uc.enqueue(ctx, pack, outboxDomain.OperationUpdate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pack, nil
}

func (uc *packUseCase) ReturnPack(
	ctx context.Context,
	sess session.Session,
	input domain.ReturnPackInput,
) (*domain.Pack, error) {
	var pack *domain.Pack
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		pack, err = uc.packs.Get(ctx, sess.StoreID, input.PackID)
		if err != nil {
			return err
		}

		now := uc.now()
		if pack.Status == domain.PackStatusActive {
			if err := uc.settleBeforeReturn(ctx, pack, input.ClosingSerial, now); err != nil {
				return err
			}
		}

		if err := pack.Return(now); err != nil {
			return err
		}
		if err := uc.packs.Update(ctx, pack); err != nil {
			return err
		}

		uc.enqueue(ctx, pack, outboxDomain.OperationUpdate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pack, nil
}

// settleBeforeReturn records the tickets an ACTIVE pack sold before leaving its bin.
func (uc *packUseCase) settleBeforeReturn(ctx context.Context, pack *domain.Pack, closing *string, now time.Time) error {
	if closing == nil {
		return fmt.Errorf("closing serial is required to return an active pack: %w", domain.ErrInvalidSerial)
	}

	game, err := uc.games.Get(ctx, pack.StoreID, pack.GameID)
	if err != nil {
		return err
	}
	last, err := domain.LastSerial(pack.OpeningSerial, game.TicketsPerPack)
	if err != nil {
		return err
	}
	lastN, _ := domain.ParseSerial(last)
	closingN, err := domain.ParseSerial(*closing)
	if err != nil {
		return err
	}
	if closingN > lastN+1 {
		return domain.ErrInvalidSerial
	}

	sold, err := domain.TicketsSold(pack.CurrentSerial(), *closing, false)
	if err != nil {
		return err
	}
	return pack.Settle(*closing, sold, game.SalesFor(sold), now)
}

func (uc *packUseCase) GetPack(ctx context.Context, storeID, packID uuid.UUID) (*domain.Pack, error) {
	return uc.packs.Get(ctx, storeID, packID)
}

func (uc *packUseCase) enqueue(ctx context.Context, pack *domain.Pack, op outboxDomain.Operation) {
	uc.outbox.EnqueueBestEffort(ctx, outboxDomain.EnqueueRequest{
		StoreID:    pack.StoreID,
		EntityType: outboxDomain.EntityTypePack,
		EntityID:   pack.ID,
		Operation:  op,
		Payload:    domain.NewPackSnapshot(pack),
		Priority:   outboxDomain.PriorityNormal,
	})
}
