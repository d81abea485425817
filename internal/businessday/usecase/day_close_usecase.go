package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allisson/storesync/internal/businessday/domain"
	"github.com/allisson/storesync/internal/database"
	apperrors "github.com/allisson/storesync/internal/errors"
	inventoryDomain "github.com/allisson/storesync/internal/inventory/domain"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// DefaultLeaseTTL bounds how long a prepared close may wait for its commit.
const DefaultLeaseTTL = 15 * time.Minute

type dayCloseUseCase struct {
	txManager database.TxManager
	days      BusinessDayRepository
	packs     PackRepository
	games     GameRepository
	outbox    OutboxStore
	leaseTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewDayCloseUseCase creates the day close coordinator. A non-positive leaseTTL falls
// back to DefaultLeaseTTL.
func NewDayCloseUseCase(
	txManager database.TxManager,
	days BusinessDayRepository,
	packs PackRepository,
	games GameRepository,
	outbox OutboxStore,
	leaseTTL time.Duration,
	logger *slog.Logger,
) DayCloseUseCase {
	if leaseTTL <= 0 {
		leaseTTL = DefaultLeaseTTL
	}
	return &dayCloseUseCase{
		txManager: txManager,
		days:      days,
		packs:     packs,
		games:     games,
		outbox:    outbox,
		leaseTTL:  leaseTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (uc *dayCloseUseCase) CurrentDay(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error) {
	var day *domain.BusinessDay
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		day, err = uc.currentDay(ctx, storeID, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

// currentDay returns the open day or creates it. When today's day is already closed the
// new day takes the next free date, so a store never has two days that are not CLOSED.
func (uc *dayCloseUseCase) currentDay(ctx context.Context, storeID uuid.UUID, now time.Time) (*domain.BusinessDay, error) {
	day, err := uc.days.GetCurrent(ctx, storeID)
	if err == nil {
		return day, nil
	}
	if !apperrors.Is(err, domain.ErrDayNotFound) {
		return nil, err
	}

	date := domain.DateOf(now)
	for {
		_, err := uc.days.GetByDate(ctx, storeID, date)
		if apperrors.Is(err, domain.ErrDayNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		date = date.AddDate(0, 0, 1)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate business day id: %w", err)
	}

	day = &domain.BusinessDay{
		ID:           id,
		StoreID:      storeID,
		BusinessDate: date,
		Status:       domain.DayStatusOpen,
		TotalSales:   decimal.Zero,
		OpenedAt:     now,
		UpdatedAt:    now,
	}
	if err := uc.days.Create(ctx, day); err != nil {
		return nil, err
	}

	uc.logger.Info("business day opened",
		slog.String("store_id", storeID.String()),
		slog.String("day_id", id.String()),
		slog.String("business_date", date.Format(domain.DateLayout)),
	)
	return day, nil
}

func (uc *dayCloseUseCase) Get(ctx context.Context, storeID, dayID uuid.UUID) (*domain.BusinessDay, error) {
	return uc.days.Get(ctx, storeID, dayID)
}

func (uc *dayCloseUseCase) PrepareClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
	closings []domain.ClosingInput,
) (*domain.ClosePreview, error) {
	if len(closings) == 0 {
		return nil, domain.ErrEmptyClosings
	}

	var preview *domain.ClosePreview
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		day, err := uc.days.Get(ctx, sess.StoreID, dayID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := day.CanReserve(now); err != nil {
			return err
		}

		pending := domain.PendingClose{
			Lines:          make([]domain.ClosingLine, 0, len(closings)),
			EstimatedTotal: decimal.Zero,
			PreparedBy:     sess.UserID,
			PreparedAt:     now,
		}

		seen := make(map[uuid.UUID]struct{}, len(closings))
		for _, input := range closings {
			if _, dup := seen[input.PackID]; dup {
				return apperrors.Wrapf(domain.ErrDuplicatePack, "pack %s", input.PackID)
			}
			seen[input.PackID] = struct{}{}

			line, err := uc.closingLine(ctx, sess.StoreID, input)
			if err != nil {
				return err
			}
			pending.Lines = append(pending.Lines, *line)
			pending.TotalTickets += line.TicketsSold
			pending.EstimatedTotal = pending.EstimatedTotal.Add(line.SalesAmount)
		}

		payload, err := json.Marshal(pending)
		if err != nil {
			return fmt.Errorf("failed to encode pending close: %w", err)
		}

		expiresAt := now.Add(uc.leaseTTL)
		if err := day.Reserve(payload, expiresAt, now); err != nil {
			return err
		}
		if err := uc.days.Update(ctx, day); err != nil {
			return err
		}

		preview = &domain.ClosePreview{
			DayID:          day.ID,
			Status:         day.Status,
			Lines:          pending.Lines,
			TotalTickets:   pending.TotalTickets,
			EstimatedTotal: pending.EstimatedTotal,
			ExpiresAt:      expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("business day close prepared",
		slog.String("store_id", sess.StoreID.String()),
		slog.String("day_id", dayID.String()),
		slog.Int("packs", len(preview.Lines)),
		slog.String("estimated_total", preview.EstimatedTotal.String()),
	)
	return preview, nil
}

// closingLine validates one input against its pack and computes the tickets sold since
// the pack's last settlement.
func (uc *dayCloseUseCase) closingLine(
	ctx context.Context,
	storeID uuid.UUID,
	input domain.ClosingInput,
) (*domain.ClosingLine, error) {
	pack, err := uc.packs.Get(ctx, storeID, input.PackID)
	if err != nil {
		return nil, err
	}
	if pack.Status != inventoryDomain.PackStatusActive {
		return nil, apperrors.Wrapf(inventoryDomain.ErrPackNotActive, "pack %s", pack.PackNumber)
	}

	game, err := uc.games.Get(ctx, storeID, pack.GameID)
	if err != nil {
		return nil, err
	}

	current := pack.CurrentSerial()
	last, err := inventoryDomain.LastSerial(pack.OpeningSerial, game.TicketsPerPack)
	if err != nil {
		return nil, err
	}
	if err := checkSerialRange(current, input.ClosingSerial, last); err != nil {
		return nil, apperrors.Wrapf(err, "pack %s", pack.PackNumber)
	}

	sold, err := inventoryDomain.TicketsSold(current, input.ClosingSerial, input.IsSoldOut)
	if err != nil {
		return nil, err
	}

	return &domain.ClosingLine{
		PackID:        pack.ID,
		PackNumber:    pack.PackNumber,
		GameID:        pack.GameID,
		OpeningSerial: current,
		ClosingSerial: input.ClosingSerial,
		IsSoldOut:     input.IsSoldOut,
		TicketsSold:   sold,
		UnitPrice:     game.Price,
		SalesAmount:   game.SalesFor(sold),
	}, nil
}

func checkSerialRange(from, closing, last string) error {
	start, err := inventoryDomain.ParseSerial(from)
	if err != nil {
		return err
	}
	end, err := inventoryDomain.ParseSerial(closing)
	if err != nil {
		return err
	}
	limit, err := inventoryDomain.ParseSerial(last)
	if err != nil {
		return err
	}
	if end < start || end > limit {
		return domain.ErrSerialOutOfRange
	}
	return nil
}

func (uc *dayCloseUseCase) CommitClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	var day *domain.BusinessDay
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		day, err = uc.days.Get(ctx, sess.StoreID, dayID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := day.CanCommit(now); err != nil {
			return err
		}

		var pending domain.PendingClose
		if err := json.Unmarshal(day.PendingClosePayload, &pending); err != nil {
			return fmt.Errorf("failed to decode pending close: %w", err)
		}

		actor := inventoryDomain.Actor{UserID: sess.UserID, ShiftID: sess.ShiftIDPtr()}
		closings := make([]domain.DayPackClosing, 0, len(pending.Lines))
		depleted := make([]*inventoryDomain.Pack, 0)
		total := decimal.Zero

		for _, line := range pending.Lines {
			pack, err := uc.settlePack(ctx, sess.StoreID, line, actor, now)
			if err != nil {
				return err
			}
			if pack.Status == inventoryDomain.PackStatusDepleted {
				depleted = append(depleted, pack)
			}

			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate closing id: %w", err)
			}
			closing := domain.DayPackClosing{
				ID:            id,
				DayID:         day.ID,
				StoreID:       day.StoreID,
				PackID:        line.PackID,
				OpeningSerial: line.OpeningSerial,
				ClosingSerial: line.ClosingSerial,
				TicketsSold:   line.TicketsSold,
				SalesAmount:   line.SalesAmount,
				IsSoldOut:     line.IsSoldOut,
				CreatedAt:     now,
			}
			if err := uc.days.CreateClosing(ctx, &closing); err != nil {
				return err
			}
			closings = append(closings, closing)
			total = total.Add(line.SalesAmount)
		}

		if err := day.Close(sess.UserID, total, now); err != nil {
			return err
		}
		if err := uc.days.Update(ctx, day); err != nil {
			return err
		}

		uc.enqueueDayClose(ctx, day, closings, depleted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("business day closed",
		slog.String("store_id", sess.StoreID.String()),
		slog.String("day_id", day.ID.String()),
		slog.String("closed_by", sess.UserID.String()),
		slog.String("total_sales", day.TotalSales.String()),
	)
	return day, nil
}

// settlePack applies one prepared line: a sold-out pack is depleted, any other keeps
// selling with its counters settled.
func (uc *dayCloseUseCase) settlePack(
	ctx context.Context,
	storeID uuid.UUID,
	line domain.ClosingLine,
	actor inventoryDomain.Actor,
	now time.Time,
) (*inventoryDomain.Pack, error) {
	pack, err := uc.packs.Get(ctx, storeID, line.PackID)
	if err != nil {
		return nil, err
	}
	if pack.Status != inventoryDomain.PackStatusActive {
		return nil, apperrors.Wrapf(inventoryDomain.ErrPackNotActive, "pack %s", pack.PackNumber)
	}

	if line.IsSoldOut {
		err = pack.Deplete(
			line.ClosingSerial,
			line.TicketsSold,
			line.SalesAmount,
			inventoryDomain.DepletionReasonShiftClose,
			actor,
			now,
		)
	} else {
		err = pack.Settle(line.ClosingSerial, line.TicketsSold, line.SalesAmount, now)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.packs.Update(ctx, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

// enqueueDayClose queues the day_close item first, then one pack item per depleted pack.
func (uc *dayCloseUseCase) enqueueDayClose(
	ctx context.Context,
	day *domain.BusinessDay,
	closings []domain.DayPackClosing,
	depleted []*inventoryDomain.Pack,
) {
	result := uc.outbox.EnqueueBestEffort(ctx, dayCloseRequest(day, closings))
	if result.Err != nil {
		uc.logger.Warn("business day closed without sync item, requeue it once storage recovers",
			slog.String("store_id", day.StoreID.String()),
			slog.String("day_id", day.ID.String()),
		)
	}

	for _, pack := range depleted {
		uc.outbox.EnqueueBestEffort(ctx, packUpdateRequest(pack))
	}
}

func packUpdateRequest(pack *inventoryDomain.Pack) outboxDomain.EnqueueRequest {
	return outboxDomain.EnqueueRequest{
		StoreID:    pack.StoreID,
		EntityType: outboxDomain.EntityTypePack,
		EntityID:   pack.ID,
		Operation:  outboxDomain.OperationUpdate,
		Payload:    inventoryDomain.NewPackSnapshot(pack),
		Priority:   outboxDomain.PriorityNormal,
	}
}

func dayCloseRequest(day *domain.BusinessDay, closings []domain.DayPackClosing) outboxDomain.EnqueueRequest {
	return outboxDomain.EnqueueRequest{
		StoreID:    day.StoreID,
		EntityType: outboxDomain.EntityTypeDayClose,
		EntityID:   day.ID,
		Operation:  outboxDomain.OperationCreate,
		Payload:    domain.NewDayCloseSnapshot(day, closings),
		Priority:   outboxDomain.PriorityNormal,
	}
}

func (uc *dayCloseUseCase) CancelClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	var day *domain.BusinessDay
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		day, err = uc.days.Get(ctx, sess.StoreID, dayID)
		if err != nil {
			return err
		}
		if err := day.Cancel(uc.now()); err != nil {
			return err
		}
		return uc.days.Update(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("business day close cancelled",
		slog.String("store_id", sess.StoreID.String()),
		slog.String("day_id", dayID.String()),
		slog.String("user_id", sess.UserID.String()),
	)
	return day, nil
}

func (uc *dayCloseUseCase) RequeueForSync(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*outboxDomain.OutboxItem, error) {
	var item *outboxDomain.OutboxItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		day, err := uc.days.Get(ctx, sess.StoreID, dayID)
		if err != nil {
			return err
		}
		if day.Status != domain.DayStatusClosed {
			return apperrors.Wrap(domain.ErrInvalidDayState, "only a closed day can be requeued")
		}

		closings, err := uc.days.ListClosings(ctx, sess.StoreID, day.ID)
		if err != nil {
			return err
		}

		live, err := uc.liveItem(ctx, sess.StoreID, outboxDomain.EntityTypeDayClose, day.ID, outboxDomain.OperationCreate)
		if err != nil {
			return err
		}
		if live != nil {
			item = live
		} else {
			item, err = uc.outbox.Enqueue(ctx, dayCloseRequest(day, closings))
			if err != nil {
				return err
			}
		}

		return uc.requeueSoldOutPacks(ctx, sess.StoreID, closings)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("business day close requeued",
		slog.String("store_id", sess.StoreID.String()),
		slog.String("day_id", dayID.String()),
		slog.String("item_id", item.ID.String()),
		slog.Bool("synced", item.Synced),
	)
	return item, nil
}

// requeueSoldOutPacks enqueues the UPDATE of every pack the close depleted that has no
// pending or synced UPDATE. A depleted pack takes no later UPDATE, so any live one is the
// close's own.
func (uc *dayCloseUseCase) requeueSoldOutPacks(
	ctx context.Context,
	storeID uuid.UUID,
	closings []domain.DayPackClosing,
) error {
	for _, closing := range closings {
		if !closing.IsSoldOut {
			continue
		}

		live, err := uc.liveItem(ctx, storeID, outboxDomain.EntityTypePack, closing.PackID, outboxDomain.OperationUpdate)
		if err != nil {
			return err
		}
		if live != nil {
			continue
		}

		pack, err := uc.packs.Get(ctx, storeID, closing.PackID)
		if err != nil {
			return err
		}
		item, err := uc.outbox.Enqueue(ctx, packUpdateRequest(pack))
		if err != nil {
			return err
		}
		uc.logger.Info("depleted pack requeued",
			slog.String("store_id", storeID.String()),
			slog.String("pack_id", pack.ID.String()),
			slog.String("item_id", item.ID.String()),
		)
	}
	return nil
}

// liveItem returns the latest pending or synced item for the entity, or nil when there is
// none or it was dead-lettered.
func (uc *dayCloseUseCase) liveItem(
	ctx context.Context,
	storeID uuid.UUID,
	entityType outboxDomain.EntityType,
	entityID uuid.UUID,
	op outboxDomain.Operation,
) (*outboxDomain.OutboxItem, error) {
	existing, err := uc.outbox.FindLatestForEntity(ctx, storeID, entityType, entityID, op)
	switch {
	case err == nil && !existing.DeadLettered:
		return existing, nil
	case err == nil, apperrors.Is(err, outboxDomain.ErrOutboxItemNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func (uc *dayCloseUseCase) RecordActivation(ctx context.Context, storeID uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		now := uc.now()
		day, err := uc.currentDay(ctx, storeID, now)
		if err != nil {
			return err
		}
		return uc.days.IncrementActivations(ctx, storeID, day.ID, now)
	})
}
