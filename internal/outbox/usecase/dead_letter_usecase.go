package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/outbox/domain"
)

type deadLetterUseCase struct {
	txManager database.TxManager
	repo      OutboxItemRepository
	backoff   domain.BackoffPolicy
	logger    *slog.Logger
	now       func() time.Time
}

// NewDeadLetterUseCase creates the dead-letter manager.
func NewDeadLetterUseCase(
	txManager database.TxManager,
	repo OutboxItemRepository,
	backoff domain.BackoffPolicy,
	logger *slog.Logger,
) DeadLetterUseCase {
	return &deadLetterUseCase{
		txManager: txManager,
		repo:      repo,
		backoff:   backoff,
		logger:    logger,
		now:       utcNow,
	}
}

// RecordFailure applies a failed attempt to item and persists it with one update.
//
// Exhausted attempts win over the category, so a permanent error on the last allowed
// attempt is recorded as MAX_ATTEMPTS_EXCEEDED.
func (uc *deadLetterUseCase) RecordFailure(
	ctx context.Context,
	item *domain.OutboxItem,
	outcome domain.AttemptOutcome,
) error {
	now := uc.now()
	attemptedAt := outcome.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = now
	}
	attemptedAt = attemptedAt.UTC().Truncate(time.Microsecond)

	category := outcome.Category
	if !category.Valid() {
		category = domain.ErrorCategoryUnknown
	}
	lastError := outcome.Error

	item.SyncAttempts++
	item.LastSyncError = &lastError
	item.LastAttemptAt = &attemptedAt
	item.ErrorCategory = &category
	item.HTTPStatus = nil
	if outcome.HTTPStatus > 0 {
		status := outcome.HTTPStatus
		item.HTTPStatus = &status
	}
	item.ResponseBody = nil
	if outcome.ResponseBody != "" {
		body := outcome.ResponseBody
		item.ResponseBody = &body
	}
	item.UpdatedAt = now

	maxAttempts := item.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}

	switch {
	case item.SyncAttempts >= maxAttempts:
		item.DeadLetter(domain.DeadLetterReasonMaxAttemptsExceeded, now)
	case category == domain.ErrorCategoryPermanent:
		item.DeadLetter(domain.DeadLetterReasonPermanentError, now)
	case category == domain.ErrorCategoryStructural:
		item.DeadLetter(domain.DeadLetterReasonStructuralFailure, now)
	default:
		retryAfter := uc.backoff.NextRetryAt(now, item.SyncAttempts).Truncate(time.Microsecond)
		item.RetryAfter = &retryAfter
	}

	if category == domain.ErrorCategoryUnknown {
		uc.logger.Warn("unclassified sync failure",
			slog.String("item_id", item.ID.String()),
			slog.String("store_id", item.StoreID.String()),
			slog.String("entity_type", string(item.EntityType)),
			slog.Int("http_status", outcome.HTTPStatus),
			slog.String("error", outcome.Error),
		)
	}

	if item.DeadLettered {
		uc.logger.Warn("outbox item dead-lettered",
			slog.String("item_id", item.ID.String()),
			slog.String("store_id", item.StoreID.String()),
			slog.String("entity_type", string(item.EntityType)),
			slog.String("error_category", string(category)),
			slog.String("reason", string(*item.DeadLetterReason)),
			slog.Int("attempts", item.SyncAttempts),
		)
	}

	return uc.repo.Update(ctx, item)
}

// Restore puts a dead-lettered item back in the queue with a fresh attempt budget.
// Restoring a live item changes nothing.
func (uc *deadLetterUseCase) Restore(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	item, err := uc.repo.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !item.DeadLettered {
		return item, nil
	}

	item.Restore(uc.now())
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	uc.logger.Info("outbox item restored",
		slog.String("item_id", item.ID.String()),
		slog.String("store_id", item.StoreID.String()),
	)
	return item, nil
}

// RestoreMany restores every listed item atomically and returns how many were dead-lettered.
func (uc *deadLetterUseCase) RestoreMany(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) (int, error) {
	restored := 0
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		restored = 0
		for _, id := range ids {
			item, err := uc.repo.Get(ctx, storeID, id)
			if err != nil {
				return err
			}
			if !item.DeadLettered {
				continue
			}
			item.Restore(uc.now())
			if err := uc.repo.Update(ctx, item); err != nil {
				return err
			}
			restored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// ManualDeadLetter parks an item regardless of its attempt count.
func (uc *deadLetterUseCase) ManualDeadLetter(
	ctx context.Context,
	storeID, id uuid.UUID,
	note string,
) (*domain.OutboxItem, error) {
	item, err := uc.repo.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if item.Synced {
		return nil, domain.ErrItemAlreadySynced
	}
	if item.DeadLettered {
		return item, nil
	}

	item.DeadLetter(domain.DeadLetterReasonManual, uc.now())
	if note != "" {
		item.DeadLetterNote = &note
	}
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a dead-lettered item for good.
func (uc *deadLetterUseCase) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	item, err := uc.repo.Get(ctx, storeID, id)
	if err != nil {
		return err
	}
	if !item.DeadLettered {
		return domain.ErrNotDeadLettered
	}
	return uc.repo.Delete(ctx, storeID, id)
}

func (uc *deadLetterUseCase) Stats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error) {
	return uc.repo.DeadLetterStats(ctx, storeID)
}

func (uc *deadLetterUseCase) List(
	ctx context.Context,
	storeID uuid.UUID,
	filter domain.DeadLetterFilter,
	offset, limit int,
) ([]*domain.OutboxItem, error) {
	return uc.repo.ListDeadLettered(ctx, storeID, filter, offset, limit)
}
