package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/metrics"
	"github.com/allisson/storesync/internal/outbox/domain"
)

// deadLetterUseCaseWithMetrics decorates DeadLetterUseCase with metrics instrumentation.
type deadLetterUseCaseWithMetrics struct {
	next    DeadLetterUseCase
	metrics metrics.BusinessMetrics
}

// NewDeadLetterUseCaseWithMetrics wraps a DeadLetterUseCase with metrics recording.
func NewDeadLetterUseCaseWithMetrics(useCase DeadLetterUseCase, m metrics.BusinessMetrics) DeadLetterUseCase {
	return &deadLetterUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *deadLetterUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "outbox", operation, status)
	d.metrics.RecordDuration(ctx, "outbox", operation, time.Since(start), status)
}

// RecordFailure records metrics for failure bookkeeping.
func (d *deadLetterUseCaseWithMetrics) RecordFailure(
	ctx context.Context,
	item *domain.OutboxItem,
	outcome domain.AttemptOutcome,
) error {
	start := time.Now()
	err := d.next.RecordFailure(ctx, item, outcome)
	d.record(ctx, "record_failure", start, err)
	return err
}

// Restore records metrics for single item restores.
func (d *deadLetterUseCaseWithMetrics) Restore(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	start := time.Now()
	item, err := d.next.Restore(ctx, storeID, id)
	d.record(ctx, "dlq_restore", start, err)
	return item, err
}

// RestoreMany records metrics for bulk restores.
func (d *deadLetterUseCaseWithMetrics) RestoreMany(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) (int, error) {
	start := time.Now()
	count, err := d.next.RestoreMany(ctx, storeID, ids)
	d.record(ctx, "dlq_restore_many", start, err)
	return count, err
}

// ManualDeadLetter records metrics for operator dead-letters.
func (d *deadLetterUseCaseWithMetrics) ManualDeadLetter(
	ctx context.Context,
	storeID, id uuid.UUID,
	note string,
) (*domain.OutboxItem, error) {
	start := time.Now()
	item, err := d.next.ManualDeadLetter(ctx, storeID, id, note)
	d.record(ctx, "dlq_manual", start, err)
	return item, err
}

// Delete records metrics for dead-letter deletions.
func (d *deadLetterUseCaseWithMetrics) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, storeID, id)
	d.record(ctx, "dlq_delete", start, err)
	return err
}

// Stats records metrics for dead-letter statistics.
func (d *deadLetterUseCaseWithMetrics) Stats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error) {
	start := time.Now()
	stats, err := d.next.Stats(ctx, storeID)
	d.record(ctx, "dlq_stats", start, err)
	return stats, err
}

// List records metrics for dead-letter listings.
func (d *deadLetterUseCaseWithMetrics) List(
	ctx context.Context,
	storeID uuid.UUID,
	filter domain.DeadLetterFilter,
	offset, limit int,
) ([]*domain.OutboxItem, error) {
	start := time.Now()
	items, err := d.next.List(ctx, storeID, filter, offset, limit)
	d.record(ctx, "dlq_list", start, err)
	return items, err
}
