package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/businessday/domain"
	"github.com/allisson/storesync/internal/metrics"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

// dayCloseUseCaseWithMetrics decorates DayCloseUseCase with metrics instrumentation.
type dayCloseUseCaseWithMetrics struct {
	next    DayCloseUseCase
	metrics metrics.BusinessMetrics
}

// NewDayCloseUseCaseWithMetrics wraps a DayCloseUseCase with metrics recording.
func NewDayCloseUseCaseWithMetrics(useCase DayCloseUseCase, m metrics.BusinessMetrics) DayCloseUseCase {
	return &dayCloseUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *dayCloseUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "businessday", operation, status)
	d.metrics.RecordDuration(ctx, "businessday", operation, time.Since(start), status)
}

// CurrentDay records metrics for current day lookups.
func (d *dayCloseUseCaseWithMetrics) CurrentDay(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error) {
	start := time.Now()
	day, err := d.next.CurrentDay(ctx, storeID)
	d.record(ctx, "current_day", start, err)
	return day, err
}

// Get records metrics for business day retrieval.
func (d *dayCloseUseCaseWithMetrics) Get(ctx context.Context, storeID, dayID uuid.UUID) (*domain.BusinessDay, error) {
	start := time.Now()
	day, err := d.next.Get(ctx, storeID, dayID)
	d.record(ctx, "day_get", start, err)
	return day, err
}

// PrepareClose records metrics for close reservations.
func (d *dayCloseUseCaseWithMetrics) PrepareClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
	closings []domain.ClosingInput,
) (*domain.ClosePreview, error) {
	start := time.Now()
	preview, err := d.next.PrepareClose(ctx, sess, dayID, closings)
	d.record(ctx, "prepare_close", start, err)
	return preview, err
}

// CommitClose records metrics for close commits.
func (d *dayCloseUseCaseWithMetrics) CommitClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	start := time.Now()
	day, err := d.next.CommitClose(ctx, sess, dayID)
	d.record(ctx, "commit_close", start, err)
	return day, err
}

// CancelClose records metrics for close cancellations.
func (d *dayCloseUseCaseWithMetrics) CancelClose(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*domain.BusinessDay, error) {
	start := time.Now()
	day, err := d.next.CancelClose(ctx, sess, dayID)
	d.record(ctx, "cancel_close", start, err)
	return day, err
}

// RequeueForSync records metrics for day close requeues.
func (d *dayCloseUseCaseWithMetrics) RequeueForSync(
	ctx context.Context,
	sess session.Session,
	dayID uuid.UUID,
) (*outboxDomain.OutboxItem, error) {
	start := time.Now()
	item, err := d.next.RequeueForSync(ctx, sess, dayID)
	d.record(ctx, "requeue_sync", start, err)
	return item, err
}

// RecordActivation records metrics for activation counting.
func (d *dayCloseUseCaseWithMetrics) RecordActivation(ctx context.Context, storeID uuid.UUID) error {
	start := time.Now()
	err := d.next.RecordActivation(ctx, storeID)
	d.record(ctx, "record_activation", start, err)
	return err
}
