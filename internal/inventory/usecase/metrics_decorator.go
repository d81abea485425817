package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/inventory/domain"
	"github.com/allisson/storesync/internal/metrics"
	"github.com/allisson/storesync/internal/session"
)

// packUseCaseWithMetrics decorates PackUseCase with metrics instrumentation.
type packUseCaseWithMetrics struct {
	next    PackUseCase
	metrics metrics.BusinessMetrics
}

// NewPackUseCaseWithMetrics wraps a PackUseCase with metrics recording.
func NewPackUseCaseWithMetrics(useCase PackUseCase, m metrics.BusinessMetrics) PackUseCase {
	return &packUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *packUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "inventory", operation, status)
	p.metrics.RecordDuration(ctx, "inventory", operation, time.Since(start), status)
}

// ReceivePack records metrics for pack intake.
func (p *packUseCaseWithMetrics) ReceivePack(
	ctx context.Context,
	sess session.Session,
	input domain.ReceivePackInput,
) (*domain.Pack, error) {
	start := time.Now()
	pack, err := p.next.ReceivePack(ctx, sess, input)
	p.record(ctx, "pack_receive", start, err)
	return pack, err
}

// ActivatePack records metrics for activations, counting auto-depletions separately.
func (p *packUseCaseWithMetrics) ActivatePack(
	ctx context.Context,
	sess session.Session,
	input domain.ActivatePackInput,
) (*domain.ActivationResult, error) {
	start := time.Now()
	result, err := p.next.ActivatePack(ctx, sess, input)
	p.record(ctx, "pack_activate", start, err)

	if err == nil && result.AutoDepleted != nil {
		p.metrics.RecordOperation(ctx, "inventory", "pack_auto_deplete", "success")
	}
	return result, err
}

// DepletePack records metrics for manual sold-out depletions.
func (p *packUseCaseWithMetrics) DepletePack(
	ctx context.Context,
	sess session.Session,
	packID uuid.UUID,
) (*domain.Pack, error) {
	start := time.Now()
	pack, err := p.next.DepletePack(ctx, sess, packID)
	p.record(ctx, "pack_deplete", start, err)
	return pack, err
}

// ReturnPack records metrics for returns.
func (p *packUseCaseWithMetrics) ReturnPack(
	ctx context.Context,
	sess session.Session,
	input domain.ReturnPackInput,
) (*domain.Pack, error) {
	start := time.Now()
	pack, err := p.next.ReturnPack(ctx, sess, input)
	p.record(ctx, "pack_return", start, err)
	return pack, err
}

// GetPack records metrics for pack lookups.
func (p *packUseCaseWithMetrics) GetPack(ctx context.Context, storeID, packID uuid.UUID) (*domain.Pack, error) {
	start := time.Now()
	pack, err := p.next.GetPack(ctx, storeID, packID)
	p.record(ctx, "pack_get", start, err)
	return pack, err
}
