package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics records what the outbox dispatcher does with each item and each drain.
type SyncMetrics interface {
	// RecordOutcome counts one delivery attempt.
	// Outcome is one of "synced", "retrying", "dead_lettered"; category is empty on success.
	RecordOutcome(ctx context.Context, entityType, outcome, category string)

	// RecordDispatch records the duration of one store drain and how many items it fetched.
	RecordDispatch(ctx context.Context, duration time.Duration, fetched int)
}

type syncMetrics struct {
	outcomeCounter metric.Int64Counter
	fetchedCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
}

// NewSyncMetrics creates a SyncMetrics implementation backed by OpenTelemetry instruments.
func NewSyncMetrics(meterProvider metric.MeterProvider, namespace string) (SyncMetrics, error) {
	meter := meterProvider.Meter(namespace)

	outcomeCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_sync_outcomes_total", namespace),
		metric.WithDescription("Total number of outbox delivery attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync outcome counter: %w", err)
	}

	fetchedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_sync_fetched_items_total", namespace),
		metric.WithDescription("Total number of outbox items fetched by the dispatcher"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync fetched counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_sync_dispatch_duration_seconds", namespace),
		metric.WithDescription("Duration of one store drain in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync duration histogram: %w", err)
	}

	return &syncMetrics{
		outcomeCounter: outcomeCounter,
		fetchedCounter: fetchedCounter,
		durationHisto:  durationHisto,
	}, nil
}

func (s *syncMetrics) RecordOutcome(ctx context.Context, entityType, outcome, category string) {
	s.outcomeCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity_type", entityType),
			attribute.String("outcome", outcome),
			attribute.String("error_category", category),
		),
	)
}

func (s *syncMetrics) RecordDispatch(ctx context.Context, duration time.Duration, fetched int) {
	s.durationHisto.Record(ctx, duration.Seconds())
	s.fetchedCounter.Add(ctx, int64(fetched))
}

// NoOpSyncMetrics discards everything.
type NoOpSyncMetrics struct{}

// NewNoOpSyncMetrics creates a no-op SyncMetrics implementation.
func NewNoOpSyncMetrics() SyncMetrics {
	return &NoOpSyncMetrics{}
}

func (n *NoOpSyncMetrics) RecordOutcome(ctx context.Context, entityType, outcome, category string) {}

func (n *NoOpSyncMetrics) RecordDispatch(ctx context.Context, duration time.Duration, fetched int) {}
