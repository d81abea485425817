package usecase

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/allisson/storesync/internal/metrics"
	"github.com/allisson/storesync/internal/outbox/domain"
)

// DispatcherConfig holds the dispatcher scheduling settings.
type DispatcherConfig struct {
	// Interval between two discovery ticks.
	Interval time.Duration
	// BatchSize caps the items fetched per store per drain.
	BatchSize int
	// Workers is the number of partitions, each drained by one goroutine.
	Workers int
	// QueueSize bounds each partition channel.
	QueueSize int
	// DiscoveryLimit caps the stores scheduled per tick.
	DiscoveryLimit int
	// MaintenanceInterval between two purges of synced items. Zero disables purging.
	MaintenanceInterval time.Duration
	// Retention is how long synced items are kept.
	Retention time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1
	}
	if c.DiscoveryLimit <= 0 {
		c.DiscoveryLimit = 1000
	}
	return c
}

var _ DispatcherUseCase = (*Dispatcher)(nil)

// Dispatcher drains store queues in parallel while keeping each store strictly sequential:
// a store always hashes to the same partition and every partition has a single worker.
type Dispatcher struct {
	config    DispatcherConfig
	store     OutboxStore
	dlq       DeadLetterUseCase
	transport Transport
	limiter   *rate.Limiter
	metrics   metrics.SyncMetrics
	logger    *slog.Logger
	now       func() time.Time

	partitions []chan uuid.UUID
	locks      []sync.Mutex

	pendingMu sync.Mutex
	pending   map[uuid.UUID]struct{}
}

// NewDispatcher creates a Dispatcher. A nil limiter disables throttling.
func NewDispatcher(
	config DispatcherConfig,
	store OutboxStore,
	dlq DeadLetterUseCase,
	transport Transport,
	limiter *rate.Limiter,
	syncMetrics metrics.SyncMetrics,
	logger *slog.Logger,
) *Dispatcher {
	config = config.withDefaults()
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if syncMetrics == nil {
		syncMetrics = metrics.NewNoOpSyncMetrics()
	}

	partitions := make([]chan uuid.UUID, config.Workers)
	for i := range partitions {
		partitions[i] = make(chan uuid.UUID, config.QueueSize)
	}

	return &Dispatcher{
		config:     config,
		store:      store,
		dlq:        dlq,
		transport:  transport,
		limiter:    limiter,
		metrics:    syncMetrics,
		logger:     logger,
		now:        utcNow,
		partitions: partitions,
		locks:      make([]sync.Mutex, config.Workers),
		pending:    make(map[uuid.UUID]struct{}),
	}
}

// Start runs one worker per partition plus the discovery and maintenance tickers.
// The first discovery runs immediately. It returns nil once ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting sync dispatcher",
		slog.Duration("interval", d.config.Interval),
		slog.Int("batch_size", d.config.BatchSize),
		slog.Int("workers", d.config.Workers),
	)

	g, ctx := errgroup.WithContext(ctx)

	for i := range d.partitions {
		g.Go(func() error {
			d.runWorker(ctx, i)
			return nil
		})
	}

	g.Go(func() error {
		d.runScheduler(ctx)
		return nil
	})

	if d.config.MaintenanceInterval > 0 && d.config.Retention > 0 {
		g.Go(func() error {
			d.runMaintenance(ctx)
			return nil
		})
	}

	err := g.Wait()
	d.logger.Info("stopping sync dispatcher")
	return err
}

// Trigger schedules a drain of storeID. Triggering a store that is already queued is a no-op
// that reports true.
func (d *Dispatcher) Trigger(storeID uuid.UUID) bool {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	if _, ok := d.pending[storeID]; ok {
		return true
	}

	select {
	case d.partitions[d.partitionFor(storeID)] <- storeID:
		d.pending[storeID] = struct{}{}
		return true
	default:
		return false
	}
}

// DispatchStore drains up to BatchSize eligible items of the store, in queue order.
//
// Cancellation is observed between items only: an in-flight send and its bookkeeping
// always complete, so an item is never left half-recorded.
func (d *Dispatcher) DispatchStore(ctx context.Context, storeID uuid.UUID) (*DispatchReport, error) {
	lock := &d.locks[d.partitionFor(storeID)]
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	report := &DispatchReport{StoreID: storeID}

	if ctx.Err() != nil {
		report.Aborted = true
		return report, nil
	}

	items, err := d.store.ListRetryable(ctx, storeID, d.config.BatchSize)
	if err != nil {
		return nil, err
	}
	report.Fetched = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			report.Aborted = true
			break
		}
		if err := d.limiter.Wait(ctx); err != nil {
			report.Aborted = true
			break
		}
		if err := d.dispatchItem(context.WithoutCancel(ctx), item, report); err != nil {
			d.metrics.RecordDispatch(ctx, time.Since(start), report.Fetched)
			return report, err
		}
	}

	d.metrics.RecordDispatch(ctx, time.Since(start), report.Fetched)

	if report.Fetched > 0 {
		d.logger.Info("store queue drained",
			slog.String("store_id", storeID.String()),
			slog.Int("fetched", report.Fetched),
			slog.Int("synced", report.Synced),
			slog.Int("retrying", report.Retrying),
			slog.Int("dead_lettered", report.DeadLettered),
			slog.Bool("aborted", report.Aborted),
		)
	}
	return report, nil
}

func (d *Dispatcher) dispatchItem(ctx context.Context, item *domain.OutboxItem, report *DispatchReport) error {
	outcome, ok := domain.ValidatePayload(item, d.now())

	var result *domain.SendResult
	if ok {
		var sendErr error
		result, sendErr = d.transport.Send(ctx, item)
		outcome, ok = domain.Classify(result, sendErr, d.now())
	}

	if ok {
		if err := d.store.MarkSynced(ctx, item, result); err != nil {
			return err
		}
		report.Synced++
		d.metrics.RecordOutcome(ctx, string(item.EntityType), "synced", "")
		return nil
	}

	d.logger.Warn("sync attempt failed",
		slog.String("item_id", item.ID.String()),
		slog.String("store_id", item.StoreID.String()),
		slog.String("entity_type", string(item.EntityType)),
		slog.String("error_category", string(outcome.Category)),
		slog.String("error", outcome.Error),
	)

	if err := d.dlq.RecordFailure(ctx, item, outcome); err != nil {
		return err
	}

	if item.DeadLettered {
		report.DeadLettered++
		d.metrics.RecordOutcome(ctx, string(item.EntityType), "dead_lettered", string(outcome.Category))
		return nil
	}
	report.Retrying++
	d.metrics.RecordOutcome(ctx, string(item.EntityType), "retrying", string(outcome.Category))
	return nil
}

func (d *Dispatcher) runWorker(ctx context.Context, partition int) {
	ch := d.partitions[partition]
	for {
		select {
		case <-ctx.Done():
			return
		case storeID := <-ch:
			d.pendingMu.Lock()
			delete(d.pending, storeID)
			d.pendingMu.Unlock()

			if _, err := d.DispatchStore(ctx, storeID); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("failed to dispatch store queue",
					slog.String("store_id", storeID.String()),
					slog.Any("error", err),
				)
			}
		}
	}
}

func (d *Dispatcher) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		d.schedule(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) schedule(ctx context.Context) {
	storeIDs, err := d.store.ListStoresWithRetryable(ctx, d.config.DiscoveryLimit)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error("failed to list stores with pending items", slog.Any("error", err))
		}
		return
	}

	for _, storeID := range storeIDs {
		if !d.Trigger(storeID) {
			d.logger.Warn("sync partition queue full", slog.String("store_id", storeID.String()))
		}
	}
}

func (d *Dispatcher) runMaintenance(ctx context.Context) {
	ticker := time.NewTicker(d.config.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := d.store.PurgeSynced(ctx, d.config.Retention)
			if err != nil {
				if ctx.Err() == nil {
					d.logger.Error("failed to purge synced outbox items", slog.Any("error", err))
				}
				continue
			}
			if purged > 0 {
				d.logger.Info("purged synced outbox items", slog.Int64("count", purged))
			}
		}
	}
}

func (d *Dispatcher) partitionFor(storeID uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write(storeID[:])
	return int(h.Sum32() % uint32(len(d.partitions)))
}
