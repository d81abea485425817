package app

import (
	"fmt"

	"golang.org/x/time/rate"

	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	outboxHTTP "github.com/allisson/storesync/internal/outbox/http"
	outboxRepository "github.com/allisson/storesync/internal/outbox/repository"
	"github.com/allisson/storesync/internal/outbox/transport"
	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
)

// Supported SYNC_TRANSPORT values.
const (
	TransportHTTP = "http"
	TransportAMQP = "amqp"
)

// OutboxRepository returns the outbox item repository.
func (c *Container) OutboxRepository() (*outboxRepository.OutboxItemRepository, error) {
	c.outboxRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["outboxRepository"] = fmt.Errorf("failed to get database for outbox repository: %w", err)
			return
		}
		c.outboxRepository = outboxRepository.NewOutboxItemRepository(db, c.Dialect())
	})
	if storedErr, exists := c.initErrors["outboxRepository"]; exists {
		return nil, storedErr
	}
	return c.outboxRepository, nil
}

// OutboxStore returns the durable sync queue.
func (c *Container) OutboxStore() (outboxUseCase.OutboxStore, error) {
	var err error
	c.outboxStoreInit.Do(func() {
		c.outboxStore, err = c.initOutboxStore()
		if err != nil {
			c.initErrors["outboxStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxStore"]; exists {
		return nil, storedErr
	}
	return c.outboxStore, nil
}

// DeadLetterUseCase returns the dead-letter manager, instrumented with business metrics.
func (c *Container) DeadLetterUseCase() (outboxUseCase.DeadLetterUseCase, error) {
	var err error
	c.deadLetterUseCaseInit.Do(func() {
		c.deadLetterUseCase, err = c.initDeadLetterUseCase()
		if err != nil {
			c.initErrors["deadLetterUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deadLetterUseCase"]; exists {
		return nil, storedErr
	}
	return c.deadLetterUseCase, nil
}

// Transport returns the delivery transport selected by SYNC_TRANSPORT.
func (c *Container) Transport() (outboxUseCase.Transport, error) {
	var err error
	c.transportInit.Do(func() {
		c.transport, err = c.initTransport()
		if err != nil {
			c.initErrors["transport"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transport"]; exists {
		return nil, storedErr
	}
	return c.transport, nil
}

// Dispatcher returns the sync dispatcher.
func (c *Container) Dispatcher() (outboxUseCase.DispatcherUseCase, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// SyncHandler returns the HTTP handler of the sync operator API.
func (c *Container) SyncHandler() (*outboxHTTP.SyncHandler, error) {
	store, err := c.OutboxStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox store for sync handler: %w", err)
	}

	deadLetterUseCase, err := c.DeadLetterUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get dead letter use case for sync handler: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for sync handler: %w", err)
	}

	return outboxHTTP.NewSyncHandler(store, deadLetterUseCase, dispatcher, c.Logger()), nil
}

// BackoffPolicy returns the retry policy built from the SYNC_BACKOFF_* settings.
func (c *Container) BackoffPolicy() outboxDomain.BackoffPolicy {
	policy := outboxDomain.DefaultBackoffPolicy()
	if c.config.SyncBackoffBase > 0 {
		policy.Base = c.config.SyncBackoffBase
	}
	if c.config.SyncBackoffMultiplier >= 1 {
		policy.Multiplier = c.config.SyncBackoffMultiplier
	}
	if c.config.SyncBackoffMax > 0 {
		policy.Max = c.config.SyncBackoffMax
	}
	if c.config.SyncBackoffJitter >= 0 && c.config.SyncBackoffJitter < 1 {
		policy.Jitter = c.config.SyncBackoffJitter
	}
	return policy
}

// initOutboxStore creates the outbox store.
func (c *Container) initOutboxStore() (outboxUseCase.OutboxStore, error) {
	repo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox store: %w", err)
	}
	return outboxUseCase.NewOutboxStore(repo, c.config.SyncMaxAttempts, c.Logger()), nil
}

// initDeadLetterUseCase creates the dead-letter manager with its metrics decorator.
func (c *Container) initDeadLetterUseCase() (outboxUseCase.DeadLetterUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for dead letter use case: %w", err)
	}

	repo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for dead letter use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for dead letter use case: %w", err)
	}

	useCase := outboxUseCase.NewDeadLetterUseCase(txManager, repo, c.BackoffPolicy(), c.Logger())
	return outboxUseCase.NewDeadLetterUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initTransport creates the configured transport. The amqp transport dials the broker.
func (c *Container) initTransport() (outboxUseCase.Transport, error) {
	switch c.config.SyncTransport {
	case TransportHTTP, "":
		return transport.NewHTTPTransport(c.config.SyncRemoteBaseURL, c.config.SyncRemoteTimeout), nil
	case TransportAMQP:
		amqpTransport, err := transport.NewAMQPTransport(c.config.SyncAMQPURL, c.config.SyncAMQPExchange, c.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to create amqp transport: %w", err)
		}
		return amqpTransport, nil
	default:
		return nil, fmt.Errorf("unsupported sync transport: %s", c.config.SyncTransport)
	}
}

// initDispatcher creates the dispatcher with its rate limiter.
func (c *Container) initDispatcher() (outboxUseCase.DispatcherUseCase, error) {
	store, err := c.OutboxStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox store for dispatcher: %w", err)
	}

	deadLetterUseCase, err := c.DeadLetterUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get dead letter use case for dispatcher: %w", err)
	}

	syncTransport, err := c.Transport()
	if err != nil {
		return nil, fmt.Errorf("failed to get transport for dispatcher: %w", err)
	}

	syncMetrics, err := c.SyncMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync metrics for dispatcher: %w", err)
	}

	var limiter *rate.Limiter
	if c.config.SyncRateLimitPerSec > 0 {
		burst := c.config.SyncRateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(c.config.SyncRateLimitPerSec), burst)
	}

	dispatcherConfig := outboxUseCase.DispatcherConfig{
		Interval:            c.config.SyncInterval,
		BatchSize:           c.config.SyncBatchSize,
		Workers:             c.config.SyncWorkers,
		QueueSize:           c.config.SyncQueueSize,
		MaintenanceInterval: c.config.SyncMaintenanceInterval,
		Retention:           c.config.SyncRetention,
	}

	return outboxUseCase.NewDispatcher(
		dispatcherConfig,
		store,
		deadLetterUseCase,
		syncTransport,
		limiter,
		syncMetrics,
		c.Logger(),
	), nil
}
