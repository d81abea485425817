package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	apperrors "github.com/allisson/storesync/internal/errors"
	"github.com/allisson/storesync/internal/outbox/domain"
)

const enqueueSavepoint = "outbox_enqueue"

// utcNow returns the current time in UTC at the precision every supported database keeps.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type outboxStore struct {
	repo        OutboxItemRepository
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time
}

// NewOutboxStore creates the durable outbox queue. A non-positive maxAttempts falls back to
// domain.DefaultMaxAttempts.
func NewOutboxStore(repo OutboxItemRepository, maxAttempts int, logger *slog.Logger) OutboxStore {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	return &outboxStore{
		repo:        repo,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         utcNow,
	}
}

// Enqueue snapshots the request payload and inserts a PENDING item.
func (s *outboxStore) Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.OutboxItem, error) {
	if req.StoreID == uuid.Nil || req.EntityID == uuid.Nil || !req.EntityType.Valid() || !req.Operation.Valid() {
		return nil, domain.ErrInvalidEnqueueRequest
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidEnqueueRequest, err.Error())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate outbox item id: %w", err)
	}

	now := s.now()
	item := &domain.OutboxItem{
		ID:            id,
		StoreID:       req.StoreID,
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Operation:     req.Operation,
		Payload:       payload,
		Priority:      req.Priority,
		SyncDirection: domain.SyncDirectionPush,
		MaxAttempts:   s.maxAttempts,
		APIEndpoint:   domain.APIEndpoint(req.EntityType, req.Operation),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert outbox item: %w", err)
	}
	return item, nil
}

func (s *outboxStore) EnqueueBestEffort(ctx context.Context, req domain.EnqueueRequest) domain.EnqueueResult {
	var item *domain.OutboxItem
	err := database.WithSavepoint(ctx, enqueueSavepoint, func(ctx context.Context) error {
		var err error
		item, err = s.Enqueue(ctx, req)
		return err
	})
	if err != nil {
		s.logger.Error("failed to enqueue outbox item",
			slog.String("store_id", req.StoreID.String()),
			slog.String("entity_type", string(req.EntityType)),
			slog.String("entity_id", req.EntityID.String()),
			slog.String("operation", string(req.Operation)),
			slog.Any("error", err),
		)
		return domain.EnqueueResult{Err: err}
	}
	return domain.EnqueueResult{Item: item}
}

func (s *outboxStore) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	return s.repo.Get(ctx, storeID, id)
}

func (s *outboxStore) FindLatestForEntity(
	ctx context.Context,
	storeID uuid.UUID,
	entityType domain.EntityType,
	entityID uuid.UUID,
	op domain.Operation,
) (*domain.OutboxItem, error) {
	return s.repo.FindLatestForEntity(ctx, storeID, entityType, entityID, op)
}

func (s *outboxStore) ListRetryable(ctx context.Context, storeID uuid.UUID, limit int) ([]*domain.OutboxItem, error) {
	return s.repo.ListRetryable(ctx, storeID, s.now(), limit)
}

// MarkSynced records a successful delivery with a single update.
func (s *outboxStore) MarkSynced(ctx context.Context, item *domain.OutboxItem, result *domain.SendResult) error {
	if item.DeadLettered {
		return apperrors.Wrap(apperrors.ErrInvariantViolation, "dead-lettered item cannot be marked synced")
	}
	item.MarkSynced(result, s.now())
	return s.repo.Update(ctx, item)
}

func (s *outboxStore) CountByStatus(ctx context.Context, storeID uuid.UUID) (*domain.StatusCounts, error) {
	return s.repo.CountByStatus(ctx, storeID, s.now())
}

func (s *outboxStore) ListStoresWithRetryable(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return s.repo.ListStoresWithRetryable(ctx, s.now(), limit)
}

func (s *outboxStore) PurgeSynced(ctx context.Context, retention time.Duration) (int64, error) {
	olderThan := s.now().Add(-retention)

	storeIDs, err := s.repo.ListStoresWithSynced(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, storeID := range storeIDs {
		purged, err := s.repo.PurgeSynced(ctx, storeID, olderThan)
		if err != nil {
			return total, fmt.Errorf("failed to purge store %s: %w", storeID, err)
		}
		total += purged
	}
	return total, nil
}
