// Package repository provides data persistence implementations for outbox entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/outbox/domain"
)

const outboxItemColumns = `id, store_id, entity_type, entity_id, operation, payload, priority, sync_direction,
	synced, synced_at, sync_attempts, max_attempts, last_sync_error, last_attempt_at, error_category,
	retry_after, dead_lettered, dead_letter_reason, dead_lettered_at, dead_letter_note, api_endpoint,
	http_status, response_body, created_at, updated_at`

// OutboxItemRepository persists outbox items on sqlite, PostgreSQL or MySQL.
// Every statement is scoped by store_id except the cross-store discovery used by the
// dispatcher to find stores with work.
type OutboxItemRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewOutboxItemRepository creates a new OutboxItemRepository
func NewOutboxItemRepository(db *sql.DB, dialect database.Dialect) *OutboxItemRepository {
	return &OutboxItemRepository{
		db:      db,
		dialect: dialect,
	}
}

// Create inserts a new outbox item inside the transaction carried by ctx, if any.
func (r *OutboxItemRepository) Create(ctx context.Context, item *domain.OutboxItem) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO outbox_items (` + outboxItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		item.ID, item.StoreID, item.EntityType, item.EntityID, item.Operation, string(item.Payload),
		item.Priority, item.SyncDirection, item.Synced, item.SyncedAt, item.SyncAttempts, item.MaxAttempts,
		item.LastSyncError, item.LastAttemptAt, item.ErrorCategory, item.RetryAfter, item.DeadLettered,
		item.DeadLetterReason, item.DeadLetteredAt, item.DeadLetterNote, item.APIEndpoint, item.HTTPStatus,
		item.ResponseBody, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

// Update writes every mutable column of item in a single statement.
func (r *OutboxItemRepository) Update(ctx context.Context, item *domain.OutboxItem) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE outbox_items SET
		synced = ?, synced_at = ?, sync_attempts = ?, last_sync_error = ?, last_attempt_at = ?,
		error_category = ?, retry_after = ?, dead_lettered = ?, dead_letter_reason = ?,
		dead_lettered_at = ?, dead_letter_note = ?, http_status = ?, response_body = ?, updated_at = ?
		WHERE store_id = ? AND id = ?`)

	result, err := querier.ExecContext(ctx, query,
		item.Synced, item.SyncedAt, item.SyncAttempts, item.LastSyncError, item.LastAttemptAt,
		item.ErrorCategory, item.RetryAfter, item.DeadLettered, item.DeadLetterReason,
		item.DeadLetteredAt, item.DeadLetterNote, item.HTTPStatus, item.ResponseBody, item.UpdatedAt,
		item.StoreID, item.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Get returns one item of the store.
func (r *OutboxItemRepository) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.OutboxItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + outboxItemColumns + ` FROM outbox_items WHERE store_id = ? AND id = ?`)

	item, err := scanOutboxItem(querier.QueryRowContext(ctx, query, storeID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOutboxItemNotFound
	}
	return item, err
}

// ListRetryable returns the store's eligible items in dispatch order: priority first,
// then insertion order. UUIDv7 ids break created_at ties.
func (r *OutboxItemRepository) ListRetryable(
	ctx context.Context,
	storeID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.OutboxItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + outboxItemColumns + ` FROM outbox_items
		WHERE store_id = ? AND synced = ? AND dead_lettered = ? AND (retry_after IS NULL OR retry_after <= ?)
		ORDER BY priority DESC, created_at ASC, id ASC
		LIMIT ?`)

	return r.queryItems(ctx, querier, query, storeID, false, false, now, limit)
}

// ListDeadLettered returns the store's dead-lettered items, newest first.
func (r *OutboxItemRepository) ListDeadLettered(
	ctx context.Context,
	storeID uuid.UUID,
	filter domain.DeadLetterFilter,
	offset, limit int,
) ([]*domain.OutboxItem, error) {
	querier := database.GetTx(ctx, r.db)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + outboxItemColumns + ` FROM outbox_items WHERE store_id = ? AND dead_lettered = ?`)
	args := []any{storeID, true}

	if filter.EntityType != nil {
		sb.WriteString(` AND entity_type = ?`)
		args = append(args, *filter.EntityType)
	}
	if filter.Reason != nil {
		sb.WriteString(` AND dead_letter_reason = ?`)
		args = append(args, *filter.Reason)
	}
	if filter.ErrorCategory != nil {
		sb.WriteString(` AND error_category = ?`)
		args = append(args, *filter.ErrorCategory)
	}
	sb.WriteString(` ORDER BY dead_lettered_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	return r.queryItems(ctx, querier, r.dialect.Rebind(sb.String()), args...)
}

// FindLatestForEntity returns the most recent item for an entity operation, or
// ErrOutboxItemNotFound.
func (r *OutboxItemRepository) FindLatestForEntity(
	ctx context.Context,
	storeID uuid.UUID,
	entityType domain.EntityType,
	entityID uuid.UUID,
	op domain.Operation,
) (*domain.OutboxItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + outboxItemColumns + ` FROM outbox_items
		WHERE store_id = ? AND entity_type = ? AND entity_id = ? AND operation = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	item, err := scanOutboxItem(querier.QueryRowContext(ctx, query, storeID, entityType, entityID, op))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOutboxItemNotFound
	}
	return item, err
}

// CountByStatus summarizes the store's queue at now.
func (r *OutboxItemRepository) CountByStatus(
	ctx context.Context,
	storeID uuid.UUID,
	now time.Time,
) (*domain.StatusCounts, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT
		COALESCE(SUM(CASE WHEN synced = ? AND dead_lettered = ? AND (retry_after IS NULL OR retry_after <= ?) THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN synced = ? AND dead_lettered = ? AND retry_after > ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN synced = ? AND dead_lettered = ? AND sync_attempts > 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN dead_lettered = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN synced = ? THEN 1 ELSE 0 END), 0)
		FROM outbox_items WHERE store_id = ?`)

	var counts domain.StatusCounts
	err := querier.QueryRowContext(ctx, query,
		false, false, now,
		false, false, now,
		false, false,
		true,
		true,
		storeID,
	).Scan(&counts.Pending, &counts.RetryWaiting, &counts.Failed, &counts.DeadLettered, &counts.Synced)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// DeadLetterStats aggregates the store's dead-letter queue.
func (r *OutboxItemRepository) DeadLetterStats(ctx context.Context, storeID uuid.UUID) (*domain.DeadLetterStats, error) {
	querier := database.GetTx(ctx, r.db)

	stats := &domain.DeadLetterStats{
		ByReason:        map[domain.DeadLetterReason]int64{},
		ByEntityType:    map[domain.EntityType]int64{},
		ByErrorCategory: map[domain.ErrorCategory]int64{},
	}

	query := r.dialect.Rebind(`SELECT dead_letter_reason, entity_type, error_category, COUNT(*),
		MIN(dead_lettered_at), MAX(dead_lettered_at)
		FROM outbox_items WHERE store_id = ? AND dead_lettered = ?
		GROUP BY dead_letter_reason, entity_type, error_category`)

	rows, err := querier.QueryContext(ctx, query, storeID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			reason, category   sql.NullString
			entityType         string
			count              int64
			oldestAt, newestAt nullTime
		)
		if err := rows.Scan(&reason, &entityType, &category, &count, &oldestAt, &newestAt); err != nil {
			return nil, err
		}

		stats.Total += count
		if reason.Valid {
			stats.ByReason[domain.DeadLetterReason(reason.String)] += count
		}
		stats.ByEntityType[domain.EntityType(entityType)] += count
		if category.Valid {
			stats.ByErrorCategory[domain.ErrorCategory(category.String)] += count
		}
		if oldestAt.Valid && (stats.OldestAt == nil || oldestAt.Time.Before(*stats.OldestAt)) {
			t := oldestAt.Time
			stats.OldestAt = &t
		}
		if newestAt.Valid && (stats.NewestAt == nil || newestAt.Time.After(*stats.NewestAt)) {
			t := newestAt.Time
			stats.NewestAt = &t
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Delete removes one item of the store.
func (r *OutboxItemRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`DELETE FROM outbox_items WHERE store_id = ? AND id = ?`)

	result, err := querier.ExecContext(ctx, query, storeID, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListStoresWithRetryable returns stores owning at least one eligible item at now.
func (r *OutboxItemRepository) ListStoresWithRetryable(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT DISTINCT store_id FROM outbox_items
		WHERE synced = ? AND dead_lettered = ? AND (retry_after IS NULL OR retry_after <= ?)
		ORDER BY store_id
		LIMIT ?`)

	return r.queryStoreIDs(ctx, querier, query, false, false, now, limit)
}

// ListStoresWithSynced returns stores owning synced items delivered before olderThan.
func (r *OutboxItemRepository) ListStoresWithSynced(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT DISTINCT store_id FROM outbox_items
		WHERE synced = ? AND synced_at < ?
		ORDER BY store_id`)

	return r.queryStoreIDs(ctx, querier, query, true, olderThan)
}

// PurgeSynced deletes the store's synced items delivered before olderThan.
func (r *OutboxItemRepository) PurgeSynced(ctx context.Context, storeID uuid.UUID, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`DELETE FROM outbox_items WHERE store_id = ? AND synced = ? AND synced_at < ?`)

	result, err := querier.ExecContext(ctx, query, storeID, true, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *OutboxItemRepository) queryItems(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.OutboxItem, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*domain.OutboxItem, 0)
	for rows.Next() {
		item, err := scanOutboxItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OutboxItemRepository) queryStoreIDs(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]uuid.UUID, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutboxItem(row rowScanner) (*domain.OutboxItem, error) {
	var (
		item             domain.OutboxItem
		payload          []byte
		errorCategory    sql.NullString
		deadLetterReason sql.NullString
		httpStatus       sql.NullInt64
	)

	err := row.Scan(
		&item.ID, &item.StoreID, &item.EntityType, &item.EntityID, &item.Operation, &payload,
		&item.Priority, &item.SyncDirection, &item.Synced, &item.SyncedAt, &item.SyncAttempts,
		&item.MaxAttempts, &item.LastSyncError, &item.LastAttemptAt, &errorCategory, &item.RetryAfter,
		&item.DeadLettered, &deadLetterReason, &item.DeadLetteredAt, &item.DeadLetterNote,
		&item.APIEndpoint, &httpStatus, &item.ResponseBody, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Payload = payload
	if errorCategory.Valid {
		c := domain.ErrorCategory(errorCategory.String)
		item.ErrorCategory = &c
	}
	if deadLetterReason.Valid {
		reason := domain.DeadLetterReason(deadLetterReason.String)
		item.DeadLetterReason = &reason
	}
	if httpStatus.Valid {
		code := int(httpStatus.Int64)
		item.HTTPStatus = &code
	}

	return &item, nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrOutboxItemNotFound
	}
	return nil
}
