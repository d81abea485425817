// Package repository persists business days and their pack closing records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/businessday/domain"
	"github.com/allisson/storesync/internal/database"
)

const dayColumns = `id, store_id, business_date, status, pending_close_payload, pending_close_expires_at,
	total_packs_activated, total_sales, opened_at, closed_at, closed_by, updated_at`

const closingColumns = `id, day_id, store_id, pack_id, opening_serial, closing_serial, tickets_sold,
	sales_amount, is_sold_out, created_at`

// BusinessDayRepository persists business days on sqlite, PostgreSQL or MySQL.
type BusinessDayRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewBusinessDayRepository creates a new BusinessDayRepository
func NewBusinessDayRepository(db *sql.DB, dialect database.Dialect) *BusinessDayRepository {
	return &BusinessDayRepository{db: db, dialect: dialect}
}

// Create inserts a new business day.
func (r *BusinessDayRepository) Create(ctx context.Context, day *domain.BusinessDay) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO business_days (` + dayColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		day.ID, day.StoreID, day.BusinessDate, day.Status, nullablePayload(day.PendingClosePayload),
		day.PendingCloseExpiresAt, day.TotalPacksActivated, day.TotalSales, day.OpenedAt,
		day.ClosedAt, day.ClosedBy, day.UpdatedAt,
	)
	return err
}

// Get returns one business day of the store.
func (r *BusinessDayRepository) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.BusinessDay, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + dayColumns + ` FROM business_days WHERE store_id = ? AND id = ?`)

	return scanDayOrNotFound(querier.QueryRowContext(ctx, query, storeID, id))
}

// GetByDate returns the store's day for businessDate.
func (r *BusinessDayRepository) GetByDate(
	ctx context.Context,
	storeID uuid.UUID,
	businessDate time.Time,
) (*domain.BusinessDay, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + dayColumns + ` FROM business_days
		WHERE store_id = ? AND business_date = ?`)

	return scanDayOrNotFound(querier.QueryRowContext(ctx, query, storeID, businessDate))
}

// GetCurrent returns the store's most recent day that is not CLOSED.
func (r *BusinessDayRepository) GetCurrent(ctx context.Context, storeID uuid.UUID) (*domain.BusinessDay, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + dayColumns + ` FROM business_days
		WHERE store_id = ? AND status <> ?
		ORDER BY business_date DESC
		LIMIT 1`)

	return scanDayOrNotFound(querier.QueryRowContext(ctx, query, storeID, domain.DayStatusClosed))
}

// Update writes every mutable column of day.
func (r *BusinessDayRepository) Update(ctx context.Context, day *domain.BusinessDay) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE business_days SET
		status = ?, pending_close_payload = ?, pending_close_expires_at = ?, total_packs_activated = ?,
		total_sales = ?, closed_at = ?, closed_by = ?, updated_at = ?
		WHERE store_id = ? AND id = ?`)

	result, err := querier.ExecContext(ctx, query,
		day.Status, nullablePayload(day.PendingClosePayload), day.PendingCloseExpiresAt,
		day.TotalPacksActivated, day.TotalSales, day.ClosedAt, day.ClosedBy, day.UpdatedAt,
		day.StoreID, day.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// IncrementActivations adds one to the day's activation counter.
func (r *BusinessDayRepository) IncrementActivations(ctx context.Context, storeID, id uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE business_days
		SET total_packs_activated = total_packs_activated + 1, updated_at = ?
		WHERE store_id = ? AND id = ?`)

	result, err := querier.ExecContext(ctx, query, now, storeID, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// CreateClosing inserts the closing record of one pack.
func (r *BusinessDayRepository) CreateClosing(ctx context.Context, closing *domain.DayPackClosing) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO day_pack_closings (` + closingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		closing.ID, closing.DayID, closing.StoreID, closing.PackID, closing.OpeningSerial,
		closing.ClosingSerial, closing.TicketsSold, closing.SalesAmount, closing.IsSoldOut,
		closing.CreatedAt,
	)
	return err
}

// ListClosings returns the closing records of a day in insertion order.
func (r *BusinessDayRepository) ListClosings(
	ctx context.Context,
	storeID, dayID uuid.UUID,
) ([]domain.DayPackClosing, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + closingColumns + ` FROM day_pack_closings
		WHERE store_id = ? AND day_id = ?
		ORDER BY created_at ASC, id ASC`)

	rows, err := querier.QueryContext(ctx, query, storeID, dayID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	closings := make([]domain.DayPackClosing, 0)
	for rows.Next() {
		var c domain.DayPackClosing
		if err := rows.Scan(
			&c.ID, &c.DayID, &c.StoreID, &c.PackID, &c.OpeningSerial, &c.ClosingSerial,
			&c.TicketsSold, &c.SalesAmount, &c.IsSoldOut, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		closings = append(closings, c)
	}
	return closings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDayOrNotFound(row rowScanner) (*domain.BusinessDay, error) {
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDayNotFound
	}
	return day, err
}

func scanDay(row rowScanner) (*domain.BusinessDay, error) {
	var (
		day       domain.BusinessDay
		payload   []byte
		expiresAt sql.NullTime
		closedAt  sql.NullTime
		closedBy  uuid.NullUUID
	)

	err := row.Scan(
		&day.ID, &day.StoreID, &day.BusinessDate, &day.Status, &payload, &expiresAt,
		&day.TotalPacksActivated, &day.TotalSales, &day.OpenedAt, &closedAt, &closedBy, &day.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	day.BusinessDate = domain.DateOf(day.BusinessDate)
	day.OpenedAt = day.OpenedAt.UTC()
	day.UpdatedAt = day.UpdatedAt.UTC()
	if len(payload) > 0 {
		day.PendingClosePayload = payload
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		day.PendingCloseExpiresAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		day.ClosedAt = &t
	}
	if closedBy.Valid {
		day.ClosedBy = &closedBy.UUID
	}
	return &day, nil
}

func nullablePayload(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDayNotFound
	}
	return nil
}
