// Package repository persists games and packs.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/inventory/domain"
)

const packColumns = `id, store_id, game_id, pack_number, status, current_bin_id, opening_serial, closing_serial,
	tickets_sold_count, sales_amount, depletion_reason, activated_at, activated_by, activated_shift_id,
	depleted_at, depleted_by, depleted_shift_id, returned_at, created_at, updated_at`

// PackRepository persists packs on sqlite, PostgreSQL or MySQL.
type PackRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewPackRepository creates a new PackRepository
func NewPackRepository(db *sql.DB, dialect database.Dialect) *PackRepository {
	return &PackRepository{db: db, dialect: dialect}
}

// Create inserts a new pack.
func (r *PackRepository) Create(ctx context.Context, pack *domain.Pack) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO packs (` + packColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		pack.ID, pack.StoreID, pack.GameID, pack.PackNumber, pack.Status, pack.CurrentBinID,
		pack.OpeningSerial, pack.ClosingSerial, pack.TicketsSoldCount, pack.SalesAmount,
		pack.DepletionReason, pack.ActivatedAt, pack.ActivatedBy, pack.ActivatedShiftID,
		pack.DepletedAt, pack.DepletedBy, pack.DepletedShiftID, pack.ReturnedAt,
		pack.CreatedAt, pack.UpdatedAt,
	)
	return err
}

// Get returns one pack of the store.
func (r *PackRepository) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.Pack, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + packColumns + ` FROM packs WHERE store_id = ? AND id = ?`)

	pack, err := scanPack(querier.QueryRowContext(ctx, query, storeID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPackNotFound
	}
	return pack, err
}

// GetByNumber returns the pack registered under packNumber for a game.
func (r *PackRepository) GetByNumber(ctx context.Context, storeID, gameID uuid.UUID, packNumber string) (*domain.Pack, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + packColumns + ` FROM packs
		WHERE store_id = ? AND game_id = ? AND pack_number = ?`)

	pack, err := scanPack(querier.QueryRowContext(ctx, query, storeID, gameID, packNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPackNotFound
	}
	return pack, err
}

// Update writes every mutable column of pack.
func (r *PackRepository) Update(ctx context.Context, pack *domain.Pack) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE packs SET
		status = ?, current_bin_id = ?, closing_serial = ?, tickets_sold_count = ?, sales_amount = ?,
		depletion_reason = ?, activated_at = ?, activated_by = ?, activated_shift_id = ?,
		depleted_at = ?, depleted_by = ?, depleted_shift_id = ?, returned_at = ?, updated_at = ?
		WHERE store_id = ? AND id = ?`)

	result, err := querier.ExecContext(ctx, query,
		pack.Status, pack.CurrentBinID, pack.ClosingSerial, pack.TicketsSoldCount, pack.SalesAmount,
		pack.DepletionReason, pack.ActivatedAt, pack.ActivatedBy, pack.ActivatedShiftID,
		pack.DepletedAt, pack.DepletedBy, pack.DepletedShiftID, pack.ReturnedAt, pack.UpdatedAt,
		pack.StoreID, pack.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPackNotFound
	}
	return nil
}

// ListActiveInBin returns the ACTIVE packs of a bin. More than one result means the
// one-active-per-bin invariant is broken.
func (r *PackRepository) ListActiveInBin(ctx context.Context, storeID, binID uuid.UUID) ([]*domain.Pack, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + packColumns + ` FROM packs
		WHERE store_id = ? AND current_bin_id = ? AND status = ?
		ORDER BY activated_at, id`)

	return r.queryPacks(ctx, querier, query, storeID, binID, domain.PackStatusActive)
}

// ListByStatus returns the store's packs in status, oldest first.
func (r *PackRepository) ListByStatus(
	ctx context.Context,
	storeID uuid.UUID,
	status domain.PackStatus,
	offset, limit int,
) ([]*domain.Pack, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + packColumns + ` FROM packs
		WHERE store_id = ? AND status = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`)

	return r.queryPacks(ctx, querier, query, storeID, status, limit, offset)
}

func (r *PackRepository) queryPacks(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.Pack, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	packs := make([]*domain.Pack, 0)
	for rows.Next() {
		pack, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return packs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPack(row rowScanner) (*domain.Pack, error) {
	var pack domain.Pack
	err := row.Scan(
		&pack.ID, &pack.StoreID, &pack.GameID, &pack.PackNumber, &pack.Status, &pack.CurrentBinID,
		&pack.OpeningSerial, &pack.ClosingSerial, &pack.TicketsSoldCount, &pack.SalesAmount,
		&pack.DepletionReason, &pack.ActivatedAt, &pack.ActivatedBy, &pack.ActivatedShiftID,
		&pack.DepletedAt, &pack.DepletedBy, &pack.DepletedShiftID, &pack.ReturnedAt,
		&pack.CreatedAt, &pack.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pack, nil
}
