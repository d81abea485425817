package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/inventory/domain"
)

// GameRepository persists games.
type GameRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewGameRepository creates a new GameRepository
func NewGameRepository(db *sql.DB, dialect database.Dialect) *GameRepository {
	return &GameRepository{db: db, dialect: dialect}
}

// Create inserts a new game.
func (r *GameRepository) Create(ctx context.Context, game *domain.Game) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO games (id, store_id, code, name, price, tickets_per_pack, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := querier.ExecContext(ctx, query,
		game.ID, game.StoreID, game.Code, game.Name, game.Price, game.TicketsPerPack, game.CreatedAt, game.UpdatedAt,
	)
	return err
}

// Get returns one game of the store.
func (r *GameRepository) Get(ctx context.Context, storeID, id uuid.UUID) (*domain.Game, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT id, store_id, code, name, price, tickets_per_pack, created_at, updated_at
		FROM games WHERE store_id = ? AND id = ?`)

	var game domain.Game
	err := querier.QueryRowContext(ctx, query, storeID, id).Scan(
		&game.ID, &game.StoreID, &game.Code, &game.Name, &game.Price, &game.TicketsPerPack,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}
