package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game is a ticket product: every pack of a game has the same size and unit price.
type Game struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	Code           string
	Name           string
	Price          decimal.Decimal
	TicketsPerPack int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SalesFor returns the amount collected for tickets sold.
func (g *Game) SalesFor(tickets int) decimal.Decimal {
	return g.Price.Mul(decimal.NewFromInt(int64(tickets)))
}
