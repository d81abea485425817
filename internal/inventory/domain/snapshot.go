package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackSnapshot is the outbox payload of a pack mutation.
type PackSnapshot struct {
	PackID           uuid.UUID        `json:"pack_id"`
	StoreID          uuid.UUID        `json:"store_id"`
	GameID           uuid.UUID        `json:"game_id"`
	PackNumber       string           `json:"pack_number"`
	Status           PackStatus       `json:"status"`
	BinID            *uuid.UUID       `json:"bin_id"`
	OpeningSerial    string           `json:"opening_serial"`
	ClosingSerial    *string          `json:"closing_serial"`
	TicketsSoldCount int              `json:"tickets_sold_count"`
	SalesAmount      decimal.Decimal  `json:"sales_amount"`
	DepletionReason  *DepletionReason `json:"depletion_reason"`
	ActivatedAt      *time.Time       `json:"activated_at"`
	ActivatedBy      *uuid.UUID       `json:"activated_by"`
	ActivatedShiftID *uuid.UUID       `json:"activated_shift_id"`
	DepletedAt       *time.Time       `json:"depleted_at"`
	DepletedBy       *uuid.UUID       `json:"depleted_by"`
	DepletedShiftID  *uuid.UUID       `json:"depleted_shift_id"`
	ReturnedAt       *time.Time       `json:"returned_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewPackSnapshot captures the state of p at enqueue time.
func NewPackSnapshot(p *Pack) PackSnapshot {
	return PackSnapshot{
		PackID:           p.ID,
		StoreID:          p.StoreID,
		GameID:           p.GameID,
		PackNumber:       p.PackNumber,
		Status:           p.Status,
		BinID:            p.CurrentBinID,
		OpeningSerial:    p.OpeningSerial,
		ClosingSerial:    p.ClosingSerial,
		TicketsSoldCount: p.TicketsSoldCount,
		SalesAmount:      p.SalesAmount,
		DepletionReason:  p.DepletionReason,
		ActivatedAt:      p.ActivatedAt,
		ActivatedBy:      p.ActivatedBy,
		ActivatedShiftID: p.ActivatedShiftID,
		DepletedAt:       p.DepletedAt,
		DepletedBy:       p.DepletedBy,
		DepletedShiftID:  p.DepletedShiftID,
		ReturnedAt:       p.ReturnedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// AutoDepletion describes the occupant a collision forced out of its bin.
type AutoDepletion struct {
	PackID          uuid.UUID       `json:"pack_id"`
	PackNumber      string          `json:"pack_number"`
	BinID           uuid.UUID       `json:"bin_id"`
	ClosingSerial   string          `json:"closing_serial"`
	TicketsSold     int             `json:"tickets_sold"`
	SalesAmount     decimal.Decimal `json:"sales_amount"`
	DepletedAt      time.Time       `json:"depleted_at"`
	DepletedBy      uuid.UUID       `json:"depleted_by"`
	DepletedShiftID *uuid.UUID      `json:"depleted_shift_id"`

	// Queued is false when the occupant's UPDATE could not be enqueued.
	Queued bool `json:"-"`
}

// ActivationResult is the outcome of a pack activation. AutoDepleted is nil when the bin
// was empty.
type ActivationResult struct {
	Pack         *Pack
	AutoDepleted *AutoDepletion
}

// ReceivePackInput registers a new pack.
type ReceivePackInput struct {
	GameID        uuid.UUID
	PackNumber    string
	OpeningSerial string
}

// ActivatePackInput places a pack in a bin. DepletePrevious allows the activation to
// force out the bin's current occupant.
type ActivatePackInput struct {
	PackID          uuid.UUID
	BinID           uuid.UUID
	DepletePrevious bool
}

// ReturnPackInput returns a pack. ClosingSerial is required for ACTIVE packs.
type ReturnPackInput struct {
	PackID        uuid.UUID
	ClosingSerial *string
}
