package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClosingInput is one pack's count submitted for the day close. When IsSoldOut is set,
// ClosingSerial names the last ticket sold.
type ClosingInput struct {
	PackID        uuid.UUID `json:"pack_id"`
	ClosingSerial string    `json:"closing_serial"`
	IsSoldOut     bool      `json:"is_sold_out"`
}

// ClosingLine is a validated closing with its computed sales.
type ClosingLine struct {
	PackID        uuid.UUID       `json:"pack_id"`
	PackNumber    string          `json:"pack_number"`
	GameID        uuid.UUID       `json:"game_id"`
	OpeningSerial string          `json:"opening_serial"`
	ClosingSerial string          `json:"closing_serial"`
	IsSoldOut     bool            `json:"is_sold_out"`
	TicketsSold   int             `json:"tickets_sold"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SalesAmount   decimal.Decimal `json:"sales_amount"`
}

// PendingClose is the reservation persisted while a day is PENDING_CLOSE.
type PendingClose struct {
	Lines          []ClosingLine   `json:"lines"`
	TotalTickets   int             `json:"total_tickets"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	PreparedBy     uuid.UUID       `json:"prepared_by"`
	PreparedAt     time.Time       `json:"prepared_at"`
}

// ClosePreview is returned by a prepare. Nothing it describes has been applied yet.
type ClosePreview struct {
	DayID          uuid.UUID       `json:"day_id"`
	Status         DayStatus       `json:"status"`
	Lines          []ClosingLine   `json:"lines"`
	TotalTickets   int             `json:"total_tickets"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// DayPackClosing is the historical closing record of one pack on a closed day.
type DayPackClosing struct {
	ID            uuid.UUID       `json:"id"`
	DayID         uuid.UUID       `json:"day_id"`
	StoreID       uuid.UUID       `json:"store_id"`
	PackID        uuid.UUID       `json:"pack_id"`
	OpeningSerial string          `json:"opening_serial"`
	ClosingSerial string          `json:"closing_serial"`
	TicketsSold   int             `json:"tickets_sold"`
	SalesAmount   decimal.Decimal `json:"sales_amount"`
	IsSoldOut     bool            `json:"is_sold_out"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DayCloseSnapshot is the outbox payload of a closed day.
type DayCloseSnapshot struct {
	DayID               uuid.UUID        `json:"day_id"`
	StoreID             uuid.UUID        `json:"store_id"`
	BusinessDate        string           `json:"business_date"`
	TotalPacksActivated int              `json:"total_packs_activated"`
	TotalSales          decimal.Decimal  `json:"total_sales"`
	ClosedAt            *time.Time       `json:"closed_at"`
	ClosedBy            *uuid.UUID       `json:"closed_by"`
	Closings            []DayPackClosing `json:"closings"`
}

// NewDayCloseSnapshot builds the payload from a closed day and its closing records.
func NewDayCloseSnapshot(day *BusinessDay, closings []DayPackClosing) DayCloseSnapshot {
	return DayCloseSnapshot{
		DayID:               day.ID,
		StoreID:             day.StoreID,
		BusinessDate:        day.BusinessDate.Format(DateLayout),
		TotalPacksActivated: day.TotalPacksActivated,
		TotalSales:          day.TotalSales,
		ClosedAt:            day.ClosedAt,
		ClosedBy:            day.ClosedBy,
		Closings:            closings,
	}
}
