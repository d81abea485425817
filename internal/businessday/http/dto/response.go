package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/allisson/storesync/internal/businessday/domain"
)

// BusinessDayResponse represents a business day in API responses.
type BusinessDayResponse struct {
	ID                    string          `json:"id"`
	BusinessDate          string          `json:"business_date"`
	Status                string          `json:"status"`
	PendingCloseExpiresAt *time.Time      `json:"pending_close_expires_at,omitempty"`
	TotalPacksActivated   int             `json:"total_packs_activated"`
	TotalSales            decimal.Decimal `json:"total_sales"`
	OpenedAt              time.Time       `json:"opened_at"`
	ClosedAt              *time.Time      `json:"closed_at,omitempty"`
	ClosedBy              *string         `json:"closed_by,omitempty"`
}

// MapBusinessDayToResponse converts a domain day to an API response.
func MapBusinessDayToResponse(day *domain.BusinessDay) BusinessDayResponse {
	resp := BusinessDayResponse{
		ID:                    day.ID.String(),
		BusinessDate:          day.BusinessDate.Format(domain.DateLayout),
		Status:                string(day.Status),
		PendingCloseExpiresAt: day.PendingCloseExpiresAt,
		TotalPacksActivated:   day.TotalPacksActivated,
		TotalSales:            day.TotalSales,
		OpenedAt:              day.OpenedAt,
		ClosedAt:              day.ClosedAt,
	}
	if day.ClosedBy != nil {
		closedBy := day.ClosedBy.String()
		resp.ClosedBy = &closedBy
	}
	return resp
}
