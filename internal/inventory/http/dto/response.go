package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/allisson/storesync/internal/inventory/domain"
)

// PackResponse represents a pack in API responses.
type PackResponse struct {
	ID               string          `json:"id"`
	GameID           string          `json:"game_id"`
	PackNumber       string          `json:"pack_number"`
	Status           string          `json:"status"`
	BinID            *string         `json:"bin_id,omitempty"`
	OpeningSerial    string          `json:"opening_serial"`
	ClosingSerial    *string         `json:"closing_serial,omitempty"`
	TicketsSoldCount int             `json:"tickets_sold_count"`
	SalesAmount      decimal.Decimal `json:"sales_amount"`
	DepletionReason  *string         `json:"depletion_reason,omitempty"`
	ActivatedAt      *time.Time      `json:"activated_at,omitempty"`
	DepletedAt       *time.Time      `json:"depleted_at,omitempty"`
	ReturnedAt       *time.Time      `json:"returned_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MapPackToResponse converts a domain pack to an API response.
func MapPackToResponse(pack *domain.Pack) PackResponse {
	resp := PackResponse{
		ID:               pack.ID.String(),
		GameID:           pack.GameID.String(),
		PackNumber:       pack.PackNumber,
		Status:           string(pack.Status),
		OpeningSerial:    pack.OpeningSerial,
		ClosingSerial:    pack.ClosingSerial,
		TicketsSoldCount: pack.TicketsSoldCount,
		SalesAmount:      pack.SalesAmount,
		ActivatedAt:      pack.ActivatedAt,
		DepletedAt:       pack.DepletedAt,
		ReturnedAt:       pack.ReturnedAt,
		CreatedAt:        pack.CreatedAt,
		UpdatedAt:        pack.UpdatedAt,
	}
	if pack.CurrentBinID != nil {
		binID := pack.CurrentBinID.String()
		resp.BinID = &binID
	}
	if pack.DepletionReason != nil {
		reason := string(*pack.DepletionReason)
		resp.DepletionReason = &reason
	}
	return resp
}

// ActivationResponse is the outcome of an activation. AutoDepleted is set when the bin's
// previous occupant was forced out.
type ActivationResponse struct {
	Pack         PackResponse          `json:"pack"`
	AutoDepleted *domain.AutoDepletion `json:"auto_depleted"`
}

// MapActivationToResponse converts an activation result to an API response.
func MapActivationToResponse(result *domain.ActivationResult) ActivationResponse {
	return ActivationResponse{
		Pack:         MapPackToResponse(result.Pack),
		AutoDepleted: result.AutoDepleted,
	}
}
