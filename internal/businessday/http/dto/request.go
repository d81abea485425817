// Package dto provides data transfer objects for the business-day endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/storesync/internal/businessday/domain"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// maxClosings bounds the pack count of one close.
const maxClosings = 1000

// ClosingRequest is the count of one pack.
type ClosingRequest struct {
	PackID        string `json:"pack_id"`
	ClosingSerial string `json:"closing_serial"`
	IsSoldOut     bool   `json:"is_sold_out"`
}

// Validate checks if the closing is well formed.
func (r ClosingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PackID, validation.Required, customValidation.UUID),
		validation.Field(&r.ClosingSerial, validation.Required, customValidation.Serial),
	)
}

// PrepareCloseRequest submits the closing counts of a day.
type PrepareCloseRequest struct {
	Closings []ClosingRequest `json:"closings"`
}

// Validate checks if the prepare request is valid. Each closing is validated in turn.
func (r *PrepareCloseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Closings, validation.Required, validation.Length(1, maxClosings)),
	)
}

// ToInput converts the request to the use case input. Call Validate first.
func (r *PrepareCloseRequest) ToInput() []domain.ClosingInput {
	closings := make([]domain.ClosingInput, 0, len(r.Closings))
	for _, closing := range r.Closings {
		closings = append(closings, domain.ClosingInput{
			PackID:        uuid.MustParse(closing.PackID),
			ClosingSerial: closing.ClosingSerial,
			IsSoldOut:     closing.IsSoldOut,
		})
	}
	return closings
}
