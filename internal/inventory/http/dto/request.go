// Package dto provides data transfer objects for the pack endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/storesync/internal/inventory/domain"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// ReceivePackRequest registers a pack delivered to the store.
type ReceivePackRequest struct {
	GameID        string `json:"game_id"`
	PackNumber    string `json:"pack_number"`
	OpeningSerial string `json:"opening_serial"`
}

// Validate checks if the receive request is valid.
func (r *ReceivePackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GameID, validation.Required, customValidation.UUID),
		validation.Field(&r.PackNumber,
			validation.Required,
			customValidation.NotBlank,
			customValidation.PackNumber,
			validation.Length(1, 64),
		),
		validation.Field(&r.OpeningSerial, validation.Required, customValidation.Serial),
	)
}

// ToInput converts the request to the use case input. Call Validate first.
func (r *ReceivePackRequest) ToInput() domain.ReceivePackInput {
	return domain.ReceivePackInput{
		GameID:        uuid.MustParse(r.GameID),
		PackNumber:    r.PackNumber,
		OpeningSerial: r.OpeningSerial,
	}
}

// ActivatePackRequest places a pack in a bin.
type ActivatePackRequest struct {
	BinID           string `json:"bin_id"`
	DepletePrevious bool   `json:"deplete_previous"`
}

// Validate checks if the activate request is valid.
func (r *ActivatePackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BinID, validation.Required, customValidation.UUID),
	)
}

// ToInput converts the request to the use case input. Call Validate first.
func (r *ActivatePackRequest) ToInput(packID uuid.UUID) domain.ActivatePackInput {
	return domain.ActivatePackInput{
		PackID:          packID,
		BinID:           uuid.MustParse(r.BinID),
		DepletePrevious: r.DepletePrevious,
	}
}

// ReturnPackRequest returns a pack to the distributor.
type ReturnPackRequest struct {
	ClosingSerial *string `json:"closing_serial"`
}

// Validate checks if the return request is valid.
func (r *ReturnPackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClosingSerial, validation.NilOrNotEmpty, customValidation.Serial),
	)
}

// ToInput converts the request to the use case input.
func (r *ReturnPackRequest) ToInput(packID uuid.UUID) domain.ReturnPackInput {
	return domain.ReturnPackInput{PackID: packID, ClosingSerial: r.ClosingSerial}
}
