// Package dto provides data transfer objects for the sync operator API.
package dto

import (
	"fmt"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/storesync/internal/outbox/domain"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// maxRestoreBatch bounds a bulk restore.
const maxRestoreBatch = 500

// RestoreManyRequest restores several dead-lettered items at once.
type RestoreManyRequest struct {
	IDs []string `json:"ids"`
}

// Validate checks if the restore request is valid.
func (r *RestoreManyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDs,
			validation.Required,
			validation.Length(1, maxRestoreBatch),
			validation.Each(customValidation.UUID),
		),
	)
}

// ParsedIDs returns the ids as UUIDs. Call Validate first.
func (r *RestoreManyRequest) ParsedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		ids = append(ids, uuid.MustParse(raw))
	}
	return ids
}

// ManualDeadLetterRequest parks a live item in the dead-letter queue.
type ManualDeadLetterRequest struct {
	Note string `json:"note"`
}

// Validate checks if the manual dead-letter request is valid.
func (r *ManualDeadLetterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Note, validation.Length(0, 500), customValidation.NoWhitespace),
	)
}

// ParseDeadLetterFilter builds a listing filter from raw query values. Empty values match
// everything.
func ParseDeadLetterFilter(entityType, reason, category string) (domain.DeadLetterFilter, error) {
	var filter domain.DeadLetterFilter

	if entityType != "" {
		e := domain.EntityType(entityType)
		if !e.Valid() {
			return filter, fmt.Errorf("invalid entity_type %q", entityType)
		}
		filter.EntityType = &e
	}
	if reason != "" {
		r := domain.DeadLetterReason(reason)
		if !r.Valid() {
			return filter, fmt.Errorf("invalid reason %q", reason)
		}
		filter.Reason = &r
	}
	if category != "" {
		c := domain.ErrorCategory(category)
		if !c.Valid() {
			return filter, fmt.Errorf("invalid error_category %q", category)
		}
		filter.ErrorCategory = &c
	}
	return filter, nil
}
