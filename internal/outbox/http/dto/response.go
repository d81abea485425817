package dto

import (
	"encoding/json"
	"time"

	"github.com/allisson/storesync/internal/outbox/domain"
)

// OutboxItemResponse represents an outbox item in API responses.
type OutboxItemResponse struct {
	ID               string          `json:"id"`
	EntityType       string          `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	Operation        string          `json:"operation"`
	Status           string          `json:"status"`
	Priority         int             `json:"priority"`
	Payload          json.RawMessage `json:"payload"`
	SyncAttempts     int             `json:"sync_attempts"`
	MaxAttempts      int             `json:"max_attempts"`
	LastSyncError    *string         `json:"last_sync_error,omitempty"`
	LastAttemptAt    *time.Time      `json:"last_attempt_at,omitempty"`
	ErrorCategory    *string         `json:"error_category,omitempty"`
	RetryAfter       *time.Time      `json:"retry_after,omitempty"`
	DeadLetterReason *string         `json:"dead_letter_reason,omitempty"`
	DeadLetteredAt   *time.Time      `json:"dead_lettered_at,omitempty"`
	DeadLetterNote   *string         `json:"dead_letter_note,omitempty"`
	HTTPStatus       *int            `json:"http_status,omitempty"`
	SyncedAt         *time.Time      `json:"synced_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MapOutboxItemToResponse converts a domain item to an API response.
func MapOutboxItemToResponse(item *domain.OutboxItem) OutboxItemResponse {
	resp := OutboxItemResponse{
		ID:             item.ID.String(),
		EntityType:     string(item.EntityType),
		EntityID:       item.EntityID.String(),
		Operation:      string(item.Operation),
		Status:         string(item.Status()),
		Priority:       item.Priority,
		Payload:        item.Payload,
		SyncAttempts:   item.SyncAttempts,
		MaxAttempts:    item.MaxAttempts,
		LastSyncError:  item.LastSyncError,
		LastAttemptAt:  item.LastAttemptAt,
		RetryAfter:     item.RetryAfter,
		DeadLetteredAt: item.DeadLetteredAt,
		DeadLetterNote: item.DeadLetterNote,
		HTTPStatus:     item.HTTPStatus,
		SyncedAt:       item.SyncedAt,
		CreatedAt:      item.CreatedAt,
	}
	if item.ErrorCategory != nil {
		category := string(*item.ErrorCategory)
		resp.ErrorCategory = &category
	}
	if item.DeadLetterReason != nil {
		reason := string(*item.DeadLetterReason)
		resp.DeadLetterReason = &reason
	}
	return resp
}

// ListOutboxItemsResponse represents a page of outbox items.
type ListOutboxItemsResponse struct {
	Data   []OutboxItemResponse `json:"data"`
	Offset int                  `json:"offset"`
	Limit  int                  `json:"limit"`
}

// MapOutboxItemsToListResponse converts a page of domain items to an API response.
func MapOutboxItemsToListResponse(items []*domain.OutboxItem, offset, limit int) ListOutboxItemsResponse {
	data := make([]OutboxItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, MapOutboxItemToResponse(item))
	}
	return ListOutboxItemsResponse{Data: data, Offset: offset, Limit: limit}
}

// SyncStatusResponse is the sync health summary of a store.
type SyncStatusResponse struct {
	StoreID string `json:"store_id"`
	domain.StatusCounts
}

// RestoreManyResponse reports how many items a bulk restore returned to the queue.
type RestoreManyResponse struct {
	Restored int `json:"restored"`
}
