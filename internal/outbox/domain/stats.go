package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusCounts is the sync health summary of one store.
type StatusCounts struct {
	// Pending counts items eligible for dispatch right now.
	Pending int64 `json:"pending"`
	// RetryWaiting counts pending items whose retry_after is still in the future.
	RetryWaiting int64 `json:"retry_waiting"`
	// Failed counts pending items with at least one failed attempt.
	Failed       int64 `json:"failed"`
	DeadLettered int64 `json:"dead_lettered"`
	Synced       int64 `json:"synced"`
}

// DeadLetterStats aggregates the dead-letter queue of one store.
type DeadLetterStats struct {
	Total           int64                      `json:"total"`
	ByReason        map[DeadLetterReason]int64 `json:"by_reason"`
	ByEntityType    map[EntityType]int64       `json:"by_entity_type"`
	ByErrorCategory map[ErrorCategory]int64    `json:"by_error_category"`
	OldestAt        *time.Time                 `json:"oldest_at,omitempty"`
	NewestAt        *time.Time                 `json:"newest_at,omitempty"`
}

// DeadLetterFilter narrows a dead-letter listing. Nil fields match everything.
type DeadLetterFilter struct {
	EntityType    *EntityType
	Reason        *DeadLetterReason
	ErrorCategory *ErrorCategory
}

// EnqueueRequest describes a domain mutation to queue for sync.
type EnqueueRequest struct {
	StoreID    uuid.UUID
	EntityType EntityType
	EntityID   uuid.UUID
	Operation  Operation
	// Payload is marshalled to JSON at enqueue time.
	Payload  any
	Priority int
}

// EnqueueResult is the outcome of a best-effort enqueue. Err is meant to be logged and
// discarded: it never aborts the surrounding domain transaction.
type EnqueueResult struct {
	Item *OutboxItem
	Err  error
}

// OK reports whether the item was enqueued.
func (r EnqueueResult) OK() bool {
	return r.Err == nil && r.Item != nil
}
