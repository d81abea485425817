// Package domain defines the sync outbox entities: the queued item, its closed enumerations,
// delivery classification and the retry backoff policy.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttempts is the max_attempts stamped on new items when none is configured.
const DefaultMaxAttempts = 5

// PriorityNormal is the priority band every domain mutation enqueues with.
// Items sharing a band are dispatched strictly in insertion order.
const PriorityNormal = 0

// EntityType identifies the kind of aggregate an item snapshots.
type EntityType string

const (
	EntityTypePack     EntityType = "pack"
	EntityTypeBin      EntityType = "bin"
	EntityTypeDayClose EntityType = "day_close"
)

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityTypePack, EntityTypeBin, EntityTypeDayClose:
		return true
	}
	return false
}

// Operation is the mutation an item propagates.
type Operation string

const (
	OperationCreate   Operation = "CREATE"
	OperationUpdate   Operation = "UPDATE"
	OperationDelete   Operation = "DELETE"
	OperationActivate Operation = "ACTIVATE"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete, OperationActivate:
		return true
	}
	return false
}

// SyncDirection tells whether the item flows to or from the remote authority.
type SyncDirection string

const (
	SyncDirectionPush SyncDirection = "PUSH"
	SyncDirectionPull SyncDirection = "PULL"
)

// Valid reports whether d is a known direction.
func (d SyncDirection) Valid() bool {
	return d == SyncDirectionPush || d == SyncDirectionPull
}

// OutboxStatus is derived from the synced and dead_lettered flags.
type OutboxStatus string

const (
	OutboxStatusPending      OutboxStatus = "PENDING"
	OutboxStatusSynced       OutboxStatus = "SYNCED"
	OutboxStatusDeadLettered OutboxStatus = "DEAD_LETTERED"
)

// Valid reports whether s is a known status.
func (s OutboxStatus) Valid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusSynced, OutboxStatusDeadLettered:
		return true
	}
	return false
}

// OutboxItem is one queued domain mutation waiting to reach the remote authority.
//
// Invariants: a dead-lettered item is never synced, and an item is eligible for dispatch
// only while it is neither synced nor dead-lettered and its retry_after has passed.
type OutboxItem struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	EntityType    EntityType
	EntityID      uuid.UUID
	Operation     Operation
	Payload       json.RawMessage
	Priority      int
	SyncDirection SyncDirection

	Synced        bool
	SyncedAt      *time.Time
	SyncAttempts  int
	MaxAttempts   int
	LastSyncError *string
	LastAttemptAt *time.Time
	ErrorCategory *ErrorCategory
	RetryAfter    *time.Time

	DeadLettered     bool
	DeadLetterReason *DeadLetterReason
	DeadLetteredAt   *time.Time
	// DeadLetterNote is the operator note attached to a MANUAL dead-letter.
	DeadLetterNote *string

	APIEndpoint  string
	HTTPStatus   *int
	ResponseBody *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the item's lifecycle status.
func (i *OutboxItem) Status() OutboxStatus {
	switch {
	case i.DeadLettered:
		return OutboxStatusDeadLettered
	case i.Synced:
		return OutboxStatusSynced
	default:
		return OutboxStatusPending
	}
}

// IsEligible reports whether the dispatcher may send the item at now.
func (i *OutboxItem) IsEligible(now time.Time) bool {
	if i.Synced || i.DeadLettered {
		return false
	}
	return i.RetryAfter == nil || !i.RetryAfter.After(now)
}

// MarkSynced records a successful delivery.
func (i *OutboxItem) MarkSynced(result *SendResult, now time.Time) {
	i.Synced = true
	i.SyncedAt = &now
	i.LastAttemptAt = &now
	i.RetryAfter = nil
	i.ErrorCategory = nil
	i.LastSyncError = nil
	i.UpdatedAt = now
	if result != nil {
		i.HTTPStatus = statusPtr(result.HTTPStatus)
		i.ResponseBody = bodyPtr(result.Body)
	}
}

// DeadLetter moves the item into the dead-letter queue.
func (i *OutboxItem) DeadLetter(reason DeadLetterReason, now time.Time) {
	i.DeadLettered = true
	i.DeadLetterReason = &reason
	i.DeadLetteredAt = &now
	i.RetryAfter = nil
	i.UpdatedAt = now
}

// Restore clears the dead-letter state and resets the attempt counter.
func (i *OutboxItem) Restore(now time.Time) {
	i.DeadLettered = false
	i.DeadLetterReason = nil
	i.DeadLetteredAt = nil
	i.DeadLetterNote = nil
	i.SyncAttempts = 0
	i.RetryAfter = nil
	i.ErrorCategory = nil
	i.UpdatedAt = now
}

// APIEndpoint returns the remote path an entity operation is delivered to,
// e.g. "packs/activate" or "day-closes/create".
func APIEndpoint(entityType EntityType, op Operation) string {
	resource := strings.ReplaceAll(string(entityType), "_", "-") + "s"
	return resource + "/" + strings.ToLower(string(op))
}

func statusPtr(code int) *int {
	if code <= 0 {
		return nil
	}
	return &code
}

func bodyPtr(body string) *string {
	if body == "" {
		return nil
	}
	return &body
}
