package domain

import (
	"github.com/allisson/storesync/internal/errors"
)

var (
	// ErrOutboxItemNotFound indicates the item does not exist in the store.
	ErrOutboxItemNotFound = errors.Wrap(errors.ErrNotFound, "outbox item not found")

	// ErrNotDeadLettered indicates an action reserved for dead-lettered items was attempted on a live one.
	ErrNotDeadLettered = errors.Wrap(errors.ErrConflict, "outbox item is not dead-lettered")

	// ErrItemAlreadySynced indicates the item was already delivered.
	ErrItemAlreadySynced = errors.Wrap(errors.ErrConflict, "outbox item is already synced")

	// ErrInvalidEnqueueRequest indicates the enqueue request is missing required fields.
	ErrInvalidEnqueueRequest = errors.Wrap(errors.ErrInvalidInput, "invalid enqueue request")

	// ErrPayloadRejected is returned by transports when the remote authority rejects the
	// payload schema. Items failing with it are classified STRUCTURAL.
	ErrPayloadRejected = errors.New("payload rejected by remote authority")
)
