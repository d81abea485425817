package domain

import (
	"github.com/allisson/storesync/internal/errors"
)

var (
	// ErrDayNotFound indicates the business day does not exist in the store.
	ErrDayNotFound = errors.Wrap(errors.ErrNotFound, "business day not found")

	// ErrInvalidDayState indicates the day is not in the status the operation requires.
	ErrInvalidDayState = errors.Wrap(errors.ErrConflict, "invalid business day state")

	// ErrLeaseExpired indicates the prepared close outlived its lease and must be prepared again.
	ErrLeaseExpired = errors.Wrap(errors.ErrConflict, "close lease expired")

	// ErrDayAlreadyClosed indicates the day is CLOSED, which is terminal.
	ErrDayAlreadyClosed = errors.Wrap(errors.ErrConflict, "business day already closed")

	// ErrEmptyClosings indicates a prepare without closing lines.
	ErrEmptyClosings = errors.Wrap(errors.ErrInvalidInput, "at least one closing is required")

	// ErrDuplicatePack indicates the same pack appears twice in one prepare.
	ErrDuplicatePack = errors.Wrap(errors.ErrInvalidInput, "duplicate pack in closings")

	// ErrSerialOutOfRange indicates a closing serial outside the pack.
	ErrSerialOutOfRange = errors.Wrap(errors.ErrInvalidInput, "closing serial out of range")
)
