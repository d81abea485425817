// Package domain defines the business day aggregate and its two-phase close.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout formats business dates.
const DateLayout = "2006-01-02"

// DayStatus is the lifecycle status of a business day.
type DayStatus string

const (
	DayStatusOpen         DayStatus = "OPEN"
	DayStatusPendingClose DayStatus = "PENDING_CLOSE"
	DayStatusClosed       DayStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s DayStatus) Valid() bool {
	switch s {
	case DayStatusOpen, DayStatusPendingClose, DayStatusClosed:
		return true
	}
	return false
}

// BusinessDay is one store's trading day.
//
// OPEN <-> PENDING_CLOSE -> CLOSED. PendingClosePayload and PendingCloseExpiresAt are set only
// while PENDING_CLOSE.
type BusinessDay struct {
	ID                    uuid.UUID
	StoreID               uuid.UUID
	BusinessDate          time.Time
	Status                DayStatus
	PendingClosePayload   []byte
	PendingCloseExpiresAt *time.Time
	TotalPacksActivated   int
	TotalSales            decimal.Decimal
	OpenedAt              time.Time
	ClosedAt              *time.Time
	ClosedBy              *uuid.UUID
	UpdatedAt             time.Time
}

// DateOf returns the business date containing t, at UTC midnight.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LeaseExpired reports whether a prepared close can no longer be committed at now.
func (d *BusinessDay) LeaseExpired(now time.Time) bool {
	return d.PendingCloseExpiresAt == nil || now.After(*d.PendingCloseExpiresAt)
}

// CanReserve reports whether a close may be prepared at now. A PENDING_CLOSE day whose
// lease expired may be prepared again.
func (d *BusinessDay) CanReserve(now time.Time) error {
	switch d.Status {
	case DayStatusClosed:
		return ErrDayAlreadyClosed
	case DayStatusPendingClose:
		if !d.LeaseExpired(now) {
			return ErrInvalidDayState
		}
	}
	return nil
}

// Reserve moves the day to PENDING_CLOSE with payload leased until expiresAt.
func (d *BusinessDay) Reserve(payload []byte, expiresAt, now time.Time) error {
	if err := d.CanReserve(now); err != nil {
		return err
	}

	d.Status = DayStatusPendingClose
	d.PendingClosePayload = payload
	d.PendingCloseExpiresAt = &expiresAt
	d.UpdatedAt = now
	return nil
}

// CanCommit reports whether the prepared close may be committed at now.
func (d *BusinessDay) CanCommit(now time.Time) error {
	switch d.Status {
	case DayStatusClosed:
		return ErrDayAlreadyClosed
	case DayStatusOpen:
		return ErrInvalidDayState
	}
	if d.LeaseExpired(now) {
		return ErrLeaseExpired
	}
	return nil
}

// Close commits a PENDING_CLOSE day within its lease.
func (d *BusinessDay) Close(closedBy uuid.UUID, totalSales decimal.Decimal, now time.Time) error {
	if err := d.CanCommit(now); err != nil {
		return err
	}

	d.Status = DayStatusClosed
	d.TotalSales = totalSales
	d.ClosedAt = &now
	d.ClosedBy = &closedBy
	d.PendingClosePayload = nil
	d.PendingCloseExpiresAt = nil
	d.UpdatedAt = now
	return nil
}

// Cancel discards a prepared close and reopens the day.
func (d *BusinessDay) Cancel(now time.Time) error {
	switch d.Status {
	case DayStatusClosed:
		return ErrDayAlreadyClosed
	case DayStatusOpen:
		return ErrInvalidDayState
	}

	d.Status = DayStatusOpen
	d.PendingClosePayload = nil
	d.PendingCloseExpiresAt = nil
	d.UpdatedAt = now
	return nil
}
