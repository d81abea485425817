// Package domain defines the inventory entities: games and the lifecycle of ticket packs
// placed in bins.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackStatus is the lifecycle status of a pack.
type PackStatus string

const (
	PackStatusReceived PackStatus = "RECEIVED"
	PackStatusActive   PackStatus = "ACTIVE"
	PackStatusDepleted PackStatus = "DEPLETED"
	PackStatusReturned PackStatus = "RETURNED"
)

// Valid reports whether s is a known status.
func (s PackStatus) Valid() bool {
	switch s {
	case PackStatusReceived, PackStatusActive, PackStatusDepleted, PackStatusReturned:
		return true
	}
	return false
}

// DepletionReason tells why a pack left its bin as DEPLETED.
type DepletionReason string

const (
	DepletionReasonShiftClose    DepletionReason = "SHIFT_CLOSE"
	DepletionReasonAutoReplaced  DepletionReason = "AUTO_REPLACED"
	DepletionReasonManualSoldOut DepletionReason = "MANUAL_SOLD_OUT"
)

// Valid reports whether r is a known reason.
func (r DepletionReason) Valid() bool {
	switch r {
	case DepletionReasonShiftClose, DepletionReasonAutoReplaced, DepletionReasonManualSoldOut:
		return true
	}
	return false
}

// Actor identifies the operator behind a mutation. It always comes from the session.
type Actor struct {
	UserID  uuid.UUID
	ShiftID *uuid.UUID
}

// Pack is a physical pack of tickets.
//
// At most one pack is ACTIVE per (store, bin).
type Pack struct {
	ID               uuid.UUID
	StoreID          uuid.UUID
	GameID           uuid.UUID
	PackNumber       string
	Status           PackStatus
	CurrentBinID     *uuid.UUID
	OpeningSerial    string
	ClosingSerial    *string
	TicketsSoldCount int
	SalesAmount      decimal.Decimal
	DepletionReason  *DepletionReason
	ActivatedAt      *time.Time
	ActivatedBy      *uuid.UUID
	ActivatedShiftID *uuid.UUID
	DepletedAt       *time.Time
	DepletedBy       *uuid.UUID
	DepletedShiftID  *uuid.UUID
	ReturnedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CurrentSerial returns the next ticket to sell: the last settled closing serial, or the
// opening serial of a pack never settled.
func (p *Pack) CurrentSerial() string {
	if p.ClosingSerial != nil {
		return *p.ClosingSerial
	}
	return p.OpeningSerial
}

// Activate places a RECEIVED pack in binID.
func (p *Pack) Activate(binID uuid.UUID, actor Actor, now time.Time) error {
	if p.Status != PackStatusReceived {
		return ErrInvalidPackTransition
	}
	userID := actor.UserID
	p.Status = PackStatusActive
	p.CurrentBinID = &binID
	p.ActivatedAt = &now
	p.ActivatedBy = &userID
	p.ActivatedShiftID = actor.ShiftID
	p.UpdatedAt = now
	return nil
}

// Settle records a closing count on an ACTIVE pack that keeps selling.
func (p *Pack) Settle(closingSerial string, ticketsSold int, sales decimal.Decimal, now time.Time) error {
	if p.Status != PackStatusActive {
		return ErrPackNotActive
	}
	p.ClosingSerial = &closingSerial
	p.TicketsSoldCount += ticketsSold
	p.SalesAmount = p.SalesAmount.Add(sales)
	p.UpdatedAt = now
	return nil
}

// Deplete settles the final count and marks an ACTIVE pack DEPLETED.
func (p *Pack) Deplete(
	closingSerial string,
	ticketsSold int,
	sales decimal.Decimal,
	reason DepletionReason,
	actor Actor,
	now time.Time,
) error {
	if err := p.Settle(closingSerial, ticketsSold, sales, now); err != nil {
		return err
	}
	userID := actor.UserID
	p.Status = PackStatusDepleted
	p.DepletionReason = &reason
	p.DepletedAt = &now
	p.DepletedBy = &userID
	p.DepletedShiftID = actor.ShiftID
	return nil
}

// Return sends a RECEIVED or ACTIVE pack back to the distributor.
func (p *Pack) Return(now time.Time) error {
	if p.Status != PackStatusReceived && p.Status != PackStatusActive {
		return ErrInvalidPackTransition
	}
	p.Status = PackStatusReturned
	p.ReturnedAt = &now
	p.UpdatedAt = now
	return nil
}
