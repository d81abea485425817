// Package session carries the authenticated store session through a request context.
//
// Authentication happens upstream; this package only transports the resulting identity so
// that audit fields (depleted_by, closed_by, shift ids) are always taken from the session and
// never from request bodies.
package session

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/allisson/storesync/internal/errors"
)

// Role names the operator privileges of a session.
type Role string

const (
	RoleClerk   Role = "clerk"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleClerk, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// AtLeast reports whether r grants the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return r.rank() >= required.rank()
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleClerk:
		return 1
	}
	return 0
}

// Session identifies who acts, for which store and during which shift.
type Session struct {
	StoreID uuid.UUID
	UserID  uuid.UUID
	// ShiftID is uuid.Nil when the operator has no open shift.
	ShiftID uuid.UUID
	Role    Role
}

// ErrNoSession is returned when a context carries no session.
var ErrNoSession = apperrors.Wrap(apperrors.ErrUnauthorized, "no store session")

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// MustFromContext returns the session carried by ctx or ErrNoSession.
func MustFromContext(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok || s.StoreID == uuid.Nil || s.UserID == uuid.Nil {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// ShiftIDPtr returns the shift id, or nil outside a shift.
func (s Session) ShiftIDPtr() *uuid.UUID {
	if s.ShiftID == uuid.Nil {
		return nil
	}
	id := s.ShiftID
	return &id
}
