package domain

import (
	"github.com/allisson/storesync/internal/errors"
)

var (
	// ErrPackNotFound indicates the pack does not exist in the store.
	ErrPackNotFound = errors.Wrap(errors.ErrNotFound, "pack not found")

	// ErrGameNotFound indicates the game does not exist in the store.
	ErrGameNotFound = errors.Wrap(errors.ErrNotFound, "game not found")

	// ErrBinOccupied indicates another pack is already ACTIVE in the target bin.
	ErrBinOccupied = errors.Wrap(errors.ErrConflict, "bin already has an active pack")

	// ErrPackNotActive indicates an operation requiring an ACTIVE pack.
	ErrPackNotActive = errors.Wrap(errors.ErrConflict, "pack is not active")

	// ErrInvalidPackTransition indicates a status change the pack lifecycle forbids.
	ErrInvalidPackTransition = errors.Wrap(errors.ErrConflict, "invalid pack status transition")

	// ErrPackAlreadyExists indicates the pack number is already registered for the game.
	ErrPackAlreadyExists = errors.Wrap(errors.ErrConflict, "pack already exists")

	// ErrInvalidSerial indicates a malformed or out-of-range ticket serial.
	ErrInvalidSerial = errors.Wrap(errors.ErrInvalidInput, "invalid ticket serial")
)
