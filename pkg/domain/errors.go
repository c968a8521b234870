package domain

import "errors"

// ErrInvalidMovement is returned when a layer movement is neither a finite
// integer nor positive/negative infinity.
var ErrInvalidMovement = errors.New("invalid element layer movement")

// ErrUnknownCommand is returned when a command kind has no handler.
var ErrUnknownCommand = errors.New("unknown command")

// ErrWorkpadNotFound is returned when a workpad ID cannot be found in the store.
var ErrWorkpadNotFound = errors.New("workpad not found")

// ErrWorkpadExists is returned when creating a workpad whose ID is already taken.
var ErrWorkpadExists = errors.New("workpad already exists")
