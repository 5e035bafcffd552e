package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	// ErrUnavailable marks a dependency that could not answer right now.
	ErrUnavailable = errors.New("unavailable")

	ErrInvalidSIREN = fmt.Errorf("%w: siren must be exactly 9 digits", ErrInvalidInput)
	ErrInvalidDepth = fmt.Errorf("%w: depth must be between %d and %d", ErrInvalidInput, MinDepth, MaxDepth)
)
