package rental

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrPrecondition    = errors.New("precondition failed")
)

// ShortCountError reports an allocation that could not be served in full.
type ShortCountError struct {
	Requested int
	Available int
}

func (e *ShortCountError) Error() string {
	return fmt.Sprintf("only %d of %d units available", e.Available, e.Requested)
}

// ValidationError wraps field validation failures of an entity.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %v", e.Entity, e.Err) }

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

// SaveError is returned when a mutation succeeded in memory but could not be
// written to the store. The mutation is kept.
type SaveError struct {
	Collection string
	Err        error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s changed in memory but could not be saved: %v", e.Collection, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
