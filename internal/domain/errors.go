package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNullInput is matched by every *NullInputError.
	ErrNullInput = errors.New("null input")

	// ErrDuplicateActivity is returned when an activity id is added twice
	// to the same collection.
	ErrDuplicateActivity = errors.New("duplicate activity id")

	// ErrNotFound is returned when a requested plan doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrReadOnly is returned by mutating operations on a read-only manager.
	ErrReadOnly = errors.New("definition manager is read-only")

	// ErrUnknownClassification is returned when a taxonomy id cannot be resolved.
	ErrUnknownClassification = errors.New("unknown classification")
)

// NullInputError reports a required argument that was nil.
type NullInputError struct {
	Arg string
}

// NewNullInputError creates a NullInputError for the named argument.
func NewNullInputError(arg string) *NullInputError {
	return &NullInputError{Arg: arg}
}

func (e *NullInputError) Error() string {
	return fmt.Sprintf("%s must not be nil", e.Arg)
}

// Is lets errors.Is(err, ErrNullInput) match any NullInputError.
func (e *NullInputError) Is(target error) bool {
	return target == ErrNullInput
}
