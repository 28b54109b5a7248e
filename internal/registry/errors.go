package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid proposal")
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("proposal not found")
)

// ValidationError reports the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an id that is not in the registry.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("proposal %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
