package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation marks precondition violations: missing or incompatible
	// parents, unfinished breeding, unmet evolution eligibility.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInsufficientResource marks inventory shortfalls.
	ErrInsufficientResource = errors.New("insufficient resource")
)

// InvalidOperationError reports a precondition violation. State is left unchanged
// by every operation that returns it.
type InvalidOperationError struct {
	Op     string
	Reason string
}

// NewInvalidOperation builds an InvalidOperationError.
func NewInvalidOperation(op, reason string) error {
	return InvalidOperationError{Op: op, Reason: reason}
}

func (e InvalidOperationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("invalid operation: %s", e.Reason)
	}
	return fmt.Sprintf("%s: invalid operation: %s", e.Op, e.Reason)
}

// Is lets errors.Is match ErrInvalidOperation.
func (e InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// InsufficientResourceError carries the resource kind and the required vs.
// available amounts.
type InsufficientResourceError struct {
	Kind      ResourceKind
	Required  int
	Available int
}

func (e InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: required %d, available %d", e.Kind, e.Required, e.Available)
}

// Is lets errors.Is match ErrInsufficientResource.
func (e InsufficientResourceError) Is(target error) bool {
	return target == ErrInsufficientResource
}
