package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for business-rule violations. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientFunds  = errors.New("insufficient funds for this purchase")
	ErrInsufficientShares = errors.New("not enough shares to sell")
)

// ValidationError names the first failing condition of an order or request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a persistence failure so callers can distinguish it from
// business-rule errors and trigger the mock-store fallback.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
