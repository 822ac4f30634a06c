package services

import (
	"errors"
	"fmt"
	"strings"

	"medcart/repositories"
)

var (
	ErrNotFound            = repositories.ErrNotFound
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAmountMismatch      = errors.New("Order amount mismatch")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrInvalidState        = errors.New("order is not awaiting payment")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrMapsUnavailable     = errors.New("maps provider unavailable")
	ErrImageStoreDisabled  = errors.New("image upload is not configured")
	ErrIdempotencyConflict = errors.New("idempotency key reused for a different request")
)

// ValidationError carries per-field messages and matches ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(sortStrings(parts), "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
