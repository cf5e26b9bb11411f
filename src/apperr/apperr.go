// Package apperr holds the error taxonomy shared by the store, the ledger core
// and the HTTP layer. Callers match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrExtractionFormat = errors.New("invalid response format from model")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrStoreFailure     = errors.New("store failure")

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget %w", ErrNotFound)

	ErrInvalidInterval = fmt.Errorf("%w: invalid recurring interval", ErrValidation)
)

// Validation returns an ErrValidation carrying a human readable detail.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StoreFailure wraps an error from the storage layer that prevented a unit of
// work from committing.
func StoreFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreFailure, op, err)
}
