package store

import (
	"errors"
	"fmt"
)

// Errors reported by every ReviewRecordStore implementation.
var (
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate reports a unique index violation.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity wraps the validation failure of a record about to be
	// written.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed reports a failed begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrConcurrentModification is returned by compare-and-swap saves when the
	// stored revision no longer matches the revision the caller loaded.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrExclusivityViolation is returned when a record would reference zero or
	// several learnable items instead of exactly one.
	ErrExclusivityViolation = fmt.Errorf("%w: item exclusivity violation", ErrInvalidEntity)

	// ErrReviewRecordNotFound indicates that the requested review record does not exist.
	ErrReviewRecordNotFound = fmt.Errorf("%w: review record", ErrNotFound)
)

// IsNotFoundError reports whether err is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is, or wraps, ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError attaches the entity and operation to a low-level failure so that
// logs say which query broke without exposing the query itself.
type StoreError struct {
	Entity    string // The entity type (e.g., "review_record")
	Operation string // The operation that failed (e.g., "save", "list_due")
	Message   string // Error message
	Err       error  // Original error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
