package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/store"
)

// ReviewService manages users' review schedules.
type ReviewService interface {
	// SubmitReview records the outcome of one review and reschedules the item.
	//
	// The user's record for the item is created on first contact. The new
	// state is computed by the box scheduler and saved with a revision check;
	// when another submission for the same (user, item) commits in between,
	// the outcome is re-applied to the fresh state, up to the configured number
	// of attempts.
	//
	// Returns:
	//   - (*domain.ReviewRecord, nil): the committed record
	//   - (nil, ErrInvalidOutcome): outcome is neither correct nor incorrect
	//   - (nil, domain.ErrInvalidItemReference): item is not a valid reference
	//   - (nil, ErrUserNotFound / ErrItemNotFound): the user or item is unknown,
	//     or the record disappeared mid-submission
	//   - (nil, ErrSchedulingConflict): every attempt lost the race
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		item domain.ItemRef,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.ReviewRecord, error)

	// GetDueQueue returns the user's due records, earliest first.
	// A non-positive limit uses the configured default. A nil kind matches all kinds.
	GetDueQueue(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		limit int,
		kind *domain.ItemKind,
	) ([]*domain.ReviewRecord, error)

	// Enqueue adds items to the user's review queue. Items already scheduled
	// keep their state. All records are created in one transaction and
	// returned in request order, duplicates collapsed.
	Enqueue(
		ctx context.Context,
		userID uuid.UUID,
		items []domain.ItemRef,
		now time.Time,
	) ([]*domain.ReviewRecord, error)

	// Postpone pushes an existing record's next review forward by days.
	// Returns ErrRecordNotFound if the item was never scheduled for the user.
	Postpone(
		ctx context.Context,
		userID uuid.UUID,
		item domain.ItemRef,
		days int,
		now time.Time,
	) (*domain.ReviewRecord, error)

	// Stats summarizes the user's records.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*store.ReviewStats, error)

	// RemoveItem drops every record of a deleted item.
	RemoveItem(ctx context.Context, item domain.ItemRef) (int64, error)

	// RemoveUser drops every record of a deleted user.
	RemoveUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Catalog answers whether the users and items owned by other subsystems exist.
type Catalog interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, item domain.ItemRef) (bool, error)
}

// Options tunes the service.
type Options struct {
	// MaxSaveAttempts bounds the optimistic retry loop. Zero means DefaultMaxSaveAttempts.
	MaxSaveAttempts int
	// DefaultDueLimit is used when GetDueQueue receives a non-positive limit.
	DefaultDueLimit int
}

// Defaults for Options
const (
	DefaultMaxSaveAttempts = 3
	// MaxEnqueueItems caps the size of one Enqueue call.
	MaxEnqueueItems = 100
)

// Common error types for ReviewService
var (
	// ErrInvalidOutcome indicates an outcome other than correct or incorrect.
	ErrInvalidOutcome = errors.New("invalid review outcome")

	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrItemNotFound indicates that the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrRecordNotFound indicates that the item was never scheduled for the user.
	ErrRecordNotFound = errors.New("review record not found")

	// ErrSchedulingConflict indicates that concurrent writers kept winning the
	// race for the same record. The caller may retry.
	ErrSchedulingConflict = errors.New("review scheduling conflict")

	// ErrInvalidDays indicates a postpone of less than one day.
	ErrInvalidDays = errors.New("postpone days must be at least 1")

	// ErrInvalidItems indicates an empty or oversized Enqueue batch.
	ErrInvalidItems = errors.New("invalid item batch")
)

// ServiceError wraps unexpected failures of the review service with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
