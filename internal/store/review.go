package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgulbay/flashbox/internal/domain"
)

// Due queue page sizes.
const (
	DefaultDueLimit = 20
	MaxDueLimit     = 500
)

// NormalizeDueLimit applies the default to non-positive limits and caps large ones.
func NormalizeDueLimit(limit int) int {
	if limit <= 0 {
		return DefaultDueLimit
	}
	if limit > MaxDueLimit {
		return MaxDueLimit
	}
	return limit
}

// ReviewStats summarizes a user's review records.
type ReviewStats struct {
	// BoxCounts[i] is the number of records in box i+1, mastered ones included.
	BoxCounts [domain.MaxBoxNumber]int64 `json:"box_counts"`
	Total     int64                      `json:"total"`
	Mastered  int64                      `json:"mastered"`
	Due       int64                      `json:"due"`
}

// ReviewRecordStore defines the interface for review record persistence.
type ReviewRecordStore interface {
	// FindOrCreate returns the record for (userID, item), creating the initial
	// record (box 1, due at now) if none exists.
	// Concurrent callers for the same pair all receive the same single record;
	// a uniqueness conflict is never surfaced.
	// Returns ErrExclusivityViolation if item is not a valid reference.
	FindOrCreate(ctx context.Context, userID uuid.UUID, item domain.ItemRef, now time.Time) (*domain.ReviewRecord, error)

	// Get retrieves the record for (userID, item).
	// Returns ErrReviewRecordNotFound if the record does not exist.
	Get(ctx context.Context, userID uuid.UUID, item domain.ItemRef) (*domain.ReviewRecord, error)

	// Save persists the scheduling state of an existing record.
	//
	// The write only succeeds if the stored revision still equals
	// record.Revision; on success record.Revision is incremented.
	// Returns ErrConcurrentModification if another writer saved first.
	// Returns ErrReviewRecordNotFound if the record has been deleted.
	// Returns ErrInvalidEntity if the record fails domain validation.
	Save(ctx context.Context, record *domain.ReviewRecord) error

	// ListDue returns the user's non-mastered records with next_review_at <= asOf,
	// ordered by next_review_at, then box number, then id.
	// limit is normalized with NormalizeDueLimit. A nil kind matches every kind.
	// The result is never nil.
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		asOf time.Time,
		limit int,
		kind *domain.ItemKind,
	) ([]*domain.ReviewRecord, error)

	// CountDue returns how many of the user's records are due at asOf.
	CountDue(ctx context.Context, userID uuid.UUID, asOf time.Time) (int64, error)

	// Stats returns per-box, mastered and due counts for the user.
	Stats(ctx context.Context, userID uuid.UUID, asOf time.Time) (*ReviewStats, error)

	// DeleteForItem removes every record referencing the item, across all users.
	// Deleting nothing is not an error.
	DeleteForItem(ctx context.Context, item domain.ItemRef) (int64, error)

	// DeleteForUser removes every record of the user.
	// Deleting nothing is not an error.
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new ReviewRecordStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service)
	// through RunInTransaction.
	WithTx(tx *sqlx.Tx) ReviewRecordStore
}
