package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Box bounds of the Leitner scheme.
const (
	MinBoxNumber = 1
	MaxBoxNumber = 5
)

// ReviewOutcome represents the result of reviewing a learnable item.
type ReviewOutcome string

// Possible review outcome values
const (
	ReviewOutcomeCorrect   ReviewOutcome = "correct"
	ReviewOutcomeIncorrect ReviewOutcome = "incorrect"
)

// Valid reports whether o is a known outcome.
func (o ReviewOutcome) Valid() bool {
	return o == ReviewOutcomeCorrect || o == ReviewOutcomeIncorrect
}

// Validation errors for ReviewRecord
var (
	ErrEmptyRecordUserID    = errors.New("review record user ID cannot be empty")
	ErrInvalidBoxNumber     = errors.New("box number must be between 1 and 5")
	ErrEmptyNextReviewAt    = errors.New("next review time must be set")
	ErrNextReviewBeforeLast = errors.New("next review time cannot precede last review time")
)

// ReviewRecord is the scheduling state of one learnable item for one user.
// There is at most one record per (user, item).
type ReviewRecord struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Item           ItemRef    `json:"-"`
	BoxNumber      int        `json:"box_number"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"` // nil until the first review
	NextReviewAt   time.Time  `json:"next_review_at"`
	IsMastered     bool       `json:"is_mastered"`
	// Revision is bumped by every successful save and is used by the store to
	// detect concurrent writers.
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReviewRecord creates the initial record for an item the user has not
// interacted with before. The item is immediately due.
func NewReviewRecord(userID uuid.UUID, item ItemRef, now time.Time) (*ReviewRecord, error) {
	now = now.UTC()
	record := &ReviewRecord{
		ID:           uuid.New(),
		UserID:       userID,
		Item:         item,
		BoxNumber:    MinBoxNumber,
		NextReviewAt: now,
		Revision:     1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks the record invariants.
func (r *ReviewRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrEmptyRecordUserID
	}

	if err := r.Item.Validate(); err != nil {
		return err
	}

	if r.BoxNumber < MinBoxNumber || r.BoxNumber > MaxBoxNumber {
		return fmt.Errorf("%w: got %d", ErrInvalidBoxNumber, r.BoxNumber)
	}

	if r.NextReviewAt.IsZero() {
		return ErrEmptyNextReviewAt
	}

	if r.LastReviewedAt != nil && r.NextReviewAt.Before(*r.LastReviewedAt) {
		return ErrNextReviewBeforeLast
	}

	return nil
}

// IsDue reports whether the record should be presented for review at asOf.
// Mastered records are never due, whatever their next review time.
func (r *ReviewRecord) IsDue(asOf time.Time) bool {
	return !r.IsMastered && !r.NextReviewAt.After(asOf)
}

// Clone returns a deep copy of the record.
func (r *ReviewRecord) Clone() *ReviewRecord {
	c := *r
	if r.LastReviewedAt != nil {
		t := *r.LastReviewedAt
		c.LastReviewedAt = &t
	}
	return &c
}
