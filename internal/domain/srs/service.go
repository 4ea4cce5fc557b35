package srs

import (
	"errors"
	"time"

	"github.com/srgulbay/flashbox/internal/domain"
)

// Common errors
var (
	ErrNilRecord      = errors.New("review record cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
	ErrInvalidDays    = errors.New("postpone days must be at least 1")
)

// Service defines the interface for box scheduling operations
type Service interface {
	// ApplyOutcome computes the record state that follows a review outcome.
	ApplyOutcome(
		record *domain.ReviewRecord,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.ReviewRecord, error)

	// PostponeReview pushes the next review time forward by a number of days
	// without changing the box or mastery state.
	PostponeReview(
		record *domain.ReviewRecord,
		days int,
		now time.Time,
	) (*domain.ReviewRecord, error)

	// Params exposes the interval table in use.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new scheduler service with custom parameters.
// The service keeps its own copy, so later changes to params have no effect.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	owned := *params
	return &defaultService{
		params: &owned,
	}, nil
}

// ApplyOutcome implements the Service interface
func (s *defaultService) ApplyOutcome(
	record *domain.ReviewRecord,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.ReviewRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	return applyOutcome(record, outcome, now, s.params), nil
}

// PostponeReview implements the Service interface
func (s *defaultService) PostponeReview(
	record *domain.ReviewRecord,
	days int,
	now time.Time,
) (*domain.ReviewRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	postponed := record.Clone()
	postponed.NextReviewAt = record.NextReviewAt.AddDate(0, 0, days)
	postponed.UpdatedAt = now

	return postponed, nil
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	return *s.params
}
