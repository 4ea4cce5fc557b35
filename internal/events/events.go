package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/domain"
)

// Review event types
const (
	// TypeReviewSubmitted is emitted after every committed review.
	TypeReviewSubmitted = "review.submitted"
	// TypeReviewMastered is emitted when a review masters an item.
	TypeReviewMastered = "review.mastered"
)

// ReviewEvent describes a committed change to a user's review schedule.
type ReviewEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	UserID       uuid.UUID            `json:"user_id"`
	ItemKind     domain.ItemKind      `json:"item_kind"`
	ItemID       uuid.UUID            `json:"item_id"`
	Outcome      domain.ReviewOutcome `json:"outcome"`
	BoxNumber    int                  `json:"box_number"`
	IsMastered   bool                 `json:"is_mastered"`
	NextReviewAt time.Time            `json:"next_review_at"`

	// OccurredAt is the review time, not the emission time
	OccurredAt time.Time `json:"occurred_at"`
}

// NewReviewEvent creates an event of the given type from the saved record.
func NewReviewEvent(
	eventType string,
	record *domain.ReviewRecord,
	outcome domain.ReviewOutcome,
	occurredAt time.Time,
) *ReviewEvent {
	return &ReviewEvent{
		ID:           uuid.New(),
		Type:         eventType,
		UserID:       record.UserID,
		ItemKind:     record.Item.Kind(),
		ItemID:       record.Item.ID(),
		Outcome:      outcome,
		BoxNumber:    record.BoxNumber,
		IsMastered:   record.IsMastered,
		NextReviewAt: record.NextReviewAt,
		OccurredAt:   occurredAt,
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ReviewEvent) error
}

// EventHandlerFunc adapts a plain function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *ReviewEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *ReviewEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ReviewEvent) error
}
