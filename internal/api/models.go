package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/store"
)

// ItemRequest identifies one learnable item.
type ItemRequest struct {
	ItemKind string `json:"item_kind" validate:"required,oneof=flashcard question topic"`
	ItemID   string `json:"item_id"   validate:"required,uuid"`
}

// Ref converts the request into a domain reference.
func (r ItemRequest) Ref() (domain.ItemRef, error) {
	kind, err := domain.ParseItemKind(r.ItemKind)
	if err != nil {
		return domain.ItemRef{}, err
	}
	id, err := uuid.Parse(r.ItemID)
	if err != nil {
		return domain.ItemRef{}, fmt.Errorf("%w: item_id", domain.ErrInvalidID)
	}
	return domain.NewKindRef(kind, id)
}

// SubmitReviewRequest is the body of POST /api/reviews.
type SubmitReviewRequest struct {
	ItemRequest
	Outcome string `json:"outcome" validate:"required,oneof=correct incorrect"`
}

// EnqueueRequest is the body of POST /api/reviews/queue.
type EnqueueRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// PostponeRequest is the body of POST /api/reviews/postpone.
type PostponeRequest struct {
	ItemRequest
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// ReviewRecordResponse is the wire form of a review record.
type ReviewRecordResponse struct {
	ID             string     `json:"id"`
	ItemKind       string     `json:"item_kind"`
	ItemID         string     `json:"item_id"`
	BoxNumber      int        `json:"box_number"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	IsMastered     bool       `json:"is_mastered"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReviewListResponse wraps a list of records.
type ReviewListResponse struct {
	Items []ReviewRecordResponse `json:"items"`
	Count int                    `json:"count"`
}

// StatsResponse summarizes a user's schedule. BoxCounts[0] is box 1.
type StatsResponse struct {
	BoxCounts []int64 `json:"box_counts"`
	Total     int64   `json:"total"`
	Mastered  int64   `json:"mastered"`
	Due       int64   `json:"due"`
}

// DeletedResponse reports how many records a lifecycle hook removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func recordToResponse(r *domain.ReviewRecord) ReviewRecordResponse {
	return ReviewRecordResponse{
		ID:             r.ID.String(),
		ItemKind:       string(r.Item.Kind()),
		ItemID:         r.Item.ID().String(),
		BoxNumber:      r.BoxNumber,
		LastReviewedAt: r.LastReviewedAt,
		NextReviewAt:   r.NextReviewAt,
		IsMastered:     r.IsMastered,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func recordsToResponse(records []*domain.ReviewRecord) ReviewListResponse {
	items := make([]ReviewRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, recordToResponse(r))
	}
	return ReviewListResponse{Items: items, Count: len(items)}
}

func statsToResponse(s *store.ReviewStats) StatsResponse {
	return StatsResponse{
		BoxCounts: s.BoxCounts[:],
		Total:     s.Total,
		Mastered:  s.Mastered,
		Due:       s.Due,
	}
}
