package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/srgulbay/flashbox/internal/api/shared"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/service/review"
)

// ReviewHandler serves the review endpoints for the authenticated user.
type ReviewHandler struct {
	service review.ReviewService
	clock   func() time.Time
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. A nil clock means time.Now.
func NewReviewHandler(service review.ReviewService, clock func() time.Time, logger *slog.Logger) *ReviewHandler {
	if service == nil {
		panic("review service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}
	if clock == nil {
		clock = time.Now
	}
	return &ReviewHandler{
		service: service,
		clock:   clock,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// GetDueQueue handles GET /api/reviews/due?limit=&kind=
func (h *ReviewHandler) GetDueQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, kind, err := parseDueQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	records, err := h.service.GetDueQueue(r.Context(), userID, h.clock(), limit, kind)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due reviews")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordsToResponse(records))
}

// SubmitReview handles POST /api/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	item, err := req.Ref()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	record, err := h.service.SubmitReview(r.Context(), userID, item,
		domain.ReviewOutcome(req.Outcome), h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("item", item.String()),
		slog.String("outcome", req.Outcome),
		slog.Int("box_number", record.BoxNumber))
	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// Enqueue handles POST /api/reviews/queue
func (h *ReviewHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req EnqueueRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	items := make([]domain.ItemRef, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := it.Ref()
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		items = append(items, item)
	}

	records, err := h.service.Enqueue(r.Context(), userID, items, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to enqueue items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordsToResponse(records))
}

// Postpone handles POST /api/reviews/postpone
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req PostponeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	item, err := req.Ref()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	record, err := h.service.Postpone(r.Context(), userID, item, req.Days, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// Stats handles GET /api/reviews/stats
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load review stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}
