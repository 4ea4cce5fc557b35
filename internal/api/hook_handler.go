package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/srgulbay/flashbox/internal/api/shared"
	"github.com/srgulbay/flashbox/internal/platform/logger"
	"github.com/srgulbay/flashbox/internal/service/review"
)

// HookSecretHeader carries the shared secret of the lifecycle hooks.
const HookSecretHeader = "X-Hook-Secret"

// HookHandler serves the lifecycle hooks that the user and content
// subsystems call when they delete a user or an item.
type HookHandler struct {
	service review.ReviewService
	secret  []byte
	logger  *slog.Logger
}

// NewHookHandler creates a HookHandler guarded by secret.
func NewHookHandler(service review.ReviewService, secret string, logger *slog.Logger) *HookHandler {
	if service == nil {
		panic("review service cannot be nil")
	}
	if secret == "" {
		panic("hook secret cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil for HookHandler")
	}
	return &HookHandler{
		service: service,
		secret:  []byte(secret),
		logger:  logger.With(slog.String("component", "hook_handler")),
	}
}

// RequireSecret rejects requests without the hook secret.
func (h *HookHandler) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get(HookSecretHeader))
		if subtle.ConstantTimeCompare(got, h.secret) != 1 {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid hook secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DeleteItem handles DELETE /api/hooks/items/{kind}/{id}
func (h *HookHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, err := getPathItem(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	n, err := h.service.RemoveItem(r.Context(), item)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove item reviews")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("item deleted by hook",
		slog.String("item", item.String()),
		slog.Int64("deleted", n))
	shared.RespondWithJSON(w, r, http.StatusOK, DeletedResponse{Deleted: n})
}

// DeleteUser handles DELETE /api/hooks/users/{id}
func (h *HookHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	n, err := h.service.RemoveUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove user reviews")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user deleted by hook",
		slog.String("user_id", userID.String()),
		slog.Int64("deleted", n))
	shared.RespondWithJSON(w, r, http.StatusOK, DeletedResponse{Deleted: n})
}
