package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/srgulbay/flashbox/internal/api/shared"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/redact"
)

// requireUserID extracts the authenticated user or writes 401.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromRequest(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, param)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, param)
	}
	return id, nil
}

// getPathItem parses the {kind}/{id} path parameters into an item reference.
func getPathItem(r *http.Request) (domain.ItemRef, error) {
	kind, err := domain.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		return domain.ItemRef{}, err
	}
	id, err := getPathUUID(r, "id")
	if err != nil {
		return domain.ItemRef{}, err
	}
	return domain.NewKindRef(kind, id)
}

// parseDueQuery reads the optional limit and kind query parameters.
func parseDueQuery(r *http.Request) (int, *domain.ItemKind, error) {
	q := r.URL.Query()

	var limit int
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, nil, fmt.Errorf("%w: limit must be a positive integer", domain.ErrValidation)
		}
		limit = n
	}

	var kind *domain.ItemKind
	if raw := q.Get("kind"); raw != "" {
		k, err := domain.ParseItemKind(raw)
		if err != nil {
			return 0, nil, err
		}
		kind = &k
	}
	return limit, kind, nil
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
