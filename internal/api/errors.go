package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/srgulbay/flashbox/internal/api/shared"
	"github.com/srgulbay/flashbox/internal/domain"
	"github.com/srgulbay/flashbox/internal/service/auth"
	"github.com/srgulbay/flashbox/internal/service/review"
	"github.com/srgulbay/flashbox/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, review.ErrUserNotFound),
		errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, review.ErrRecordNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, review.ErrSchedulingConflict),
		errors.Is(err, store.ErrConcurrentModification):
		return http.StatusConflict

	case errors.Is(err, review.ErrInvalidOutcome),
		errors.Is(err, review.ErrInvalidDays),
		errors.Is(err, review.ErrInvalidItems),
		errors.Is(err, domain.ErrInvalidItemReference),
		errors.Is(err, domain.ErrInvalidItemKind),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, review.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, review.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, review.ErrRecordNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Item is not scheduled for review"

	case errors.Is(err, review.ErrSchedulingConflict),
		errors.Is(err, store.ErrConcurrentModification):
		return "The review was modified concurrently, please retry"

	case errors.Is(err, review.ErrInvalidOutcome):
		return "Invalid review outcome"
	case errors.Is(err, review.ErrInvalidDays):
		return "Postpone days must be at least 1"
	case errors.Is(err, review.ErrInvalidItems):
		return "Invalid number of items"
	case errors.Is(err, domain.ErrInvalidItemKind):
		return "Invalid item kind"
	case errors.Is(err, domain.ErrInvalidItemReference),
		errors.Is(err, store.ErrExclusivityViolation):
		return "Invalid item reference"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err. For
// unmapped errors fallback replaces the generic message when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a message naming the
// first offending field, without echoing submitted values.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}

	fe := fieldErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a UUID"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
