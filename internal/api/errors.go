package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/service/auth"
	"github.com/preptrack/preptrack-api/internal/service/progress"
	"github.com/preptrack/preptrack-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, progress.ErrSubtopicNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, progress.ErrSubtopicNotFound),
		errors.Is(err, store.ErrSubjectNotFound),
		errors.Is(err, store.ErrTopicNotFound),
		errors.Is(err, store.ErrSubtopicNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, progress.ErrConflict),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidRevisionField),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrScopeInvalidTrack),
		errors.Is(err, domain.ErrScopeDepartmentEmpty):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, progress.ErrSubtopicNotOwned):
		return "You do not own this subtopic"

	case errors.Is(err, progress.ErrSubtopicNotFound),
		errors.Is(err, store.ErrSubtopicNotFound):
		return "Subtopic not found"

	case errors.Is(err, store.ErrSubjectNotFound):
		return "Subject not found"

	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"

	case errors.Is(err, progress.ErrConflict), errors.Is(err, store.ErrConflict):
		return "The record was modified concurrently, please retry"

	case errors.Is(err, domain.ErrInvalidRevisionField):
		return "Unknown revision field"

	case errors.Is(err, domain.ErrScopeInvalidTrack):
		return "Track must be placement or sarkari"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An internal error occurred"
	}
}

// SanitizeValidationError converts a validator error into a short message
// naming the offending fields without echoing submitted values back.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		return fmt.Sprintf("Invalid %s: failed on %s", first.Field(), first.Tag())
	}
	return "Validation error"
}
