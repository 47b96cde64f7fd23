package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/service/review"
	"github.com/phrazzld/scry-words/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Store failures first: they may wrap any other store error
	case errors.Is(err, review.ErrPersistence),
		errors.Is(err, store.ErrTransactionFailed):
		return http.StatusServiceUnavailable

	// Ownership is reported as absence so card IDs of other owners do not leak
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, review.ErrScheduleLimit):
		return http.StatusUnprocessableEntity

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrDuplicateWord),
		errors.Is(err, review.ErrInvalidState):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrPersistence),
		errors.Is(err, store.ErrTransactionFailed):
		return "Card store temporarily unavailable, please retry"

	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, domain.ErrDuplicateWord):
		return "Word already exists"

	case errors.Is(err, review.ErrScheduleLimit):
		return "Card has reached the longest review interval; mark it learned or cancel the session"

	case errors.Is(err, review.ErrInvalidState):
		return "No review session in a state that accepts this command"

	case errors.Is(err, domain.ErrInvalidOwner):
		return "Invalid owner ID"

	case errors.Is(err, review.ErrInvalidMode):
		return "Invalid review mode"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return SanitizeValidationError(err)

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator field errors into a short message
// naming the first offending field. Other errors yield a generic message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}
