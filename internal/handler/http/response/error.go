package response

import (
	"errors"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/domain/preference"
	"github.com/flipit/flipit-session-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUnauthorized):
		Unauthorized(w, "Unauthorized")

	// Like domain errors
	case errors.Is(err, like.ErrAuthRequired):
		Unauthorized(w, "Sign in to like items")
	case errors.Is(err, like.ErrInvalidItemID):
		ValidationError(w, map[string]string{"item_id": "must be a positive integer"})
	case errors.Is(err, like.ErrTooManyItemIDs):
		ValidationError(w, map[string]string{"item_ids": err.Error()})
	case errors.Is(err, like.ErrBackend):
		BadGateway(w, "Marketplace is unavailable, please retry")

	// Preference domain errors
	case errors.Is(err, preference.ErrUnknownKey):
		ValidationError(w, map[string]string{"key": "unknown notification preference"})

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
