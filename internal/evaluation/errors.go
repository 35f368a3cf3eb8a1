package evaluation

import (
	"errors"
	"net/http"
)

// Domain errors for evaluation operations.
var (
	ErrMissingContext = errors.New("conversation_context is required")
	ErrLoadFailed     = errors.New("failed to load instructions")
)

// MapHTTPStatus maps evaluation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingContext) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
