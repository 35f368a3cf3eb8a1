package instructions

import (
	"errors"
	"net/http"
)

// Domain errors for standing instruction operations.
var (
	ErrNotFound        = errors.New("instruction not found")
	ErrDuplicate       = errors.New("instruction with this text already exists")
	ErrInvalidCategory = errors.New("category must be behavior, communication, decision, security, or workflow")
	ErrInvalidPriority = errors.New("priority must be between 1 and 10")
	ErrInvalidText     = errors.New("instruction text is empty or too long")
	ErrInvalidHints    = errors.New("min_confidence must be between 0 and 1")
	ErrEmptyBulk       = errors.New("bulk update requires at least one id")
	ErrLimitReached    = errors.New("enabled instruction limit reached")
)

// MapHTTPStatus maps instruction domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrLimitReached):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidText),
		errors.Is(err, ErrInvalidHints),
		errors.Is(err, ErrEmptyBulk):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
