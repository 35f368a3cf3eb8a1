package control

import (
	"errors"
	"net/http"
)

// Domain errors for control hand-off operations.
var (
	ErrInvalidOwner   = errors.New("owner must be agent or human")
	ErrInvalidSession = errors.New("session id is empty, too long, or contains ':' or whitespace")
	ErrOwnerMismatch  = errors.New("current owner does not match expected_owner")
	ErrContended      = errors.New("control state changed concurrently, retry")
)

// MapHTTPStatus maps control domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidOwner), errors.Is(err, ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, ErrOwnerMismatch), errors.Is(err, ErrContended):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
