package ledger

import (
	"errors"
	"net/http"
)

// Failure taxonomy surfaced to handlers. ErrStore wraps opaque backend
// failures; everything else is a domain outcome.
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("link has expired")
	ErrLimitReached = errors.New("guest limit reached")
	ErrDateMismatch = errors.New("date does not match the link date")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid input")
	ErrStore        = errors.New("store error")
)

// HTTPStatus maps a taxonomy error onto the response code handlers use.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrLimitReached):
		return http.StatusConflict
	case errors.Is(err, ErrDateMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
