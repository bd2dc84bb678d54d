package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Ownership failures are reported as
// ErrNotFound rather than ErrForbidden so callers cannot probe for existence.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("duplicate entry")
	ErrInvalidState = errors.New("invalid state for operation")
	ErrValidation   = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unclassified errors become a 500 with no internal detail leaked.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidState):
		Problem(w, http.StatusBadRequest, "Invalid State", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
