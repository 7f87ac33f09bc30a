package utils

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Error kinds shared by services and handlers. Wrap them with NewError so the
// message is safe to show to API clients.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

type AppError struct {
	Kind    error
	Message string
	Data    interface{}
}

func (e *AppError) Error() string { return e.Message }
func (e *AppError) Unwrap() error { return e.Kind }

func NewError(kind error, message string) error {
	return &AppError{Kind: kind, Message: message}
}

// StatusFor maps an error kind to its HTTP status. Conflicts are reported as
// 400 to match the public API.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as an envelope. Unknown errors are logged and
// reported as a generic server error.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	var appErr *AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		log.Error().Err(err).Msg("request failed")
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	WriteJSON(w, status, APIResponse{Success: false, Message: appErr.Message, Data: appErr.Data})
}
