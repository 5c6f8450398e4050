package api

import (
	"errors"
	"net/http"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/storage"
)

// APIError is the JSON shape returned for any non-2xx response.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string { return e.Message }

// NewAPIError constructs an APIError.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

// translateError maps a core/storage error to the HTTP status and code
// a client should see, one error to one response shape.
func translateError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, storage.ErrProjectNotFound) {
		return NewAPIError("PROJECT_NOT_FOUND", "project not found", http.StatusNotFound)
	}

	var pathErr *direrr.PathNotFoundError
	if errors.As(err, &pathErr) {
		return NewAPIError("PATH_NOT_FOUND", err.Error(), http.StatusBadRequest)
	}
	var typeErr *direrr.TypeMismatchError
	if errors.As(err, &typeErr) {
		return NewAPIError("TYPE_MISMATCH", err.Error(), http.StatusBadRequest)
	}
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return NewAPIError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest)
	}
	var abortErr *direrr.TickAbortedError
	if errors.As(err, &abortErr) {
		return NewAPIError("TICK_ABORTED", err.Error(), http.StatusUnprocessableEntity)
	}

	return NewAPIError("INTERNAL_ERROR", "an unexpected error occurred", http.StatusInternalServerError)
}
