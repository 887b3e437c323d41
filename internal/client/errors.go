package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrLimitReached = errors.New("limit reached")
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response of the bookshelf API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []ErrorDetail
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Is maps the error onto the package sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	case ErrLimitReached:
		return e.Status == http.StatusForbidden && e.Code == "LIMIT_REACHED"
	}
	return false
}
