package client

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError is one entry of a validation error's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Code    string
	Details []FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict
}

// ErrNotLoggedIn is returned by Session operations that need a token.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrNoThread is returned when a message is sent without an open thread.
var ErrNoThread = errors.New("no conversation thread is open")
