package arxiv

import (
	"errors"
	"fmt"
)

// Common errors returned by the arXiv client.
var (
	// ErrNotFound indicates the identifier has no usable record.
	ErrNotFound = errors.New("not found on arXiv")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with arXiv")

	// ErrInvalidResponse indicates an unexpected or empty payload.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError represents a non-2xx response from the arXiv services.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arXiv API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates no record exists.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
