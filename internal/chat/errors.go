package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrMessagesRequired is returned when the request has no usable messages array.
	ErrMessagesRequired = errors.New("messages array is required")
	// ErrInvalidBody is returned when the request body is not valid JSON of the expected shape.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrNotConfigured marks a provider that has no endpoint or credentials.
	ErrNotConfigured = errors.New("provider not configured")
)

// StatusError is a non-2xx response from an upstream completion service.
type StatusError struct {
	Op         string // provider that failed, e.g. "backend"
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}
