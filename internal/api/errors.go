package api

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the prices API.
type APIError struct {
	StatusCode int
	Status     string // Status text, e.g. "Not Found"
	Detail     string // "detail" field of the error body, if any
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("prices api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("prices api error %d: %s", e.StatusCode, e.Status)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// NoResponseError means the request was dispatched but no complete response arrived.
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string { return "no response: " + e.Err.Error() }

func (e *NoResponseError) Unwrap() error { return e.Err }

// SetupError means the request could not be constructed.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }

func (e *SetupError) Unwrap() error { return e.Err }

// PayloadError means a 2xx body did not have the expected shape.
type PayloadError struct {
	Reason string
}

func (e *PayloadError) Error() string { return "malformed payload: " + e.Reason }

// ErrNoBaseURL is returned as a SetupError when the client has no base URL.
var ErrNoBaseURL = errors.New("api base url is not configured")
