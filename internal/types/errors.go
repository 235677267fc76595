package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrBadStatus    = errors.New("malformed status value")
	ErrEmptyBody    = errors.New("empty response body")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError wraps errors that occur while talking to the wigo API.
type APIError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api error for %s: %v", e.URL, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) IsRetryable() bool { return e.Retryable }

// StorageError wraps errors that occur while recording history.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
