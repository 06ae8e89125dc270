package agent

import (
	"errors"
	"fmt"
)

// ErrNoProvider indicates no model provider is configured.
var ErrNoProvider = errors.New("no provider configured")

// ProviderError wraps a model-provider API failure with its HTTP status so
// the loop can translate anticipated statuses into user-facing messages.
// Errors without a ProviderError wrapper propagate to the caller.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %v", e.StatusCode, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
