// Package clients provides typed HTTP access to the collaborator services:
// car search, user profiles, and chat persistence. Every client unwraps the
// shared {success, data, error} envelope and normalizes expected failures.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// DefaultTimeout bounds every collaborator call.
const DefaultTimeout = 10 * time.Second

// envelope is the response wrapper all collaborator services share.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError marks an HTTP-level failure from a collaborator so callers can
// branch on the status (e.g. treat 404 as an empty result).
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collaborator returned status %d", e.Status)
}

// base is shared plumbing for the three collaborator clients.
type base struct {
	baseURL string
	http    *http.Client
	logger  *observability.Logger
}

func newBase(baseURL string, timeout time.Duration, logger *observability.Logger) base {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return base{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// doJSON performs a JSON request and unwraps the envelope into out (which may
// be nil when the caller only cares about success). Non-2xx responses are
// logged with method, status, and body, then returned as a StatusError.
func (b *base) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		b.logger.Error(ctx, "collaborator request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.logger.Error(ctx, "collaborator returned error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// isNotFound reports whether err is a collaborator 404.
func isNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.Status == http.StatusNotFound
}
