package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned when no model provider has been wired.
	ErrNotConfigured = errors.New("llm client not configured")
	// ErrRateLimited signals the provider throttled the request.
	ErrRateLimited = errors.New("llm provider rate limited")
	// ErrAttemptTimeout signals a single attempt exceeded its deadline.
	ErrAttemptTimeout = errors.New("llm attempt timed out")
	// ErrEmptyCompletion signals the provider returned no text.
	ErrEmptyCompletion = errors.New("llm returned empty completion")
)

// StatusError is a non-success HTTP status from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, body)
}
