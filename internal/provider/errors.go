// Package provider defines the shared error taxonomy for external AI providers
// (embedding services, chat-completion backends, web search).
package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable indicates the external service is unreachable or returned a
// non-success status. Treated as non-transient: callers convert to degraded
// mode without retrying.
var ErrUnavailable = errors.New("provider unavailable")

// ErrRateLimited indicates the provider signalled throttling. Recoverable:
// callers may retry with backoff before degrading.
var ErrRateLimited = errors.New("provider rate limited")

// FromStatus maps an HTTP response status to the provider error taxonomy.
// Success statuses return nil.
func FromStatus(status int, detail string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, detail)
	}
}

// IsRateLimited reports whether err is (or wraps) a rate-limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
