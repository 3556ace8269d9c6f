package llm

import (
	"time"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
)

// RetryConfig defines retry behavior for rate-limited generation calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Default retry constants for hosted model APIs.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 8 * time.Second
)

// retryFromConfig builds a RetryConfig, falling back to defaults per field.
func retryFromConfig(cfg config.AnswerConfig) RetryConfig {
	rc := RetryConfig{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: time.Duration(cfg.InitialBackoffMS) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.MaxBackoffMS) * time.Millisecond,
	}
	if rc.MaxRetries <= 0 {
		rc.MaxRetries = DefaultMaxRetries
	}
	if rc.InitialBackoff <= 0 {
		rc.InitialBackoff = DefaultInitialBackoff
	}
	if rc.MaxBackoff <= 0 {
		rc.MaxBackoff = DefaultMaxBackoff
	}
	return rc
}

// CalculateBackoff returns the wait before retry number attempt (0-based),
// doubling from InitialBackoff and capped at MaxBackoff.
func (c RetryConfig) CalculateBackoff(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if backoff > c.MaxBackoff {
		return c.MaxBackoff
	}
	return backoff
}
