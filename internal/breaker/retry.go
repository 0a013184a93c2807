package breaker

import "time"

const retryBaseDelay = 2 * time.Second

// Retryable is implemented by errors that carry a retry classification
// (stt.Error satisfies this without breaker importing the stt package).
type Retryable interface {
	IsRetryable() bool
}

// RetryPolicy decides whether and how long to wait before retrying the same
// provider attempt.
type RetryPolicy struct {
	MaxRetries int
}

// NewRetryPolicy builds a policy allowing up to maxRetries retries.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries}
}

// ShouldRetry reports whether attempt (0-indexed) may be retried for err.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	retryable, ok := err.(Retryable)
	return ok && retryable.IsRetryable()
}

// Delay returns the backoff before retry attempt k (0-indexed):
// base_delay * 2^k, with a 1s lower bound.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	multiplier := time.Duration(1) << uint(attempt)
	delay := retryBaseDelay * multiplier
	if delay < time.Second {
		return time.Second
	}
	return delay
}
