package orchestrator

import (
	"time"

	"github.com/haqei/situation-engine/internal/codec"
)

// #region constants

const maxRetries = 2 // max 2 retries = 3 total attempts

// #endregion

// #region policy

// RetryPolicy decides whether a failed vectorizer call is tried again.
type RetryPolicy struct {
	maxRetries int
	backoff    time.Duration
	retryable  func(error) bool
}

// NewRetryPolicy creates a policy allowing max retries. A negative max
// disables retries.
func NewRetryPolicy(max int, backoff time.Duration) *RetryPolicy {
	if max < 0 {
		max = 0
	}
	return &RetryPolicy{maxRetries: max, backoff: backoff, retryable: codec.IsRetryable}
}

// #endregion

// #region should-retry

// ShouldRetry reports whether to try again after attempts failed calls,
// the latest having failed with err.
func (p *RetryPolicy) ShouldRetry(attempts int, err error) bool {
	if err == nil || attempts > p.maxRetries {
		return false
	}
	return p.retryable(err)
}

// Delay is the wait before the next attempt.
func (p *RetryPolicy) Delay(attempts int) time.Duration {
	return time.Duration(attempts) * p.backoff
}

// #endregion
