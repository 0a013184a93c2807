package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type retryableErr struct{ retryable bool }

func (e retryableErr) Error() string     { return "boom" }
func (e retryableErr) IsRetryable() bool { return e.retryable }

func TestRetryPolicyShouldRetryRespectsMaxRetriesAndRetryability(t *testing.T) {
	p := NewRetryPolicy(2)

	require.True(t, p.ShouldRetry(0, retryableErr{retryable: true}))
	require.True(t, p.ShouldRetry(1, retryableErr{retryable: true}))
	require.False(t, p.ShouldRetry(2, retryableErr{retryable: true}))
	require.False(t, p.ShouldRetry(0, retryableErr{retryable: false}))
}

func TestRetryPolicyShouldRetryNonClassifiedErrorIsNotRetryable(t *testing.T) {
	p := NewRetryPolicy(5)
	require.False(t, p.ShouldRetry(0, errors.New("plain")))
}

func TestRetryPolicyDelayDoublesPerAttemptWithOneSecondFloor(t *testing.T) {
	p := NewRetryPolicy(5)

	require.Equal(t, 2*time.Second, p.Delay(0))
	require.Equal(t, 4*time.Second, p.Delay(1))
	require.Equal(t, 8*time.Second, p.Delay(2))
}
