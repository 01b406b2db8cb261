package resilience

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	p := Policy{Retries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	got, err := Retry(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, Transient(eris.New("flaky upstream"), http.StatusServiceUnavailable)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	p := Policy{Retries: 5, BaseDelay: time.Millisecond}

	_, err := Retry(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		return "", eris.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	p := Policy{Retries: 2, BaseDelay: time.Millisecond}

	_, err := Retry(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, Transient(eris.New("still down"), http.StatusBadGateway)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Retries: 10, BaseDelay: 50 * time.Millisecond}

	calls := 0
	_, err := Retry(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, Transient(eris.New("down"), http.StatusServiceUnavailable)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("validation failed")))
	assert.True(t, IsTransient(Transient(eris.New("x"), 503)))
	assert.True(t, IsTransient(eris.New("read tcp: i/o timeout")))
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, RetryableStatus(429))
	assert.True(t, RetryableStatus(503))
	assert.False(t, RetryableStatus(404))
	assert.False(t, RetryableStatus(200))
}
