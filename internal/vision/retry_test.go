package vision

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry_OnlyRateLimits(t *testing.T) {
	assert.True(t, shouldRetry(http.StatusTooManyRequests))

	for _, status := range []int{200, 400, 401, 403, 404, 500, 502, 503} {
		assert.False(t, shouldRetry(status), "status %d must not be retried", status)
	}
}

func TestCalculateBackoff_Exponential(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
	}

	assert.Equal(t, 1*time.Second, calculateBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, calculateBackoff(1, cfg))
	assert.Equal(t, 4*time.Second, calculateBackoff(2, cfg))
	assert.Equal(t, 8*time.Second, calculateBackoff(3, cfg))
}

func TestCalculateBackoff_CappedAtMax(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
	}

	assert.Equal(t, 30*time.Second, calculateBackoff(5, cfg))
	assert.Equal(t, 30*time.Second, calculateBackoff(20, cfg))
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1*time.Second, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
}
