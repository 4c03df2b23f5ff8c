package vision

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/docscan/form-renamer/internal/domain"
)

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RetryConfig holds retry configuration. Only rate-limit responses are
// retried; network, auth and other API errors surface immediately.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// shouldRetry determines if a status code is retryable
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	// Exponential backoff: initialBackoff * 2^attempt
	backoff := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))

	// Cap at maxBackoff
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}

// retryWithBackoff wraps an HTTP request with rate-limit retry logic
func (c *Client) retryWithBackoff(ctx context.Context, reqFunc func() (*http.Response, error)) (*http.Response, error) {
	config := c.retry

	for attempt := 0; ; attempt++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := reqFunc()
		if err != nil {
			return nil, err
		}

		if !shouldRetry(resp.StatusCode) {
			return resp, nil
		}

		// Read the detail and close the body before retrying
		detail := readErrorDetail(resp.Body)
		resp.Body.Close()

		if attempt >= config.MaxRetries {
			return nil, domain.RateLimitError(fmt.Sprintf("rate limited after %d retries: %s", config.MaxRetries, detail), nil)
		}

		backoff := calculateBackoff(attempt, config)
		c.logger.Warn().
			Int("attempt", attempt+1).
			Int("max_retries", config.MaxRetries).
			Dur("backoff", backoff).
			Msg("rate limited, retrying")

		// Wait with context cancellation support
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			// Continue to next attempt
		}
	}
}
