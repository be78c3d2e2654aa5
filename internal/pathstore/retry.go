package pathstore

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// MaxRetries is how many times a transient failure is retried.
const MaxRetries = 3

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, e.Message)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// retryableStatus reports whether the server asked us to come back later.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
