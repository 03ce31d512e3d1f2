package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

// RetrySource retries transient search failures with exponential backoff and
// jitter before giving up on the wrapped JobSource.
type RetrySource struct {
	inner      model.JobSource
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetrySource wraps a JobSource with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the wait before the first retry, doubled on each later one.
func NewRetrySource(inner model.JobSource, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetrySource {
	return &RetrySource{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (s *RetrySource) Name() string {
	return s.inner.Name()
}

// Search queries the wrapped source, retrying on transient errors.
func (s *RetrySource) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	postings, err := s.inner.Search(ctx, q)
	if err == nil {
		return postings, nil
	}
	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		delay := s.backoffDelay(attempt, lastErr)

		s.logger.Warn("retrying after transient error",
			"source", s.inner.Name(),
			"term", q.Term,
			"attempt", attempt,
			"max_retries", s.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		postings, err = s.inner.Search(ctx, q)
		if err == nil {
			return postings, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay returns baseDelay * 2^(attempt-1) with ±30% jitter. A
// Retry-After hint from the server wins over the computed value.
func (s *RetrySource) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := s.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable reports whether err is a transient failure worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation and per-call timeouts end the source's turn.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Network and DNS errors.
	return true
}
