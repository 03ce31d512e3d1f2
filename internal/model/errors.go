package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrProfileNotFound is returned when a user has never uploaded a résumé.
var ErrProfileNotFound = errors.New("skill profile not found")

// ErrAllSourcesFailed signals that no source produced a single posting.
// The aggregator answers it with the fallback set and never returns it.
var ErrAllSourcesFailed = errors.New("all job sources failed or returned no postings")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// SourceError reports that one job source failed or timed out.
type SourceError struct {
	Source string
	Term   string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("source %s (term %q) unavailable: %v", e.Source, e.Term, e.Err)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
