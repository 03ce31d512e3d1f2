package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

// KeyedLimiter spaces calls that share a key by at least minDelay. Each caller
// reserves the next free slot under the lock, so concurrent waiters queue up
// instead of firing together.
type KeyedLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time
	minDelay time.Duration
	now      func() time.Time
}

func NewKeyedLimiter(minDelay time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
		now:      time.Now,
	}
}

// Wait blocks until key's reserved slot arrives or ctx is done.
func (l *KeyedLimiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	now := l.now()
	slot, ok := l.next[key]
	if !ok || slot.Before(now) {
		slot = now
	}
	l.next[key] = slot.Add(l.minDelay)
	l.mu.Unlock()

	remaining := slot.Sub(now)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RateLimitedSource waits on a shared limiter before every search. Sources
// that hit the same upstream should share a limiter and key.
type RateLimitedSource struct {
	inner   model.JobSource
	limiter *KeyedLimiter
	key     string
}

func NewRateLimitedSource(inner model.JobSource, limiter *KeyedLimiter, key string) *RateLimitedSource {
	return &RateLimitedSource{inner: inner, limiter: limiter, key: key}
}

func (s *RateLimitedSource) Name() string {
	return s.inner.Name()
}

func (s *RateLimitedSource) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, q)
}
