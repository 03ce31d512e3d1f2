package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	limiter := NewKeyedLimiter(100 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "remotive"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "remotive"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	// Allow 20ms of timer slack.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentKeys_NoCrossBlocking(t *testing.T) {
	limiter := NewKeyedLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "remotive"); err != nil {
		t.Fatalf("remotive wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("adzuna wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected adzuna wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ReservesSlotsInOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewKeyedLimiter(time.Second)
	limiter.now = func() time.Time { return base }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The first call owns the current slot; the next two reserve later ones
	// even though their waits are cancelled.
	if err := limiter.Wait(ctx, "k"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	_ = limiter.Wait(ctx, "k")
	_ = limiter.Wait(ctx, "k")

	if got, want := limiter.next["k"], base.Add(3*time.Second); !got.Equal(want) {
		t.Errorf("next slot = %v, want %v", got, want)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewKeyedLimiter(5 * time.Second)

	if err := limiter.Wait(context.Background(), "remotive"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "remotive"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingSource struct {
	calls int
}

func (s *recordingSource) Name() string { return "recording" }

func (s *recordingSource) Search(_ context.Context, _ model.Query) ([]model.Posting, error) {
	s.calls++
	return nil, nil
}

func TestRateLimitedSource_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewKeyedLimiter(100 * time.Millisecond)
	inner := &recordingSource{}
	src := NewRateLimitedSource(inner, limiter, "remotive")
	ctx := context.Background()

	if _, err := src.Search(ctx, model.Query{}); err != nil {
		t.Fatalf("first search: %v", err)
	}

	start := time.Now()
	if _, err := src.Search(ctx, model.Query{}); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 inner calls, got %d", inner.calls)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second search, got %v", elapsed)
	}
	if src.Name() != "recording" {
		t.Errorf("Name() = %q", src.Name())
	}
}
