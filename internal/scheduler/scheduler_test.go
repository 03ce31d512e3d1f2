package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// every fires at a fixed sub-second interval, which cron descriptors cannot express.
type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func TestParseSchedule(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 17, 0, 0, time.UTC)

	tests := []struct {
		spec string
		want time.Time
	}{
		{"@every 6h", base.Add(6 * time.Hour)},
		{"@hourly", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		{"30 */4 * * *", time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			sched, err := ParseSchedule(tc.spec)
			if err != nil {
				t.Fatalf("ParseSchedule: %v", err)
			}
			if got := sched.Next(base); !got.Equal(tc.want) {
				t.Errorf("Next = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := ParseSchedule("every six hours"); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	var calls atomic.Int32
	task := func(context.Context) error { calls.Add(1); return nil }
	s := NewScheduler(task, every(time.Hour), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected exactly the immediate run, got %d", c)
	}
}

func TestRun_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	task := func(context.Context) error { calls.Add(1); return nil }
	s := NewScheduler(task, every(50*time.Millisecond), discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 280*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if c := calls.Load(); c < 3 {
		t.Errorf("expected at least 3 runs, got %d", c)
	}
}

func TestRun_TaskErrorDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	task := func(context.Context) error {
		calls.Add(1)
		return errors.New("all sources down and store unreachable")
	}
	s := NewScheduler(task, every(30*time.Millisecond), discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if c := calls.Load(); c < 2 {
		t.Errorf("expected the loop to keep running after errors, got %d runs", c)
	}
}
