package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemory_GetSetExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	now = now.Add(time.Minute)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry to be gone, got %v", err)
	}
}

type countingSource struct {
	name  string
	calls int
	err   error
}

func (s *countingSource) Name() string {
	if s.name == "" {
		return "remotive"
	}
	return s.name
}

func (s *countingSource) Search(_ context.Context, q model.Query) ([]model.Posting, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []model.Posting{{ExternalID: "r-1", Title: q.Term + " engineer", Tags: []string{"go"}}}, nil
}

func TestCachedSource_ServesRepeatFromCache(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, NewMemory(), time.Hour, discardLogger())
	ctx := context.Background()

	first, err := src.Search(ctx, model.Query{Term: "Go", Limit: 50})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := src.Search(ctx, model.Query{Term: " go ", Limit: 50})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", inner.calls)
	}
	if len(second) != 1 || second[0].ExternalID != first[0].ExternalID || second[0].Tags[0] != "go" {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestCachedSource_DistinctPagesMiss(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, NewMemory(), time.Hour, discardLogger())
	ctx := context.Background()

	src.Search(ctx, model.Query{Term: "go", Page: 1})
	src.Search(ctx, model.Query{Term: "go", Page: 2})

	if inner.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", inner.calls)
	}
}

func TestCachedSource_DistinctSourcesDoNotShareEntries(t *testing.T) {
	shared := NewMemory()
	gb := &countingSource{name: "adzuna/gb"}
	us := &countingSource{name: "adzuna/us"}
	ctx := context.Background()

	q := model.Query{Term: "go", Page: 1, Limit: 20}
	if _, err := NewCachedSource(gb, shared, time.Hour, discardLogger()).Search(ctx, q); err != nil {
		t.Fatalf("gb search: %v", err)
	}
	if _, err := NewCachedSource(us, shared, time.Hour, discardLogger()).Search(ctx, q); err != nil {
		t.Fatalf("us search: %v", err)
	}

	if gb.calls != 1 || us.calls != 1 {
		t.Fatalf("expected one upstream call each, got gb=%d us=%d", gb.calls, us.calls)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	src := NewCachedSource(inner, NewMemory(), time.Hour, discardLogger())
	ctx := context.Background()

	if _, err := src.Search(ctx, model.Query{Term: "go"}); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	if _, err := src.Search(ctx, model.Query{Term: "go"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", inner.calls)
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Close() error { return nil }

func TestCachedSource_FallsThroughOnCacheFailure(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, brokenCache{}, time.Hour, discardLogger())

	got, err := src.Search(context.Background(), model.Query{Term: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || inner.calls != 1 {
		t.Fatalf("expected upstream result, got %v (calls %d)", got, inner.calls)
	}
}
