package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/jobsnap/internal/filter"
	"github.com/amishk599/jobsnap/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource answers every query with fn and records the queries it saw.
type fakeSource struct {
	name    string
	fn      func(q model.Query) ([]model.Posting, error)
	queries []model.Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	f.queries = append(f.queries, q)
	return f.fn(q)
}

func staticSource(name string, postings ...model.Posting) *fakeSource {
	return &fakeSource{name: name, fn: func(model.Query) ([]model.Posting, error) {
		return postings, nil
	}}
}

func failingSource(name string) *fakeSource {
	return &fakeSource{name: name, fn: func(model.Query) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 503}
	}}
}

// memStore is an in-memory PostingStore keyed by ExternalID.
type memStore struct {
	mu       sync.Mutex
	postings map[string]model.Posting
	upserts  int
	err      error
}

func newMemStore() *memStore {
	return &memStore{postings: make(map[string]model.Posting)}
}

func (m *memStore) Upsert(_ context.Context, p model.Posting) (model.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Posting{}, m.err
	}
	m.upserts++
	m.postings[p.ExternalID] = p
	return p, nil
}

func (m *memStore) Search(_ context.Context, query string, page model.PageRequest) ([]model.Posting, int, error) {
	all, _ := m.All(context.Background())
	var hits []model.Posting
	for _, p := range all {
		if query == "" || strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			hits = append(hits, p)
		}
	}
	return model.Paginate(hits, page), len(hits), nil
}

func (m *memStore) All(context.Context) ([]model.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Posting, 0, len(m.postings))
	for _, p := range m.postings {
		out = append(out, p)
	}
	// cached_at DESC, external_id ASC
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func less(a, b model.Posting) bool {
	if !a.CachedAt.Equal(b.CachedAt) {
		return a.CachedAt.After(b.CachedAt)
	}
	return a.ExternalID < b.ExternalID
}

func (m *memStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.postings), nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator(store model.PostingStore, opts Options, sources ...Source) *Aggregator {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(sources, store, opts, discardLogger())
}

func postings(prefix string, n int) []model.Posting {
	out := make([]model.Posting, n)
	for i := range out {
		out[i] = model.Posting{
			ExternalID: fmt.Sprintf("%s-%d", prefix, i+1),
			Title:      "Engineer",
			Company:    "Acme",
			URL:        "https://example.com",
		}
	}
	return out
}

func TestFetchAndCache_DeduplicatesAcrossSources(t *testing.T) {
	x := model.Posting{ExternalID: "X", Title: "First", Company: "A"}
	xLater := model.Posting{ExternalID: "X", Title: "Second", Company: "B"}
	y := model.Posting{ExternalID: "Y", Title: "Other", Company: "C"}

	store := newMemStore()
	agg := newTestAggregator(store, Options{},
		Source{Client: staticSource("one", x, x)},
		Source{Client: staticSource("two", xLater, y)},
	)

	res, err := agg.FetchAndCache(context.Background(), "go", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 unique postings, got %d", res.Total)
	}
	if res.Postings[0].ExternalID != "X" || res.Postings[0].Title != "First" {
		t.Errorf("first occurrence should win, got %+v", res.Postings[0])
	}
	if res.Source != model.ProvenanceLive {
		t.Errorf("Source = %s, want live", res.Source)
	}
}

func TestFetchAndCache_IdempotentUpsert(t *testing.T) {
	store := newMemStore()
	now := fixedNow
	agg := newTestAggregator(store, Options{Now: func() time.Time { return now }},
		Source{Client: staticSource("one", postings("r", 3)...)},
	)
	ctx := context.Background()

	if _, err := agg.FetchAndCache(ctx, "", 10); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	now = now.Add(time.Hour)
	if _, err := agg.FetchAndCache(ctx, "", 10); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if n, _ := store.Count(ctx); n != 3 {
		t.Fatalf("expected 3 stored postings, got %d", n)
	}
	if got := store.postings["r-1"].CachedAt; !got.Equal(fixedNow.Add(time.Hour)) {
		t.Errorf("CachedAt = %v, want refreshed to second fetch", got)
	}
}

func TestFetchAndCache_FallbackWhenAllSourcesFail(t *testing.T) {
	store := newMemStore()
	agg := newTestAggregator(store, Options{},
		Source{Client: failingSource("one"), ExpandTerms: true},
		Source{Client: failingSource("two")},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != model.ProvenanceFallback {
		t.Errorf("Source = %s, want fallback", res.Source)
	}
	if res.Total != len(SamplePostings()) {
		t.Fatalf("expected the full sample set (%d), got %d", len(SamplePostings()), res.Total)
	}
	for i, p := range res.Postings {
		if want := fmt.Sprintf("mock-%d", i+1); p.ExternalID != want {
			t.Errorf("posting %d = %s, want %s", i, p.ExternalID, want)
		}
	}
}

func TestFetchAndCache_FallbackTruncatedToTarget(t *testing.T) {
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: staticSource("empty")},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 4 || res.Source != model.ProvenanceFallback {
		t.Fatalf("got %d postings from %s, want 4 from fallback", res.Total, res.Source)
	}
}

func TestFetchAndCache_InjectedFallbackIsNotMutated(t *testing.T) {
	table := []model.Posting{{ExternalID: "f-1", Title: "Sample", Tags: []string{"Go"}}}
	agg := newTestAggregator(newMemStore(), Options{Fallback: table},
		Source{Client: failingSource("one")},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Postings[0].Tags[0] != "go" {
		t.Fatalf("unexpected result %+v", res.Postings)
	}
	if table[0].Tags[0] != "Go" {
		t.Errorf("fallback table was mutated: %v", table[0].Tags)
	}
}

func TestFetchAndCache_SourceFailureDoesNotAbort(t *testing.T) {
	broken := failingSource("broken")
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: broken, ExpandTerms: true},
		Source{Client: staticSource("ok", postings("ok", 2)...)},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Source != model.ProvenanceLive {
		t.Fatalf("got %d from %s, want 2 live", res.Total, res.Source)
	}
	// The failure ends the broken source's turn after one call.
	if len(broken.queries) != 1 {
		t.Errorf("broken source called %d times, want 1", len(broken.queries))
	}
}

func TestFetchAndCache_KeepsPostingsBeforeFailure(t *testing.T) {
	src := &fakeSource{name: "flaky", fn: func(q model.Query) ([]model.Posting, error) {
		if q.Page == 1 {
			return postings("p1", 2), nil
		}
		return nil, errors.New("connection reset")
	}}
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: src, Pages: 3},
	)

	res, err := agg.FetchAndCache(context.Background(), "go", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Source != model.ProvenanceLive {
		t.Fatalf("got %d from %s, want 2 live", res.Total, res.Source)
	}
}

func TestFetchAndCache_StopsAtTarget(t *testing.T) {
	src := &fakeSource{name: "paged"}
	src.fn = func(q model.Query) ([]model.Posting, error) {
		return postings(fmt.Sprintf("%s-p%d", q.Term, q.Page), 3), nil
	}
	second := staticSource("second", postings("s", 5)...)
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: src, ExpandTerms: true},
		Source{Client: second},
	)

	res, err := agg.FetchAndCache(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 5 {
		t.Fatalf("expected exactly 5 postings, got %d", res.Total)
	}
	if len(src.queries) != 2 {
		t.Errorf("expected 2 queries before reaching target, got %d", len(src.queries))
	}
	if src.queries[0].Term != "golang" || src.queries[1].Term != "developer" {
		t.Errorf("unexpected term order: %+v", src.queries)
	}
	if len(second.queries) != 0 {
		t.Errorf("second source should not be queried once target is met")
	}
}

func TestFetchAndCache_NonExpandingSourceGetsCallerTerm(t *testing.T) {
	src := staticSource("adzuna")
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: src},
	)

	if _, err := agg.FetchAndCache(context.Background(), "  rust ", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.queries) != 1 || src.queries[0].Term != "rust" {
		t.Fatalf("queries = %+v, want one query for rust", src.queries)
	}
}

func TestFetchAndCache_TimeoutEndsSourceTurn(t *testing.T) {
	blocking := &blockingSource{}
	agg := newTestAggregator(newMemStore(), Options{Timeout: 20 * time.Millisecond},
		Source{Client: blocking, ExpandTerms: true},
		Source{Client: staticSource("fast", postings("f", 1)...)},
	)

	start := time.Now()
	res, err := agg.FetchAndCache(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fetch took %v, timeout was not applied", elapsed)
	}
	if res.Total != 1 || res.Postings[0].ExternalID != "f-1" {
		t.Fatalf("unexpected result %+v", res.Postings)
	}
	if blocking.calls != 1 {
		t.Errorf("blocking source called %d times, want 1", blocking.calls)
	}
}

type blockingSource struct{ calls int }

func (b *blockingSource) Name() string { return "blocking" }

func (b *blockingSource) Search(ctx context.Context, _ model.Query) ([]model.Posting, error) {
	b.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchAndCache_SkipsRecordsWithoutIDAndAppliesPlaceholders(t *testing.T) {
	raw := []model.Posting{
		{Title: "No ID here"},
		{ExternalID: "m-1", Tags: []string{"React", " react ", ""}},
	}
	agg := newTestAggregator(newMemStore(), Options{},
		Source{Client: staticSource("one", raw...)},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Total != 1 {
		t.Fatalf("Skipped=%d Total=%d, want 1 and 1", res.Skipped, res.Total)
	}
	p := res.Postings[0]
	if p.Title != "No Title" || p.Company != "Unknown Company" || p.URL != "#" || p.ApplicationURL != "#" {
		t.Errorf("placeholders not applied: %+v", p)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "react" {
		t.Errorf("Tags = %v, want [react]", p.Tags)
	}
	if !p.PublishedAt.Equal(fixedNow) || !p.CachedAt.Equal(fixedNow) {
		t.Errorf("dates not inferred: published=%v cached=%v", p.PublishedAt, p.CachedAt)
	}
}

func TestFetchAndCache_ExcludeFilter(t *testing.T) {
	raw := []model.Posting{
		{ExternalID: "1", Title: "Go Engineer"},
		{ExternalID: "2", Title: "Unpaid Intern"},
	}
	agg := newTestAggregator(newMemStore(), Options{Filter: filter.NewKeywordFilter(nil, []string{"unpaid"})},
		Source{Client: staticSource("one", raw...)},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Filtered != 1 || res.Postings[0].ExternalID != "1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestFetchAndCache_TopUpMarksMixed(t *testing.T) {
	agg := newTestAggregator(newMemStore(), Options{TopUp: true},
		Source{Client: staticSource("one", model.Posting{ExternalID: "live-1", Title: "Live"})},
	)

	res, err := agg.FetchAndCache(context.Background(), "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != model.ProvenanceMixed || res.Total != 3 {
		t.Fatalf("got %d from %s, want 3 mixed", res.Total, res.Source)
	}
	if res.Postings[0].ExternalID != "live-1" || res.Postings[1].ExternalID != "mock-1" {
		t.Errorf("unexpected order: %s, %s", res.Postings[0].ExternalID, res.Postings[1].ExternalID)
	}
}

func TestFetchAndCache_StoreFailureIsFatal(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	agg := newTestAggregator(store, Options{},
		Source{Client: staticSource("one", postings("r", 1)...)},
	)

	if _, err := agg.FetchAndCache(context.Background(), "", 10); err == nil {
		t.Fatal("expected store failure to propagate")
	}
}

func TestSearch_ReportsPagination(t *testing.T) {
	store := newMemStore()
	agg := newTestAggregator(store, Options{},
		Source{Client: staticSource("one", postings("r", 25)...)},
	)
	ctx := context.Background()
	if _, err := agg.FetchAndCache(ctx, "", 25); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	page, err := agg.Search(ctx, "engineer", model.PageRequest{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Pagination.Total != 25 || page.Pagination.Pages != 3 || len(page.Postings) != 10 {
		t.Errorf("unexpected page: %+v (len %d)", page.Pagination, len(page.Postings))
	}

	all, err := agg.ListAll(ctx, model.PageRequest{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if all.Pagination.Limit != model.DefaultLimit || len(all.Postings) != model.DefaultLimit {
		t.Errorf("ListAll defaults not applied: %+v", all.Pagination)
	}
}

func TestSearchTerms(t *testing.T) {
	got := SearchTerms("  React ")
	if got[0] != "React" {
		t.Errorf("first term = %q, want React", got[0])
	}
	if len(got) != len(expansionTerms) {
		t.Errorf("expected duplicate react to be dropped, got %v", got)
	}

	if got := SearchTerms(""); got[0] != "developer" || len(got) != len(expansionTerms) {
		t.Errorf("empty search terms = %v", got)
	}
}

func TestNormalize_KeepsProvidedValues(t *testing.T) {
	published := fixedNow.Add(-48 * time.Hour)
	p := Normalize(model.Posting{
		ExternalID:      " j-1 ",
		Title:           "Backend Engineer",
		Company:         "Initech",
		URL:             "https://initech.example/jobs/1",
		JobType:         "Contract",
		ExperienceLevel: "Senior",
		PublishedAt:     published,
		PremiumOnly:     true,
	}, fixedNow)

	if p.ExternalID != "j-1" {
		t.Errorf("ExternalID = %q", p.ExternalID)
	}
	if p.ApplicationURL != "https://initech.example/jobs/1" {
		t.Errorf("ApplicationURL should fall back to URL, got %q", p.ApplicationURL)
	}
	if p.JobType != "Contract" || p.ExperienceLevel != "Senior" {
		t.Errorf("provided defaults overwritten: %+v", p)
	}
	if !p.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", p.PublishedAt, published)
	}
	if p.PremiumOnly {
		t.Error("PremiumOnly must be false for cached postings")
	}
	if p.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
}
