package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/amishk599/jobsnap/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleMatch(title, company string, pct int) model.MatchResult {
	return model.MatchResult{
		Posting: model.Posting{
			ExternalID:     "123",
			Company:        company,
			Title:          title,
			Location:       "Remote, US",
			URL:            "https://example.com/job",
			ApplicationURL: "https://example.com/apply",
			JobType:        "Full-time",
			Source:         "remotive",
		},
		MatchScore:      pct,
		MatchPercentage: pct,
		MatchedSkills:   []string{"go", "docker"},
	}
}

func newTestSlack(srv *httptest.Server) *SlackNotifier {
	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	n.gap = 0
	return n
}

func TestSlackNotifier_EmptyResults(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	n := newTestSlack(srv)
	if err := n.Notify(context.Background(), "u1", nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv)
	if err := n.Notify(context.Background(), "u1", []model.MatchResult{sampleMatch("Backend Engineer", "Acme Corp", 42)}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}
	if got := payload.Blocks[0].Text.Text; got != "#1 Acme Corp: Backend Engineer" {
		t.Errorf("header = %q", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Match:*\n42%" {
		t.Errorf("match field = %q", got)
	}
	if got := payload.Blocks[1].Fields[1].Text; got != "*Skills:*\ngo, docker" {
		t.Errorf("skills field = %q", got)
	}
	if got := payload.Blocks[4].Elements[0].URL; got != "https://example.com/apply" {
		t.Errorf("action URL = %q", got)
	}
}

func TestSlackNotifier_MultipleResults(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	results := []model.MatchResult{
		sampleMatch("Engineer 1", "A", 30),
		sampleMatch("Engineer 2", "B", 20),
		sampleMatch("Engineer 3", "C", 10),
	}
	if err := newTestSlack(srv).Notify(context.Background(), "u1", results); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	results := []model.MatchResult{sampleMatch("A", "X", 1), sampleMatch("B", "Y", 1)}
	if err := newTestSlack(srv).Notify(context.Background(), "u1", results); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	results := []model.MatchResult{sampleMatch("Fails", "A", 1), sampleMatch("Succeeds", "B", 1)}
	if err := newTestSlack(srv).Notify(context.Background(), "u1", results); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestSlack(srv).Notify(context.Background(), "u1", []model.MatchResult{sampleMatch("Rate Limited", "Test", 5)})
	if err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestApplyURL_FallsBackToListing(t *testing.T) {
	p := model.Posting{URL: "https://example.com/job", ApplicationURL: "#"}
	if got := applyURL(p); got != "https://example.com/job" {
		t.Errorf("applyURL = %q", got)
	}
}
