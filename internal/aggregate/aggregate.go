// Package aggregate pulls postings from the configured job sources, normalizes
// them and caches them in the posting store.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

const (
	DefaultTarget  = 50
	DefaultTimeout = 12 * time.Second
)

// Source is one entry in the aggregator's source plan.
type Source struct {
	Client model.JobSource
	// ExpandTerms queries every search-term variant instead of only the
	// caller's term.
	ExpandTerms bool
	// Pages is the number of pages requested per term; values below 1 mean 1.
	Pages int
}

// Options tunes an Aggregator. The zero value is usable.
type Options struct {
	Timeout  time.Duration       // per source call, DefaultTimeout when zero
	TopUp    bool                // fill a short live result from the fallback set
	Filter   model.PostingFilter // postings it rejects are dropped, nil keeps all
	Fallback []model.Posting     // SamplePostings() when nil
	Now      func() time.Time
}

// Result is the outcome of one fetch cycle.
type Result struct {
	Postings []model.Posting
	Total    int
	Source   model.Provenance
	Skipped  int // records without an ID
	Filtered int // records rejected by the exclusion filter
}

// Page is one page of stored postings.
type Page struct {
	Postings   []model.Posting  `json:"postings"`
	Pagination model.Pagination `json:"pagination"`
}

// Aggregator runs fetch cycles over an ordered list of sources.
type Aggregator struct {
	sources  []Source
	store    model.PostingStore
	timeout  time.Duration
	topUp    bool
	filter   model.PostingFilter
	fallback []model.Posting
	now      func() time.Time
	logger   *slog.Logger
}

func New(sources []Source, store model.PostingStore, opts Options, logger *slog.Logger) *Aggregator {
	a := &Aggregator{
		sources:  sources,
		store:    store,
		timeout:  opts.Timeout,
		topUp:    opts.TopUp,
		filter:   opts.Filter,
		fallback: opts.Fallback,
		now:      opts.Now,
		logger:   logger,
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.fallback == nil {
		a.fallback = SamplePostings()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// FetchAndCache collects up to targetCount unique postings from the sources,
// normalizes them and upserts each into the store. A source failure only ends
// that source's turn; a store failure aborts the cycle.
func (a *Aggregator) FetchAndCache(ctx context.Context, searchTerm string, targetCount int) (Result, error) {
	target := targetCount
	if target < 1 {
		target = DefaultTarget
	}
	searchTerm = strings.TrimSpace(searchTerm)

	collected, skipped, filtered := a.collect(ctx, searchTerm, target)
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("fetch cycle cancelled: %w", err)
	}

	provenance := model.ProvenanceLive
	switch {
	case len(collected) == 0:
		a.logger.Warn("no live postings, using fallback set", "error", model.ErrAllSourcesFailed)
		collected = a.fallbackPostings(nil, target)
		provenance = model.ProvenanceFallback
	case a.topUp && len(collected) < target:
		extra := a.fallbackPostings(collected, target-len(collected))
		if len(extra) > 0 {
			collected = append(collected, extra...)
			provenance = model.ProvenanceMixed
		}
	}

	now := a.now().UTC()
	saved := make([]model.Posting, 0, len(collected))
	for _, p := range collected {
		stored, err := a.store.Upsert(ctx, Normalize(p, now))
		if err != nil {
			return Result{}, fmt.Errorf("caching posting %s: %w", p.ExternalID, err)
		}
		saved = append(saved, stored)
	}

	a.logger.Info("fetch cycle complete",
		"search", searchTerm,
		"target", target,
		"cached", len(saved),
		"source", provenance,
		"skipped", skipped,
		"filtered", filtered,
	)

	return Result{
		Postings: saved,
		Total:    len(saved),
		Source:   provenance,
		Skipped:  skipped,
		Filtered: filtered,
	}, nil
}

func (a *Aggregator) collect(ctx context.Context, searchTerm string, target int) ([]model.Posting, int, int) {
	var (
		out      []model.Posting
		skipped  int
		filtered int
	)
	seen := make(map[string]struct{})
	expanded := SearchTerms(searchTerm)

	for _, src := range a.sources {
		if len(out) >= target || ctx.Err() != nil {
			break
		}

		terms := []string{searchTerm}
		if src.ExpandTerms {
			terms = expanded
		}
		pages := max(src.Pages, 1)
		name := src.Client.Name()
		before := len(out)

	turn:
		for _, term := range terms {
			for page := 1; page <= pages; page++ {
				if len(out) >= target {
					break turn
				}

				postings, err := a.search(ctx, src.Client, model.Query{Term: term, Page: page})
				if err != nil {
					a.logger.Warn("source unavailable",
						"error", &model.SourceError{Source: name, Term: term, Err: err},
					)
					break turn
				}

				for _, p := range postings {
					id := strings.TrimSpace(p.ExternalID)
					if id == "" {
						skipped++
						continue
					}
					if _, dup := seen[id]; dup {
						continue
					}
					seen[id] = struct{}{}
					if a.filter != nil && !a.filter.Match(p) {
						filtered++
						continue
					}
					p.ExternalID = id
					out = append(out, p)
					if len(out) >= target {
						break
					}
				}
			}
		}

		a.logger.Debug("source turn finished", "source", name, "added", len(out)-before)
	}

	return out, skipped, filtered
}

func (a *Aggregator) search(ctx context.Context, src model.JobSource, q model.Query) ([]model.Posting, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return src.Search(ctx, q)
}

// fallbackPostings returns up to n fallback postings whose IDs are not
// already in have.
func (a *Aggregator) fallbackPostings(have []model.Posting, n int) []model.Posting {
	taken := make(map[string]struct{}, len(have))
	for _, p := range have {
		taken[p.ExternalID] = struct{}{}
	}

	out := make([]model.Posting, 0, min(n, len(a.fallback)))
	for _, p := range a.fallback {
		if len(out) >= n {
			break
		}
		if _, ok := taken[p.ExternalID]; ok {
			continue
		}
		p.Tags = slices.Clone(p.Tags)
		out = append(out, p)
	}
	return out
}

// Search returns one page of cached postings matching query. An empty query
// lists everything, newest first.
func (a *Aggregator) Search(ctx context.Context, query string, req model.PageRequest) (Page, error) {
	req = req.Normalize()
	postings, total, err := a.store.Search(ctx, strings.TrimSpace(query), req)
	if err != nil {
		return Page{}, fmt.Errorf("searching postings: %w", err)
	}
	return Page{Postings: postings, Pagination: model.NewPagination(req, total)}, nil
}

// ListAll returns one page of every cached posting, newest first.
func (a *Aggregator) ListAll(ctx context.Context, req model.PageRequest) (Page, error) {
	return a.Search(ctx, "", req)
}
