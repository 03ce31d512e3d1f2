package model

import (
	"context"
	"time"
)

// FreshnessWindow is how long a cached posting counts as fresh.
const FreshnessWindow = 24 * time.Hour

// Posting is the unified representation of a cached job advertisement from any source.
type Posting struct {
	ExternalID      string    // unique per source, upsert key
	Title           string    // job title
	Company         string    // company name
	Description     string    // plain or HTML description
	Tags            []string  // lowercase skill/category tags
	URL             string    // listing link
	ApplicationURL  string    // direct apply link
	Location        string    // location string
	Salary          string    // free-form salary text
	JobType         string    // e.g. "Full-time"
	ExperienceLevel string    // e.g. "Mid-level"
	PublishedAt     time.Time // source-provided or inferred at fetch time
	CachedAt        time.Time // our clock, refreshed on every upsert
	PremiumOnly     bool      // gating flag, never set by live sources
	Source          string    // name of the source that produced it
}

// Fresh reports whether the posting was cached within FreshnessWindow of now.
func (p Posting) Fresh(now time.Time) bool {
	return now.Sub(p.CachedAt) < FreshnessWindow
}

// SkillProfile is the skill list extracted from a user's latest résumé.
type SkillProfile struct {
	UserID    string
	Skills    []string
	UpdatedAt time.Time
}

// MatchResult is a posting annotated with its relevance to a skill profile.
type MatchResult struct {
	Posting         Posting
	MatchScore      int
	MatchPercentage int
	MatchedSkills   []string // at most five, in discovery order
}

// Provenance tags where a fetch cycle's postings came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceMixed    Provenance = "mixed"
)

// Query is a single request to a job source.
type Query struct {
	Term  string // free-text search term, may be empty
	Page  int    // 1-based page for paged sources
	Limit int    // requested page size, sources may ignore it
}

// JobSource fetches raw postings from one external job-listing provider and maps
// them into the Posting shape. Placeholders are applied later by normalization.
type JobSource interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Posting, error)
}

// PostingStore persists postings keyed by ExternalID.
type PostingStore interface {
	Upsert(ctx context.Context, p Posting) (Posting, error)
	Search(ctx context.Context, query string, page PageRequest) ([]Posting, int, error)
	All(ctx context.Context) ([]Posting, error)
	Count(ctx context.Context) (int, error)
}

// ProfileStore persists one skill profile per user.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile SkillProfile) error
	Profile(ctx context.Context, userID string) (SkillProfile, error)
}

// Notifier delivers a user's top matches somewhere the user will see them.
type Notifier interface {
	Notify(ctx context.Context, userID string, results []MatchResult) error
}

// PostingFilter decides whether a posting should be kept.
type PostingFilter interface {
	Match(p Posting) bool
}
