package filter

import (
	"strings"

	"github.com/amishk599/jobsnap/internal/model"
)

// KeywordFilter keeps postings whose title contains any include keyword and
// whose title, company and description contain none of the exclude keywords.
// Matching is case-insensitive. An empty include list matches every title.
type KeywordFilter struct {
	include []string
	exclude []string
}

// NewKeywordFilter returns a filter built from include and exclude keyword
// lists. Blank keywords are ignored.
func NewKeywordFilter(include []string, exclude []string) *KeywordFilter {
	return &KeywordFilter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// Match returns true if the posting passes both keyword lists.
func (f *KeywordFilter) Match(p model.Posting) bool {
	if len(f.include) > 0 && !containsAny(strings.ToLower(p.Title), f.include) {
		return false
	}

	if len(f.exclude) > 0 {
		combined := strings.ToLower(p.Title + " " + p.Company + " " + p.Description)
		if containsAny(combined, f.exclude) {
			return false
		}
	}

	return true
}

// Apply returns the postings that pass f, preserving order.
func Apply(f model.PostingFilter, postings []model.Posting) []model.Posting {
	if f == nil {
		return postings
	}
	kept := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		if f.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
