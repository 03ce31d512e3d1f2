package adapter

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/filter"
	"github.com/amishk599/jobsnap/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// timeLayouts are tried in order when a source hands us a timestamp string.
// Remotive omits the zone; JSearch and Adzuna send RFC 3339.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime returns the zero time when value is empty or matches no layout.
func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// formatSalary renders a "$min - $max" range, or "" unless both bounds are set.
func formatSalary(min, max float64) string {
	if min <= 0 || max <= 0 {
		return ""
	}
	return fmt.Sprintf("$%s - $%s",
		strconv.FormatFloat(min, 'f', -1, 64),
		strconv.FormatFloat(max, 'f', -1, 64),
	)
}

// filterByTerm keeps board postings whose title mentions term. Board APIs
// return the whole board, so the search term is applied locally.
func filterByTerm(postings []model.Posting, term string) []model.Posting {
	term = strings.TrimSpace(term)
	if term == "" {
		return postings
	}
	return filter.Apply(filter.NewKeywordFilter([]string{term}, nil), postings)
}
