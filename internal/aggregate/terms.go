package aggregate

import "strings"

// expansionTerms widen a fetch cycle beyond the caller's own term.
var expansionTerms = []string{
	"developer", "engineer", "frontend", "backend", "full stack",
	"react", "node", "python", "java", "data", "devops",
}

// SearchTerms returns the trimmed search term (if any) followed by the
// expansion terms, de-duplicated case-insensitively with order kept.
func SearchTerms(search string) []string {
	seen := make(map[string]struct{}, len(expansionTerms)+1)
	terms := make([]string, 0, len(expansionTerms)+1)

	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}

	add(search)
	for _, t := range expansionTerms {
		add(t)
	}
	return terms
}
