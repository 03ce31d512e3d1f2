package aggregate

import (
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

const (
	placeholderTitle   = "No Title"
	placeholderCompany = "Unknown Company"
	placeholderURL     = "#"

	defaultJobType         = "Full-time"
	defaultExperienceLevel = "Mid-level"
)

// Normalize fills placeholders and defaults so that a record with missing
// fields is still storable, and stamps CachedAt with now.
func Normalize(p model.Posting, now time.Time) model.Posting {
	p.ExternalID = strings.TrimSpace(p.ExternalID)
	p.Title = orDefault(p.Title, placeholderTitle)
	p.Company = orDefault(p.Company, placeholderCompany)
	p.URL = orDefault(p.URL, placeholderURL)
	p.ApplicationURL = orDefault(p.ApplicationURL, p.URL)
	p.Description = strings.TrimSpace(p.Description)
	p.Location = strings.TrimSpace(p.Location)
	p.Salary = strings.TrimSpace(p.Salary)
	p.JobType = orDefault(p.JobType, defaultJobType)
	p.ExperienceLevel = orDefault(p.ExperienceLevel, defaultExperienceLevel)
	p.Tags = normalizeTags(p.Tags)

	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	p.CachedAt = now
	p.PremiumOnly = false
	return p
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
