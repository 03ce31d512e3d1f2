package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	Tags             []string        `json:"tags"`
	CreatedAt        int64           `json:"createdAt"`
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
	ApplyURL         string          `json:"applyUrl"`
}

// LeverAdapter fetches jobs from the Lever public postings API.
type LeverAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug string, companyName string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *LeverAdapter) Name() string { return "lever/" + a.companySlug }

// Search retrieves all postings on the Lever board and keeps the ones whose
// title mentions the query term.
func (a *LeverAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)

	var raw []json.RawMessage
	if err := getJSON(ctx, a.client, "lever fetch for "+a.companySlug, url, nil, &raw); err != nil {
		return nil, err
	}

	leverJobs, bad := decodeEach[leverJob](raw)
	postings := make([]model.Posting, 0, len(leverJobs))
	for _, lj := range leverJobs {
		postings = append(postings, mapLeverJob(lj, a.companyName))
	}
	return append(filterByTerm(postings, q.Term), unreadable("lever", bad)...), nil
}

// mapLeverJob converts a Lever posting into a Posting.
func mapLeverJob(lj leverJob, company string) model.Posting {
	// Prefer allLocations if available, fallback to location
	location := lj.Categories.Location
	if len(lj.Categories.AllLocations) > 0 {
		location = strings.Join(lj.Categories.AllLocations, ", ")
	}

	// createdAt is Unix milliseconds
	var publishedAt time.Time
	if lj.CreatedAt > 0 {
		publishedAt = time.UnixMilli(lj.CreatedAt)
	}

	description := lj.DescriptionPlain
	if description == "" {
		description = extractText(lj.Description)
	}

	return model.Posting{
		ExternalID:     lj.ID,
		Title:          lj.Text,
		Company:        company,
		Description:    description,
		Tags:           lj.Tags,
		URL:            lj.HostedURL,
		ApplicationURL: lj.ApplyURL,
		Location:       location,
		JobType:        lj.Categories.Commitment,
		PublishedAt:    publishedAt,
		Source:         "lever",
	}
}
