package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amishk599/jobsnap/internal/model"
)

const (
	remotiveBaseURL  = "https://remotive.com/api/remote-jobs"
	remotivePageSize = 50
)

// remotiveJob represents a single job in the Remotive API response.
type remotiveJob struct {
	ID                        int64    `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

// remotiveResponse is the top-level Remotive remote-jobs API response.
type remotiveResponse struct {
	JobCount int               `json:"job-count"`
	Jobs     []json.RawMessage `json:"jobs"`
}

// RemotiveAdapter searches the Remotive public remote-jobs API.
type RemotiveAdapter struct {
	baseURL string
	client  *http.Client
}

// NewRemotiveAdapter creates a Remotive adapter. An empty baseURL selects the
// public endpoint.
func NewRemotiveAdapter(baseURL string, client *http.Client) *RemotiveAdapter {
	if baseURL == "" {
		baseURL = remotiveBaseURL
	}
	return &RemotiveAdapter{baseURL: baseURL, client: client}
}

// Name is "remotive" for the public endpoint and carries the host otherwise,
// so mirrors of the API keep separate cache entries.
func (a *RemotiveAdapter) Name() string {
	if a.baseURL == remotiveBaseURL {
		return "remotive"
	}
	if u, err := url.Parse(a.baseURL); err == nil && u.Host != "" {
		return "remotive/" + u.Host
	}
	return "remotive/" + a.baseURL
}

// Search runs one Remotive search and maps the results into postings.
func (a *RemotiveAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = remotivePageSize
	}
	params := url.Values{}
	if q.Term != "" {
		params.Set("search", q.Term)
	}
	params.Set("limit", strconv.Itoa(limit))

	var resp remotiveResponse
	label := fmt.Sprintf("remotive search for %q", q.Term)
	if err := getJSON(ctx, a.client, label, a.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	jobs, bad := decodeEach[remotiveJob](resp.Jobs)
	postings := make([]model.Posting, 0, len(resp.Jobs))
	for _, rj := range jobs {
		postings = append(postings, mapRemotiveJob(rj))
	}
	return append(postings, unreadable("remotive", bad)...), nil
}

// mapRemotiveJob converts a Remotive job into a Posting. Jobs without tags
// fall back to their job type as the only tag.
func mapRemotiveJob(rj remotiveJob) model.Posting {
	var id string
	if rj.ID != 0 {
		id = strconv.FormatInt(rj.ID, 10)
	}

	tags := rj.Tags
	if len(tags) == 0 && rj.JobType != "" {
		tags = []string{rj.JobType}
	}

	return model.Posting{
		ExternalID:     id,
		Title:          rj.Title,
		Company:        rj.CompanyName,
		Description:    rj.Description,
		Tags:           tags,
		URL:            rj.URL,
		ApplicationURL: rj.URL,
		Location:       rj.CandidateRequiredLocation,
		Salary:         rj.Salary,
		PublishedAt:    parseTime(rj.PublicationDate),
		Source:         "remotive",
	}
}
