package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/jobsnap/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	Department       string `json:"department"`
	Team             string `json:"team"`
	EmploymentType   string `json:"employmentType"`
	DescriptionPlain string `json:"descriptionPlain"`
	JobUrl           string `json:"jobUrl"`
	ApplyUrl         string `json:"applyUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// AshbyAdapter fetches jobs from the Ashby public job board API.
type AshbyAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(boardToken string, companyName string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *AshbyAdapter) Name() string { return "ashby/" + a.boardToken }

// Search retrieves the listed jobs on the Ashby board and keeps the ones whose
// title mentions the query term.
func (a *AshbyAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, a.boardToken)

	var ashbyResp ashbyResponse
	if err := getJSON(ctx, a.client, "ashby fetch for "+a.boardToken, url, nil, &ashbyResp); err != nil {
		return nil, err
	}

	jobs, bad := decodeEach[ashbyJob](ashbyResp.Jobs)
	postings := make([]model.Posting, 0, len(ashbyResp.Jobs))
	for _, aj := range jobs {
		if !aj.IsListed {
			continue
		}
		postings = append(postings, mapAshbyJob(aj, a.companyName))
	}
	return append(filterByTerm(postings, q.Term), unreadable("ashby", bad)...), nil
}

// ashbyID derives a stable identifier from the job URL, since the board API
// exposes no numeric ID.
func ashbyID(jobURL string) string {
	if jobURL == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(jobURL)).String()
}

// mapAshbyJob converts an Ashby job into a Posting.
func mapAshbyJob(aj ashbyJob, company string) model.Posting {
	var tags []string
	for _, t := range []string{aj.Department, aj.Team} {
		if t != "" {
			tags = append(tags, strings.ToLower(t))
		}
	}

	applyURL := aj.ApplyUrl
	if applyURL == "" {
		applyURL = aj.JobUrl
	}

	return model.Posting{
		ExternalID:     ashbyID(aj.JobUrl),
		Title:          aj.Title,
		Company:        company,
		Description:    aj.DescriptionPlain,
		Tags:           tags,
		URL:            aj.JobUrl,
		ApplicationURL: applyURL,
		Location:       aj.Location,
		JobType:        aj.EmploymentType,
		PublishedAt:    parseTime(aj.PublishedAt),
		Source:         "ashby",
	}
}
