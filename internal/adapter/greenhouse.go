package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amishk599/jobsnap/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Location    greenhouseLocation     `json:"location"`
	AbsoluteURL string                 `json:"absolute_url"`
	UpdatedAt   string                 `json:"updated_at"`
	Content     string                 `json:"content"`
	Departments []greenhouseDepartment `json:"departments"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseDepartment struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board.
func NewGreenhouseAdapter(boardToken string, companyName string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GreenhouseAdapter) Name() string { return "greenhouse/" + a.boardToken }

// Search retrieves the whole Greenhouse board (with content) and keeps the
// jobs whose title mentions the query term.
func (a *GreenhouseAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)

	var ghResp greenhouseResponse
	if err := getJSON(ctx, a.client, "greenhouse fetch for "+a.boardToken, url, nil, &ghResp); err != nil {
		return nil, err
	}

	jobs, bad := decodeEach[greenhouseJob](ghResp.Jobs)
	postings := make([]model.Posting, 0, len(ghResp.Jobs))
	for _, gj := range jobs {
		postings = append(postings, mapGreenhouseJob(gj, a.companyName))
	}
	return append(filterByTerm(postings, q.Term), unreadable("greenhouse", bad)...), nil
}

// mapGreenhouseJob converts a Greenhouse job into a Posting. Department names
// become tags; content arrives double-encoded and is reduced to plain text.
func mapGreenhouseJob(gj greenhouseJob, company string) model.Posting {
	var tags []string
	for _, d := range gj.Departments {
		if d.Name != "" {
			tags = append(tags, strings.ToLower(d.Name))
		}
	}

	var id string
	if gj.ID != 0 {
		id = strconv.FormatInt(gj.ID, 10)
	}

	return model.Posting{
		ExternalID:     id,
		Title:          gj.Title,
		Company:        company,
		Description:    extractText(gj.Content),
		Tags:           tags,
		URL:            gj.AbsoluteURL,
		ApplicationURL: gj.AbsoluteURL,
		Location:       gj.Location.Name,
		PublishedAt:    parseTime(gj.UpdatedAt),
		Source:         "greenhouse",
	}
}
