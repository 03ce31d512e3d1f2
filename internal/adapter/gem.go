package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/jobsnap/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

type gemJob struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Location       gemLocation   `json:"location"`
	AbsoluteURL    string        `json:"absolute_url"`
	FirstPublished string        `json:"first_published_at"`
	Content        string        `json:"content"`
	ContentPlain   string        `json:"content_plain"`
	Departments    []gemNamedRef `json:"departments"`
	EmploymentType string        `json:"employment_type"`
}

type gemLocation struct {
	Name string `json:"name"`
}

type gemNamedRef struct {
	Name string `json:"name"`
}

// GemAdapter reads a Gem public job board.
type GemAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGemAdapter(boardToken string, companyName string, client *http.Client) *GemAdapter {
	return &GemAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GemAdapter) Name() string { return "gem/" + a.boardToken }

// Search lists the board and keeps the posts whose title mentions the term.
func (a *GemAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, a.boardToken)

	var raw []json.RawMessage
	if err := getJSON(ctx, a.client, "gem fetch for "+a.boardToken, url, nil, &raw); err != nil {
		return nil, err
	}

	gemJobs, bad := decodeEach[gemJob](raw)
	postings := make([]model.Posting, 0, len(gemJobs))
	for _, gj := range gemJobs {
		postings = append(postings, mapGemJob(gj, a.companyName))
	}
	return append(filterByTerm(postings, q.Term), unreadable("gem", bad)...), nil
}

func mapGemJob(gj gemJob, company string) model.Posting {
	desc := gj.ContentPlain
	if desc == "" {
		desc = extractText(gj.Content)
	}

	var tags []string
	for _, d := range gj.Departments {
		if d.Name != "" {
			tags = append(tags, d.Name)
		}
	}

	return model.Posting{
		ExternalID:     gj.ID,
		Title:          gj.Title,
		Company:        company,
		Description:    desc,
		Tags:           tags,
		URL:            gj.AbsoluteURL,
		ApplicationURL: gj.AbsoluteURL,
		Location:       gj.Location.Name,
		JobType:        employmentType(gj.EmploymentType),
		PublishedAt:    parseTime(gj.FirstPublished),
		Source:         "gem",
	}
}

// employmentType maps Gem's snake_case enum to the display form used elsewhere.
func employmentType(v string) string {
	switch v {
	case "full_time":
		return "Full-time"
	case "part_time":
		return "Part-time"
	case "contract":
		return "Contract"
	case "intern", "internship":
		return "Internship"
	}
	return ""
}
