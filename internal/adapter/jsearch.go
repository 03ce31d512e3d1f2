package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobsnap/internal/model"
)

const (
	jsearchBaseURL = "https://jsearch.p.rapidapi.com/search"
	jsearchHost    = "jsearch.p.rapidapi.com"
)

// jsearchJob represents a single job in the JSearch (RapidAPI) response.
type jsearchJob struct {
	JobID                  string  `json:"job_id"`
	JobTitle               string  `json:"job_title"`
	EmployerName           string  `json:"employer_name"`
	JobApplyLink           string  `json:"job_apply_link"`
	JobDescription         string  `json:"job_description"`
	JobEmploymentType      string  `json:"job_employment_type"`
	JobPostedAtDatetimeUTC string  `json:"job_posted_at_datetime_utc"`
	JobCity                string  `json:"job_city"`
	JobMinSalary           float64 `json:"job_min_salary"`
	JobMaxSalary           float64 `json:"job_max_salary"`
}

type jsearchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

// JSearchAdapter searches the JSearch aggregator through RapidAPI.
type JSearchAdapter struct {
	apiKey string
	client *http.Client
}

// NewJSearchAdapter creates a JSearch adapter authenticated with a RapidAPI key.
func NewJSearchAdapter(apiKey string, client *http.Client) *JSearchAdapter {
	return &JSearchAdapter{apiKey: apiKey, client: client}
}

func (a *JSearchAdapter) Name() string { return "jsearch" }

// Search fetches one page of JSearch results for the query term.
func (a *JSearchAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", q.Term)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")

	header := http.Header{}
	header.Set("X-RapidAPI-Key", a.apiKey)
	header.Set("X-RapidAPI-Host", jsearchHost)

	var resp jsearchResponse
	label := fmt.Sprintf("jsearch search for %q page %d", q.Term, page)
	if err := getJSON(ctx, a.client, label, jsearchBaseURL+"?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	jobs, bad := decodeEach[jsearchJob](resp.Data)
	postings := make([]model.Posting, 0, len(resp.Data))
	for _, jj := range jobs {
		postings = append(postings, mapJSearchJob(jj))
	}
	return append(postings, unreadable("jsearch", bad)...), nil
}

// mapJSearchJob converts a JSearch job into a Posting. The employment type
// doubles as the only tag since JSearch has no skill tags.
func mapJSearchJob(jj jsearchJob) model.Posting {
	var tags []string
	if jj.JobEmploymentType != "" {
		tags = []string{strings.ToLower(jj.JobEmploymentType)}
	}

	return model.Posting{
		ExternalID:     jj.JobID,
		Title:          jj.JobTitle,
		Company:        jj.EmployerName,
		Description:    jj.JobDescription,
		Tags:           tags,
		URL:            jj.JobApplyLink,
		ApplicationURL: jj.JobApplyLink,
		Location:       jj.JobCity,
		Salary:         formatSalary(jj.JobMinSalary, jj.JobMaxSalary),
		JobType:        jj.JobEmploymentType,
		PublishedAt:    parseTime(jj.JobPostedAtDatetimeUTC),
		Source:         "jsearch",
	}
}
