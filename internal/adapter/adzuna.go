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
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 20
	adzunaDefault  = "developer"
)

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// AdzunaAdapter searches the Adzuna public jobs API.
type AdzunaAdapter struct {
	appID   string
	appKey  string
	country string
	client  *http.Client
}

// NewAdzunaAdapter creates an adapter for one Adzuna country index ("us", "gb", ...).
func NewAdzunaAdapter(appID, appKey, country string, client *http.Client) *AdzunaAdapter {
	if country == "" {
		country = "us"
	}
	return &AdzunaAdapter{appID: appID, appKey: appKey, country: country, client: client}
}

func (a *AdzunaAdapter) Name() string { return "adzuna/" + a.country }

// Search fetches one page of Adzuna results. An empty term searches for
// "developer".
func (a *AdzunaAdapter) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	what := q.Term
	if what == "" {
		what = adzunaDefault
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", what)
	params.Set("content-type", "application/json")

	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", adzunaBaseURL, a.country, page, params.Encode())

	var resp adzunaResponse
	label := fmt.Sprintf("adzuna search for %q", what)
	if err := getJSON(ctx, a.client, label, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	results, bad := decodeEach[adzunaResult](resp.Results)
	postings := make([]model.Posting, 0, len(resp.Results))
	for _, r := range results {
		postings = append(postings, mapAdzunaResult(r))
	}
	return append(postings, unreadable("adzuna", bad)...), nil
}

// mapAdzunaResult converts an Adzuna listing into a Posting. The category tag
// is the only tag Adzuna provides.
func mapAdzunaResult(r adzunaResult) model.Posting {
	var tags []string
	if r.Category.Tag != "" {
		tags = []string{r.Category.Tag}
	}

	return model.Posting{
		ExternalID:     r.ID,
		Title:          r.Title,
		Company:        r.Company.DisplayName,
		Description:    r.Description,
		Tags:           tags,
		URL:            r.RedirectURL,
		ApplicationURL: r.RedirectURL,
		Location:       r.Location.DisplayName,
		Salary:         formatSalary(r.SalaryMin, r.SalaryMax),
		JobType:        r.ContractTime,
		PublishedAt:    parseTime(r.Created),
		Source:         "adzuna",
	}
}
