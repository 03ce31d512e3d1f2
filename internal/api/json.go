package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

type postingJSON struct {
	ExternalID      string    `json:"externalId"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Description     string    `json:"description"`
	Tags            []string  `json:"tags"`
	URL             string    `json:"url"`
	ApplicationURL  string    `json:"applicationUrl"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	JobType         string    `json:"jobType"`
	ExperienceLevel string    `json:"experienceLevel"`
	PublishedDate   time.Time `json:"publishedDate"`
	CachedAt        time.Time `json:"cachedAt"`
	IsPremiumOnly   bool      `json:"isPremiumOnly"`
	Source          string    `json:"source"`
}

type matchJSON struct {
	postingJSON
	MatchScore      int      `json:"matchScore"`
	MatchPercentage int      `json:"matchPercentage"`
	MatchedSkills   []string `json:"matchedSkills"`
}

type fetchResponse struct {
	Message  string           `json:"message"`
	Postings []postingJSON    `json:"postings"`
	Total    int              `json:"total"`
	Source   model.Provenance `json:"source"`
}

type pageResponse struct {
	Postings   []postingJSON    `json:"postings"`
	Pagination model.Pagination `json:"pagination"`
}

type matchResponse struct {
	Results          []matchJSON      `json:"results"`
	Pagination       model.Pagination `json:"pagination"`
	UserSkillsSample []string         `json:"userSkillsSample"`
}

type resumeResponse struct {
	UserID    string    `json:"userId"`
	Skills    []string  `json:"skills"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPostingJSON(p model.Posting) postingJSON {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postingJSON{
		ExternalID:      p.ExternalID,
		Title:           p.Title,
		Company:         p.Company,
		Description:     p.Description,
		Tags:            tags,
		URL:             p.URL,
		ApplicationURL:  p.ApplicationURL,
		Location:        p.Location,
		Salary:          p.Salary,
		JobType:         p.JobType,
		ExperienceLevel: p.ExperienceLevel,
		PublishedDate:   p.PublishedAt,
		CachedAt:        p.CachedAt,
		IsPremiumOnly:   p.PremiumOnly,
		Source:          p.Source,
	}
}

func toPostingsJSON(postings []model.Posting) []postingJSON {
	out := make([]postingJSON, len(postings))
	for i, p := range postings {
		out[i] = toPostingJSON(p)
	}
	return out
}

func toMatchesJSON(results []model.MatchResult) []matchJSON {
	out := make([]matchJSON, len(results))
	for i, r := range results {
		skills := r.MatchedSkills
		if skills == nil {
			skills = []string{}
		}
		out[i] = matchJSON{
			postingJSON:     toPostingJSON(r.Posting),
			MatchScore:      r.MatchScore,
			MatchPercentage: r.MatchPercentage,
			MatchedSkills:   skills,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
