package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amishk599/jobsnap/internal/model"
	"github.com/amishk599/jobsnap/internal/resume"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := intParam(q.Get("limit"), s.fetchLimit)

	res, err := s.fetcher.FetchAndCache(r.Context(), q.Get("search"), limit)
	if err != nil {
		s.logger.Error("fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch and cache jobs")
		return
	}

	writeJSON(w, http.StatusOK, fetchResponse{
		Message:  fmt.Sprintf("Fetched and cached %d jobs", res.Total),
		Postings: toPostingsJSON(res.Postings),
		Total:    res.Total,
		Source:   res.Source,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := s.fetcher.Search(r.Context(), r.URL.Query().Get("q"), pageRequest(r))
	if err != nil {
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search jobs")
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Postings:   toPostingsJSON(page.Postings),
		Pagination: page.Pagination,
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	page, err := s.fetcher.ListAll(r.Context(), pageRequest(r))
	if err != nil {
		s.logger.Error("list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Postings:   toPostingsJSON(page.Postings),
		Pagination: page.Pagination,
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	page, err := s.matcher.Match(r.Context(), userID, pageRequest(r))
	if err != nil {
		s.logger.Error("match failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to match jobs")
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{
		Results:          toMatchesJSON(page.Results),
		Pagination:       page.Pagination,
		UserSkillsSample: page.UserSkillsSample,
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResumeBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "résumé exceeds 5MB")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "please upload a résumé")
		return
	}

	mime := r.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/octet-stream") {
		mime = resume.DetectMIME(r.URL.Query().Get("filename"), data)
	}

	profile, err := s.importer.Import(r.Context(), userID, mime, data)
	switch {
	case errors.Is(err, resume.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, resume.ErrNoText):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("résumé import failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import résumé")
		return
	}

	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}
	writeJSON(w, http.StatusOK, resumeResponse{
		UserID:    profile.UserID,
		Skills:    skills,
		UpdatedAt: profile.UpdatedAt,
	})
}

func pageRequest(r *http.Request) model.PageRequest {
	q := r.URL.Query()
	return model.PageRequest{
		Page:  intParam(q.Get("page"), model.DefaultPage),
		Limit: intParam(q.Get("limit"), model.DefaultLimit),
	}.Normalize()
}

// intParam parses a positive integer query value, falling back to def.
func intParam(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
