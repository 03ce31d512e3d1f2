// Package api exposes the aggregator, matcher and résumé importer over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amishk599/jobsnap/internal/aggregate"
	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/model"
)

const (
	maxResumeBytes  = 5 << 20
	shutdownTimeout = 10 * time.Second
)

// Fetcher is the part of the aggregator the API serves.
type Fetcher interface {
	FetchAndCache(ctx context.Context, searchTerm string, targetCount int) (aggregate.Result, error)
	Search(ctx context.Context, query string, req model.PageRequest) (aggregate.Page, error)
	ListAll(ctx context.Context, req model.PageRequest) (aggregate.Page, error)
}

type Matcher interface {
	Match(ctx context.Context, userID string, req model.PageRequest) (match.MatchPage, error)
}

type Importer interface {
	Import(ctx context.Context, userID, mime string, data []byte) (model.SkillProfile, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	fetcher    Fetcher
	matcher    Matcher
	importer   Importer
	fetchLimit int
	logger     *slog.Logger
}

func NewServer(fetcher Fetcher, matcher Matcher, importer Importer, fetchLimit int, logger *slog.Logger) *Server {
	if fetchLimit < 1 {
		fetchLimit = aggregate.DefaultTarget
	}
	return &Server{
		fetcher:    fetcher,
		matcher:    matcher,
		importer:   importer,
		fetchLimit: fetchLimit,
		logger:     logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs/fetch", s.handleFetch)
		r.Get("/jobs/search", s.handleSearch)
		r.Get("/jobs/all", s.handleAll)
		r.Get("/users/{userID}/matches", s.handleMatches)
		r.Post("/users/{userID}/resume", s.handleResume)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
