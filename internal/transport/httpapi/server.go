// Package httpapi exposes the job search API over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jobscout-io/jobscout/internal/config"
	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/logger"
	healthuc "github.com/jobscout-io/jobscout/internal/usecase/health"
	searchuc "github.com/jobscout-io/jobscout/internal/usecase/search"
)

// Server holds the handlers for the job search API.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	cfg    config.Config
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{search: search, health: health, cfg: cfg, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/get-jobs", s.GetJobs)
	r.Post("/search-all", s.SearchAll)
	r.Get("/health", s.Health)
	r.Get("/config", s.Config)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// GetJobs handles POST /get-jobs: a single-location search.
func (s *Server) GetJobs(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	jobs, err := s.runSearch(r.Context(), params)
	if err != nil {
		s.respondDegraded(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	writeJSON(w, http.StatusOK, JobResponse{Error: false, Jobs: jobs})
}

// SearchAll handles POST /search-all: fan-out across configured locations.
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	jobs, searched, err := s.runSearchAll(r.Context(), params)
	if err != nil {
		s.respondDegraded(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	writeJSON(w, http.StatusOK, JobResponse{
		Error:             false,
		Jobs:              jobs,
		LocationsSearched: searched,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check())
}

// Config handles GET /config: a non-sensitive configuration snapshot. API
// credentials must never appear here.
func (s *Server) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		Sites:                    s.cfg.Scrape.Sites,
		HoursOld:                 s.cfg.Scrape.HoursOld,
		ResultsWanted:            s.cfg.Scrape.ResultsWanted,
		CountryIndeed:            s.cfg.Scrape.Country,
		LinkedinFetchDescription: s.cfg.Scrape.FetchDescriptions,
		SearchesCount:            len(s.cfg.Searches),
		LocationsCount:           len(s.cfg.Locations),
		ExcludeKeywordsCount:     len(s.cfg.ExcludeKeywords),
		IncludeKeywordsCount:     len(s.cfg.IncludeKeywords),
		USAJobsEnabled:           s.cfg.USAJobs.Enabled,
	})
}

// runSearch shields the handler from pipeline panics: any unexpected failure
// becomes an error the handler turns into a degraded response.
func (s *Server) runSearch(ctx context.Context, p searchuc.Params) (jobs []domain.Job, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			jobs, err = nil, fmt.Errorf("pipeline panic: %v", rvr)
		}
	}()
	return s.search.Search(ctx, p)
}

func (s *Server) runSearchAll(
	ctx context.Context, p searchuc.Params,
) (jobs []domain.Job, searched []string, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			jobs, searched, err = nil, nil, fmt.Errorf("pipeline panic: %v", rvr)
		}
	}()
	return s.search.SearchAll(ctx, p)
}

// respondDegraded logs the failure and answers with an error flag and an
// empty job list under an HTTP success status: an internal failure degrades
// the service to "no results", it does not break the API contract.
func (s *Server) respondDegraded(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("search failed", zap.Error(err))
	writeJSON(w, http.StatusOK, JobResponse{Error: true, Jobs: []domain.Job{}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
