package httpapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/jobscout-io/jobscout/internal/domain"
	searchuc "github.com/jobscout-io/jobscout/internal/usecase/search"
)

const (
	defaultSearchTerm = "software engineer"
	defaultDistance   = 50
	defaultLimit      = 10
)

// sinceWhenPattern validates the lookback specifier: digits plus a d/w unit.
var sinceWhenPattern = regexp.MustCompile(`^[0-9]+[dw]$`)

// JobRequest is the public search request schema, shared by /get-jobs and
// /search-all.
type JobRequest struct {
	SinceWhen          string   `json:"sinceWhen"`
	Keywords           []string `json:"keywords,omitempty"`
	ExcludeKeywords    []string `json:"excludeKeywords,omitempty"`
	IsRemote           bool     `json:"isRemote,omitempty"`
	Location           string   `json:"location,omitempty"`
	Distance           int      `json:"distance,omitempty"`
	RequireAllKeywords bool     `json:"requireAllKeywords,omitempty"`
	Limit              int      `json:"limit,omitempty"`
}

// JobResponse is the public search response schema.
type JobResponse struct {
	Error             bool         `json:"error"`
	Jobs              []domain.Job `json:"jobs"`
	LocationsSearched []string     `json:"locations_searched,omitempty"`
}

// ConfigResponse is the non-sensitive configuration snapshot.
type ConfigResponse struct {
	Sites                    []string `json:"sites"`
	HoursOld                 int      `json:"hours_old"`
	ResultsWanted            int      `json:"results_wanted"`
	CountryIndeed            string   `json:"country_indeed"`
	LinkedinFetchDescription bool     `json:"linkedin_fetch_description"`
	SearchesCount            int      `json:"searches_count"`
	LocationsCount           int      `json:"locations_count"`
	ExcludeKeywordsCount     int      `json:"exclude_keywords_count"`
	IncludeKeywordsCount     int      `json:"include_keywords_count"`
	USAJobsEnabled           bool     `json:"usajobs_enabled"`
}

// ErrorResponse is the request validation error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeParams decodes and validates the request body, applies defaults, and
// builds the pipeline parameters. On validation failure it writes the error
// response and returns ok=false.
func (s *Server) decodeParams(w http.ResponseWriter, r *http.Request) (searchuc.Params, bool) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return searchuc.Params{}, false
	}

	if !sinceWhenPattern.MatchString(req.SinceWhen) {
		writeError(w, http.StatusBadRequest, "validation_failed",
			`sinceWhen must match "<N>d" or "<N>w"`)
		return searchuc.Params{}, false
	}

	if req.Distance <= 0 {
		req.Distance = defaultDistance
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	return searchuc.Params{
		SearchTerm:      searchTerm(req.Keywords),
		Keywords:        req.Keywords,
		ExcludeKeywords: mergeExcludes(req.ExcludeKeywords, s.cfg.ExcludeKeywords),
		HoursOld:        parseSinceWhen(req.SinceWhen),
		Limit:           req.Limit,
		Remote:          req.IsRemote,
		Location:        req.Location,
		Distance:        req.Distance,
		RequireAll:      req.RequireAllKeywords,
	}, true
}

// parseSinceWhen converts a "<N>d" or "<N>w" specifier into hours. Anything
// unrecognized falls back to 24 hours; this is an explicit default, not an
// error.
func parseSinceWhen(sinceWhen string) int {
	if len(sinceWhen) < 2 {
		return 24
	}
	value, err := strconv.Atoi(sinceWhen[:len(sinceWhen)-1])
	if err != nil {
		return 24
	}
	switch sinceWhen[len(sinceWhen)-1] {
	case 'd':
		return value * 24
	case 'w':
		return value * 24 * 7
	}
	return 24
}

// searchTerm joins the requested keywords into one query string.
func searchTerm(keywords []string) string {
	if len(keywords) == 0 {
		return defaultSearchTerm
	}
	return strings.Join(keywords, " ")
}

// mergeExcludes unions the request-level and config-level exclude lists.
func mergeExcludes(request, configured []string) []string {
	merged := make([]string, 0, len(request)+len(configured))
	merged = append(merged, request...)
	merged = append(merged, configured...)
	return merged
}
