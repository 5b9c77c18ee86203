// Package usajobs calls the USAJOBS government jobs API and normalizes its
// search results into the canonical job record schema.
package usajobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/source"
)

const (
	searchPath = "/api/search"
	// jobCategoryCode is the federal job series for Information Technology
	// Management.
	jobCategoryCode = "2210"
	// maxDaysPosted is the largest lookback the endpoint accepts.
	maxDaysPosted = 60
	// maxPageSize is the endpoint's ResultsPerPage cap.
	maxPageSize = 500

	dateLayout = "2006-01-02"
)

// Config holds USAJOBS API connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Email   string
	Timeout time.Duration
}

// Client is the government jobs adapter.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a USAJOBS API client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return string(domain.SiteUSAJobs) }

// Fetch implements source.Source. Location and radius filters apply only to
// non-remote queries: the RemoteIndicator flag is unreliable for federal
// postings, so remote searches fetch unfiltered and rely on the _telework and
// _remote fields downstream.
func (c *Client) Fetch(ctx context.Context, q source.Query) ([]domain.Job, error) {
	if c.cfg.APIKey == "" || c.cfg.Email == "" {
		return nil, fmt.Errorf("usajobs: %w", domain.ErrMissingCredentials)
	}

	days := q.HoursOld / 24
	if days < 1 {
		days = 1
	}
	if days > maxDaysPosted {
		days = maxDaysPosted
	}

	perPage := q.Limit
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	params := url.Values{}
	params.Set("Keyword", q.SearchTerm)
	params.Set("DatePosted", strconv.Itoa(days))
	params.Set("ResultsPerPage", strconv.Itoa(perPage))
	params.Set("JobCategoryCode", jobCategoryCode)
	if q.Location != "" && !q.Remote {
		params.Set("LocationName", q.Location)
		if q.Distance > 0 {
			params.Set("Radius", strconv.Itoa(q.Distance))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+searchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build usajobs request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", c.cfg.Email)
	req.Header.Set("Authorization-Key", c.cfg.APIKey)

	c.logger.Debug("usajobs request",
		zap.String("keyword", q.SearchTerm),
		zap.Int("days_posted", days),
		zap.Int("per_page", perPage),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usajobs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadStatus, resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode usajobs response: %w", err)
	}

	items := out.SearchResult.SearchResultItems
	jobs := make([]domain.Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, item.MatchedObjectDescriptor.toDomain())
	}

	c.logger.Info("usajobs search done",
		zap.String("keyword", q.SearchTerm),
		zap.Int("jobs", len(jobs)),
	)
	return jobs, nil
}

// searchResponse mirrors the USAJOBS search result envelope.
type searchResponse struct {
	SearchResult struct {
		SearchResultItems []struct {
			MatchedObjectDescriptor descriptor `json:"MatchedObjectDescriptor"`
		} `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

type descriptor struct {
	PositionID       string `json:"PositionID"`
	PositionTitle    string `json:"PositionTitle"`
	OrganizationName string `json:"OrganizationName"`
	DepartmentName   string `json:"DepartmentName"`
	PositionURI      string `json:"PositionURI"`
	PositionLocation []struct {
		LocationName string `json:"LocationName"`
	} `json:"PositionLocation"`
	PositionRemuneration []struct {
		MinimumRange     string `json:"MinimumRange"`
		MaximumRange     string `json:"MaximumRange"`
		RateIntervalCode string `json:"RateIntervalCode"`
	} `json:"PositionRemuneration"`
	PositionSchedule []struct {
		Name string `json:"Name"`
	} `json:"PositionSchedule"`
	JobGrade []struct {
		Code string `json:"Code"`
	} `json:"JobGrade"`
	PublicationStartDate string `json:"PublicationStartDate"`
	TeleworkEligible     bool   `json:"TeleworkEligible"`
	RemoteIndicator      bool   `json:"RemoteIndicator"`
	UserArea             struct {
		Details struct {
			JobSummary string `json:"JobSummary"`
		} `json:"Details"`
	} `json:"UserArea"`
}

// toDomain maps the external schema field-by-field into a canonical record.
// A malformed publication date parses to a missing date, never an error.
func (d descriptor) toDomain() domain.Job {
	j := domain.Job{
		Site:        domain.SiteUSAJobs,
		Title:       d.PositionTitle,
		Company:     d.OrganizationName,
		JobURL:      d.PositionURI,
		Description: d.UserArea.Details.JobSummary,
		USAJobsID:   d.PositionID,
		Department:  d.DepartmentName,
		Telework:    d.TeleworkEligible,
		Remote:      d.RemoteIndicator,
	}

	if len(d.PositionLocation) > 0 {
		j.Location = d.PositionLocation[0].LocationName
	}
	if len(d.PositionRemuneration) > 0 {
		rem := d.PositionRemuneration[0]
		j.MinAmount = parseAmount(rem.MinimumRange)
		j.MaxAmount = parseAmount(rem.MaximumRange)
		j.Interval = rem.RateIntervalCode
	}
	if len(d.PositionSchedule) > 0 {
		j.JobType = d.PositionSchedule[0].Name
	}
	if len(d.JobGrade) > 0 {
		j.Grade = d.JobGrade[0].Code
	}
	if d.PublicationStartDate != "" {
		if t, err := time.Parse(dateLayout, d.PublicationStartDate); err == nil {
			j.DatePosted = &t
		}
	}
	return j
}

// parseAmount converts the API's string remuneration bounds. Empty or
// unparseable values come back as a missing amount.
func parseAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
