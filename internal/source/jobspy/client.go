// Package jobspy calls a JobSpy-compatible scraper service that fans a single
// search out across the configured job boards.
package jobspy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/source"
)

const searchPath = "/api/v1/search_jobs"

// dateLayout is the date format the scraper service reports date_posted in.
const dateLayout = "2006-01-02"

// Config holds the scraper service connection and passthrough settings.
type Config struct {
	BaseURL           string
	Sites             []string
	Country           string
	FetchDescriptions bool
	Verbose           int
	Timeout           time.Duration
	RatePerSec        float64
	Burst             int
}

// Client is the multi-site scraper adapter.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a scraper service client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		logger:  logger,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return "jobspy" }

// searchRequest is the scraper service request schema.
type searchRequest struct {
	SiteName                 []string `json:"site_name"`
	SearchTerm               string   `json:"search_term"`
	Location                 string   `json:"location,omitempty"`
	Distance                 int      `json:"distance,omitempty"`
	IsRemote                 bool     `json:"is_remote,omitempty"`
	ResultsWanted            int      `json:"results_wanted"`
	HoursOld                 int      `json:"hours_old"`
	CountryIndeed            string   `json:"country_indeed"`
	LinkedinFetchDescription bool     `json:"linkedin_fetch_description"`
	Verbose                  int      `json:"verbose"`
}

// jobRecord is one row of the scraper service response.
type jobRecord struct {
	Site        string   `json:"site"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	JobURL      string   `json:"job_url"`
	Description string   `json:"description"`
	DatePosted  string   `json:"date_posted"`
	MinAmount   *float64 `json:"min_amount"`
	MaxAmount   *float64 `json:"max_amount"`
	Interval    string   `json:"interval"`
	JobType     string   `json:"job_type"`
}

type searchResponse struct {
	Jobs []jobRecord `json:"jobs"`
}

// Fetch implements source.Source. Remote queries drop the location; location
// queries carry the search radius; queries with neither default to a
// country-wide search.
func (c *Client) Fetch(ctx context.Context, q source.Query) ([]domain.Job, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body := searchRequest{
		SiteName:                 c.cfg.Sites,
		SearchTerm:               q.SearchTerm,
		ResultsWanted:            q.Limit,
		HoursOld:                 q.HoursOld,
		CountryIndeed:            c.cfg.Country,
		LinkedinFetchDescription: c.cfg.FetchDescriptions,
		Verbose:                  c.cfg.Verbose,
	}
	switch {
	case q.Remote:
		body.IsRemote = true
	case q.Location != "":
		body.Location = q.Location
		body.Distance = q.Distance
	default:
		body.Location = "United States"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.cfg.BaseURL+searchPath, bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("scrape request",
		zap.String("url", req.URL.String()),
		zap.String("search_term", q.SearchTerm),
		zap.Bool("remote", q.Remote),
		zap.String("location", q.Location),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadStatus, resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode scrape response: %w", err)
	}

	jobs := make([]domain.Job, 0, len(out.Jobs))
	for _, r := range out.Jobs {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

func (r jobRecord) toDomain() domain.Job {
	var posted *time.Time
	if r.DatePosted != "" {
		if t, err := time.Parse(dateLayout, r.DatePosted); err == nil {
			posted = &t
		}
	}
	return domain.Job{
		Site:        domain.Site(r.Site),
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		JobURL:      r.JobURL,
		Description: r.Description,
		DatePosted:  posted,
		MinAmount:   r.MinAmount,
		MaxAmount:   r.MaxAmount,
		Interval:    r.Interval,
		JobType:     r.JobType,
	}
}
