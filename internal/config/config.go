package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the jobscout API configuration. It is loaded once at startup
// and never mutated afterwards; services receive it by value.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	JobSpy  JobSpyConfig  `yaml:"jobspy"`
	USAJobs USAJobsConfig `yaml:"usajobs"`
	Scoring ScoringConfig `yaml:"scoring"`

	ExcludeKeywords []string   `yaml:"exclude_keywords"`
	IncludeKeywords []string   `yaml:"include_keywords"`
	Searches        []Search   `yaml:"searches"`
	Locations       []Location `yaml:"locations"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error; empty = derived from scrape.verbose
}

// ScrapeConfig holds settings shared by all scrape requests.
type ScrapeConfig struct {
	Sites             []string `yaml:"sites"`
	HoursOld          int      `yaml:"hours_old"`
	ResultsWanted     int      `yaml:"results_wanted"`
	Country           string   `yaml:"country_indeed"`
	FetchDescriptions bool     `yaml:"linkedin_fetch_description"`
	Verbose           int      `yaml:"verbose"` // 0=warn 1=info 2=debug
}

// JobSpyConfig holds the multi-site scraper service connection settings.
type JobSpyConfig struct {
	BaseURL    string  `yaml:"base_url"`
	TimeoutSec int     `yaml:"timeout_sec"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
}

// USAJobsConfig holds the government jobs API settings.
type USAJobsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	Email      string `yaml:"email"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// HasCredentials reports whether the integration can actually be used.
func (u USAJobsConfig) HasCredentials() bool {
	return u.APIKey != "" && u.Email != ""
}

// ScoringConfig holds the relevance scoring keyword lists and thresholds.
type ScoringConfig struct {
	MgmtTitles          []string `yaml:"mgmt_titles"`
	SeniorICTitles      []string `yaml:"senior_ic_titles"`
	PreferredTitles     []string `yaml:"preferred_titles"`
	BadTitles           []string `yaml:"bad_titles"`
	GoodLocations       []string `yaml:"good_locations"`
	GoodSkills          []string `yaml:"good_skills"`
	RedFlags            []string `yaml:"red_flags"`
	LargeCompanies      []string `yaml:"large_companies"`
	GenericRemote       []string `yaml:"generic_remote_locations"`
	HighSalaryThreshold float64  `yaml:"high_salary_threshold"`
}

// Location is one named location to search during fan-out.
type Location struct {
	Name     string `yaml:"name"`
	IsRemote bool   `yaml:"is_remote"`
	Location string `yaml:"location"`
	Distance int    `yaml:"distance"`
}

// Search is a saved search definition. The API only reports how many are
// configured; the frontend drives them one request at a time.
type Search struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Path returns the config file location: CONFIG_PATH env var or config.yaml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// Load reads configuration from a YAML file, applies environment variable
// overrides and fills in defaults. On a read or parse error it returns the
// defaults (with env overrides applied) alongside the error so the caller can
// log and keep running.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		cfg.applyEnvOverrides()
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR} / ${VAR:-default}
	data = expandEnvVars(data)

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fallback := Default()
		fallback.applyEnvOverrides()
		return fallback, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		fallback := Default()
		fallback.applyEnvOverrides()
		return fallback, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// applyEnvOverrides applies the environment variables that take priority over
// file settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("JOBSPY_VERBOSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scrape.Verbose = n
		}
	}
	if v := os.Getenv("JOBSPY_LINKEDIN_FULL"); v != "" {
		c.Scrape.FetchDescriptions = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("JOBSPY_SITES"); v != "" {
		c.Scrape.Sites = strings.Split(v, ",")
	}
	// Credentials supplied via environment auto-enable the integration.
	if v := os.Getenv("USAJOBS_API_KEY"); v != "" {
		c.USAJobs.APIKey = v
		c.USAJobs.Enabled = true
	}
	if v := os.Getenv("USAJOBS_EMAIL"); v != "" {
		c.USAJobs.Email = v
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Scrapes are slow; the response cannot be written until they finish.
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Scrape.Sites) == 0 {
		c.Scrape.Sites = []string{"indeed", "linkedin", "glassdoor", "zip_recruiter", "google"}
	}
	if c.Scrape.HoursOld <= 0 {
		c.Scrape.HoursOld = 72
	}
	if c.Scrape.ResultsWanted <= 0 {
		c.Scrape.ResultsWanted = 50
	}
	if c.Scrape.Country == "" {
		c.Scrape.Country = "USA"
	}
	if c.JobSpy.BaseURL == "" {
		c.JobSpy.BaseURL = "http://localhost:8787"
	}
	if c.JobSpy.TimeoutSec <= 0 {
		c.JobSpy.TimeoutSec = 120
	}
	if c.JobSpy.RatePerSec <= 0 {
		c.JobSpy.RatePerSec = 1
	}
	if c.JobSpy.Burst <= 0 {
		c.JobSpy.Burst = 2
	}
	if c.USAJobs.BaseURL == "" {
		c.USAJobs.BaseURL = "https://data.usajobs.gov"
	}
	if c.USAJobs.TimeoutSec <= 0 {
		c.USAJobs.TimeoutSec = 30
	}
	c.Scoring.applyDefaults()
}

func (s *ScoringConfig) applyDefaults() {
	if len(s.MgmtTitles) == 0 {
		s.MgmtTitles = []string{"manager", "director", "head of", "vp ", "vice president"}
	}
	if len(s.SeniorICTitles) == 0 {
		s.SeniorICTitles = []string{"senior", "sr.", "sr ", "lead", "principal", "staff"}
	}
	if len(s.BadTitles) == 0 {
		s.BadTitles = []string{
			"developer", "software engineer", "product manager", "project manager",
			"data engineer", "machine learning", "ml ", "ai ", "analytics",
			"financial system", "business system", "hris", "erp", "salesforce",
			"mainframe", "z/os", "as/400", "cobol",
			"expense", "budget", "accounting", "credit", "risk analyst",
			"marketing", "sales engineer", "solutions architect", "pre-sales",
			"recruiting", "talent", "hr ", "human resource",
		}
	}
	if len(s.GoodLocations) == 0 {
		s.GoodLocations = []string{"remote"}
	}
	if len(s.GoodSkills) == 0 {
		s.GoodSkills = []string{"terraform", "ansible", "kubernetes", "docker", "aws", "azure", "gcp"}
	}
	if len(s.RedFlags) == 0 {
		s.RedFlags = []string{"contract to hire", "c2h"}
	}
	if len(s.LargeCompanies) == 0 {
		s.LargeCompanies = []string{
			"amazon", "aws", "google", "microsoft", "meta", "facebook", "apple", "netflix",
			"nvidia", "oracle", "ibm", "cisco", "intel", "salesforce", "adobe",
			"accenture", "deloitte", "kpmg", "pwc", "cognizant", "infosys",
			"wipro", "tcs", "capgemini", "dxc", "hcl",
			"robert half", "randstad", "manpower", "kelly services", "adecco",
			"insight global", "teksystems", "apex systems",
		}
	}
	if len(s.GenericRemote) == 0 {
		s.GenericRemote = []string{
			"remote", "usa", "united states", "anywhere",
			"work from home", "wfh", "nationwide",
		}
	}
	if s.HighSalaryThreshold <= 0 {
		s.HighSalaryThreshold = 150000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.JobSpy.BaseURL == "" {
		return fmt.Errorf("jobspy.base_url is required")
	}
	for i, loc := range c.Locations {
		if loc.Name == "" {
			return fmt.Errorf("locations[%d].name is required", i)
		}
		if !loc.IsRemote && loc.Location == "" {
			return fmt.Errorf("locations[%d] (%s) needs a location or is_remote", i, loc.Name)
		}
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
