package domain

import "time"

// Site identifies which source produced a job record.
type Site string

// SiteUSAJobs marks records fetched from the USAJOBS API. Records from the
// multi-site scraper carry the site name reported by the scraper itself
// (indeed, linkedin, glassdoor, ...).
const SiteUSAJobs Site = "usajobs"

// Job is the canonical job posting record flowing through the pipeline.
// Fields without an underscore-prefixed JSON name come from a source and are
// never mutated downstream; the underscore-prefixed extension fields are
// written by the pipeline only.
type Job struct {
	Site        Site       `json:"site"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	JobURL      string     `json:"job_url"`
	Description string     `json:"description"`
	DatePosted  *time.Time `json:"date_posted"`
	MinAmount   *float64   `json:"min_amount"`
	MaxAmount   *float64   `json:"max_amount"`
	Interval    string     `json:"interval"`
	JobType     string     `json:"job_type"`

	Score           int    `json:"_score"`
	IsManager       bool   `json:"_is_manager"`
	IsSeniorIC      bool   `json:"_is_senior_ic"`
	LargeCompany    bool   `json:"_large_company,omitempty"`
	GovtJob         bool   `json:"_govt_job,omitempty"`
	RemoteValidated *bool  `json:"_remote_validated,omitempty"`
	HighSalary      bool   `json:"_high_salary,omitempty"`
	LocationName    string `json:"_location_name,omitempty"`

	// USAJOBS-specific extensions.
	USAJobsID  string `json:"_usajobs_id,omitempty"`
	Department string `json:"_department,omitempty"`
	Grade      string `json:"_grade,omitempty"`
	Telework   bool   `json:"_telework,omitempty"`
	Remote     bool   `json:"_remote,omitempty"`
}

// MaxSalary returns the larger of the two salary bounds, 0 when both are
// missing.
func (j Job) MaxSalary() float64 {
	var min, max float64
	if j.MinAmount != nil {
		min = *j.MinAmount
	}
	if j.MaxAmount != nil {
		max = *j.MaxAmount
	}
	if min > max {
		return min
	}
	return max
}
