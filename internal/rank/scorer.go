// Package rank computes a relevance score per job record from configurable
// keyword heuristics.
package rank

import (
	"strings"

	"github.com/jobscout-io/jobscout/internal/config"
	"github.com/jobscout-io/jobscout/internal/domain"
)

// Evaluation is the outcome of scoring one record: the additive score plus
// the flags downstream consumers surface as badges.
type Evaluation struct {
	Score        int
	IsManager    bool
	IsSeniorIC   bool
	LargeCompany bool
	GovtJob      bool
}

// Scorer evaluates job records against the configured keyword lists. Scoring
// is deterministic and strictly per-record; all matching is case-insensitive
// substring. Every applicable rule fires, so a record can collect both the
// manager bonus and the bad-title penalty.
type Scorer struct {
	cfg config.ScoringConfig
}

// New creates a scorer.
func New(cfg config.ScoringConfig) Scorer {
	return Scorer{cfg: cfg}
}

// Score evaluates one record.
func (s Scorer) Score(j domain.Job) Evaluation {
	title := strings.ToLower(j.Title)
	description := strings.ToLower(j.Description)
	location := strings.ToLower(j.Location)
	company := strings.ToLower(j.Company)
	text := title + " " + description + " " + company

	var ev Evaluation

	// Role type: prefer people managers over ICs.
	ev.IsManager = containsAny(title, s.cfg.MgmtTitles)
	ev.IsSeniorIC = !ev.IsManager && containsAny(title, s.cfg.SeniorICTitles)
	switch {
	case ev.IsManager:
		ev.Score += 25
	case ev.IsSeniorIC:
		ev.Score += 10
	default:
		ev.Score -= 10
	}

	if len(s.cfg.PreferredTitles) > 0 && containsAny(title, s.cfg.PreferredTitles) {
		ev.Score += 15
	}
	if containsAny(title, s.cfg.BadTitles) {
		ev.Score -= 20
	}

	if containsAny(location, s.cfg.GoodLocations) {
		ev.Score += 10
	}
	if strings.Contains(location, "remote") || strings.Contains(title, "remote") {
		ev.Score += 10
	}

	for _, skill := range s.cfg.GoodSkills {
		if needle := normalize(skill); needle != "" && strings.Contains(description, needle) {
			ev.Score += 5
		}
	}

	for _, flag := range s.cfg.RedFlags {
		if needle := normalize(flag); needle != "" && strings.Contains(text, needle) {
			ev.Score -= 10
		}
	}

	ev.LargeCompany = containsAny(company, s.cfg.LargeCompanies)
	if ev.LargeCompany {
		ev.Score -= 5
	}

	// Government postings are usually smaller orgs.
	ev.GovtJob = j.Site == domain.SiteUSAJobs
	if ev.GovtJob {
		ev.Score += 10
	}

	return ev
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if needle := normalize(n); needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// normalize lowercases a needle. Whitespace is kept: entries like "vp " and
// "sr " rely on the trailing space to avoid matching inside words.
func normalize(s string) string {
	return strings.ToLower(s)
}
