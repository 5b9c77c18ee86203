package search

import (
	"math"
	"sort"
	"strings"

	"github.com/jobscout-io/jobscout/internal/domain"
)

// stateAbbrevs detect specific US locations during remote validation.
var stateAbbrevs = []string{
	"al", "ak", "az", "ar", "ca", "co", "ct", "de", "fl", "ga",
	"hi", "id", "il", "in", "ia", "ks", "ky", "la", "me", "md",
	"ma", "mi", "mn", "ms", "mo", "mt", "ne", "nv", "nh", "nj",
	"nm", "ny", "nc", "nd", "oh", "ok", "or", "pa", "ri", "sc",
	"sd", "tn", "tx", "ut", "vt", "va", "wa", "wv", "wi", "wy", "dc",
}

// validateRemote drops records naming a specific place from a remote search.
// Kept: empty locations, locations containing a generic remote marker, and
// ambiguous text (the bias is toward over-inclusion). A salary at or above
// the high-salary threshold overrides the filter: relocation-worthy pay is
// worth seeing even with a fixed location.
func (s *Service) validateRemote(jobs []domain.Job) []domain.Job {
	validated := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		location := strings.TrimSpace(strings.ToLower(j.Location))

		if location == "" {
			j.RemoteValidated = boolPtr(true)
			validated = append(validated, j)
			continue
		}

		if containsAnyMarker(location, s.cfg.Scoring.GenericRemote) {
			j.RemoteValidated = boolPtr(true)
			validated = append(validated, j)
			continue
		}

		if j.MaxSalary() >= s.cfg.Scoring.HighSalaryThreshold {
			j.RemoteValidated = boolPtr(false)
			j.HighSalary = true
			validated = append(validated, j)
			continue
		}

		if strings.Contains(location, ",") || hasStateAbbrev(location) {
			continue // specific city/state on a remote search
		}

		j.RemoteValidated = boolPtr(true)
		validated = append(validated, j)
	}
	return validated
}

// hasStateAbbrev reports whether the lowered location text matches the
// ", <st>" or trailing " <st>" state-abbreviation pattern.
func hasStateAbbrev(location string) bool {
	padded := ", " + location
	for _, st := range stateAbbrevs {
		if strings.Contains(padded, ", "+st) || strings.HasSuffix(location, " "+st) {
			return true
		}
	}
	return false
}

// dedupe keeps the first occurrence per job_url. Records without a URL are
// never discarded here.
func dedupe(jobs []domain.Job) []domain.Job {
	seen := make(map[string]struct{}, len(jobs))
	unique := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.JobURL == "" {
			unique = append(unique, j)
			continue
		}
		if _, ok := seen[j.JobURL]; ok {
			continue
		}
		seen[j.JobURL] = struct{}{}
		unique = append(unique, j)
	}
	return unique
}

// filterExcluded drops records whose title contains any exclude keyword.
// Matching is case-insensitive substring, title only.
func filterExcluded(jobs []domain.Job, excludes []string) []domain.Job {
	if len(excludes) == 0 {
		return jobs
	}
	lowered := make([]string, 0, len(excludes))
	for _, e := range excludes {
		if e = strings.ToLower(e); e != "" {
			lowered = append(lowered, e)
		}
	}

	kept := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		title := strings.ToLower(j.Title)
		if containsAnyMarker(title, lowered) {
			continue
		}
		kept = append(kept, j)
	}
	return kept
}

// filterRequireAll keeps records whose title or description contains every
// keyword (AND mode).
func filterRequireAll(jobs []domain.Job, keywords []string) []domain.Job {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	kept := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		title := strings.ToLower(j.Title)
		description := strings.ToLower(j.Description)
		all := true
		for _, k := range lowered {
			if !strings.Contains(title, k) && !strings.Contains(description, k) {
				all = false
				break
			}
		}
		if all {
			kept = append(kept, j)
		}
	}
	return kept
}

// scoreAndSort evaluates every record and stable-sorts descending by score,
// so equal scores retain adapter/location iteration order.
func (s *Service) scoreAndSort(jobs []domain.Job) []domain.Job {
	for i := range jobs {
		ev := s.scorer.Score(jobs[i])
		jobs[i].Score = ev.Score
		jobs[i].IsManager = ev.IsManager
		jobs[i].IsSeniorIC = ev.IsSeniorIC
		jobs[i].LargeCompany = ev.LargeCompany
		jobs[i].GovtJob = ev.GovtJob
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].Score > jobs[b].Score
	})
	return jobs
}

// sanitize replaces NaN salary bounds with a missing value so the records
// serialize cleanly.
func sanitize(jobs []domain.Job) {
	for i := range jobs {
		if jobs[i].MinAmount != nil && math.IsNaN(*jobs[i].MinAmount) {
			jobs[i].MinAmount = nil
		}
		if jobs[i].MaxAmount != nil && math.IsNaN(*jobs[i].MaxAmount) {
			jobs[i].MaxAmount = nil
		}
	}
}

func containsAnyMarker(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
