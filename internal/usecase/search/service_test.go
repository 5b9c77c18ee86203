package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/jobscout-io/jobscout/internal/config"
	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/rank"
	"github.com/jobscout-io/jobscout/internal/source"
)

// --- Mocks ---

type mockSource struct {
	name    string
	jobs    []domain.Job
	err     error
	calls   int
	queries []source.Query
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(_ context.Context, q source.Query) ([]domain.Job, error) {
	m.calls++
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	// Copy so pipeline mutation never leaks back into the fixture.
	out := make([]domain.Job, len(m.jobs))
	copy(out, m.jobs)
	return out, nil
}

func job(title, url string) domain.Job {
	return domain.Job{Site: "indeed", Title: title, JobURL: url}
}

// --- Tests ---

func TestSearch_MergesSources(t *testing.T) {
	primary := &mockSource{name: "jobspy", jobs: []domain.Job{
		job("Engineering Manager", "https://a.example/1"),
		job("Platform Wizard", "https://a.example/2"),
	}}
	govt := &mockSource{name: "usajobs", jobs: []domain.Job{
		{Site: domain.SiteUSAJobs, Title: "IT Specialist", JobURL: "https://b.example/1"},
	}}

	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), primary, govt)

	jobs, err := svc.Search(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(jobs))
	}
	if primary.calls != 1 || govt.calls != 1 {
		t.Errorf("expected one fetch per source, got %d and %d", primary.calls, govt.calls)
	}
}

func TestSearch_SourceFailureIsIsolated(t *testing.T) {
	failing := &mockSource{name: "jobspy", err: errors.New("scraper down")}
	healthy := &mockSource{name: "usajobs", jobs: []domain.Job{
		{Site: domain.SiteUSAJobs, Title: "IT Manager", JobURL: "https://b.example/1"},
	}}

	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), failing, healthy)

	jobs, err := svc.Search(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("a single source failure must not fail the search: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected healthy source's record, got %d", len(jobs))
	}
}

func TestSearch_SortedAndTruncated(t *testing.T) {
	var fixture []domain.Job
	for i := 0; i < 8; i++ {
		title := "Platform Wizard"
		if i%2 == 0 {
			title = "Engineering Manager"
		}
		fixture = append(fixture, job(title, fmt.Sprintf("https://a.example/%d", i)))
	}
	src := &mockSource{name: "jobspy", jobs: fixture}

	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	jobs, err := svc.Search(context.Background(), Params{SearchTerm: "x", HoursOld: 168, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 5 {
		t.Fatalf("expected exactly 5 records, got %d", len(jobs))
	}
	for i := 1; i < len(jobs); i++ {
		if jobs[i].Score > jobs[i-1].Score {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
}

func TestSearch_RemoteRunsValidation(t *testing.T) {
	src := &mockSource{name: "jobspy", jobs: []domain.Job{
		{Title: "Manager A", Location: "Remote", JobURL: "https://a.example/1"},
		{Title: "Manager B", Location: "New York, NY", JobURL: "https://a.example/2"},
	}}

	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	jobs, err := svc.Search(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10, Remote: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected located record dropped on remote search, got %d", len(jobs))
	}
	if jobs[0].Title != "Manager A" {
		t.Errorf("wrong survivor: %q", jobs[0].Title)
	}
}

func TestSearch_ExcludesAndRequireAll(t *testing.T) {
	src := &mockSource{name: "jobspy", jobs: []domain.Job{
		{Title: "Kubernetes Manager", Description: "terraform", JobURL: "https://a.example/1"},
		{Title: "Clearance Kubernetes Manager", Description: "terraform", JobURL: "https://a.example/2"},
		{Title: "Kubernetes Manager", Description: "no iac", JobURL: "https://a.example/3"},
	}}

	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	jobs, err := svc.Search(context.Background(), Params{
		SearchTerm:      "kubernetes terraform",
		Keywords:        []string{"kubernetes", "terraform"},
		ExcludeKeywords: []string{"clearance"},
		HoursOld:        24,
		Limit:           10,
		RequireAll:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 record after filters, got %d", len(jobs))
	}
	if jobs[0].JobURL != "https://a.example/1" {
		t.Errorf("wrong survivor: %q", jobs[0].JobURL)
	}
}

func TestSearchAll_TagsLocations(t *testing.T) {
	primary := &mockSource{name: "jobspy", jobs: []domain.Job{
		job("Engineering Manager", ""), // empty URLs survive dedupe
	}}
	govt := &mockSource{name: "usajobs", jobs: []domain.Job{
		{Site: domain.SiteUSAJobs, Title: "IT Manager"},
	}}

	cfg := config.Default()
	cfg.Locations = []config.Location{
		{Name: "remote", IsRemote: true},
		{Name: "denver", Location: "Denver, CO", Distance: 25},
	}
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), primary, govt)

	jobs, searched, err := svc.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(searched) != 2 || searched[0] != "remote" || searched[1] != "denver" {
		t.Fatalf("unexpected searched list: %v", searched)
	}

	tags := make(map[string]int)
	for _, j := range jobs {
		tags[j.LocationName]++
	}
	// Primary source records carry the bare location name, secondary
	// sources get a source suffix.
	for _, want := range []string{"remote", "denver", "remote_usajobs", "denver_usajobs"} {
		if tags[want] == 0 {
			t.Errorf("expected a record tagged %q, got tags %v", want, tags)
		}
	}
}

func TestSearchAll_UsesConfiguredResultsWanted(t *testing.T) {
	src := &mockSource{name: "jobspy"}

	cfg := config.Default()
	cfg.Scrape.ResultsWanted = 77
	cfg.Locations = []config.Location{{Name: "remote", IsRemote: true}}
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	_, _, err := svc.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(src.queries))
	}
	if src.queries[0].Limit != 77 {
		t.Errorf("fan-out must fetch results_wanted per location, got %d", src.queries[0].Limit)
	}
}

func TestSearchAll_FallbackLocationFromRequest(t *testing.T) {
	src := &mockSource{name: "jobspy"}

	cfg := config.Default() // no locations configured
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	_, searched, err := svc.SearchAll(context.Background(), Params{
		SearchTerm: "x", HoursOld: 24, Limit: 10, Location: "Austin, TX", Distance: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(searched) != 1 || searched[0] != "Austin, TX" {
		t.Fatalf("expected request location fallback, got %v", searched)
	}
	if src.queries[0].Location != "Austin, TX" || src.queries[0].Distance != 30 {
		t.Errorf("unexpected query: %+v", src.queries[0])
	}

	// Without a request location either, a single default entry is used.
	src2 := &mockSource{name: "jobspy"}
	svc2 := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src2)
	_, searched2, err := svc2.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10, Remote: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(searched2) != 1 || searched2[0] != "default" {
		t.Fatalf("expected default fallback, got %v", searched2)
	}
	if !src2.queries[0].Remote {
		t.Error("expected remote flag carried into fallback query")
	}
}

func TestSearchAll_RemoteKeepsLocatedGovernmentRecords(t *testing.T) {
	primary := &mockSource{name: "jobspy", jobs: []domain.Job{
		{Title: "Manager A", Location: "Remote", JobURL: "https://a.example/1"},
		{Title: "Manager B", Location: "New York, NY", JobURL: "https://a.example/2"},
	}}
	govt := &mockSource{name: "usajobs", jobs: []domain.Job{
		{
			Site:     domain.SiteUSAJobs,
			Title:    "IT Manager",
			Location: "Washington, District of Columbia",
			JobURL:   "https://b.example/1",
			Telework: true,
		},
	}}

	cfg := config.Default()
	cfg.Locations = []config.Location{{Name: "remote", IsRemote: true}}
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), primary, govt)

	jobs, _, err := svc.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scraper records are remote-validated; the located government record
	// survives with its duty station, remote eligibility carried by the
	// telework fields.
	if len(jobs) != 2 {
		t.Fatalf("expected scraper survivor plus government record, got %d", len(jobs))
	}
	byURL := make(map[string]domain.Job, len(jobs))
	for _, j := range jobs {
		byURL[j.JobURL] = j
	}
	if _, ok := byURL["https://a.example/2"]; ok {
		t.Error("expected located scraper record dropped")
	}
	g, ok := byURL["https://b.example/1"]
	if !ok {
		t.Fatal("expected government record kept on a remote fan-out location")
	}
	if g.RemoteValidated != nil {
		t.Error("government records must not carry _remote_validated")
	}
	if g.LocationName != "remote_usajobs" {
		t.Errorf("unexpected tag %q", g.LocationName)
	}
}

func TestSearchAll_DedupesAcrossLocations(t *testing.T) {
	// The same posting comes back from both locations.
	src := &mockSource{name: "jobspy", jobs: []domain.Job{
		job("Engineering Manager", "https://a.example/same"),
	}}

	cfg := config.Default()
	cfg.Locations = []config.Location{
		{Name: "remote", IsRemote: true},
		{Name: "denver", Location: "Denver, CO"},
	}
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	jobs, _, err := svc.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected cross-location duplicate collapsed, got %d", len(jobs))
	}
	// First occurrence keeps its tag.
	if jobs[0].LocationName != "remote" {
		t.Errorf("expected first location's tag, got %q", jobs[0].LocationName)
	}
}

func TestSearchAll_SourceFailureSkipsPair(t *testing.T) {
	failing := &mockSource{name: "jobspy", err: errors.New("boom")}
	healthy := &mockSource{name: "usajobs", jobs: []domain.Job{
		{Site: domain.SiteUSAJobs, Title: "IT Manager", JobURL: "https://b.example/1"},
	}}

	cfg := config.Default()
	cfg.Locations = []config.Location{{Name: "denver", Location: "Denver, CO"}}
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), failing, healthy)

	jobs, searched, err := svc.SearchAll(context.Background(), Params{SearchTerm: "x", HoursOld: 24, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected healthy source's record, got %d", len(jobs))
	}
	if len(searched) != 1 {
		t.Errorf("the location still counts as searched, got %v", searched)
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	src := &mockSource{name: "jobspy"}
	cfg := config.Default()
	svc := New(cfg, rank.New(cfg.Scoring), zap.NewNop(), src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Search(ctx, Params{SearchTerm: "x", HoursOld: 24, Limit: 10}); err == nil {
		t.Fatal("expected context error")
	}
	if _, _, err := svc.SearchAll(ctx, Params{SearchTerm: "x", HoursOld: 24, Limit: 10}); err == nil {
		t.Fatal("expected context error")
	}
}
