package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout-io/jobscout/internal/config"
	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/logger"
	"github.com/jobscout-io/jobscout/internal/metrics"
	"github.com/jobscout-io/jobscout/internal/rank"
	"github.com/jobscout-io/jobscout/internal/source"
)

const defaultDistance = 50

// Service orchestrates source fetches and runs the post-merge pipeline:
// remote validation, dedupe, keyword filters, scoring, sort, truncation.
type Service struct {
	sources []Source // multi-site source first; the rest are tagged by name in fan-out
	cfg     config.Config
	scorer  rank.Scorer
	log     *zap.Logger
}

// New creates the aggregation service. Sources are called in the given order;
// the first one is the primary.
func New(cfg config.Config, scorer rank.Scorer, log *zap.Logger, sources ...Source) *Service {
	return &Service{sources: sources, cfg: cfg, scorer: scorer, log: log}
}

// Search runs a single-location aggregation: one fetch per source with the
// request's own location and remote parameters.
func (s *Service) Search(ctx context.Context, p Params) ([]domain.Job, error) {
	q := source.Query{
		SearchTerm: p.SearchTerm,
		HoursOld:   p.HoursOld,
		Limit:      p.Limit,
		Remote:     p.Remote,
		Location:   p.Location,
		Distance:   p.Distance,
	}

	var merged []domain.Job
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		jobs, err := s.fetch(ctx, src, q)
		if err != nil {
			continue // degraded completeness, not an error
		}
		merged = append(merged, jobs...)
	}

	if p.Remote {
		merged = s.validateRemote(merged)
	}
	return s.finish(merged, p), nil
}

// SearchAll fans the search out across every configured location, falling
// back to a single default location derived from the request. It returns the
// merged, ranked records and the names of the locations searched.
func (s *Service) SearchAll(ctx context.Context, p Params) ([]domain.Job, []string, error) {
	locations := s.cfg.Locations
	if len(locations) == 0 {
		loc := config.Location{Name: "default", IsRemote: p.Remote}
		if p.Location != "" {
			loc = config.Location{Name: p.Location, Location: p.Location, Distance: p.Distance}
		}
		locations = []config.Location{loc}
	}

	log := logger.FromContext(ctx)

	var all []domain.Job
	searched := make([]string, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		searched = append(searched, loc.Name)

		distance := loc.Distance
		if distance <= 0 {
			distance = defaultDistance
		}
		q := source.Query{
			SearchTerm: p.SearchTerm,
			HoursOld:   p.HoursOld,
			Limit:      s.cfg.Scrape.ResultsWanted,
			Remote:     loc.IsRemote,
			Location:   loc.Location,
			Distance:   distance,
		}

		log.Info("searching location",
			zap.String("location", loc.Name),
			zap.String("search_term", p.SearchTerm),
		)

		for i, src := range s.sources {
			jobs, err := s.fetch(ctx, src, q)
			if err != nil {
				continue // this location/source pair is skipped, the rest proceed
			}
			// Only scraper records get remote validation. Government
			// postings always name a duty station; their remote
			// eligibility rides on the _telework and _remote fields.
			if loc.IsRemote && i == 0 {
				jobs = s.validateRemote(jobs)
			}
			tag := loc.Name
			if i > 0 {
				tag = loc.Name + "_" + src.Name()
			}
			for k := range jobs {
				jobs[k].LocationName = tag
			}
			all = append(all, jobs...)
		}
	}

	all = dedupe(all)
	return s.finish(all, p), searched, nil
}

// finish applies the post-merge stages shared by both entry modes: exclusion
// filter, AND-mode filter, scoring, stable sort, truncation, sanitization.
func (s *Service) finish(jobs []domain.Job, p Params) []domain.Job {
	jobs = filterExcluded(jobs, p.ExcludeKeywords)
	if p.RequireAll && len(p.Keywords) > 0 {
		jobs = filterRequireAll(jobs, p.Keywords)
	}
	jobs = s.scoreAndSort(jobs)
	if p.Limit > 0 && len(jobs) > p.Limit {
		jobs = jobs[:p.Limit]
	}
	sanitize(jobs)
	return jobs
}

// fetch calls one source with metrics and failure logging. Errors are
// returned so the caller can skip the source's contribution.
func (s *Service) fetch(ctx context.Context, src Source, q source.Query) ([]domain.Job, error) {
	start := time.Now()
	jobs, err := src.Fetch(ctx, q)
	metrics.SourceFetchDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SourceErrorsTotal.WithLabelValues(src.Name()).Inc()
		logger.FromContext(ctx).Warn("source fetch failed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.SourceJobsFetchedTotal.WithLabelValues(src.Name()).Add(float64(len(jobs)))
	return jobs, nil
}
