package search

import (
	"context"

	"github.com/jobscout-io/jobscout/internal/domain"
	"github.com/jobscout-io/jobscout/internal/source"
)

// Source is the provider contract the pipeline aggregates over.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q source.Query) ([]domain.Job, error)
}

// Params are the validated inputs of one aggregation run. The handler merges
// request-level and config-level exclude lists before building Params.
type Params struct {
	SearchTerm      string
	Keywords        []string
	ExcludeKeywords []string
	HoursOld        int
	Limit           int
	Remote          bool
	Location        string
	Distance        int
	RequireAll      bool
}
