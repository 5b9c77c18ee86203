// Package source defines the contract external job providers implement.
package source

import (
	"context"

	"github.com/jobscout-io/jobscout/internal/domain"
)

// Query describes one search issued against a source.
type Query struct {
	SearchTerm string
	HoursOld   int
	Limit      int
	Remote     bool
	Location   string
	Distance   int
}

// Source fetches job records from one external provider, normalized into the
// canonical schema. A failed fetch returns a non-nil error and contributes no
// records; the aggregation pipeline logs the failure and moves on, so a
// source outage degrades completeness, never correctness.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]domain.Job, error)
}
