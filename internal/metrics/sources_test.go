package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSourceMetrics_Idempotent(t *testing.T) {
	// Double registration must not panic.
	RegisterSourceMetrics()
	RegisterSourceMetrics()
}

func TestSourceMetrics_Labels(t *testing.T) {
	RegisterSourceMetrics()

	SourceJobsFetchedTotal.WithLabelValues("jobspy").Add(3)
	SourceErrorsTotal.WithLabelValues("usajobs").Inc()
	SourceFetchDuration.WithLabelValues("jobspy").Observe(1.2)

	if got := testutil.ToFloat64(SourceJobsFetchedTotal.WithLabelValues("jobspy")); got < 3 {
		t.Errorf("expected jobs fetched counter >= 3, got %f", got)
	}
	if got := testutil.ToFloat64(SourceErrorsTotal.WithLabelValues("usajobs")); got < 1 {
		t.Errorf("expected error counter >= 1, got %f", got)
	}
	if count := testutil.CollectAndCount(SourceFetchDuration); count == 0 {
		t.Error("expected fetch duration observations")
	}
}
