package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.IncSuccess("notification-cleanup")
	m.IncSuccess("notification-cleanup")
	m.IncFailure("delivery-assignment")

	if got := testutil.ToFloat64(m.runs.WithLabelValues("notification-cleanup", outcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("delivery-assignment", outcomeFailure)); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccess.WithLabelValues("notification-cleanup")); got != float64(fixed.Unix()) {
		t.Fatalf("expected last success %d, got %v", fixed.Unix(), got)
	}
	if got := testutil.CollectAndCount(m.lastSuccess); got != 1 {
		t.Fatalf("failures must not stamp last success, got %d series", got)
	}
}

func TestCronJobMetricsObservesDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.ObserveDuration("", 250*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	hist := histogramFor(families, "bargen_cron_job_duration_seconds", "unknown")
	if hist == nil {
		t.Fatal("expected a histogram labelled job=unknown")
	}
	if hist.GetSampleCount() != 1 || hist.GetSampleSum() != 0.25 {
		t.Fatalf("unexpected histogram count=%d sum=%v", hist.GetSampleCount(), hist.GetSampleSum())
	}
}

func TestNilCronJobMetricsIsNoop(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveDuration("job", time.Second)
	m.IncSuccess("job")
	m.IncFailure("job")
	NewCronJobMetrics(nil).IncSuccess("job")
}

func histogramFor(families []*dto.MetricFamily, name, job string) *dto.Histogram {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetHistogram()
				}
			}
		}
	}
	return nil
}
