package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/txcontext"
)

// SuiteMetrics tracks fixture suite runs.
//
// Metrics:
//   - pricelock_suite_runs_total: suite runs by result
//   - pricelock_suite_cases: cases of the last run by status
//   - pricelock_suite_duration_seconds: suite run duration
type SuiteMetrics struct {
	runsTotal *prometheus.CounterVec
	cases     *prometheus.GaugeVec
	duration  prometheus.Histogram
}

// NewSuiteMetrics creates and registers suite metrics.
func NewSuiteMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SuiteMetrics {
	sm := &SuiteMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "suite",
				Name:      "runs_total",
				Help:      "Total number of fixture suite runs",
			},
			[]string{"result"},
		),

		cases: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "suite",
				Name:      "cases",
				Help:      "Number of cases in the last suite run by status",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "suite",
				Name:      "duration_seconds",
				Help:      "Duration of fixture suite runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
	}

	registry.MustRegister(sm.runsTotal, sm.cases, sm.duration)
	return sm
}

// RecordRun records a finished suite run.
func (sm *SuiteMetrics) RecordRun(report *txcontext.Report) {
	result := "pass"
	if !report.OK() {
		result = "fail"
	}
	sm.runsTotal.WithLabelValues(result).Inc()
	sm.cases.WithLabelValues("passed").Set(float64(report.Passed))
	sm.cases.WithLabelValues("failed").Set(float64(report.Failed))
	sm.duration.Observe(report.Duration.Seconds())
}
