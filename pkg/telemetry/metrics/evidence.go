package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cellgate-hq/pricelock/pkg/config"
)

// EvidenceMetrics tracks the verdict audit store.
//
// Metrics:
//   - pricelock_evidence_writes_total: evidence writes by status
//   - pricelock_evidence_pruned_total: records removed by retention
//   - pricelock_evidence_prune_duration_seconds: retention run duration
type EvidenceMetrics struct {
	writesTotal   *prometheus.CounterVec
	prunedTotal   prometheus.Counter
	pruneDuration *prometheus.HistogramVec
}

// NewEvidenceMetrics creates and registers evidence metrics.
func NewEvidenceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvidenceMetrics {
	em := &EvidenceMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "evidence",
				Name:      "writes_total",
				Help:      "Total number of evidence record writes",
			},
			[]string{"status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "evidence",
				Name:      "pruned_total",
				Help:      "Total number of evidence records removed by retention",
			},
		),

		pruneDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "evidence",
				Name:      "prune_duration_seconds",
				Help:      "Duration of retention pruning runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(em.writesTotal, em.prunedTotal, em.pruneDuration)
	return em
}

// RecordWrite records an evidence write.
func (em *EvidenceMetrics) RecordWrite(err error) {
	em.writesTotal.WithLabelValues(status(err)).Inc()
}

// RecordPrune records a retention run.
func (em *EvidenceMetrics) RecordPrune(deleted int64, duration time.Duration, err error) {
	if deleted > 0 {
		em.prunedTotal.Add(float64(deleted))
	}
	em.pruneDuration.WithLabelValues(status(err)).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
