package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/validation"
)

// ValidationMetrics tracks controller verdicts.
//
// Metrics:
//   - pricelock_validation_verdicts_total: verdicts by outcome and rejection kind
//   - pricelock_validation_duration_seconds: time to reach a verdict
//   - pricelock_validation_rule_steps: evaluation steps used by priced rules
//   - pricelock_validation_rule_errors_total: rule failures by stage and code
type ValidationMetrics struct {
	verdictsTotal *prometheus.CounterVec
	duration      prometheus.Histogram
	ruleSteps     prometheus.Histogram
	ruleErrors    *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "verdicts_total",
				Help:      "Total number of validation verdicts",
			},
			[]string{"verdict", "kind"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Time from reading script args to a verdict",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
			},
		),

		ruleSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "rule_steps",
				Help:      "Evaluation steps used by rules that produced a price",
				Buckets:   cfg.StepBuckets,
			},
		),

		ruleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "rule_errors_total",
				Help:      "Total number of pricing rule failures",
			},
			[]string{"stage", "code"},
		),
	}

	registry.MustRegister(vm.verdictsTotal, vm.duration, vm.ruleSteps, vm.ruleErrors)
	return vm
}

// RecordVerdict records a verdict.
func (vm *ValidationMetrics) RecordVerdict(v *validation.Verdict) {
	verdict, kind := "accept", "none"
	if !v.Accepted() {
		verdict, kind = "reject", string(v.Kind())
	}

	vm.verdictsTotal.WithLabelValues(verdict, kind).Inc()
	vm.duration.Observe(v.Duration.Seconds())

	if v.Steps > 0 && reachedPrice(v) {
		vm.ruleSteps.Observe(float64(v.Steps))
	}
}

// RecordRuleError records a rule failure.
func (vm *ValidationMetrics) RecordRuleError(stage, code string) {
	if code == "" {
		code = "none"
	}
	vm.ruleErrors.WithLabelValues(stage, code).Inc()
}

func reachedPrice(v *validation.Verdict) bool {
	for _, s := range v.Path {
		if s == validation.StatePriceComputed {
			return true
		}
	}
	return false
}
