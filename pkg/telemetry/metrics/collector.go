package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/pricing"
	"cellgate-hq/pricelock/pkg/txcontext"
	"cellgate-hq/pricelock/pkg/validation"
)

// Collector owns every pricelock metric and the registry they live in.
// All label values come from closed sets (verdicts, rejection kinds, rule
// stages and engine codes), so label cardinality is bounded.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validationMetrics *ValidationMetrics
	suiteMetrics      *SuiteMetrics
	evidenceMetrics   *EvidenceMetrics
}

var _ validation.Observer = (*Collector)(nil)

// NewCollector creates a collector registering into registry. A nil registry
// gets a fresh one.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	ctrl, _ := validation.NewController(validation.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.StepBuckets) == 0 {
		cfg.StepBuckets = append([]float64(nil), config.DefaultStepBuckets...)
	}

	return &Collector{
		config:            cfg,
		registry:          registry,
		validationMetrics: NewValidationMetrics(cfg, registry),
		suiteMetrics:      NewSuiteMetrics(cfg, registry),
		evidenceMetrics:   NewEvidenceMetrics(cfg, registry),
	}
}

// ObserveVerdict records a validation verdict. It implements
// validation.Observer.
func (c *Collector) ObserveVerdict(_ context.Context, v *validation.Verdict) {
	if !c.config.Enabled || v == nil {
		return
	}

	c.validationMetrics.RecordVerdict(v)

	if v.Kind() == validation.KindRule {
		var ruleErr *pricing.RuleError
		if errors.As(v.Err, &ruleErr) {
			c.validationMetrics.RecordRuleError(string(ruleErr.Stage), ruleErr.Code)
		} else {
			c.validationMetrics.RecordRuleError(string(pricing.StageResult), "")
		}
	}
}

// RecordSuite records the outcome of a fixture suite run.
func (c *Collector) RecordSuite(report *txcontext.Report) {
	if !c.config.Enabled || report == nil {
		return
	}
	c.suiteMetrics.RecordRun(report)
}

// RecordEvidenceWrite records one evidence write attempt.
func (c *Collector) RecordEvidenceWrite(err error) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.RecordWrite(err)
}

// RecordPrune records a retention pruning run.
func (c *Collector) RecordPrune(deleted int64, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.RecordPrune(deleted, duration, err)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
