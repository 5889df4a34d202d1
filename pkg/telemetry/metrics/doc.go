// Package metrics provides Prometheus metrics for pricelock.
//
// A Collector is a validation.Observer, so wiring it into a controller is
// enough to count verdicts:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	ctrl, err := validation.NewController(validation.WithObserver(collector))
//
// Exposed metrics:
//
//	pricelock_validation_verdicts_total{verdict,kind}
//	pricelock_validation_duration_seconds
//	pricelock_validation_rule_steps
//	pricelock_validation_rule_errors_total{stage,code}
//	pricelock_suite_runs_total{result}
//	pricelock_suite_cases{status}
//	pricelock_suite_duration_seconds
//	pricelock_evidence_writes_total{status}
//	pricelock_evidence_pruned_total
//	pricelock_evidence_prune_duration_seconds{status}
//
// Nothing is recorded when MetricsConfig.Enabled is false.
package metrics
