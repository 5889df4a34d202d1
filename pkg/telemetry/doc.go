// Package telemetry groups the observability packages used by pricelock.
//
//   - logging: structured slog logging with run, suite and case fields
//   - metrics: Prometheus counters and histograms for verdicts, suite runs
//     and the evidence store
//   - tracing: OpenTelemetry spans for each validation state transition
//   - health: liveness and readiness endpoints for pricelock watch
//
// Telemetry never changes a verdict. A run with every exporter disabled
// produces the same exit code as one with all of them enabled.
package telemetry
