// Package tracing provides OpenTelemetry tracing for pricelock.
//
// A Tracer exports spans over OTLP gRPC when enabled and hands out noop
// spans otherwise. It is passed to the validation controller, which opens a
// span for each run and a child span for each state transition:
//
//	validation.validate
//	├── validation.load_args
//	├── validation.load_witness
//	├── validation.compute_price
//	└── validation.check_capacity
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    service_name: "pricelock"
//	    sample_ratio: 0.1
//	    insecure: true
//
// Sampling is parent based: a run joined to a remote trace with
// ContextWithTraceParent follows the remote sampling decision, and root
// traces are sampled at sample_ratio.
package tracing
