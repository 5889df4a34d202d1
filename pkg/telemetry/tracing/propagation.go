package tracing

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

// propagator handles W3C Trace Context and Baggage.
var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Propagator returns the W3C text map propagator used by pricelock.
func Propagator() propagation.TextMapPropagator {
	return propagator
}

// ContextWithTraceParent returns ctx carrying the remote span described by
// a W3C traceparent value, so spans started from it join that trace. An
// invalid traceparent leaves ctx unchanged.
//
//	pricelock verify --traceparent 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01 ...
func ContextWithTraceParent(ctx context.Context, traceparent string) context.Context {
	if !ValidateTraceParent(traceparent) {
		return ctx
	}
	return propagator.Extract(ctx, propagation.MapCarrier{"traceparent": traceparent})
}

// TraceParent serializes the span in ctx as a traceparent value, or "" when
// ctx has no valid span.
func TraceParent(ctx context.Context) string {
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier.Get("traceparent")
}

// HTTPMiddleware extracts trace context from incoming request headers and
// echoes the trace ID in X-Trace-ID.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		if id := TraceID(ctx); id != "" {
			w.Header().Set("X-Trace-ID", id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateTraceParent reports whether s is a well-formed traceparent:
//
//	version-trace_id-parent_id-trace_flags
//	00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// All-zero trace and parent IDs are invalid.
func ValidateTraceParent(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return false
	}

	for i, n := range []int{2, 32, 16, 2} {
		if len(parts[i]) != n || !isLowerHex(parts[i]) {
			return false
		}
	}

	return strings.Trim(parts[1], "0") != "" && strings.Trim(parts[2], "0") != ""
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
