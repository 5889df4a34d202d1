package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"cellgate-hq/pricelock/pkg/config"
)

const testTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := newWithProvider(&config.TracingConfig{Enabled: true}, provider)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr, rec
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "disabled", config: &config.TracingConfig{Enabled: false}},
		{
			name:    "ratio above one",
			config:  &config.TracingConfig{Enabled: true, Endpoint: "localhost:4317", SampleRatio: 1.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tr.Enabled() {
				t.Error("Enabled() = true for disabled config")
			}
			if err := tr.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestTracer_DisabledSpansAreNoop(t *testing.T) {
	tr, err := New(&config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tr.Start(context.Background(), "validation.validate")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if TraceID(ctx) != "" {
		t.Errorf("TraceID() = %q, want empty", TraceID(ctx))
	}
}

func TestTracer_StartRecordsChildSpans(t *testing.T) {
	tr, rec := newRecordingTracer(t)

	ctx, root := tr.Start(context.Background(), "validation.validate")
	_, child := tr.Start(ctx, "validation.load_args")
	child.End()
	root.End()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "validation.load_args" {
		t.Errorf("first span = %q, want validation.load_args", spans[0].Name())
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("child span is not parented to the root span")
	}
	if TraceID(ctx) != spans[1].SpanContext().TraceID().String() {
		t.Error("TraceID() does not match the root span")
	}
	if SpanID(ctx) != spans[1].SpanContext().SpanID().String() {
		t.Error("SpanID() does not match the root span")
	}
}

func TestNewSampler(t *testing.T) {
	for _, ratio := range []float64{0, 0.25, 1} {
		if _, err := newSampler(ratio); err != nil {
			t.Errorf("newSampler(%v) error = %v", ratio, err)
		}
	}
	for _, ratio := range []float64{-0.1, 1.01} {
		if _, err := newSampler(ratio); err == nil {
			t.Errorf("newSampler(%v) error = nil, want error", ratio)
		}
	}
}

func TestAttributes(t *testing.T) {
	tr, rec := newRecordingTracer(t)

	_, span := tr.Start(context.Background(), "validation.validate")
	SetRunAttributes(span, "run-1", "tiers", "")
	SetPriceAttributes(span, 1000, 12)
	SetCapacityAttributes(span, 1000*100_000_000, 1<<63)
	SetOutcome(span, "reject", 6, "insufficient_capacity")
	span.End()

	attrs := attrMap(rec.Ended()[0])
	checks := map[attribute.Key]string{
		AttrRunID:      "run-1",
		AttrSuite:      "tiers",
		AttrRequired:   "100000000000",
		AttrCapacity:   "9223372036854775808",
		AttrFinalState: "reject",
		AttrKind:       "insufficient_capacity",
	}
	for key, want := range checks {
		if got := attrs[key].AsString(); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if _, ok := attrs[AttrCase]; ok {
		t.Errorf("%s set for an empty case name", AttrCase)
	}
	if got := attrs[AttrPrice].AsInt64(); got != 1000 {
		t.Errorf("%s = %d, want 1000", AttrPrice, got)
	}
	if got := attrs[AttrExitCode].AsInt64(); got != 6 {
		t.Errorf("%s = %d, want 6", AttrExitCode, got)
	}
}

func TestSetError(t *testing.T) {
	tr, rec := newRecordingTracer(t)

	_, ok := tr.Start(context.Background(), "ok")
	SetError(ok, nil)
	SetStatus(ok, nil)
	ok.End()

	_, failed := tr.Start(context.Background(), "failed")
	SetError(failed, errors.New("witness 0 has no lock field"))
	failed.End()

	spans := rec.Ended()
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("ok span status = %v, want Ok", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("failed span status = %v, want Error", spans[1].Status().Code)
	}
	if len(spans[1].Events()) != 1 {
		t.Errorf("failed span events = %d, want 1 exception event", len(spans[1].Events()))
	}
	if got := attrMap(spans[1])[AttrErrorMessage].AsString(); got != "witness 0 has no lock field" {
		t.Errorf("error.message = %q", got)
	}
}

func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid", testTraceParent, true},
		{"not sampled", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00", true},
		{"empty", "", false},
		{"three parts", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7", false},
		{"short trace id", "00-4bf92f3577b34da6a3ce929d0e0e47-00f067aa0ba902b7-01", false},
		{"uppercase", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01", false},
		{"zero trace id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", false},
		{"zero parent id", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", false},
		{"non hex", "00-4bf92f3577b34da6a3ce929d0e0e473g-00f067aa0ba902b7-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.value); got != tt.want {
				t.Errorf("ValidateTraceParent(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestContextWithTraceParent(t *testing.T) {
	tr, rec := newRecordingTracer(t)

	ctx := ContextWithTraceParent(context.Background(), testTraceParent)
	_, span := tr.Start(ctx, "validation.validate")
	span.End()

	got := rec.Ended()[0]
	if got.SpanContext().TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s, want the remote trace", got.SpanContext().TraceID())
	}
	if got.Parent().SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent = %s, want the remote span", got.Parent().SpanID())
	}

	if ContextWithTraceParent(context.Background(), "garbage") != context.Background() {
		t.Error("invalid traceparent changed the context")
	}
}

func TestTraceParent_RoundTrip(t *testing.T) {
	ctx := ContextWithTraceParent(context.Background(), testTraceParent)
	if got := TraceParent(ctx); got != testTraceParent {
		t.Errorf("TraceParent() = %q, want %q", got, testTraceParent)
	}
	if got := TraceParent(context.Background()); got != "" {
		t.Errorf("TraceParent() without span = %q, want empty", got)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	var sawTrace string
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawTrace = TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("traceparent", testTraceParent)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if sawTrace != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("handler trace id = %q", sawTrace)
	}
	if got := rr.Header().Get("X-Trace-ID"); got != sawTrace {
		t.Errorf("X-Trace-ID = %q, want %q", got, sawTrace)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if got := rr.Header().Get("X-Trace-ID"); got != "" {
		t.Errorf("X-Trace-ID without traceparent = %q, want empty", got)
	}
}
