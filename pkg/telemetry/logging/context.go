package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for the ID of a CLI invocation.
	RunIDKey contextKey = "run_id"

	// SuiteKey is the context key for the fixture suite being run.
	SuiteKey contextKey = "suite"

	// CaseKey is the context key for the fixture case being validated.
	CaseKey contextKey = "case"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithSuite adds a suite name to the context.
func WithSuite(ctx context.Context, suite string) context.Context {
	return context.WithValue(ctx, SuiteKey, suite)
}

// GetSuite retrieves the suite name from the context.
func GetSuite(ctx context.Context) string {
	if suite, ok := ctx.Value(SuiteKey).(string); ok {
		return suite
	}
	return ""
}

// WithCase adds a case name to the context.
func WithCase(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CaseKey, name)
}

// GetCase retrieves the case name from the context.
func GetCase(ctx context.Context) string {
	if name, ok := ctx.Value(CaseKey).(string); ok {
		return name
	}
	return ""
}

// extractContextFields returns the context fields as slog attributes. Trace
// and span IDs come from an active OpenTelemetry span, if any.
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var fields []slog.Attr
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, slog.String("run_id", runID))
	}
	if suite := GetSuite(ctx); suite != "" {
		fields = append(fields, slog.String("suite", suite))
	}
	if name := GetCase(ctx); name != "" {
		fields = append(fields, slog.String("case", name))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}

// contextHandler adds context fields to each record.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.AddAttrs(fields...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
