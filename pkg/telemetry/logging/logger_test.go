package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json"}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "valid console config", config: Config{Level: "warn", Format: "console"}},
		{name: "defaults", config: Config{}},
		{name: "upper case", config: Config{Level: "ERROR", Format: "TEXT"}},
		{name: "invalid log level", config: Config{Level: "invalid", Format: "json"}, wantErr: true},
		{name: "invalid format", config: Config{Level: "info", Format: "invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: level, Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newJSONLogger(t, "warn")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", "code", 5)

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "warn message" || lines[1]["msg"] != "error message" {
		t.Errorf("unexpected messages: %v", lines)
	}
	if lines[1]["code"] != float64(5) {
		t.Errorf("code = %v, want 5", lines[1]["code"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newJSONLogger(t, "debug")

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithSuite(ctx, "tiers")
	ctx = WithCase(ctx, "three chars")

	logger.InfoContext(ctx, "case passed")
	logger.Slog().DebugContext(ctx, "through slog")
	logger.Info("no context")

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, line := range lines[:2] {
		if line["run_id"] != "run-1" || line["suite"] != "tiers" || line["case"] != "three chars" {
			t.Errorf("missing context fields in %v", line)
		}
	}
	if _, ok := lines[2]["run_id"]; ok {
		t.Errorf("unexpected run_id without context: %v", lines[2])
	}
}

func TestLogger_TraceFields(t *testing.T) {
	logger, buf := newJSONLogger(t, "info")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	logger.InfoContext(ctx, "traced")

	lines := decodeLines(t, buf)
	if lines[0]["trace_id"] != sc.TraceID().String() {
		t.Errorf("trace_id = %v, want %s", lines[0]["trace_id"], sc.TraceID())
	}
	if lines[0]["span_id"] != sc.SpanID().String() {
		t.Errorf("span_id = %v, want %s", lines[0]["span_id"], sc.SpanID())
	}
}

func TestLogger_With(t *testing.T) {
	logger, buf := newJSONLogger(t, "info")

	ctx := WithRunID(context.Background(), "run-2")
	logger.With("component", "watch").InfoContext(ctx, "started")

	lines := decodeLines(t, buf)
	if lines[0]["component"] != "watch" || lines[0]["run_id"] != "run-2" {
		t.Errorf("unexpected fields: %v", lines[0])
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "console", Writer: buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Warn("capacity low", "required", 100)
	out := buf.String()
	if !strings.Contains(out, "level=warn") {
		t.Errorf("expected lower-case level in %q", out)
	}
	if !strings.Contains(out, `msg="capacity low"`) || !strings.Contains(out, "required=100") {
		t.Errorf("unexpected console output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Slog().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger is enabled at error level")
	}
	logger.Error("dropped")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) succeeded")
	}
}

func BenchmarkLogger_FilteredDebug(b *testing.B) {
	logger, err := New(Config{Level: "info", Format: "json", Writer: &bytes.Buffer{}})
	if err != nil {
		b.Fatal(err)
	}
	ctx := WithRunID(context.Background(), "run")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.DebugContext(ctx, "filtered", "i", i)
	}
}
