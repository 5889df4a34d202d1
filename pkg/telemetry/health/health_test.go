package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestNew(t *testing.T) {
	if got := New(0).checkTimeout; got != DefaultCheckTimeout {
		t.Errorf("default timeout = %v, want %v", got, DefaultCheckTimeout)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("timeout = %v, want 1s", got)
	}
}

func TestChecker_RegisterAndNames(t *testing.T) {
	c := New(0)
	c.Register("suite", StateCheck(func() error { return nil }))
	c.Register("evidence", PingCheck(pingFunc(func(context.Context) error { return nil })))
	c.Register("suite", StateCheck(func() error { return nil }))

	if got, want := c.Names(), []string{"evidence", "suite"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	c.Unregister("suite")
	if got, want := c.Names(), []string{"evidence"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() after Unregister = %v, want %v", got, want)
	}
}

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{name: "no checks", checks: nil, want: StatusReady},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": StateCheck(func() error { return nil }),
				"b": StateCheck(func() error { return nil }),
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": StateCheck(func() error { return nil }),
				"b": StateCheck(func() error { return errors.New("2 of 9 cases failed") }),
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.Register(name, check)
			}

			status := c.Readiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_ReadinessTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			<-time.After(50 * time.Millisecond)
			return nil
		}
	})

	status := c.Readiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", result)
	}
}

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tiers.yaml")
	if err := os.WriteFile(file, []byte("name: tiers\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := FileCheck(file)(ctx); err != nil {
		t.Errorf("existing file: %v", err)
	}
	if err := FileCheck(dir)(ctx); err == nil {
		t.Error("directory: want error")
	}
	if err := FileCheck(filepath.Join(dir, "missing.yaml"))(ctx); err == nil {
		t.Error("missing file: want error")
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	failing := errors.New("store closed")
	var state error
	c.Register("evidence", StateCheck(func() error { return state }))

	mux := http.NewServeMux()
	Mount(mux, c, NewVersionInfo("1.2.3", "abc123", "2026-01-01"))

	tests := []struct {
		name     string
		method   string
		path     string
		state    error
		wantCode int
	}{
		{"liveness", http.MethodGet, "/health", failing, http.StatusOK},
		{"ready", http.MethodGet, "/ready", nil, http.StatusOK},
		{"not ready", http.MethodGet, "/ready", failing, http.StatusServiceUnavailable},
		{"head ready", http.MethodHead, "/ready", nil, http.StatusOK},
		{"version", http.MethodGet, "/version", nil, http.StatusOK},
		{"post rejected", http.MethodPost, "/health", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state = tt.state
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.method == http.MethodHead && rr.Body.Len() != 0 {
				t.Errorf("HEAD body = %q, want empty", rr.Body.String())
			}
		})
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rr.Body).Decode(&info); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("version info = %+v", info)
	}
}
