package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/txcontext"
)

const suiteYAML = `name: tiers
rule: |
  let price_tiers = [50000, 20000, 10000, 5000, 2000, 1000];
  let len = account_chars.len();
  if len > 6 { 100 } else { price_tiers[len - 1] }
cases:
  - name: three chars
    account: ABC
    capacity: 10000
    expect:
      verdict: accept
      price: 10000
  - name: short by one
    account: AB
    capacity: 19999
    expect:
      verdict: reject
      kind: insufficient_capacity
`

func writeSuite(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSuitePath(t *testing.T) {
	cfg := config.Default()
	cfg.Fixtures.SuitePath = "fixtures/cases.yaml"

	if got := suitePath("other.yaml", cfg); got != "other.yaml" {
		t.Errorf("suitePath(flag) = %q, want other.yaml", got)
	}
	if got := suitePath("", cfg); got != "fixtures/cases.yaml" {
		t.Errorf("suitePath(\"\") = %q, want fixtures/cases.yaml", got)
	}
}

func TestRunSuite(t *testing.T) {
	path := writeSuite(t, suiteYAML)

	var progress bytes.Buffer
	report, err := runSuite(context.Background(), config.Default(), path, cli.NewProgressReporter(&progress, "cases"))
	if err != nil {
		t.Fatalf("runSuite() error = %v", err)
	}
	if !report.OK() || report.Passed != 2 {
		t.Errorf("report = %+v, want 2 passed", report)
	}
	if report.Suite != "tiers" {
		t.Errorf("Suite = %q, want tiers", report.Suite)
	}
}

func TestRunSuite_Mismatch(t *testing.T) {
	body := strings.Replace(suiteYAML, "price: 10000", "price: 9999", 1)
	report, err := runSuite(context.Background(), config.Default(), writeSuite(t, body), nil)
	if err != nil {
		t.Fatalf("runSuite() error = %v", err)
	}
	if report.OK() || report.Failed != 1 {
		t.Errorf("report = %+v, want 1 failure", report)
	}
}

func TestRunSuite_LoadError(t *testing.T) {
	if _, err := runSuite(context.Background(), config.Default(), writeSuite(t, "name: empty\ncases: []\n"), nil); err == nil {
		t.Error("expected error for suite without cases")
	}
}

func TestPrintReport(t *testing.T) {
	report := &txcontext.Report{
		Suite: "tiers",
		Path:  "cases.yaml",
		Results: []*txcontext.CaseResult{
			{Name: "three chars", Passed: true, Accepted: true, Price: 10000},
			{Name: "short", Kind: "insufficient_capacity", ExitCode: 6, Price: 20000, Failures: []string{"verdict: got reject, want accept"}},
		},
		Passed: 1,
		Failed: 1,
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printReport(&buf, cli.FormatText, report); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"✓ three chars", "✗ short", "verdict: got reject", "1 passed, 1 failed"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printReport(&buf, cli.FormatCSV, report); err != nil {
			t.Fatal(err)
		}
		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("len(rows) = %d, want 3", len(rows))
		}
		if rows[0][0] != "suite" || rows[2][1] != "short" || rows[2][4] != "insufficient_capacity" || rows[2][5] != "6" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})
}

func TestRunSuite_Examples(t *testing.T) {
	report, err := runSuite(context.Background(), config.Default(), filepath.Join("..", "..", "examples", "tiers.yaml"), nil)
	if err != nil {
		t.Fatalf("runSuite() error = %v", err)
	}
	for _, r := range report.Results {
		if !r.Passed {
			t.Errorf("%s: %v", r.Name, r.Failures)
		}
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join("..", "..", "examples", "pricelock.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if cfg.Fixtures.SuitePath != "examples/tiers.yaml" {
		t.Errorf("SuitePath = %q", cfg.Fixtures.SuitePath)
	}
}
