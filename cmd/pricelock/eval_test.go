package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/pricing"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
)

func TestPrintPrice(t *testing.T) {
	tests := []struct {
		name         string
		price        int64
		wantRequired uint64
	}{
		{"tier price", 10000, 10000 * 100_000_000},
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"too large to scale", math.MaxInt64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printPrice(&buf, cli.FormatJSON, &pricing.Result{Price: tt.price, Steps: 7}); err != nil {
				t.Fatal(err)
			}
			var out priceOutput
			if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if out.Price != tt.price || out.Required != tt.wantRequired || out.Steps != 7 {
				t.Errorf("output = %+v, want price %d required %d", out, tt.price, tt.wantRequired)
			}
		})
	}

	if err := printPrice(&bytes.Buffer{}, cli.FormatCSV, &pricing.Result{}); err == nil {
		t.Error("expected error for csv output")
	}
}

func TestEvalFailureDiagnostic(t *testing.T) {
	pricer, err := newPricer(&config.Default().Engine, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	_, err = pricer.Evaluate("ABC", "let x = 1;\nx +")
	if err == nil {
		t.Fatal("expected rule error")
	}

	var buf bytes.Buffer
	printRuleFailure(&buf, err)
	if !strings.HasPrefix(buf.String(), "✗ ") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
