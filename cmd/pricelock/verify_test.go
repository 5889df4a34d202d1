package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/txcontext"
	"cellgate-hq/pricelock/pkg/validation"
)

const tierRule = `let price_tiers = [50000, 20000, 10000, 5000, 2000, 1000];
let len = account_chars.len();
if len > 6 { 100 } else { price_tiers[len - 1] }`

func writeRule(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiers.rhai")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("failed to write rule: %v", err)
	}
	return path
}

func TestTxFlags_Transaction(t *testing.T) {
	ruleFile := writeRule(t, tierRule)

	tests := []struct {
		name         string
		flags        txFlags
		wantErr      bool
		wantArgs     string
		wantRule     string
		wantPresent  bool
		wantCapacity uint64
	}{
		{
			name:         "inline rule and CKB capacity",
			flags:        txFlags{account: "ABC", rule: "100", capacity: 100},
			wantArgs:     "ABC",
			wantRule:     "100",
			wantPresent:  true,
			wantCapacity: 100 * validation.UnitMultiplier,
		},
		{
			name:         "rule file",
			flags:        txFlags{account: "ABC", ruleFile: ruleFile, capacity: 1},
			wantArgs:     "ABC",
			wantRule:     tierRule,
			wantPresent:  true,
			wantCapacity: validation.UnitMultiplier,
		},
		{
			name:         "hex args and shannons",
			flags:        txFlags{argsHex: "0x414243", rule: "1", shannons: 42, exact: true},
			wantArgs:     "ABC",
			wantRule:     "1",
			wantPresent:  true,
			wantCapacity: 42,
		},
		{
			name:         "no witness",
			flags:        txFlags{account: "ABC", noWitness: true, capacity: 1},
			wantArgs:     "ABC",
			wantCapacity: validation.UnitMultiplier,
		},
		{
			name:    "no witness with rule",
			flags:   txFlags{account: "ABC", noWitness: true, rule: "1"},
			wantErr: true,
		},
		{
			name:    "account and hex args",
			flags:   txFlags{account: "ABC", argsHex: "41", rule: "1"},
			wantErr: true,
		},
		{
			name:    "invalid hex",
			flags:   txFlags{argsHex: "zz", rule: "1"},
			wantErr: true,
		},
		{
			name:    "no rule",
			flags:   txFlags{account: "ABC"},
			wantErr: true,
		},
		{
			name:    "capacity overflow",
			flags:   txFlags{account: "ABC", rule: "1", capacity: 1 << 62},
			wantErr: true,
		},
		{
			name:    "unknown failure",
			flags:   txFlags{account: "ABC", rule: "1", fail: "inputs"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := tt.flags.transaction()
			if (err != nil) != tt.wantErr {
				t.Fatalf("transaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if string(tx.Args) != tt.wantArgs {
				t.Errorf("Args = %q, want %q", tx.Args, tt.wantArgs)
			}
			field, err := tx.WitnessLock(0, validation.SourceOutput)
			if err != nil {
				t.Fatalf("WitnessLock() error = %v", err)
			}
			if field.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", field.Present, tt.wantPresent)
			}
			if string(field.Data) != tt.wantRule {
				t.Errorf("rule = %q, want %q", field.Data, tt.wantRule)
			}
			capacity, err := tx.CellCapacity(0, validation.SourceOutput)
			if err != nil {
				t.Fatalf("CellCapacity() error = %v", err)
			}
			if capacity != tt.wantCapacity {
				t.Errorf("capacity = %d, want %d", capacity, tt.wantCapacity)
			}
		})
	}
}

func TestTxFlags_InjectedFailure(t *testing.T) {
	f := txFlags{account: "ABC", rule: "1", capacity: 1, fail: "capacity"}
	tx, err := f.transaction()
	if err != nil {
		t.Fatalf("transaction() error = %v", err)
	}
	if _, err := tx.CellCapacity(0, validation.SourceOutput); err == nil {
		t.Error("expected injected capacity failure")
	}
}

func TestReadRule(t *testing.T) {
	ruleFile := writeRule(t, "500")

	tests := []struct {
		name    string
		inline  string
		file    string
		want    string
		wantErr bool
	}{
		{name: "inline", inline: "100", want: "100"},
		{name: "file", file: ruleFile, want: "500"},
		{name: "both", inline: "100", file: ruleFile, wantErr: true},
		{name: "neither", wantErr: true},
		{name: "missing file", file: filepath.Join(t.TempDir(), "missing.rhai"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readRule(tt.inline, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readRule() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readRule() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunVerify(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		rule     string
		capacity uint64 // CKB
		evidence bool
		wantKind validation.Kind
		wantCode int
	}{
		{name: "tier accepted", account: "ABC", rule: tierRule, capacity: 10000},
		{name: "exact price accepted", account: "ABCDEFG", rule: tierRule, capacity: 100},
		{
			name:     "insufficient capacity",
			account:  "AB",
			rule:     tierRule,
			capacity: 19999,
			wantKind: validation.KindInsufficientCapacity,
			wantCode: 6,
		},
		{
			name:     "rule error",
			account:  "ABC",
			rule:     "10 / (account_chars.len() - 3)",
			capacity: 1,
			wantKind: validation.KindRule,
			wantCode: 5,
		},
		{name: "with evidence", account: "ABC", rule: "1", capacity: 1, evidence: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.evidence {
				cfg.Evidence.Enabled = true
				cfg.Evidence.Backend = "memory"
			}

			capacity, err := txcontext.ToShannons(tt.capacity)
			if err != nil {
				t.Fatal(err)
			}
			tx := txcontext.New([]byte(tt.account), tt.rule, capacity)

			v, err := runVerify(context.Background(), cfg, tx)
			if err != nil {
				t.Fatalf("runVerify() error = %v", err)
			}
			if v.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q (%v)", v.Kind(), tt.wantKind, v)
			}
			if v.ExitCode() != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", v.ExitCode(), tt.wantCode)
			}
		})
	}
}

func TestPrintVerdict(t *testing.T) {
	accepted := &validation.Verdict{
		Identifier: "ABC",
		Price:      100,
		Required:   100 * validation.UnitMultiplier,
		Capacity:   100 * validation.UnitMultiplier,
		Path: []validation.State{
			validation.StateStart,
			validation.StateArgsLoaded,
			validation.StateWitnessLoaded,
			validation.StatePriceComputed,
			validation.StateAccept,
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printVerdict(&buf, cli.FormatText, accepted); err != nil {
			t.Fatalf("printVerdict() error = %v", err)
		}
		if !strings.Contains(buf.String(), "✓ accept") || !strings.Contains(buf.String(), "exit code: 0") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printVerdict(&buf, cli.FormatJSON, accepted); err != nil {
			t.Fatalf("printVerdict() error = %v", err)
		}
		var out verdictOutput
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if out.Verdict != "accept" || out.Price != 100 || len(out.Path) != 5 || out.Path[4] != "accept" {
			t.Errorf("unexpected output: %+v", out)
		}
	})

	t.Run("csv unsupported", func(t *testing.T) {
		if err := printVerdict(&bytes.Buffer{}, cli.FormatCSV, accepted); err == nil {
			t.Error("expected error for csv output")
		}
	})
}
