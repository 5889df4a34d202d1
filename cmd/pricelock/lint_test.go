package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/rule"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, source string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	valid := write("valid.rhai", tierRule)
	finding := write("finding.rhai", "if account_chars.len() > 3 { 10 / 0 } else { 1 }")
	syntax := write("syntax.rhai", "let x = ;")

	tests := []struct {
		name         string
		path         string
		strict       bool
		wantValid    bool
		wantErrors   int
		wantWarnings int
		wantCode     string
	}{
		{name: "valid", path: valid, wantValid: true},
		{name: "finding is a warning", path: finding, wantValid: true, wantWarnings: 1, wantCode: rerrors.CodeDivZero},
		{name: "finding is an error when strict", path: finding, strict: true, wantErrors: 1, wantCode: rerrors.CodeDivZero},
		{name: "syntax error", path: syntax, wantErrors: 1},
		{name: "missing file", path: filepath.Join(dir, "missing.rhai"), wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lintFile(tt.path, rule.DefaultLimits(), tt.strict)
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if (len(got.Errors) > 0) != (tt.wantErrors > 0) {
				t.Errorf("Errors = %+v, want %d", got.Errors, tt.wantErrors)
			}
			if (len(got.Warnings) > 0) != (tt.wantWarnings > 0) {
				t.Errorf("Warnings = %+v, want %d", got.Warnings, tt.wantWarnings)
			}
			if tt.wantCode != "" {
				issues := append(got.Errors, got.Warnings...)
				if len(issues) == 0 || issues[0].Code != tt.wantCode {
					t.Errorf("issues = %+v, want code %s", issues, tt.wantCode)
				}
			}
		})
	}
}

func TestFormatIssue(t *testing.T) {
	got := formatIssue(LintIssue{
		Line:       1,
		Column:     1,
		Code:       rerrors.CodeUndefined,
		Message:    "undefined variable 'acount_chars'",
		Suggestion: "Did you mean 'account_chars'?",
	})
	for _, want := range []string{"(line 1, col 1)", "[" + rerrors.CodeUndefined + "]", "suggestion: Did you mean"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatIssue() = %q, missing %q", got, want)
		}
	}
}

func TestLintRules(t *testing.T) {
	config.SetConfig(config.Default())
	defer func() { lintFlags.files, lintFlags.dir, lintFlags.strict, lintFlags.format = nil, "", false, "text" }()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.rhai"), []byte("100"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.rhai"), []byte(tierRule), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("dir json", func(t *testing.T) {
		lintFlags.files, lintFlags.dir, lintFlags.format = nil, dir, "json"

		var buf bytes.Buffer
		lintCmd.SetOut(&buf)
		defer lintCmd.SetOut(nil)
		if err := lintRules(lintCmd, nil); err != nil {
			t.Fatalf("lintRules() error = %v", err)
		}

		var results []LintResult
		if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(results) != 2 {
			t.Errorf("len(results) = %d, want 2", len(results))
		}
	})

	t.Run("strict failure", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.rhai")
		if err := os.WriteFile(bad, []byte("acount_chars.len()"), 0o644); err != nil {
			t.Fatal(err)
		}
		lintFlags.files, lintFlags.dir, lintFlags.format, lintFlags.strict = []string{bad}, "", "text", true

		lintCmd.SetOut(&bytes.Buffer{})
		defer lintCmd.SetOut(nil)
		if err := lintRules(lintCmd, nil); err == nil {
			t.Error("expected strict lint failure")
		}
	})

	t.Run("no files", func(t *testing.T) {
		lintFlags.files, lintFlags.dir, lintFlags.strict = nil, "", false
		if err := lintRules(lintCmd, nil); err == nil {
			t.Error("expected error without --file or --dir")
		}
	})
}
