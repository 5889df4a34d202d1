package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/rule"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
	"cellgate-hq/pricelock/pkg/txcontext"
)

var lintFlags struct {
	files  []string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check pricing rule files",
	Long: `Compile pricing rules and run static checks on them.

Syntax errors always fail. Static findings, such as an undefined name on a
branch that may never run, are warnings unless --strict is given or the
engine runs with strict_validation.

Examples:
  # Lint one file
  pricelock lint --file tiers.rhai

  # Lint every .rhai file in a directory
  pricelock lint --dir rules/

  # JSON output for CI
  pricelock lint --dir rules/ --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringSliceVarP(&lintFlags.files, "file", "f", nil, "rule file to check (repeatable)")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of .rhai rule files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the outcome of checking one rule file.
type LintResult struct {
	File     string      `json:"file"`
	Valid    bool        `json:"valid"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// LintIssue is a single error or warning.
type LintIssue struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Code       string `json:"code,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil {
		return err
	}

	files := append([]string(nil), lintFlags.files...)
	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.rhai"))
		if err != nil {
			return fmt.Errorf("failed to list rule files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return errors.New("either --file or --dir must name at least one rule file")
	}

	engine := &config.MustGetConfig().Engine
	strict := lintFlags.strict || engine.StrictValidation
	limits := rule.Limits{
		MaxSteps:       engine.MaxSteps,
		MaxDepth:       engine.MaxDepth,
		MaxSourceBytes: engine.MaxSourceBytes,
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file, limits, strict))
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		if err := cli.NewFormatter(format).FormatTo(out, results); err != nil {
			return err
		}
	case cli.FormatText:
		printLintResults(out, results, strict)
	default:
		return fmt.Errorf("lint does not support %s output", format)
	}

	for _, r := range results {
		if !r.Valid {
			return cli.NewCommandError("lint", errors.New("validation failed"))
		}
	}
	return nil
}

// lintFile compiles and checks one file. Findings are warnings unless strict.
func lintFile(path string, limits rule.Limits, strict bool) LintResult {
	result := LintResult{File: path, Valid: true}

	data, err := txcontext.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, LintIssue{Message: err.Error()})
		return result
	}

	program, err := rule.Lint(string(data), filepath.Base(path), limits)
	if err == nil {
		return result
	}

	issues := lintIssues(err)
	if program == nil || strict {
		result.Valid = false
		result.Errors = issues
	} else {
		result.Warnings = issues
	}
	return result
}

func lintIssues(err error) []LintIssue {
	var list *rerrors.ErrorList
	if errors.As(err, &list) {
		issues := make([]LintIssue, 0, list.Count())
		for _, e := range list.Errors {
			issues = append(issues, newLintIssue(e))
		}
		return issues
	}

	var rerr *rerrors.Error
	if errors.As(err, &rerr) {
		return []LintIssue{newLintIssue(rerr)}
	}
	return []LintIssue{{Message: err.Error()}}
}

func newLintIssue(e *rerrors.Error) LintIssue {
	return LintIssue{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Code:       e.Code,
		Type:       string(e.Type),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
}

func printLintResults(w io.Writer, results []LintResult, strict bool) {
	totalErrors, totalWarnings := 0, 0

	for _, result := range results {
		fmt.Fprintf(w, "Checking %s...\n", result.File)
		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Fprintln(w, "✓ Rule valid")
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s\n", formatIssue(e))
			totalErrors++
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "⚠  Warning: %s\n", formatIssue(warn))
			totalWarnings++
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
	if strict {
		fmt.Fprintln(w, "  Strict mode enabled: warnings are reported as errors")
	}
}

func formatIssue(i LintIssue) string {
	s := i.Message
	if i.Line > 0 {
		s += fmt.Sprintf(" (line %d, col %d)", i.Line, i.Column)
	}
	if i.Code != "" {
		s += fmt.Sprintf(" [%s]", i.Code)
	}
	if i.Suggestion != "" {
		s += "\n    suggestion: " + i.Suggestion
	}
	return s
}
