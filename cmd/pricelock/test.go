package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/telemetry/tracing"
	"cellgate-hq/pricelock/pkg/txcontext"
)

var testFlags struct {
	suite    string
	format   string
	progress bool
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a fixture suite",
	Long: `Validate every case of a YAML fixture suite and compare the verdicts
with the expected ones.

Suite Format (YAML):
  name: tiers
  rule_file: tiers.rhai        # default rule, relative to the suite
  cases:
    - name: three chars
      account: ABC
      capacity: 10000          # CKB; capacity_shannons for raw amounts
      expect:
        verdict: accept
        price: 10000
    - name: no witness
      account: ABC
      witness_absent: true
      capacity: 1
      expect:
        verdict: reject
        kind: missing_rule

Examples:
  pricelock test --suite cases.yaml
  pricelock test --suite cases.yaml --format json
  pricelock test --suite cases.yaml --format csv > results.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustGetConfig()
		format, err := cli.ParseOutputFormat(testFlags.format)
		if err != nil {
			return err
		}

		path := suitePath(testFlags.suite, cfg)
		if path == "" {
			return errors.New("--suite must be specified or fixtures.suite_path configured")
		}

		var progress cli.ProgressReporter
		if testFlags.progress {
			progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "cases")
		}

		report, err := runSuite(cmd.Context(), cfg, path, progress)
		if err != nil {
			return cli.NewCommandError("test", err)
		}
		if err := printReport(cmd.OutOrStdout(), format, report); err != nil {
			return err
		}
		if !report.OK() {
			return cli.NewCommandError("test", fmt.Errorf("%d of %d case(s) failed", report.Failed, len(report.Results)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testFlags.suite, "suite", "s", "", "fixture suite file (default: fixtures.suite_path)")
	testCmd.Flags().StringVar(&testFlags.format, "format", "text", "output format: text, json, csv")
	testCmd.Flags().BoolVar(&testFlags.progress, "progress", false, "show a progress bar on stderr")
}

func suitePath(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Fixtures.SuitePath
}

// runSuite loads and runs the suite at path with a fresh app.
func runSuite(ctx context.Context, cfg *config.Config, path string, progress cli.ProgressReporter) (*txcontext.Report, error) {
	suite, err := txcontext.LoadSuite(path)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, rootLogger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			rootLogger.Warn("shutdown failed", "error", err)
		}
	}()

	return a.runSuite(ctx, suite, progress)
}

// runSuite runs suite under a span and records it in metrics.
func (a *app) runSuite(ctx context.Context, suite *txcontext.Suite, progress cli.ProgressReporter) (*txcontext.Report, error) {
	ctrl, err := a.controller()
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "suite.run")
	defer span.End()
	tracing.SetRunAttributes(span, logging.GetRunID(ctx), suite.Name, "")
	span.SetAttributes(attribute.Int("pricelock.cases", len(suite.Cases)))

	var opts []txcontext.RunOption
	if progress != nil {
		progress.Start(int64(len(suite.Cases)))
		opts = append(opts, txcontext.WithProgress(func(done, _ int) {
			progress.Update(int64(done))
		}))
	}

	report, err := suite.Run(ctx, ctrl, opts...)
	if progress != nil {
		if err != nil {
			progress.Error(err)
		} else {
			progress.Finish()
		}
	}
	if err != nil {
		tracing.SetError(span, err)
		return report, err
	}

	a.collector.RecordSuite(report)
	span.SetAttributes(
		attribute.Int("pricelock.passed", report.Passed),
		attribute.Int("pricelock.failed", report.Failed),
	)
	if !report.OK() {
		tracing.SetStatus(span, fmt.Errorf("%d case(s) failed", report.Failed))
	}

	a.logger.InfoContext(ctx, "suite finished",
		"suite", report.Suite,
		"passed", report.Passed,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// reportTable renders a report as one CSV row per case.
type reportTable struct {
	*txcontext.Report
}

func (t reportTable) Header() []string {
	return []string{"suite", "case", "passed", "accepted", "kind", "exit_code", "price", "failures"}
}

func (t reportTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.Results))
	for _, r := range t.Results {
		rows = append(rows, []string{
			t.Suite,
			r.Name,
			strconv.FormatBool(r.Passed),
			strconv.FormatBool(r.Accepted),
			r.Kind,
			strconv.Itoa(r.ExitCode),
			strconv.FormatInt(r.Price, 10),
			strings.Join(r.Failures, "; "),
		})
	}
	return rows
}

func printReport(w io.Writer, format cli.OutputFormat, report *txcontext.Report) error {
	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(w, report)
	case cli.FormatCSV:
		return cli.NewFormatter(format).FormatTo(w, reportTable{report})
	}

	fmt.Fprintf(w, "Running suite %s (%s)\n\n", report.Suite, report.Path)
	for _, r := range report.Results {
		if r.Passed {
			fmt.Fprintf(w, "✓ %s\n", r.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d passed, %d failed (%.1fms)\n",
		report.Passed, report.Failed, float64(report.Duration.Microseconds())/1000)
	return nil
}
