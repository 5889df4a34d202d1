package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
	"cellgate-hq/pricelock/pkg/evidence/export"
	"cellgate-hq/pricelock/pkg/evidence/query"
	"cellgate-hq/pricelock/pkg/evidence/retention"
	"cellgate-hq/pricelock/pkg/evidence/storage"
)

// evidenceFilter holds the query flags shared by the evidence subcommands.
type evidenceFilter struct {
	timeRange string
	runID     string
	suite     string
	caseName  string
	verdict   string
	kind      string
	limit     int
	offset    int
	sortBy    string
	sortOrder string
}

var evidenceFlags struct {
	backend      string
	filter       evidenceFilter
	listFormat   string
	exportFormat string
	output       string
	pretty       bool
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query recorded verdicts",
	Long: `Query, export and prune the verdict audit trail.

Verdicts are recorded by verify, test and watch when evidence.enabled is
set. The store is read from the evidence section of the configuration.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z"`,
}

var evidenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evidence records",
	Long: `List evidence records matching the filters, newest first.

Examples:
  # Rejections of the last run of a suite
  pricelock evidence list --suite tiers --verdict reject

  # Rule errors as CSV
  pricelock evidence list --kind rule_error --format csv`,
	RunE: listEvidence,
}

var evidenceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export evidence records",
	Long: `Stream every matching evidence record as JSON or CSV.

Examples:
  pricelock evidence export --format csv --output evidence.csv
  pricelock evidence export --run-id 2f1c... --pretty`,
	RunE: exportEvidence,
}

var evidencePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete records older than evidence.retention.days and the oldest records
beyond evidence.retention.max_records.`,
	RunE: pruneEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceListCmd, evidenceExportCmd, evidencePruneCmd)

	evidenceCmd.PersistentFlags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")

	for _, cmd := range []*cobra.Command{evidenceListCmd, evidenceExportCmd} {
		f := &evidenceFlags.filter
		cmd.Flags().StringVar(&f.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		cmd.Flags().StringVar(&f.runID, "run-id", "", "filter by run ID")
		cmd.Flags().StringVar(&f.suite, "suite", "", "filter by suite name")
		cmd.Flags().StringVar(&f.caseName, "case", "", "filter by case name")
		cmd.Flags().StringVar(&f.verdict, "verdict", "", "filter by verdict: accept, reject")
		cmd.Flags().StringVar(&f.kind, "kind", "", "filter by rejection kind")
		cmd.Flags().IntVar(&f.offset, "offset", 0, "pagination offset")
		cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "sort field: recorded_at, price, steps")
		cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "sort order: asc, desc")
		cmd.Flags().StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")
	}
	evidenceListCmd.Flags().IntVar(&evidenceFlags.filter.limit, "limit", query.DefaultLimit, "max results")
	evidenceExportCmd.Flags().IntVar(&evidenceFlags.filter.limit, "limit", 0, "max results (0 exports everything)")

	evidenceListCmd.Flags().StringVar(&evidenceFlags.listFormat, "format", "text", "output format: text, json, csv")
	evidenceExportCmd.Flags().StringVar(&evidenceFlags.exportFormat, "format", export.FormatJSON, "export format: json, csv")
	evidenceExportCmd.Flags().BoolVar(&evidenceFlags.pretty, "pretty", false, "indent JSON output")
}

// openEvidence opens the configured store, with the --backend override.
func openEvidence(cfg *config.Config) (evidence.Storage, error) {
	evCfg := cfg.Evidence
	if evidenceFlags.backend != "" {
		evCfg.Backend = evidenceFlags.backend
	}
	store, err := storage.Open(&evCfg, rootLogger.Slog())
	if err != nil {
		return nil, cli.NewCommandError("evidence", err)
	}
	return store, nil
}

// toQuery builds and validates the query described by the filter flags.
func (f *evidenceFilter) toQuery() (*evidence.Query, error) {
	q := &evidence.Query{
		RunID:     f.runID,
		Suite:     f.suite,
		Case:      f.caseName,
		Verdict:   f.verdict,
		Kind:      f.kind,
		Limit:     f.limit,
		Offset:    f.offset,
		SortBy:    f.sortBy,
		SortOrder: f.sortOrder,
	}

	if f.timeRange != "" {
		start, end, err := parseTimeRange(f.timeRange)
		if err != nil {
			return nil, err
		}
		q.StartTime, q.EndTime = &start, &end
	}

	if err := query.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	startStr, endStr, ok := strings.Cut(s, "/")
	if !ok {
		return time.Time{}, time.Time{}, errors.New("invalid time range format (expected: start/end)")
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

// openOutput returns stdout or the --output file.
func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if evidenceFlags.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(evidenceFlags.output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func listEvidence(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(evidenceFlags.listFormat)
	if err != nil {
		return err
	}
	q, err := evidenceFlags.filter.toQuery()
	if err != nil {
		return err
	}
	query.ApplyDefaults(q)

	store, err := openEvidence(config.MustGetConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	total, err := store.Count(ctx, q)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := printRecords(w, format, records, total); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

// recordTable renders evidence records as CSV rows.
type recordTable []*evidence.Record

func (t recordTable) Header() []string {
	return []string{"id", "recorded_at", "run_id", "suite", "case", "identifier", "verdict", "kind", "exit_code", "price", "required", "capacity"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.RecordedAt.UTC().Format(time.RFC3339Nano),
			r.RunID,
			r.Suite,
			r.Case,
			r.Identifier,
			r.Verdict,
			r.Kind,
			strconv.Itoa(r.ExitCode),
			strconv.FormatInt(r.Price, 10),
			strconv.FormatUint(r.Required, 10),
			strconv.FormatUint(r.Capacity, 10),
		})
	}
	return rows
}

func printRecords(w io.Writer, format cli.OutputFormat, records []*evidence.Record, total int64) error {
	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(w, records)
	case cli.FormatCSV:
		return cli.NewFormatter(format).FormatTo(w, recordTable(records))
	}

	fmt.Fprintf(w, "Found %d record(s), showing %d\n\n", total, len(records))
	for _, r := range records {
		mark := "✓"
		if r.Verdict == evidence.VerdictReject {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s", mark, r.RecordedAt.Local().Format("2006-01-02 15:04:05"), r.Verdict)
		if r.Kind != "" {
			fmt.Fprintf(w, " (%s)", r.Kind)
		}
		fmt.Fprintf(w, "  identifier=%q price=%d", r.Identifier, r.Price)
		if r.Suite != "" {
			fmt.Fprintf(w, " case=%s/%s", r.Suite, r.Case)
		}
		fmt.Fprintf(w, "\n  id=%s run=%s\n", r.ID, r.RunID)
	}
	return nil
}

func exportEvidence(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(evidenceFlags.exportFormat, evidenceFlags.pretty)
	if err != nil {
		return err
	}
	q, err := evidenceFlags.filter.toQuery()
	if err != nil {
		return err
	}
	if q.SortBy == "" {
		q.SortBy, q.SortOrder = "recorded_at", "asc"
	}

	store, err := openEvidence(config.MustGetConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := export.Stream(cmd.Context(), store, q, exporter, w); err != nil {
		closeOut()
		return cli.NewCommandError("evidence", err)
	}
	return closeOut()
}

func pruneEvidence(cmd *cobra.Command, args []string) error {
	cfg := config.MustGetConfig()
	store, err := openEvidence(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := prune(cmd.Context(), store, &cfg.Evidence.Retention)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d record(s)\n", deleted)
	return nil
}

func prune(ctx context.Context, store evidence.Storage, cfg *config.RetentionConfig) (int64, error) {
	return retention.NewPruner(store, cfg, rootLogger.Slog()).Prune(ctx)
}
