package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"cellgate-hq/pricelock/pkg/evidence"
)

// flushEvery is how many rows ExportStream writes between flushes.
const flushEvery = 100

var csvHeader = []string{
	"id", "run_id", "suite", "case", "recorded_at",
	"identifier", "rule_digest",
	"verdict", "kind", "exit_code", "final_state",
	"price", "required", "capacity", "steps",
	"duration_us", "error",
}

// CSVExporter writes records as CSV, one row per record.
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records as CSV.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return evidence.NewExportError(FormatCSV, len(records), err)
		}
	}
	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return evidence.NewExportError(FormatCSV, len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError(FormatCSV, len(records), err)
	}
	return nil
}

// ExportStream writes records from recordsCh as CSV until the channel is
// closed, flushing every 100 rows.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return evidence.NewExportError(FormatCSV, 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError(FormatCSV, count, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return evidence.NewExportError(FormatCSV, count, err)
			}
			count++

			if count%flushEvery == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError(FormatCSV, count, err)
				}
			}
		}
	}
}

func recordToRow(r *evidence.Record) []string {
	recordedAt := ""
	if !r.RecordedAt.IsZero() {
		recordedAt = r.RecordedAt.UTC().Format(time.RFC3339Nano)
	}

	return []string{
		r.ID,
		r.RunID,
		r.Suite,
		r.Case,
		recordedAt,
		r.Identifier,
		r.RuleDigest,
		r.Verdict,
		r.Kind,
		strconv.Itoa(r.ExitCode),
		r.FinalState,
		strconv.FormatInt(r.Price, 10),
		strconv.FormatUint(r.Required, 10),
		strconv.FormatUint(r.Capacity, 10),
		strconv.Itoa(r.Steps),
		strconv.FormatInt(r.Duration.Microseconds(), 10),
		r.Error,
	}
}
