package export

import (
	"context"
	"fmt"
	"io"

	"cellgate-hq/pricelock/pkg/evidence"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatCSV}

// StreamExporter is an exporter that can also consume a record channel.
type StreamExporter interface {
	evidence.Exporter
	ExportStream(ctx context.Context, recordsCh <-chan *evidence.Record, w io.Writer) error
}

// New returns the exporter for format. pretty only affects JSON.
func New(format string, pretty bool) (StreamExporter, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONExporter(pretty), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want one of %v)", format, Formats)
	}
}

// Stream runs q against storage and writes the results with exporter. It
// returns the first error from either side.
func Stream(ctx context.Context, storage evidence.Storage, q *evidence.Query, exporter StreamExporter, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recordsCh, errCh, err := storage.QueryStream(ctx, q)
	if err != nil {
		return err
	}

	if err := exporter.ExportStream(ctx, recordsCh, w); err != nil {
		return err
	}
	return <-errCh
}
