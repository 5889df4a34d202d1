package export

import (
	"context"
	"encoding/json"
	"io"

	"cellgate-hq/pricelock/pkg/evidence"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	// Pretty indents the output.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records as one JSON array. No records writes "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	if records == nil {
		records = []*evidence.Record{}
	}

	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return evidence.NewExportError(FormatJSON, len(records), err)
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return evidence.NewExportError(FormatJSON, len(records), err)
	}
	return nil
}

// ExportStream writes records from recordsCh as a JSON array until the
// channel is closed.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *evidence.Record, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return evidence.NewExportError(FormatJSON, 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				closing := "]\n"
				if e.Pretty && count > 0 {
					closing = "\n]\n"
				}
				if _, err := io.WriteString(w, closing); err != nil {
					return evidence.NewExportError(FormatJSON, count, err)
				}
				return nil
			}

			sep := ","
			if count == 0 {
				sep = ""
			}
			if e.Pretty {
				sep += "\n  "
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return evidence.NewExportError(FormatJSON, count, err)
			}

			data, err := e.marshal(record)
			if err != nil {
				return evidence.NewExportError(FormatJSON, count, err)
			}
			if _, err := w.Write(data); err != nil {
				return evidence.NewExportError(FormatJSON, count, err)
			}
			count++
		}
	}
}

func (e *JSONExporter) marshal(record *evidence.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
