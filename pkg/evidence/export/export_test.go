package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"cellgate-hq/pricelock/pkg/evidence"
	"cellgate-hq/pricelock/pkg/evidence/storage"
)

func testRecords() []*evidence.Record {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	return []*evidence.Record{
		{
			ID: "a", RunID: "run", Suite: "tiers", Case: "long", RecordedAt: at,
			Identifier: "alice", RuleDigest: "ff", Verdict: evidence.VerdictAccept,
			FinalState: "accept", Price: 100, Required: 100 * 100_000_000, Capacity: math.MaxUint64,
			Steps: 12, Duration: 1500 * time.Microsecond,
		},
		{
			ID: "b", RunID: "run", Suite: "tiers", Case: "short, \"quoted\"", RecordedAt: at.Add(time.Second),
			Identifier: "bob", Verdict: evidence.VerdictReject, Kind: "insufficient_capacity",
			ExitCode: 6, FinalState: "reject", Price: 1000, Error: "capacity\nbelow required",
		},
	}
}

// failWriter fails every write.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestJSONExporter_Export(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).Export(context.Background(), testRecords(), &buf); err != nil {
			t.Fatalf("Export(pretty=%v) error = %v", pretty, err)
		}

		var got []*evidence.Record
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
		}
		if len(got) != 2 || got[0].Capacity != math.MaxUint64 || got[1].Kind != "insufficient_capacity" {
			t.Errorf("Export(pretty=%v) round trip = %+v", pretty, got)
		}
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Export(nil) = %q, want []", got)
	}
}

func TestExportStream(t *testing.T) {
	tests := []struct {
		name  string
		exp   StreamExporter
		check func(t *testing.T, out []byte)
	}{
		{
			name: "json",
			exp:  NewJSONExporter(false),
			check: func(t *testing.T, out []byte) {
				var got []*evidence.Record
				if err := json.Unmarshal(out, &got); err != nil {
					t.Fatalf("invalid JSON: %v\n%s", err, out)
				}
				if len(got) != 2 {
					t.Errorf("got %d records, want 2", len(got))
				}
			},
		},
		{
			name: "json pretty",
			exp:  NewJSONExporter(true),
			check: func(t *testing.T, out []byte) {
				var got []*evidence.Record
				if err := json.Unmarshal(out, &got); err != nil {
					t.Fatalf("invalid JSON: %v\n%s", err, out)
				}
			},
		},
		{
			name: "csv",
			exp:  NewCSVExporter(true),
			check: func(t *testing.T, out []byte) {
				rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
				if err != nil {
					t.Fatalf("invalid CSV: %v", err)
				}
				if len(rows) != 3 {
					t.Fatalf("got %d rows, want header + 2", len(rows))
				}
				if rows[2][3] != "short, \"quoted\"" || rows[2][16] != "capacity\nbelow required" {
					t.Errorf("escaped fields = %q, %q", rows[2][3], rows[2][16])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan *evidence.Record, 2)
			for _, r := range testRecords() {
				ch <- r
			}
			close(ch)

			var buf bytes.Buffer
			if err := tt.exp.ExportStream(context.Background(), ch, &buf); err != nil {
				t.Fatalf("ExportStream() error = %v", err)
			}
			tt.check(t, buf.Bytes())
		})
	}
}

func TestExportStream_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, format := range Formats {
		exp, err := New(format, false)
		if err != nil {
			t.Fatalf("New(%q) error = %v", format, err)
		}
		err = exp.ExportStream(ctx, make(chan *evidence.Record), &bytes.Buffer{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s ExportStream() error = %v, want context.Canceled", format, err)
		}
	}
}

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), testRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	header, first := rows[0], rows[1]
	want := map[string]string{
		"recorded_at": "2026-02-03T04:05:06Z",
		"capacity":    "18446744073709551615",
		"required":    "10000000000",
		"duration_us": "1500",
		"exit_code":   "0",
	}
	for i, col := range header {
		if w, ok := want[col]; ok && first[i] != w {
			t.Errorf("column %s = %q, want %q", col, first[i], w)
		}
	}
}

func TestExport_WriterError(t *testing.T) {
	for _, format := range Formats {
		exp, _ := New(format, false)
		err := exp.Export(context.Background(), testRecords(), failWriter{})

		var exportErr *evidence.ExportError
		if !errors.As(err, &exportErr) || exportErr.Format != format {
			t.Errorf("%s Export() error = %v, want ExportError", format, err)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New("xml", false); err == nil {
		t.Error("New(\"xml\") succeeded, want error")
	}
	if exp, err := New("", false); err != nil {
		t.Errorf("New(\"\") error = %v", err)
	} else if _, ok := exp.(*JSONExporter); !ok {
		t.Errorf("New(\"\") = %T, want *JSONExporter", exp)
	}
}

func TestStream(t *testing.T) {
	store := storage.NewMemoryStorage()
	for _, r := range testRecords() {
		if err := store.Store(context.Background(), r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	var buf bytes.Buffer
	q := &evidence.Query{Verdict: evidence.VerdictReject}
	if err := Stream(context.Background(), store, q, NewJSONExporter(false), &buf); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var got []*evidence.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Stream() = %+v, want record b", got)
	}
}
