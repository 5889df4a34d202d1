// Package export writes evidence records as JSON or CSV.
//
//	exporter, err := export.New("csv", false)
//	if err != nil {
//	    return err
//	}
//	err = export.Stream(ctx, store, &evidence.Query{Verdict: "reject"}, exporter, os.Stdout)
//
// JSON output is always an array. CSV output has one row per record with a
// header row; uint64 amounts are written in decimal and durations in
// microseconds.
package export
