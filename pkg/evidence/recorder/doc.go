// Package recorder writes validation verdicts to an evidence store.
//
// A Recorder is a validation.Observer. Records are queued on a buffered
// channel and written by one background goroutine, so a slow store delays
// only the audit trail:
//
//	rec := recorder.New(store, &cfg.Evidence.Recorder, logger,
//	    recorder.WithWriteHook(collector.RecordEvidenceWrite))
//	defer rec.Close()
//
//	ctrl, err := validation.NewController(validation.WithObserver(rec))
//
// The run ID, suite and case of each record are read from the logging
// fields of the context passed to Validate.
package recorder
