// Package evidence keeps an audit trail of validation verdicts.
//
// Every verdict produced by pricelock verify, test or watch can be written
// as a Record: which identifier was priced, a digest of the rule that
// priced it, the price, the capacity check and the final state. Records are
// written asynchronously so recording never delays or alters a verdict.
//
// # Layout
//
//   - recorder: turns verdicts into records and queues them for writing
//   - storage: memory and SQLite stores
//   - retention: age and count based pruning on a cron schedule
//   - query: query validation and defaults
//   - export: JSON and CSV exporters
//
// # Usage
//
//	store, err := storage.Open(&cfg.Evidence, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := recorder.New(store, &cfg.Evidence.Recorder, logger)
//	defer rec.Close()
//
//	ctrl, err := validation.NewController(validation.WithObserver(rec))
package evidence
