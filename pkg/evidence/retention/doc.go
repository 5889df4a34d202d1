// Package retention prunes evidence records.
//
// A Pruner deletes records older than RetentionConfig.Days and then the
// oldest records beyond MaxRecords. A Scheduler runs it on a cron schedule
// for long-lived processes such as pricelock watch:
//
//	pruner := retention.NewPruner(store, &cfg.Evidence.Retention, logger,
//	    retention.WithPruneHook(collector.RecordPrune))
//	sched := retention.NewScheduler(pruner)
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
//	defer sched.Stop()
//
// Days of -1 disables age-based pruning and MaxRecords of 0 disables the
// count limit.
package retention
