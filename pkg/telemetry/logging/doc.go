// Package logging provides structured logging on top of log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "debug",
//	    Format: "console",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithCase(ctx, "three chars")
//	logger.InfoContext(ctx, "case passed")  // includes run_id and case
//
// Packages that take a *slog.Logger receive logger.Slog(); records they log
// with a context still carry the context fields.
package logging
