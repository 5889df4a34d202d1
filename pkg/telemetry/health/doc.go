// Package health serves liveness, readiness and version endpoints for the
// long-running pricelock commands.
//
// pricelock watch registers a readiness check for the last suite run and,
// when evidence is enabled, one that pings the evidence store:
//
//	checker := health.New(0)
//	checker.Register("suite", health.StateCheck(lastRun))
//	checker.Register("evidence", health.PingCheck(store))
//	health.Mount(mux, checker, health.NewVersionInfo(version, commit, date))
//
// /ready answers 503 while any check fails.
package health
