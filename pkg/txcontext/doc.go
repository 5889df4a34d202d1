// Package txcontext provides in-memory transactions for exercising the
// validation controller outside a chain.
//
// A Transaction implements validation.Host over plain slices and can inject
// read failures. Suites of transactions with expected verdicts are written
// in YAML, loaded with LoadSuite and executed with Suite.Run. A Watcher
// re-runs a callback whenever suite or rule files change.
package txcontext
