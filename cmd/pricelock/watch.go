package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence/retention"
	"cellgate-hq/pricelock/pkg/telemetry/health"
	"cellgate-hq/pricelock/pkg/telemetry/tracing"
	"cellgate-hq/pricelock/pkg/txcontext"
)

const shutdownTimeout = 5 * time.Second

var watchFlags struct {
	suite  string
	listen string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run a fixture suite on every change",
	Long: `Run a fixture suite, then run it again whenever the suite file or one
of its rule files changes.

With telemetry.metrics.enabled, watch serves Prometheus metrics together
with /health, /ready and /version. With evidence enabled, old verdicts are
pruned on the evidence.retention.prune_schedule cron schedule.

Examples:
  pricelock watch --suite cases.yaml
  pricelock watch --suite cases.yaml --listen 127.0.0.1:9464`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustGetConfig()
		path := suitePath(watchFlags.suite, cfg)
		if path == "" {
			return errors.New("--suite must be specified or fixtures.suite_path configured")
		}
		if watchFlags.listen != "" {
			cfg.Telemetry.Metrics.ListenAddress = watchFlags.listen
		}

		if err := runWatch(cmd.Context(), cfg, path, cmd.OutOrStdout()); err != nil {
			return cli.NewCommandError("watch", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.suite, "suite", "s", "", "fixture suite file (default: fixtures.suite_path)")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "override telemetry.metrics.listen_address")
}

// suiteState remembers the outcome of the latest run for the readiness check.
type suiteState struct {
	mu  sync.Mutex
	err error
}

func (s *suiteState) set(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *suiteState) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func runWatch(ctx context.Context, cfg *config.Config, path string, out io.Writer) error {
	a, err := newApp(cfg, rootLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			rootLogger.Warn("shutdown failed", "error", err)
		}
	}()

	state := &suiteState{err: errors.New("suite has not run yet")}
	var runMu sync.Mutex
	run := func() error {
		runMu.Lock()
		defer runMu.Unlock()

		suite, err := txcontext.LoadSuite(path)
		if err != nil {
			state.set(err)
			fmt.Fprintf(out, "✗ %v\n", err)
			return err
		}
		report, err := a.runSuite(ctx, suite, nil)
		if err != nil {
			state.set(err)
			return err
		}
		if report.OK() {
			state.set(nil)
		} else {
			state.set(fmt.Errorf("%d case(s) failed", report.Failed))
		}
		return printReport(out, cli.FormatText, report)
	}

	suite, err := txcontext.LoadSuite(path)
	if err != nil {
		return err
	}

	if a.store != nil {
		pruner := retention.NewPruner(a.store, &cfg.Evidence.Retention, a.logger.Slog(),
			retention.WithPruneHook(a.collector.RecordPrune))
		sched := retention.NewScheduler(pruner)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		if next := sched.NextRun(); next != nil {
			a.logger.Debug("evidence pruning scheduled", "next_run", next)
		}
	}

	if cfg.Telemetry.Metrics.Enabled {
		checker := health.New(0)
		checker.Register("suite", health.StateCheck(state.get))
		checker.Register("suite_file", health.FileCheck(path))
		if a.store != nil {
			checker.Register("evidence", health.PingCheck(a.store))
		}

		stop, err := serveTelemetry(ctx, &cfg.Telemetry.Metrics, a, checker)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Fprintf(out, "✓ Metrics on http://%s%s\n", cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	watcherCfg := &txcontext.WatcherConfig{
		Paths:            suite.Files(),
		DebounceInterval: cfg.Fixtures.DebounceInterval,
		Extensions:       cfg.Fixtures.Extensions,
		SkipHidden:       true,
	}
	watcher, err := txcontext.NewWatcher(watcherCfg, a.logger.Slog())
	if err != nil {
		return err
	}
	defer watcher.Stop()

	_ = run()
	fmt.Fprintf(out, "\nWatching %d file(s), press Ctrl+C to stop\n", len(watcherCfg.Paths))

	err = watcher.Watch(ctx, func() error {
		fmt.Fprintln(out)
		return run()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serveTelemetry starts the metrics and health server and returns a
// function that shuts it down.
func serveTelemetry(ctx context.Context, cfg *config.MetricsConfig, a *app, checker *health.Checker) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, a.collector.Handler())
	health.Mount(mux, checker, versionInfo())

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           tracing.HTTPMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("telemetry server listening", "address", cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Surface bind errors before reporting the server as up.
	select {
	case err := <-errCh:
		return nil, fmt.Errorf("telemetry server: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("telemetry server shutdown failed", "error", err)
		}
	}, nil
}
