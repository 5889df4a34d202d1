package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	traceParent string

	// Set by the root command before any subcommand runs.
	rootLogger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "pricelock",
	Short: "Price-gate lock validator",
	Long: `Pricelock validates spends of cells guarded by a price-gate lock.

The lock computes a price for the identifier in its script args with a
pricing rule carried in the first output witness, and accepts the spend
only when the first output holds at least price * 10^8 shannons.

Exit codes of verify and watch runs:
  0  accept
  1  syscall_error           host read failed
  2  missing_identifier      script args are empty
  3  encoding_error          args or rule are not UTF-8
  4  missing_rule            witness has no lock field
  5  rule_error              rule failed or produced an invalid price
  6  insufficient_capacity   output capacity below the price`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !cli.Silent(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&traceParent, "traceparent", "", "W3C traceparent to continue an existing trace")
}

// setup loads configuration, installs the logger and tags the command
// context with a run ID.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("config", err.Error())
	}
	cfg := config.MustGetConfig()
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	logger, err := newLogger(&cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	rootLogger = logger
	slog.SetDefault(logger.Slog())

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	if traceParent != "" {
		if !tracing.ValidateTraceParent(traceParent) {
			return fmt.Errorf("invalid --traceparent %q", traceParent)
		}
		ctx = tracing.ContextWithTraceParent(ctx, traceParent)
	}
	cmd.SetContext(ctx)

	logger.DebugContext(ctx, "configuration loaded", "config", cfgFile)
	return nil
}

func newLogger(cfg *config.LoggingConfig) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Writer:    os.Stderr,
	})
}
