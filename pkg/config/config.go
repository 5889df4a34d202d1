package config

import "time"

// Config is the root configuration structure for pricelock.
type Config struct {
	// Engine bounds the rule language interpreter.
	Engine EngineConfig `yaml:"engine"`

	// Validation selects which transaction items the controller reads.
	Validation ValidationConfig `yaml:"validation"`

	// Fixtures configures fixture suites used by the test and watch commands.
	Fixtures FixturesConfig `yaml:"fixtures"`

	// Evidence configures the audit trail of verdicts.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig contains rule evaluation budgets.
type EngineConfig struct {
	// MaxSteps is the number of evaluation steps a rule may take.
	// Default: 10000
	MaxSteps int `yaml:"max_steps"`

	// MaxDepth bounds expression nesting, both when parsing and when
	// evaluating.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// MaxSourceBytes is the largest accepted rule text.
	// Default: 16384
	MaxSourceBytes int `yaml:"max_source_bytes"`

	// StrictValidation runs static checks on a rule before evaluating it,
	// rejecting rules with errors on paths that may never execute.
	// Default: false
	StrictValidation bool `yaml:"strict_validation"`

	// SourceName names rule text in diagnostics.
	// Default: "witness"
	SourceName string `yaml:"source_name"`
}

// ValidationConfig contains validation controller settings.
type ValidationConfig struct {
	// WitnessIndex is the output witness whose lock field carries the rule.
	// Default: 0
	WitnessIndex int `yaml:"witness_index"`

	// OutputIndex is the output cell whose capacity is checked.
	// Default: 0
	OutputIndex int `yaml:"output_index"`
}

// FixturesConfig contains fixture suite settings.
type FixturesConfig struct {
	// SuitePath is the default suite for the test and watch commands.
	SuitePath string `yaml:"suite_path"`

	// DebounceInterval is the quiet period before watch re-runs a suite.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Extensions are the file extensions watch reacts to in directories.
	// Default: [".yaml", ".yml", ".rhai"]
	Extensions []string `yaml:"extensions"`
}

// EvidenceConfig contains configuration for verdict evidence.
type EvidenceConfig struct {
	// Enabled controls whether verdicts are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains evidence recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the file path for the SQLite database.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// JournalMode is the SQLite journal mode.
	// Options: "WAL", "DELETE", "TRUNCATE", "MEMORY"
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains evidence recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing evidence to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain evidence records.
	// -1 disables age-based pruning.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether watch serves Prometheus metrics.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the metrics HTTP server.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "pricelock"
	Namespace string `yaml:"namespace"`

	// StepBuckets defines histogram buckets for rule evaluation steps.
	// Default: [10, 50, 100, 500, 1000, 5000, 10000]
	StepBuckets []float64 `yaml:"step_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "pricelock"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds connecting to the collector and exporting.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
