package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultEngineMaxSteps       = 10_000
	DefaultEngineMaxDepth       = 64
	DefaultEngineMaxSourceBytes = 16384
	DefaultEngineSourceName     = "witness"

	// Fixture defaults
	DefaultFixturesDebounceInterval = 100 * time.Millisecond

	// Evidence defaults
	DefaultEvidenceEnabled              = false
	DefaultEvidenceBackend              = "sqlite"
	DefaultEvidenceSQLiteDriver         = "sqlite"
	DefaultEvidenceSQLitePath           = "data/evidence.db"
	DefaultEvidenceSQLiteMaxOpenConns   = 10
	DefaultEvidenceSQLiteMaxIdleConns   = 5
	DefaultEvidenceSQLiteJournalMode    = "WAL"
	DefaultEvidenceSQLiteBusyTimeout    = 5 * time.Second
	DefaultEvidenceRecorderAsyncBuffer  = 1000
	DefaultEvidenceRecorderWriteTimeout = 5 * time.Second
	DefaultEvidenceRetentionDays        = 30
	DefaultEvidenceRetentionSchedule    = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "pricelock"
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingServiceName   = "pricelock"
	DefaultTracingSamplingRate  = 1.0
	DefaultTracingExportTimeout = 10 * time.Second
)

// DefaultFixtureExtensions are the file extensions watched by default.
var DefaultFixtureExtensions = []string{".yaml", ".yml", ".rhai"}

// DefaultStepBuckets are the default histogram buckets for evaluation steps.
var DefaultStepBuckets = []float64{10, 50, 100, 500, 1000, 5000, 10000}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Engine defaults
	if cfg.Engine.MaxSteps == 0 {
		cfg.Engine.MaxSteps = DefaultEngineMaxSteps
	}
	if cfg.Engine.MaxDepth == 0 {
		cfg.Engine.MaxDepth = DefaultEngineMaxDepth
	}
	if cfg.Engine.MaxSourceBytes == 0 {
		cfg.Engine.MaxSourceBytes = DefaultEngineMaxSourceBytes
	}
	if cfg.Engine.SourceName == "" {
		cfg.Engine.SourceName = DefaultEngineSourceName
	}

	// Fixture defaults
	if cfg.Fixtures.DebounceInterval == 0 {
		cfg.Fixtures.DebounceInterval = DefaultFixturesDebounceInterval
	}
	if len(cfg.Fixtures.Extensions) == 0 {
		cfg.Fixtures.Extensions = append([]string(nil), DefaultFixtureExtensions...)
	}

	// Evidence defaults
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLite.Driver == "" {
		cfg.Evidence.SQLite.Driver = DefaultEvidenceSQLiteDriver
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = DefaultEvidenceSQLiteMaxOpenConns
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = DefaultEvidenceSQLiteMaxIdleConns
	}
	if cfg.Evidence.SQLite.JournalMode == "" {
		cfg.Evidence.SQLite.JournalMode = DefaultEvidenceSQLiteJournalMode
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}
	if cfg.Evidence.Recorder.AsyncBuffer == 0 {
		cfg.Evidence.Recorder.AsyncBuffer = DefaultEvidenceRecorderAsyncBuffer
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = DefaultEvidenceRecorderWriteTimeout
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultEvidenceRetentionDays
	}
	if cfg.Evidence.Retention.PruneSchedule == "" {
		cfg.Evidence.Retention.PruneSchedule = DefaultEvidenceRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.StepBuckets) == 0 {
		cfg.Telemetry.Metrics.StepBuckets = append([]float64(nil), DefaultStepBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingExportTimeout
	}
}
