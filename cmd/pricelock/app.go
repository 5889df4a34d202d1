package main

import (
	"context"
	"errors"
	"fmt"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
	"cellgate-hq/pricelock/pkg/evidence/recorder"
	"cellgate-hq/pricelock/pkg/evidence/storage"
	"cellgate-hq/pricelock/pkg/pricing"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/telemetry/metrics"
	"cellgate-hq/pricelock/pkg/telemetry/tracing"
	"cellgate-hq/pricelock/pkg/validation"
)

// app holds the components shared by commands that validate transactions.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	store     evidence.Storage
	recorder  *recorder.Recorder
}

// newApp wires metrics, tracing and, when enabled, evidence recording.
// Callers must Close the app.
func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
	}

	if cfg.Evidence.Enabled {
		store, err := storage.Open(&cfg.Evidence, logger.Slog())
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open evidence store: %w", err)
		}
		a.store = store
		a.recorder = recorder.New(store, &cfg.Evidence.Recorder, logger.Slog(),
			recorder.WithWriteHook(a.collector.RecordEvidenceWrite))
		logger.Debug("evidence recording enabled", "backend", cfg.Evidence.Backend)
	}
	return a, nil
}

// pricer builds the rule evaluator from the engine configuration.
func (a *app) pricer() (*pricing.Evaluator, error) {
	return newPricer(&a.cfg.Engine, a.logger)
}

func newPricer(cfg *config.EngineConfig, logger *logging.Logger) (*pricing.Evaluator, error) {
	pc := pricing.DefaultConfig().
		WithMaxSteps(cfg.MaxSteps).
		WithMaxDepth(cfg.MaxDepth).
		WithMaxSourceBytes(cfg.MaxSourceBytes).
		WithStrictValidation(cfg.StrictValidation).
		WithSourceName(cfg.SourceName)
	return pricing.NewEvaluator(pc, logger.Slog())
}

// controller builds a validation controller observed by metrics and, when
// enabled, the evidence recorder.
func (a *app) controller() (*validation.Controller, error) {
	pricer, err := a.pricer()
	if err != nil {
		return nil, err
	}

	opts := []validation.Option{
		validation.WithPricer(pricer),
		validation.WithWitnessIndex(a.cfg.Validation.WitnessIndex),
		validation.WithOutputIndex(a.cfg.Validation.OutputIndex),
		validation.WithLogger(a.logger.Slog()),
		validation.WithTracer(a.tracer),
		validation.WithObserver(a.collector),
	}
	if a.recorder != nil {
		opts = append(opts, validation.WithObserver(a.recorder))
	}
	return validation.NewController(opts...)
}

// Close flushes queued evidence and exported spans.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.tracer.Shutdown(ctx))
	return errors.Join(errs...)
}
