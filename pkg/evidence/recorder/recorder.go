package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/validation"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithWriteHook sets a function called after every storage write with its
// error, typically to count writes in metrics.
func WithWriteHook(hook func(err error)) Option {
	return func(r *Recorder) {
		r.onWrite = hook
	}
}

// WithClock overrides time.Now for RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// Recorder turns verdicts into evidence records and writes them on a
// background goroutine. It implements validation.Observer.
type Recorder struct {
	storage evidence.Storage
	config  *config.RecorderConfig
	records chan *evidence.Record
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
	onWrite func(error)
	now     func() time.Time

	// mu guards closed. Senders hold the read lock so Close cannot finish
	// while a record is being queued.
	mu     sync.RWMutex
	closed bool
}

var _ validation.Observer = (*Recorder)(nil)

// New starts a recorder writing to storage.
func New(storage evidence.Storage, cfg *config.RecorderConfig, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	buffer := cfg.AsyncBuffer
	if buffer <= 0 {
		buffer = config.DefaultEvidenceRecorderAsyncBuffer
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		records: make(chan *evidence.Record, buffer),
		done:    make(chan struct{}),
		logger:  logger.With("component", "evidence.recorder"),
		onWrite: func(error) {},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("evidence recorder started",
		"async_buffer", buffer,
		"write_timeout", r.writeTimeout(),
	)
	return r
}

// ObserveVerdict queues the verdict and logs any failure to do so.
func (r *Recorder) ObserveVerdict(ctx context.Context, v *validation.Verdict) {
	if err := r.Record(ctx, v); err != nil {
		r.logger.ErrorContext(ctx, "failed to queue evidence record", "error", err)
	}
}

// Record queues a record for v. Run, suite and case come from the logging
// fields in ctx. It blocks for at most the write timeout when the buffer is
// full.
func (r *Recorder) Record(ctx context.Context, v *validation.Verdict) error {
	record := NewRecord(ctx, v, r.now())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return evidence.NewRecorderError(record.ID, evidence.ErrClosed)
	}

	timer := time.NewTimer(r.writeTimeout())
	defer timer.Stop()

	select {
	case r.records <- record:
		r.logger.DebugContext(ctx, "evidence record queued", "record_id", record.ID)
		return nil
	case <-timer.C:
		r.logger.ErrorContext(ctx, "evidence buffer full, dropping record",
			"record_id", record.ID,
			"buffer", cap(r.records),
		)
		return evidence.NewRecorderError(record.ID, context.DeadlineExceeded)
	}
}

// Close stops accepting records and waits until every queued record has
// been written.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Debug("evidence recorder stopped")
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *evidence.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout())
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, record)
	r.onWrite(err)
	if err != nil {
		r.logger.Error("failed to store evidence record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("evidence recorded",
		"record_id", record.ID,
		"verdict", record.Verdict,
		"duration_ms", duration.Milliseconds(),
	)
	if duration > r.writeTimeout()/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

func (r *Recorder) writeTimeout() time.Duration {
	if r.config.WriteTimeout <= 0 {
		return config.DefaultEvidenceRecorderWriteTimeout
	}
	return r.config.WriteTimeout
}

// NewRecord builds the evidence record for v.
func NewRecord(ctx context.Context, v *validation.Verdict, at time.Time) *evidence.Record {
	record := &evidence.Record{
		ID:         uuid.New().String(),
		RunID:      logging.GetRunID(ctx),
		Suite:      logging.GetSuite(ctx),
		Case:       logging.GetCase(ctx),
		RecordedAt: at.UTC(),
		Identifier: v.Identifier,
		RuleDigest: v.RuleDigest,
		Verdict:    evidence.VerdictAccept,
		ExitCode:   v.ExitCode(),
		FinalState: v.Final().String(),
		Price:      v.Price,
		Required:   v.Required,
		Capacity:   v.Capacity,
		Steps:      v.Steps,
		Duration:   v.Duration,
	}
	if !v.Accepted() {
		record.Verdict = evidence.VerdictReject
		record.Kind = string(v.Kind())
		record.Error = v.Err.Error()
	}
	return record
}
