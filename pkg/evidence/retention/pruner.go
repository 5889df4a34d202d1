package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
)

// Option configures a Pruner.
type Option func(*Pruner)

// WithPruneHook sets a function called after every Prune with the number of
// records deleted, how long it took and its error.
func WithPruneHook(hook func(deleted int64, duration time.Duration, err error)) Option {
	return func(p *Pruner) {
		p.onPrune = hook
	}
}

// WithClock overrides time.Now for the age cutoff.
func WithClock(now func() time.Time) Option {
	return func(p *Pruner) {
		p.now = now
	}
}

// Pruner enforces retention on evidence records.
type Pruner struct {
	storage evidence.Storage
	config  *config.RetentionConfig
	logger  *slog.Logger
	onPrune func(int64, time.Duration, error)
	now     func() time.Time
}

// NewPruner creates a pruner for storage.
func NewPruner(storage evidence.Storage, cfg *config.RetentionConfig, logger *slog.Logger, opts ...Option) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.With("component", "evidence.retention"),
		onPrune: func(int64, time.Duration, error) {},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	start := time.Now()
	deleted, err := p.prune(ctx)
	p.onPrune(deleted, time.Since(start), err)
	return deleted, err
}

func (p *Pruner) prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
		p.logger.DebugContext(ctx, "pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
		p.logger.DebugContext(ctx, "pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if total > 0 {
		p.logger.InfoContext(ctx, "evidence pruning completed",
			"total_deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	// EndTime is inclusive; a record exactly at the cutoff is past retention.
	cutoff := p.now().AddDate(0, 0, -p.config.Days)
	deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}

// pruneByCount deletes exactly the oldest records beyond MaxRecords, by ID,
// so records sharing a timestamp with the last one kept survive.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &evidence.Query{})
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.Days, fmt.Errorf("failed to count records: %w", err))
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	excess := count - p.config.MaxRecords
	p.logger.InfoContext(ctx, "record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", excess,
	)

	oldest, err := p.storage.Query(ctx, &evidence.Query{
		SortBy:    "recorded_at",
		SortOrder: "asc",
		Limit:     int(excess),
	})
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.Days, fmt.Errorf("failed to query oldest records: %w", err))
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	ids := make([]string, len(oldest))
	for i, r := range oldest {
		ids[i] = r.ID
	}
	deleted, err := p.storage.Delete(ctx, &evidence.Query{IDs: ids})
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}
