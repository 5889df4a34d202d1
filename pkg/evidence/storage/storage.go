package storage

import (
	"fmt"
	"log/slog"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open creates the store selected by cfg.Backend.
func Open(cfg *config.EvidenceConfig, logger *slog.Logger) (evidence.Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(&cfg.SQLite, logger)
	default:
		return nil, fmt.Errorf("%w: %q", evidence.ErrUnknownBackend, cfg.Backend)
	}
}
