package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

var journalModes = map[string]bool{
	"WAL": true, "DELETE": true, "TRUNCATE": true, "MEMORY": true,
}

var sortColumns = map[string]string{
	"recorded_at": "recorded_at",
	"price":       "price",
	"steps":       "steps",
}

// SQLiteStorage stores evidence in an SQLite database through either the
// pure Go or the cgo driver.
type SQLiteStorage struct {
	db     *sql.DB
	insert *sql.Stmt
	config *config.SQLiteConfig
	logger *slog.Logger
}

var _ evidence.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens the database at cfg.Path, creating it and its
// parent directory if needed, and applies the schema.
func NewSQLiteStorage(cfg *config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "evidence.storage.sqlite")

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, evidence.NewStorageError("sqlite", "open", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"journal_mode", cfg.JournalMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

// buildDSN encodes the pragmas in the form each driver understands, so they
// apply to every pooled connection.
func buildDSN(cfg *config.SQLiteConfig) (string, error) {
	mode := strings.ToUpper(cfg.JournalMode)
	if mode == "" {
		mode = config.DefaultEvidenceSQLiteJournalMode
	}
	if !journalModes[mode] {
		return "", fmt.Errorf("unsupported journal mode %q", cfg.JournalMode)
	}
	busy := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(%s)", cfg.Path, busy, mode), nil
	case DriverMattn:
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=%s", cfg.Path, busy, mode), nil
	default:
		return "", fmt.Errorf("unsupported driver %q (use %q or %q)", cfg.Driver, DriverModernc, DriverMattn)
	}
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return evidence.NewStorageError("sqlite", "journal_mode", err)
	}
	s.logger.Debug("schema ready", "version", version, "journal_mode", mode)

	stmt, err := s.db.Prepare(insertRecord)
	if err != nil {
		return evidence.NewStorageError("sqlite", "prepare", err)
	}
	s.insert = stmt
	return nil
}

// Store inserts a record.
func (s *SQLiteStorage) Store(ctx context.Context, r *evidence.Record) error {
	var errVal any
	if r.Error != "" {
		errVal = r.Error
	}

	_, err := s.insert.ExecContext(ctx,
		r.ID, r.RunID, r.Suite, r.Case, r.RecordedAt.UnixNano(),
		r.Identifier, r.RuleDigest,
		r.Verdict, r.Kind, r.ExitCode, r.FinalState,
		r.Price, strconv.FormatUint(r.Required, 10), strconv.FormatUint(r.Capacity, 10), r.Steps,
		int64(r.Duration), errVal,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns the matching records.
func (s *SQLiteStorage) Query(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	sqlQuery, args := s.selectQuery(q)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// QueryStream streams the matching records row by row.
func (s *SQLiteStorage) QueryStream(ctx context.Context, q *evidence.Query) (<-chan *evidence.Record, <-chan error, error) {
	sqlQuery, args := s.selectQuery(q)

	recordsCh := make(chan *evidence.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				errCh <- evidence.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, q *evidence.Query) (int64, error) {
	where, args := buildWhereClause(q)

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence"+where, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes the matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	where, args := buildWhereClause(q)

	result, err := s.db.ExecContext(ctx, "DELETE FROM evidence"+where, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// PingContext checks the database connection.
func (s *SQLiteStorage) PingContext(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return evidence.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the prepared statement and the database.
func (s *SQLiteStorage) Close() error {
	var errs []error
	if s.insert != nil {
		errs = append(errs, s.insert.Close())
	}
	errs = append(errs, s.db.Close())
	if err := errors.Join(errs...); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

func (s *SQLiteStorage) selectQuery(q *evidence.Query) (string, []any) {
	where, args := buildWhereClause(q)

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "recorded_at"
	}
	order := "DESC"
	if q.SortOrder == "asc" {
		order = "ASC"
	}

	sqlQuery := fmt.Sprintf("SELECT %s FROM evidence%s ORDER BY %s %s, id %s",
		selectColumns, where, column, order, order)

	// SQLite requires a LIMIT before OFFSET; -1 means no limit.
	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += " LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	return sqlQuery, args
}

// buildWhereClause returns " WHERE ..." (or "") and its arguments.
func buildWhereClause(q *evidence.Query) (string, []any) {
	var conditions []string
	var args []any

	if q.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	if len(q.IDs) > 0 {
		conditions = append(conditions, "id IN (?"+strings.Repeat(", ?", len(q.IDs)-1)+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}

	for _, f := range []struct{ column, value string }{
		{"run_id", q.RunID},
		{"suite", q.Suite},
		{"case_name", q.Case},
		{"verdict", q.Verdict},
		{"kind", q.Kind},
	} {
		if f.value != "" {
			conditions = append(conditions, f.column+" = ?")
			args = append(args, f.value)
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanRecord(rows *sql.Rows) (*evidence.Record, error) {
	var (
		r                  evidence.Record
		recordedAt         int64
		durationNs         int64
		required, capacity string
		errVal             sql.NullString
	)

	err := rows.Scan(
		&r.ID, &r.RunID, &r.Suite, &r.Case, &recordedAt,
		&r.Identifier, &r.RuleDigest,
		&r.Verdict, &r.Kind, &r.ExitCode, &r.FinalState,
		&r.Price, &required, &capacity, &r.Steps,
		&durationNs, &errVal,
	)
	if err != nil {
		return nil, err
	}

	r.RecordedAt = time.Unix(0, recordedAt).UTC()
	r.Duration = time.Duration(durationNs)
	if r.Required, err = strconv.ParseUint(required, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid required capacity %q: %w", required, err)
	}
	if r.Capacity, err = strconv.ParseUint(capacity, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid capacity %q: %w", capacity, err)
	}
	if errVal.Valid {
		r.Error = errVal.String
	}
	return &r, nil
}
