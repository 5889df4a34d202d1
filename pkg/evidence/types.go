package evidence

import (
	"context"
	"io"
	"time"
)

// Verdict values stored in a Record.
const (
	VerdictAccept = "accept"
	VerdictReject = "reject"
)

// Record is the audit entry for one validation run. Records are written
// once and never updated.
type Record struct {
	ID    string `json:"id"`     // UUID v4
	RunID string `json:"run_id"` // CLI invocation that produced the verdict
	Suite string `json:"suite,omitempty"`
	Case  string `json:"case,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`

	Identifier string `json:"identifier"`            // decoded script args
	RuleDigest string `json:"rule_digest,omitempty"` // hex SHA-256 of the rule source

	Verdict    string `json:"verdict"`        // "accept" or "reject"
	Kind       string `json:"kind,omitempty"` // rejection kind
	ExitCode   int    `json:"exit_code"`
	FinalState string `json:"final_state"`

	Price    int64  `json:"price"`
	Required uint64 `json:"required"` // shannons
	Capacity uint64 `json:"capacity"` // shannons
	Steps    int    `json:"steps"`

	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Query filters evidence records. Zero fields do not filter.
type Query struct {
	// Time range on RecordedAt, both ends inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	IDs     []string `json:"ids,omitempty"`
	RunID   string   `json:"run_id,omitempty"`
	Suite   string   `json:"suite,omitempty"`
	Case    string   `json:"case,omitempty"`
	Verdict string   `json:"verdict,omitempty"`
	Kind    string   `json:"kind,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortBy is "recorded_at", "price" or "steps".
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"` // "asc" or "desc"
}

// Storage is a verdict audit store. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns the records matching q, in q's sort order.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// QueryStream streams the records matching q. Both channels are closed
	// when the query finishes; errCh carries at most one error.
	QueryStream(ctx context.Context, q *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of records matching q, ignoring pagination.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes the records matching q and returns how many were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// PingContext verifies the store is usable.
	PingContext(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Exporter writes records in some format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
