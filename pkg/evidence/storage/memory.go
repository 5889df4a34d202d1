package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"cellgate-hq/pricelock/pkg/evidence"
)

// MemoryStorage keeps records in a map. It is meant for tests and one-shot
// CLI runs where nothing needs to survive the process.
type MemoryStorage struct {
	records map[string]*evidence.Record
	closed  bool
	mu      sync.RWMutex
}

var _ evidence.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.Record),
	}
}

// Store saves a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return evidence.NewStorageError("memory", "store", evidence.ErrClosed)
	}
	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query returns copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, evidence.NewStorageError("memory", "query", evidence.ErrClosed)
	}
	return s.selectRecords(q), nil
}

// QueryStream streams the matching records.
func (s *MemoryStorage) QueryStream(ctx context.Context, q *evidence.Query) (<-chan *evidence.Record, <-chan error, error) {
	records, err := s.Query(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *evidence.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, q *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, evidence.NewStorageError("memory", "count", evidence.ErrClosed)
	}

	var count int64
	for _, record := range s.records {
		if matches(record, q) {
			count++
		}
	}
	return count, nil
}

// Delete removes the matching records.
func (s *MemoryStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, evidence.NewStorageError("memory", "delete", evidence.ErrClosed)
	}

	var deleted int64
	for id, record := range s.records {
		if matches(record, q) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// PingContext fails once the store is closed.
func (s *MemoryStorage) PingContext(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return evidence.NewStorageError("memory", "ping", evidence.ErrClosed)
	}
	return nil
}

// Close drops every record.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.Record)
	s.closed = true
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// selectRecords filters, sorts and paginates. Callers hold s.mu.
func (s *MemoryStorage) selectRecords(q *evidence.Query) []*evidence.Record {
	results := []*evidence.Record{}
	for _, record := range s.records {
		if matches(record, q) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, q.SortBy, q.SortOrder)

	if q.Offset >= len(results) {
		return []*evidence.Record{}
	}
	results = results[q.Offset:]
	if q.Limit > 0 && q.Limit < len(results) {
		results = results[:q.Limit]
	}
	return results
}

func matches(r *evidence.Record, q *evidence.Query) bool {
	if q.StartTime != nil && r.RecordedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.RecordedAt.After(*q.EndTime) {
		return false
	}
	if len(q.IDs) > 0 && !slices.Contains(q.IDs, r.ID) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Suite != "" && r.Suite != q.Suite {
		return false
	}
	if q.Case != "" && r.Case != q.Case {
		return false
	}
	if q.Verdict != "" && r.Verdict != q.Verdict {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	return true
}

// sortRecords orders records by field, newest or largest first unless order
// is "asc". Ties are broken by ID so the order is stable.
func sortRecords(records []*evidence.Record, field, order string) {
	slices.SortStableFunc(records, func(a, b *evidence.Record) int {
		var c int
		switch field {
		case "price":
			c = cmp.Compare(a.Price, b.Price)
		case "steps":
			c = cmp.Compare(a.Steps, b.Steps)
		default:
			c = a.RecordedAt.Compare(b.RecordedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if order != "asc" {
			c = -c
		}
		return c
	})
}
