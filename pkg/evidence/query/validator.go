package query

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/evidence"
	"cellgate-hq/pricelock/pkg/validation"
)

const (
	// DefaultLimit is the number of records returned when Limit is zero.
	DefaultLimit = 100

	// MaxLimit is the largest allowed Limit.
	MaxLimit = 10000
)

// ValidSortFields lists the fields records can be sorted by.
var ValidSortFields = map[string]bool{
	"recorded_at": true,
	"price":       true,
	"steps":       true,
}

// ValidSortOrders lists the accepted sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// Validate checks q and returns a *evidence.QueryError for the first
// invalid parameter.
func Validate(q *evidence.Query) error {
	if q.Limit < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return evidence.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return evidence.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}

	switch q.Verdict {
	case "", evidence.VerdictAccept, evidence.VerdictReject:
	default:
		return evidence.NewQueryError(q, fmt.Errorf("invalid verdict: %s (must be 'accept' or 'reject')", q.Verdict))
	}

	if q.Kind != "" {
		if _, err := validation.ParseKind(q.Kind); err != nil {
			return evidence.NewQueryError(q, err)
		}
		if q.Verdict == evidence.VerdictAccept {
			return evidence.NewQueryError(q, fmt.Errorf("accepted verdicts have no kind"))
		}
	}

	return nil
}

// ApplyDefaults fills in the limit and a newest-first sort.
func ApplyDefaults(q *evidence.Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "recorded_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
