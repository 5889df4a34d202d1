package query

import (
	"errors"
	"testing"
	"time"

	"cellgate-hq/pricelock/pkg/evidence"
)

func TestValidate(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name    string
		query   evidence.Query
		wantErr bool
	}{
		{name: "empty", query: evidence.Query{}},
		{name: "full", query: evidence.Query{
			StartTime: &earlier, EndTime: &now,
			Suite: "tiers", Verdict: "reject", Kind: "rule_error",
			Limit: 10, Offset: 5, SortBy: "price", SortOrder: "asc",
		}},
		{name: "negative limit", query: evidence.Query{Limit: -1}, wantErr: true},
		{name: "limit too large", query: evidence.Query{Limit: MaxLimit + 1}, wantErr: true},
		{name: "negative offset", query: evidence.Query{Offset: -1}, wantErr: true},
		{name: "bad sort field", query: evidence.Query{SortBy: "cost"}, wantErr: true},
		{name: "bad sort order", query: evidence.Query{SortOrder: "up"}, wantErr: true},
		{name: "inverted range", query: evidence.Query{StartTime: &now, EndTime: &earlier}, wantErr: true},
		{name: "bad verdict", query: evidence.Query{Verdict: "maybe"}, wantErr: true},
		{name: "unknown kind", query: evidence.Query{Kind: "bad_luck"}, wantErr: true},
		{name: "accept with kind", query: evidence.Query{Verdict: "accept", Kind: "rule_error"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var qerr *evidence.QueryError
			if err != nil && !errors.As(err, &qerr) {
				t.Errorf("error %T is not a *evidence.QueryError", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	q := &evidence.Query{}
	ApplyDefaults(q)
	if q.Limit != DefaultLimit || q.SortBy != "recorded_at" || q.SortOrder != "desc" {
		t.Errorf("ApplyDefaults() = %+v", q)
	}

	q = &evidence.Query{Limit: 5, SortBy: "price", SortOrder: "asc"}
	ApplyDefaults(q)
	if q.Limit != 5 || q.SortBy != "price" || q.SortOrder != "asc" {
		t.Errorf("ApplyDefaults() overwrote explicit fields: %+v", q)
	}
}
