// Package query validates evidence queries before they reach a store.
//
//	q := &evidence.Query{Suite: "tiers", Verdict: "reject", Kind: "rule_error"}
//	if err := query.Validate(q); err != nil {
//	    return err
//	}
//	query.ApplyDefaults(q)
//	records, err := store.Query(ctx, q)
package query
