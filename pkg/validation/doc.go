// Package validation decides whether a transaction may spend a price-gated
// lock.
//
// A Controller reads three things from a Host: the lock script args, which
// carry the account identifier; the lock field of an output witness, which
// carries the pricing rule; and the committed capacity of an output cell.
// It prices the identifier with the rule and accepts the spend only if the
// capacity covers the price scaled by UnitMultiplier.
//
// Each run walks a fixed state machine and ends in Accept or Reject:
//
//	Start -> ArgsLoaded -> WitnessLoaded -> PriceComputed -> Accept
//
// A rejection carries one of six kinds, each with a stable exit code:
//
//	syscall_error          1  a host read failed
//	missing_identifier     2  script args are empty
//	encoding_error         3  args or rule text are not UTF-8
//	missing_rule           4  the witness has no lock field
//	rule_error             5  the rule failed or produced an unusable price
//	insufficient_capacity  6  the capacity is below the required amount
//
// Usage:
//
//	ctrl, err := validation.NewController(validation.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	verdict := ctrl.Validate(ctx, host)
//	os.Exit(verdict.ExitCode())
package validation
