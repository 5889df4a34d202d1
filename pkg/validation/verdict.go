package validation

import (
	"fmt"
	"time"
)

// Verdict is the single outcome of a validation run.
type Verdict struct {
	// Err is nil when the spend is accepted.
	Err *Error

	// Identifier is the decoded script args, empty if decoding failed.
	Identifier string

	// RuleDigest is the hex SHA-256 of the rule source, empty if no rule
	// was loaded.
	RuleDigest string

	// Price is the rule result, valid once the run reached PriceComputed.
	Price int64

	// Required is Price scaled by UnitMultiplier.
	Required uint64

	// Capacity is the committed capacity of the checked output.
	Capacity uint64

	// Steps is the number of rule evaluation steps consumed.
	Steps int

	// Path lists the states visited, ending in Accept or Reject.
	Path []State

	Duration time.Duration
}

// Accepted reports whether the spend is authorized.
func (v *Verdict) Accepted() bool {
	return v.Err == nil
}

// Kind returns the rejection kind, or "" when accepted.
func (v *Verdict) Kind() Kind {
	if v.Err == nil {
		return ""
	}
	return v.Err.Kind
}

// ExitCode returns 0 on accept and the kind's exit code on reject.
func (v *Verdict) ExitCode() int {
	if v.Err == nil {
		return 0
	}
	return v.Err.Kind.ExitCode()
}

// Final returns the terminal state of the run.
func (v *Verdict) Final() State {
	if len(v.Path) == 0 {
		return StateStart
	}
	return v.Path[len(v.Path)-1]
}

func (v *Verdict) String() string {
	if v.Accepted() {
		return fmt.Sprintf("accept (price %d, required %d, capacity %d)", v.Price, v.Required, v.Capacity)
	}
	return fmt.Sprintf("reject: %v", v.Err)
}
