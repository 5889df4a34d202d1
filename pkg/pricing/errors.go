package pricing

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrRule is matched by every *RuleError via errors.Is.
	ErrRule = errors.New("pricing rule failed")

	// ErrInvalidConfig indicates invalid evaluator configuration.
	ErrInvalidConfig = errors.New("invalid pricing configuration")
)

// Stage identifies where a rule failed.
type Stage string

const (
	StageCompile  Stage = "compile"
	StageValidate Stage = "validate"
	StageEvaluate Stage = "evaluate"
	StageResult   Stage = "result"
)

// RuleError is the single error kind returned for any failure to compute a
// price. The underlying engine error is not part of the error chain; it is
// kept only as a diagnostic string for logging.
type RuleError struct {
	Stage Stage
	// Code is the engine error code, for example E_PARSE or E_BUDGET.
	Code       string
	diagnostic string
}

func newRuleError(stage Stage, code string, cause error) *RuleError {
	e := &RuleError{Stage: stage, Code: code}
	if cause != nil {
		e.diagnostic = cause.Error()
	}
	return e
}

// Error returns the error message.
func (e *RuleError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pricing rule failed at %s (%s)", e.Stage, e.Code)
	}
	return fmt.Sprintf("pricing rule failed at %s", e.Stage)
}

// Is reports whether target is ErrRule.
func (e *RuleError) Is(target error) bool {
	return target == ErrRule
}

// Diagnostic returns the detailed engine message, including source location
// and context when available. It is meant for debug logging only.
func (e *RuleError) Diagnostic() string {
	return e.diagnostic
}
