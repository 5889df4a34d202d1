package txcontext

import (
	"fmt"
	"strings"
)

// LoadError reports a fixture suite or rule file that could not be read.
type LoadError struct {
	// FilePath is the file that failed to load.
	FilePath string

	Message string
	Cause   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load fixture file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load fixture file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// CaseError is a problem with a single fixture case.
type CaseError struct {
	Case    string
	Field   string
	Message string
}

func (e *CaseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("case %q: %s: %s", e.Case, e.Field, e.Message)
	}
	return fmt.Sprintf("case %q: %s", e.Case, e.Message)
}

// SuiteError collects every case problem found while checking a suite.
type SuiteError struct {
	FilePath string
	Errors   []*CaseError
}

func (e *SuiteError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid fixture suite %q: %v", e.FilePath, e.Errors[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid fixture suite %q: %d errors:", e.FilePath, len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}
