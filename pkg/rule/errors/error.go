package errors

import (
	"fmt"
	"strings"

	"cellgate-hq/pricelock/pkg/rule/ast"
)

// ErrorType categorizes the type of error encountered while compiling or evaluating a rule.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // Malformed rule text
	ErrorTypeSemantic   ErrorType = "semantic"   // Static validation finding
	ErrorTypeEvaluation ErrorType = "evaluation" // Runtime failure
	ErrorTypeBudget     ErrorType = "budget"     // Step or depth budget exhausted
)

// Error codes identify the precise failure within an ErrorType.
const (
	CodeLex       = "E_LEX"
	CodeParse     = "E_PARSE"
	CodeLimit     = "E_LIMIT"
	CodeUndefined = "E_UNDEFINED"
	CodeIndex     = "E_INDEX"
	CodeType      = "E_TYPE"
	CodeDivZero   = "E_DIV_ZERO"
	CodeOverflow  = "E_OVERFLOW"
	CodeUnknownFn = "E_UNKNOWN_FN"
	CodeArity     = "E_ARITY"
	CodeResult    = "E_RESULT"
	CodeBudget    = "E_BUDGET"
	CodeDepth     = "E_DEPTH"
)

// Error represents a rich error with location, context, and suggestions.
type Error struct {
	Type       ErrorType    // Category of error
	Code       string       // Stable error code
	Message    string       // Error message
	Location   ast.Location // Source location
	Context    string       // Surrounding lines of the rule text
	Suggestion string       // Suggested fix (optional)
}

// New creates an error of the given type and code.
func New(errType ErrorType, code, message string, location ast.Location) *Error {
	return &Error{
		Type:     errType,
		Code:     code,
		Message:  message,
		Location: location,
	}
}

// Newf creates an error with a formatted message.
func Newf(errType ErrorType, code string, location ast.Location, format string, args ...any) *Error {
	return New(errType, code, fmt.Sprintf(format, args...), location)
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s/%s] %s", e.Type, e.Code, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("\n  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// Short returns the single-line form of the error without context.
func (e *Error) Short() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("%s: %s (%s)", e.Location.String(), e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is reports whether target is an *Error with the same Type and Code.
// A target with an empty Code matches any error of the same Type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinel values for matching with the standard library errors.Is.
var (
	ErrSyntax     = &Error{Type: ErrorTypeSyntax}
	ErrSemantic   = &Error{Type: ErrorTypeSemantic}
	ErrEvaluation = &Error{Type: ErrorTypeEvaluation}
	ErrBudget     = &Error{Type: ErrorTypeBudget}
)

// ErrorList represents a collection of errors encountered during validation.
// It allows accumulating multiple errors instead of failing on the first error.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, code, message string, location ast.Location) {
	el.Add(New(errType, code, message, location))
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, code, message string, location ast.Location, suggestion string) {
	err := New(errType, code, message, location)
	err.Suggestion = suggestion
	el.Add(err)
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByCode returns all errors with the given code.
func (el *ErrorList) ByCode(code string) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Code == code {
			result = append(result, err)
		}
	}
	return result
}
