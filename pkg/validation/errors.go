package validation

import "fmt"

// Kind classifies why a spend was rejected.
type Kind string

const (
	KindSyscall              Kind = "syscall_error"
	KindMissingIdentifier    Kind = "missing_identifier"
	KindEncoding             Kind = "encoding_error"
	KindMissingRule          Kind = "missing_rule"
	KindRule                 Kind = "rule_error"
	KindInsufficientCapacity Kind = "insufficient_capacity"
)

// Kinds lists every rejection kind in exit code order.
var Kinds = []Kind{
	KindSyscall,
	KindMissingIdentifier,
	KindEncoding,
	KindMissingRule,
	KindRule,
	KindInsufficientCapacity,
}

// ExitCode returns the stable non-zero process exit code for the kind.
func (k Kind) ExitCode() int {
	for i, kind := range Kinds {
		if kind == k {
			return i + 1
		}
	}
	return 255
}

// ParseKind parses a kind name as produced by Kind.
func ParseKind(s string) (Kind, error) {
	for _, kind := range Kinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown rejection kind %q", s)
}

// Error is the reason a spend was rejected.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel values for matching with errors.Is.
var (
	ErrSyscall              = &Error{Kind: KindSyscall}
	ErrMissingIdentifier    = &Error{Kind: KindMissingIdentifier}
	ErrEncoding             = &Error{Kind: KindEncoding}
	ErrMissingRule          = &Error{Kind: KindMissingRule}
	ErrRule                 = &Error{Kind: KindRule}
	ErrInsufficientCapacity = &Error{Kind: KindInsufficientCapacity}
)

func reject(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
