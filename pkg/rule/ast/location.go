package ast

import "fmt"

// Location represents the source location of an AST node in the rule text.
// It enables precise error reporting with source, line, and column information.
type Location struct {
	Source string // Name of the rule source (file path or "witness")
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based, counted in characters)
	Offset int    // Byte offset into the rule text
}

// String returns a human-readable representation of the location.
// Format: "source:line:column"
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	source := l.Source
	if source == "" {
		source = "rule"
	}
	return fmt.Sprintf("%s:%d:%d", source, l.Line, l.Column)
}

// IsValid returns true if the location has line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
