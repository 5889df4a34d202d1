package errors

import (
	"fmt"
	"strings"

	"cellgate-hq/pricelock/pkg/rule/ast"
)

// ExtractContext extracts the lines surrounding location from the rule source.
// It returns a formatted string showing the error location with line numbers
// and a caret under the offending column.
func ExtractContext(source string, location ast.Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")
	errorLine := location.Line - 1 // Convert to 0-based index
	if errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	endLine := errorLine + contextLines
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		line := strings.TrimRight(lines[i], "\r")
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, maxLineNumWidth, i+1, line))

		// Add column indicator for error line
		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// WithContext attaches source context to err and returns it.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err != nil && err.Location.IsValid() {
		err.Context = ExtractContext(source, err.Location, contextLines)
	}
	return err
}

// AddContextToError adds two lines of context before and after the error location.
func AddContextToError(err *Error, source string) *Error {
	return WithContext(err, source, 2)
}
