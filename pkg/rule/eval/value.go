package eval

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the interface for all rule runtime values.
// The set of values is closed; implementations live in this package.
type Value interface {
	// Type returns the type name used in diagnostics.
	Type() string
	String() string
	value()
}

// Type names reported in diagnostics.
const (
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeChar   = "char"
	TypeString = "string"
	TypeArray  = "array"
	TypeUnit   = "()"
)

// Int is a signed 64-bit integer. It is the only numeric type.
type Int struct {
	Value int64
}

func (Int) Type() string     { return TypeInt }
func (v Int) String() string { return strconv.FormatInt(v.Value, 10) }
func (Int) value()           {}

// Bool is the result of comparisons and logical operators.
type Bool struct {
	Value bool
}

func (Bool) Type() string     { return TypeBool }
func (v Bool) String() string { return strconv.FormatBool(v.Value) }
func (Bool) value()           {}

// Char is a single Unicode character, produced by char literals and by
// indexing a String.
type Char struct {
	Value rune
}

func (Char) Type() string     { return TypeChar }
func (v Char) String() string { return strconv.QuoteRune(v.Value) }
func (Char) value()           {}

// String is immutable text indexed by character. Only the identifier binding
// produces strings; the rule language has no string literals.
type String struct {
	text  string
	chars []rune
}

// NewString creates a String value from UTF-8 text.
func NewString(s string) String {
	return String{text: s, chars: []rune(s)}
}

func (String) Type() string     { return TypeString }
func (v String) String() string { return strconv.Quote(v.text) }
func (String) value()           {}

// Text returns the underlying text.
func (v String) Text() string { return v.text }

// Len returns the number of characters.
func (v String) Len() int { return len(v.chars) }

// At returns the character at index i. The caller checks bounds.
func (v String) At(i int) rune { return v.chars[i] }

// Array is an immutable ordered list of values.
type Array struct {
	Items []Value
}

func (Array) Type() string { return TypeArray }
func (v Array) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (Array) value() {}

// Unit is the value of a block whose last statement is terminated by ';'
// or is a let binding.
type Unit struct{}

func (Unit) Type() string   { return TypeUnit }
func (Unit) String() string { return "()" }
func (Unit) value()         {}

// AsInt returns the integer held by v.
func AsInt(v Value) (int64, bool) {
	i, ok := v.(Int)
	return i.Value, ok
}

// Describe formats a value with its type for diagnostics, e.g. "int 42".
func Describe(v Value) string {
	return fmt.Sprintf("%s %s", v.Type(), v.String())
}
