package eval

import (
	"sort"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// builtin is a function callable as name(args...) and, when method is set,
// as args[0].name(args[1:]...).
type builtin struct {
	arity  int
	method bool
	call   func(loc ast.Location, args []Value) (Value, error)
}

var builtins = map[string]builtin{
	"len": {arity: 1, method: true, call: builtinLen},
}

// BuiltinNames returns the names of all built-in functions in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsMethod reports whether name can be called with method syntax.
func IsMethod(name string) bool {
	fn, ok := builtins[name]
	return ok && fn.method
}

// Arity returns the number of arguments a built-in takes, counting the
// receiver of a method call. ok is false for unknown names.
func Arity(name string) (n int, ok bool) {
	fn, ok := builtins[name]
	return fn.arity, ok
}

// builtinLen returns the number of characters of a string or elements of an array.
func builtinLen(loc ast.Location, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case String:
		return Int{Value: int64(v.Len())}, nil
	case Array:
		return Int{Value: int64(len(v.Items))}, nil
	}
	err := rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeType, loc, "len() is not defined for %s", args[0].Type())
	err.Suggestion = rerrors.SuggestMethod(args[0].Type())
	return nil, err
}
