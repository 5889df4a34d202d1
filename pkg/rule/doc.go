// Package rule is the expression engine for pricing rules.
//
// A pricing rule is untrusted text that computes an integer price from a
// single binding, account_chars, holding the identifier being registered.
// The language is deliberately small and total:
//
//	let price_tiers = [50000, 20000, 10000, 5000, 2000, 1000];
//	let len = account_chars.len();
//	if len > 6 { 100 } else { price_tiers[len - 1] }
//
// It supports integer and character literals, arrays, let bindings, blocks,
// if/else expressions (else is mandatory), checked integer arithmetic,
// comparisons, short-circuit logic, indexing and len(). There are no loops,
// user functions, mutation, string literals or I/O. Negative indices are out
// of range rather than counting from the end.
//
// # Basic Usage
//
//	program, err := rule.Compile(source, rule.DefaultLimits())
//	if err != nil {
//	    return err // *errors.Error of type syntax
//	}
//
//	price, stats, err := rule.Evaluate(program, rule.NewScope("ABC"), rule.DefaultLimits())
//	if err != nil {
//	    return err // *errors.Error of type evaluation or budget
//	}
//
// # Resource Bounds
//
// Limits bound the rule text size and nesting depth at compile time and the
// number of evaluation steps at run time. Every AST node visited costs one
// step, so evaluation always terminates within Limits.MaxSteps.
//
// # Subpackages
//
// ast: AST node definitions and traversal
//
// lexer, parser: rule text to AST
//
// eval: tree-walking interpreter
//
// validator: static checks used by the lint command
//
// errors: positioned diagnostics with source context and suggestions
package rule
