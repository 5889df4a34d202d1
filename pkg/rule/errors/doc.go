// Package errors provides rich error types for rule compilation and evaluation.
//
// The error types include source location, context, and suggestions to help
// rule authors quickly identify and fix problems in pricing rules.
//
// # Error Types
//
// ErrorTypeSyntax: Lexing and parsing errors, including source size and nesting limits
//
// ErrorTypeSemantic: Static problems found by the validator (undefined names, unknown methods)
//
// ErrorTypeEvaluation: Runtime failures (undefined variable, index out of bounds,
// type mismatch, division by zero, overflow)
//
// ErrorTypeBudget: The step or depth budget was exhausted during evaluation
//
// Each error also carries a stable Code (for example E_INDEX or E_BUDGET) so that
// callers and tests can match on the precise failure without parsing messages.
//
// # Basic Usage
//
// Create an error with location:
//
//	err := errors.New(errors.ErrorTypeEvaluation, errors.CodeUndefined,
//	    "undefined variable 'acount_chars'", ident.Location)
//
// Add context from the rule source:
//
//	err = errors.WithContext(err, source, 2)
//	fmt.Println(err.Error())
//
// # Error Format
//
//	[evaluation/E_UNDEFINED] undefined variable 'acount_chars'
//	  --> rule:2:11
//	  |
//	   1 | let price_tiers = [50000, 20000];
//	-> 2 | let len = acount_chars.len();
//	   |           ^
//	  |
//	  = suggestion: Did you mean 'account_chars'?
package errors
