// Package validator provides static checks for compiled pricing rules.
//
// The validator performs three passes and reports all findings as semantic
// errors in a single *errors.ErrorList:
//
// 1. Scope Validation: references to names that are not bound where they are used
//
// 2. Call Validation: unknown functions and methods, wrong argument counts,
// division by a constant zero and constant out-of-range indices
//
// 3. Result Validation: the rule must end in an expression that can produce an int
//
// Validation is advisory. The evaluator reports the same problems at run time,
// so an unvalidated rule is still safe to evaluate.
//
// # Basic Usage
//
//	program, err := parser.Parse(source, "tiers.rhai", parser.DefaultLimits())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := validator.NewValidator("account_chars")
//	if err := v.Validate(program); err != nil {
//	    fmt.Println(err)
//	}
package validator
