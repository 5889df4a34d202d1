// Package pricing computes the price of an identifier from a pricing rule.
//
// It is the fixed contract between the validation controller and the rule
// engine: given the identifier text and the rule text, return a
// non-negative int64 price or a *RuleError. Compile failures, evaluation
// failures, exhausted budgets, non-integer results and negative prices all
// collapse into RuleError, which matches ErrRule:
//
//	price, err := evaluator.PriceFor("ABC", ruleSource)
//	if errors.Is(err, pricing.ErrRule) {
//	    var ruleErr *pricing.RuleError
//	    errors.As(err, &ruleErr)
//	    logger.Debug("rule rejected", "diagnostic", ruleErr.Diagnostic())
//	}
//
// The engine error is deliberately absent from the error chain; callers get
// the failing stage and code, and a diagnostic string for logs.
package pricing
