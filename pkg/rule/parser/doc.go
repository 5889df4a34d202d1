// Package parser turns pricing rule text into an AST.
//
// The parser is a recursive-descent parser over the token stream produced by
// package lexer. It fails on the first problem and returns an *errors.Error of
// type syntax carrying the offending location. Source size and expression
// nesting are bounded by Limits before any work proportional to them is done.
//
// Operator precedence, from lowest to highest:
//
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* / %
//	unary - !
//	postfix x[i], x.len()
package parser
