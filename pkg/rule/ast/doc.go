// Package ast provides the Abstract Syntax Tree (AST) definitions for pricing rules.
//
// A pricing rule is a small, total expression program supplied by the spender of a
// name cell. The AST is a closed set of tagged variants: every node type is declared
// in this package and the Expr/Stmt interfaces are sealed, so the evaluator can switch
// over the complete set of nodes. All nodes carry their source Location for precise
// error reporting.
//
// # Core Types
//
// Program: Root node, a sequence of statements whose last expression is the result
//
// LetStmt: Immutable binding of a name to an expression value
//
// ExprStmt: An expression in statement position (the block value when it is last)
//
// Expressions: IntLiteral, CharLiteral, ArrayLiteral, Ident, UnaryExpr, BinaryExpr,
// IndexExpr, CallExpr (len(x)), MethodCallExpr (x.len()), IfExpr, BlockExpr
//
// # Basic Usage
//
// Compile a rule and traverse the AST:
//
//	program, err := parser.Parse(source, "tiers.rhai", parser.DefaultLimits())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = ast.Walk(program, visitor)
//
// # Source Locations
//
// All nodes include a Location for error reporting:
//
//	fmt.Printf("Error at %s\n", node.Loc().String())
//	// Output: Error at rule:3:15
package ast
