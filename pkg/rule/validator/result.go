package validator

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// ResultValidator checks that a program ends in an expression that can
// produce an integer price.
type ResultValidator struct {
	errors *rerrors.ErrorList
}

// NewResultValidator creates a new result validator.
func NewResultValidator() *ResultValidator {
	return &ResultValidator{
		errors: rerrors.NewErrorList(),
	}
}

// Validate performs result validation on a program.
func (v *ResultValidator) Validate(program *ast.Program) error {
	v.errors = rerrors.NewErrorList()
	if program == nil || len(program.Stmts) == 0 {
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeResult, "rule is empty", ast.Location{})
		return v.errors.ToError()
	}
	v.checkBlock(program.Stmts, program.Location)
	return v.errors.ToError()
}

// checkBlock checks the value-producing tail of a statement sequence,
// following if branches and nested blocks.
func (v *ResultValidator) checkBlock(stmts []ast.Stmt, loc ast.Location) {
	if len(stmts) == 0 {
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeResult, "empty block produces no price", loc)
		return
	}

	last := stmts[len(stmts)-1]
	stmt, ok := last.(*ast.ExprStmt)
	if !ok {
		v.errors.AddErrorWithSuggestion(rerrors.ErrorTypeSemantic, rerrors.CodeResult,
			"block ends with a let binding and produces no price", last.Loc(),
			"End the block with the price expression")
		return
	}
	v.checkExpr(stmt.Expr)
}

func (v *ResultValidator) checkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.IfExpr:
		v.checkBlock(e.Then.Stmts, e.Then.Location)
		v.checkExpr(e.Else)
	case *ast.BlockExpr:
		v.checkBlock(e.Stmts, e.Location)
	default:
		if kind := staticKind(expr); kind != "" {
			v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeResult,
				fmt.Sprintf("price must be an int, found %s", kind), expr.Loc())
		}
	}
}

// staticKind returns the type name of expressions whose type is known
// without evaluation and is not int, or "" otherwise.
func staticKind(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BoolLiteral:
		return "bool"
	case *ast.CharLiteral:
		return "char"
	case *ast.ArrayLiteral:
		return "array"
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			return "bool"
		}
	case *ast.BinaryExpr:
		if e.Op.IsComparison() || e.Op.IsLogical() {
			return "bool"
		}
	}
	return ""
}
