package validator

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
	"cellgate-hq/pricelock/pkg/rule/eval"
)

// CallValidator checks function and method calls against the built-ins and
// flags constant operations that can only fail at evaluation time, such as
// dividing by a literal zero or indexing with a negative literal.
type CallValidator struct {
	errors *rerrors.ErrorList
}

// NewCallValidator creates a new call validator.
func NewCallValidator() *CallValidator {
	return &CallValidator{
		errors: rerrors.NewErrorList(),
	}
}

// Validate performs call and constant validation on a program.
func (v *CallValidator) Validate(program *ast.Program) error {
	v.errors = rerrors.NewErrorList()
	if err := ast.Walk(program, v); err != nil {
		return err
	}
	return v.errors.ToError()
}

func (v *CallValidator) VisitStmt(ast.Stmt) error { return nil }

func (v *CallValidator) VisitExpr(expr ast.Expr) error {
	switch n := expr.(type) {
	case *ast.CallExpr:
		v.checkCall(n.Name, len(n.Args), n.Location, false)
	case *ast.MethodCallExpr:
		v.checkCall(n.Method, len(n.Args)+1, n.Location, true)
	case *ast.BinaryExpr:
		v.checkDivision(n)
	case *ast.IndexExpr:
		v.checkIndex(n)
	}
	return nil
}

func (v *CallValidator) checkCall(name string, argc int, loc ast.Location, method bool) {
	arity, known := eval.Arity(name)
	switch {
	case !known && method:
		v.errors.AddErrorWithSuggestion(rerrors.ErrorTypeSemantic, rerrors.CodeUnknownFn,
			fmt.Sprintf("unknown method '%s'", name), loc, rerrors.SuggestMethod(eval.TypeString))
		return
	case !known:
		v.errors.AddErrorWithSuggestion(rerrors.ErrorTypeSemantic, rerrors.CodeUnknownFn,
			fmt.Sprintf("unknown function '%s'", name), loc, rerrors.SuggestName(name, eval.BuiltinNames()))
		return
	case method && !eval.IsMethod(name):
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeUnknownFn,
			fmt.Sprintf("'%s' cannot be called as a method", name), loc)
		return
	}

	if argc != arity {
		given, want := argc, arity
		if method {
			given, want = argc-1, arity-1
		}
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeArity,
			fmt.Sprintf("%s() takes %d argument(s), %d given", name, want, given), loc)
	}
}

func (v *CallValidator) checkDivision(n *ast.BinaryExpr) {
	if n.Op != ast.OpDiv && n.Op != ast.OpMod {
		return
	}
	if lit, ok := n.Right.(*ast.IntLiteral); ok && lit.Value == 0 {
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeDivZero,
			fmt.Sprintf("'%s' by constant zero always fails", n.Op), n.Location)
	}
}

func (v *CallValidator) checkIndex(n *ast.IndexExpr) {
	idx, ok := constantInt(n.Index)
	if !ok {
		return
	}
	if idx < 0 {
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeIndex,
			fmt.Sprintf("negative index %d is always out of bounds", idx), n.Location)
		return
	}
	if arr, ok := n.Target.(*ast.ArrayLiteral); ok && idx >= int64(len(arr.Elements)) {
		v.errors.AddError(rerrors.ErrorTypeSemantic, rerrors.CodeIndex,
			fmt.Sprintf("index %d out of bounds for array of length %d", idx, len(arr.Elements)), n.Location)
	}
}

// constantInt returns the value of an integer literal or a negated integer literal.
func constantInt(expr ast.Expr) (int64, bool) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value, true
	case *ast.UnaryExpr:
		if lit, ok := e.Operand.(*ast.IntLiteral); ok && e.Op == ast.OpNeg {
			return -lit.Value, true
		}
	}
	return 0, false
}
