// Package eval implements the pricing rule interpreter.
//
// Evaluation is a tree walk over the AST with an explicit step counter: every
// statement and expression visited costs one step, and nested blocks and if
// expressions count against a depth limit. Arithmetic is checked int64;
// overflow, division by zero and out-of-range indexing are evaluation errors,
// never panics or wrapped results.
//
// Indices count from zero and never wrap: a negative index is out of range.
// == and != compare values of any two types, and values of different types
// are unequal; ordering operators require two ints or two chars. A block's
// value is its last expression, whether or not it ends in ';'.
package eval

import (
	"math"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// Evaluator evaluates a single program. It is not safe for concurrent use
// and must not be reused; create one per evaluation with New.
type Evaluator struct {
	budget tracker
}

// New creates an evaluator bound by limits.
func New(limits Limits) *Evaluator {
	return &Evaluator{budget: tracker{limits: limits}}
}

// Run evaluates program in a child of env and returns the program value.
// The value is Unit when the final statement is terminated or is a let binding.
func (e *Evaluator) Run(program *ast.Program, env *Env) (Value, Stats, error) {
	if program == nil {
		return nil, e.budget.stats(), rerrors.New(rerrors.ErrorTypeEvaluation, rerrors.CodeResult, "no program to evaluate", ast.Location{})
	}
	val, err := e.evalStmts(program.Stmts, env.Child())
	return val, e.budget.stats(), err
}

// Eval is shorthand for New(limits).Run(program, env).
func Eval(program *ast.Program, env *Env, limits Limits) (Value, Stats, error) {
	return New(limits).Run(program, env)
}

func evalError(code string, loc ast.Location, format string, args ...any) error {
	return rerrors.Newf(rerrors.ErrorTypeEvaluation, code, loc, format, args...)
}

func (e *Evaluator) evalStmts(stmts []ast.Stmt, env *Env) (Value, error) {
	var result Value = Unit{}

	for _, stmt := range stmts {
		if err := e.budget.step(stmt.Loc()); err != nil {
			return nil, err
		}

		switch s := stmt.(type) {
		case *ast.LetStmt:
			val, err := e.evalExpr(s.Value, env)
			if err != nil {
				return nil, err
			}
			env.Set(s.Name, val)
			result = Unit{}

		case *ast.ExprStmt:
			val, err := e.evalExpr(s.Expr, env)
			if err != nil {
				return nil, err
			}
			result = val

		default:
			return nil, evalError(rerrors.CodeType, stmt.Loc(), "unsupported statement %s", stmt.Kind())
		}
	}

	return result, nil
}

func (e *Evaluator) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	if err := e.budget.step(expr.Loc()); err != nil {
		return nil, err
	}

	switch n := expr.(type) {
	case *ast.IntLiteral:
		return Int{Value: n.Value}, nil

	case *ast.CharLiteral:
		return Char{Value: n.Value}, nil

	case *ast.BoolLiteral:
		return Bool{Value: n.Value}, nil

	case *ast.ArrayLiteral:
		items := make([]Value, 0, len(n.Elements))
		for _, elem := range n.Elements {
			val, err := e.evalExpr(elem, env)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return Array{Items: items}, nil

	case *ast.Ident:
		val, ok := env.Get(n.Name)
		if !ok {
			err := rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeUndefined, n.Location, "undefined variable '%s'", n.Name)
			err.Suggestion = rerrors.SuggestName(n.Name, env.Names())
			return nil, err
		}
		return val, nil

	case *ast.UnaryExpr:
		return e.evalUnary(n, env)

	case *ast.BinaryExpr:
		return e.evalBinary(n, env)

	case *ast.IndexExpr:
		return e.evalIndex(n, env)

	case *ast.CallExpr:
		return e.evalCall(n, env)

	case *ast.MethodCallExpr:
		return e.evalMethodCall(n, env)

	case *ast.IfExpr:
		return e.evalIf(n, env)

	case *ast.BlockExpr:
		return e.evalBlock(n, env)
	}

	return nil, evalError(rerrors.CodeType, expr.Loc(), "unsupported expression %s", expr.Kind())
}

func (e *Evaluator) evalBlock(block *ast.BlockExpr, env *Env) (Value, error) {
	if err := e.budget.enter(block.Location); err != nil {
		return nil, err
	}
	defer e.budget.leave()
	return e.evalStmts(block.Stmts, env.Child())
}

func (e *Evaluator) evalIf(n *ast.IfExpr, env *Env) (Value, error) {
	if err := e.budget.enter(n.Location); err != nil {
		return nil, err
	}
	defer e.budget.leave()

	cond, err := e.evalExpr(n.Cond, env)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(Bool)
	if !ok {
		return nil, evalError(rerrors.CodeType, n.Cond.Loc(), "if condition must be bool, found %s", cond.Type())
	}
	if b.Value {
		return e.evalBlock(n.Then, env)
	}
	return e.evalExpr(n.Else, env)
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, env *Env) (Value, error) {
	operand, err := e.evalExpr(n.Operand, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpNeg:
		i, ok := operand.(Int)
		if !ok {
			return nil, evalError(rerrors.CodeType, n.Location, "cannot negate %s", operand.Type())
		}
		if i.Value == math.MinInt64 {
			return nil, evalError(rerrors.CodeOverflow, n.Location, "integer overflow in -(%d)", i.Value)
		}
		return Int{Value: -i.Value}, nil

	case ast.OpNot:
		b, ok := operand.(Bool)
		if !ok {
			return nil, evalError(rerrors.CodeType, n.Location, "cannot apply '!' to %s", operand.Type())
		}
		return Bool{Value: !b.Value}, nil
	}

	return nil, evalError(rerrors.CodeType, n.Location, "unknown unary operator '%s'", n.Op)
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, env *Env) (Value, error) {
	left, err := e.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}

	if n.Op.IsLogical() {
		return e.evalLogical(n, left, env)
	}

	right, err := e.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch {
	case n.Op.IsArithmetic():
		l, lok := left.(Int)
		r, rok := right.(Int)
		if !lok || !rok {
			return nil, evalError(rerrors.CodeType, n.Location, "cannot apply '%s' to %s and %s", n.Op, left.Type(), right.Type())
		}
		return arithmetic(n, l.Value, r.Value)

	case n.Op == ast.OpEq || n.Op == ast.OpNeq:
		eq, err := e.equal(n, left, right)
		if err != nil {
			return nil, err
		}
		if n.Op == ast.OpNeq {
			eq = !eq
		}
		return Bool{Value: eq}, nil

	case n.Op.IsComparison():
		return compare(n, left, right)
	}

	return nil, evalError(rerrors.CodeType, n.Location, "unknown binary operator '%s'", n.Op)
}

func (e *Evaluator) evalLogical(n *ast.BinaryExpr, left Value, env *Env) (Value, error) {
	l, ok := left.(Bool)
	if !ok {
		return nil, evalError(rerrors.CodeType, n.Left.Loc(), "'%s' requires bool operands, found %s", n.Op, left.Type())
	}
	if (n.Op == ast.OpAnd && !l.Value) || (n.Op == ast.OpOr && l.Value) {
		return l, nil
	}

	right, err := e.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	r, ok := right.(Bool)
	if !ok {
		return nil, evalError(rerrors.CodeType, n.Right.Loc(), "'%s' requires bool operands, found %s", n.Op, right.Type())
	}
	return r, nil
}

func arithmetic(n *ast.BinaryExpr, a, b int64) (Value, error) {
	overflow := func() error {
		return evalError(rerrors.CodeOverflow, n.Location, "integer overflow in %d %s %d", a, n.Op, b)
	}

	switch n.Op {
	case ast.OpAdd:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return nil, overflow()
		}
		return Int{Value: a + b}, nil

	case ast.OpSub:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return nil, overflow()
		}
		return Int{Value: a - b}, nil

	case ast.OpMul:
		if a == 0 || b == 0 {
			return Int{Value: 0}, nil
		}
		c := a * b
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
			return nil, overflow()
		}
		return Int{Value: c}, nil

	case ast.OpDiv:
		if b == 0 {
			return nil, evalError(rerrors.CodeDivZero, n.Location, "division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflow()
		}
		return Int{Value: a / b}, nil

	case ast.OpMod:
		if b == 0 {
			return nil, evalError(rerrors.CodeDivZero, n.Location, "modulo by zero")
		}
		return Int{Value: a % b}, nil
	}

	return nil, evalError(rerrors.CodeType, n.Location, "unknown arithmetic operator '%s'", n.Op)
}

// equal compares two values of the same type. Arrays compare element-wise,
// each element comparison costing one step.
func (e *Evaluator) equal(n *ast.BinaryExpr, left, right Value) (bool, error) {
	switch l := left.(type) {
	case Int:
		if r, ok := right.(Int); ok {
			return l.Value == r.Value, nil
		}
	case Bool:
		if r, ok := right.(Bool); ok {
			return l.Value == r.Value, nil
		}
	case Char:
		if r, ok := right.(Char); ok {
			return l.Value == r.Value, nil
		}
	case String:
		if r, ok := right.(String); ok {
			if err := e.budget.charge(max(l.Len(), r.Len()), n.Location); err != nil {
				return false, err
			}
			return l.text == r.text, nil
		}
	case Array:
		if r, ok := right.(Array); ok {
			if len(l.Items) != len(r.Items) {
				return false, nil
			}
			for i := range l.Items {
				if err := e.budget.step(n.Location); err != nil {
					return false, err
				}
				eq, err := e.equal(n, l.Items[i], r.Items[i])
				if err != nil {
					return false, err
				}
				if !eq {
					return false, nil
				}
			}
			return true, nil
		}
	case Unit:
		if _, ok := right.(Unit); ok {
			return true, nil
		}
	}
	// Values of different types are never equal.
	return false, nil
}

func compare(n *ast.BinaryExpr, left, right Value) (Value, error) {
	switch l := left.(type) {
	case Int:
		if r, ok := right.(Int); ok {
			return Bool{Value: ordered(n.Op, l.Value, r.Value)}, nil
		}
	case Char:
		if r, ok := right.(Char); ok {
			return Bool{Value: ordered(n.Op, int64(l.Value), int64(r.Value))}, nil
		}
	}
	return nil, evalError(rerrors.CodeType, n.Location, "cannot order %s and %s with '%s'", left.Type(), right.Type(), n.Op)
}

func ordered(op ast.BinaryOp, a, b int64) bool {
	switch op {
	case ast.OpLt:
		return a < b
	case ast.OpLte:
		return a <= b
	case ast.OpGt:
		return a > b
	default:
		return a >= b
	}
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr, env *Env) (Value, error) {
	target, err := e.evalExpr(n.Target, env)
	if err != nil {
		return nil, err
	}
	indexVal, err := e.evalExpr(n.Index, env)
	if err != nil {
		return nil, err
	}

	idx, ok := indexVal.(Int)
	if !ok {
		return nil, evalError(rerrors.CodeType, n.Index.Loc(), "index must be int, found %s", indexVal.Type())
	}

	switch t := target.(type) {
	case Array:
		if idx.Value < 0 || idx.Value >= int64(len(t.Items)) {
			return nil, evalError(rerrors.CodeIndex, n.Location, "index %d out of bounds for array of length %d", idx.Value, len(t.Items))
		}
		return t.Items[idx.Value], nil

	case String:
		if idx.Value < 0 || idx.Value >= int64(t.Len()) {
			return nil, evalError(rerrors.CodeIndex, n.Location, "index %d out of bounds for string of length %d", idx.Value, t.Len())
		}
		return Char{Value: t.At(int(idx.Value))}, nil
	}

	return nil, evalError(rerrors.CodeType, n.Location, "cannot index into %s", target.Type())
}

func (e *Evaluator) evalArgs(args []ast.Expr, env *Env) ([]Value, error) {
	vals := make([]Value, 0, len(args))
	for _, arg := range args {
		val, err := e.evalExpr(arg, env)
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

func (e *Evaluator) evalCall(n *ast.CallExpr, env *Env) (Value, error) {
	fn, ok := builtins[n.Name]
	if !ok {
		err := rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeUnknownFn, n.Location, "unknown function '%s'", n.Name)
		err.Suggestion = rerrors.SuggestName(n.Name, BuiltinNames())
		return nil, err
	}
	if len(n.Args) != fn.arity {
		return nil, evalError(rerrors.CodeArity, n.Location, "%s() takes %d argument(s), %d given", n.Name, fn.arity, len(n.Args))
	}

	args, err := e.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return fn.call(n.Location, args)
}

func (e *Evaluator) evalMethodCall(n *ast.MethodCallExpr, env *Env) (Value, error) {
	receiver, err := e.evalExpr(n.Receiver, env)
	if err != nil {
		return nil, err
	}

	fn, ok := builtins[n.Method]
	if !ok || !fn.method {
		err := rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeUnknownFn, n.Location, "unknown method '%s' on %s", n.Method, receiver.Type())
		err.Suggestion = rerrors.SuggestMethod(receiver.Type())
		return nil, err
	}
	if len(n.Args)+1 != fn.arity {
		return nil, evalError(rerrors.CodeArity, n.Location, "%s() takes %d argument(s), %d given", n.Method, fn.arity-1, len(n.Args))
	}

	args, err := e.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return fn.call(n.Location, append([]Value{receiver}, args...))
}
