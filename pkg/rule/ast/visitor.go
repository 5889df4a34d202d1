package ast

import "fmt"

// Visitor provides an interface for traversing the AST.
// Implement this interface to perform operations on AST nodes
// (validation, analysis, statistics, etc.).
type Visitor interface {
	VisitStmt(Stmt) error
	VisitExpr(Expr) error
}

// BlockVisitor is implemented by visitors that track lexical scopes.
// Walk calls EnterBlock before the statements of a block and LeaveBlock after them.
// The program body counts as a block with a nil *BlockExpr.
type BlockVisitor interface {
	EnterBlock(*BlockExpr) error
	LeaveBlock(*BlockExpr) error
}

// Walk traverses the AST starting from the program node and calls the visitor
// for each node. Expressions are visited before their children. A LetStmt is
// visited after its value expression, so a binding becomes visible only to the
// statements that follow it. Walk returns the first error encountered.
func Walk(program *Program, visitor Visitor) error {
	if program == nil {
		return nil
	}
	return walkBlock(nil, program.Stmts, visitor)
}

// walkBlock walks a statement sequence inside its own scope.
func walkBlock(block *BlockExpr, stmts []Stmt, visitor Visitor) error {
	bv, scoped := visitor.(BlockVisitor)
	if scoped {
		if err := bv.EnterBlock(block); err != nil {
			return err
		}
	}

	for _, stmt := range stmts {
		if err := walkStmt(stmt, visitor); err != nil {
			return err
		}
	}

	if scoped {
		return bv.LeaveBlock(block)
	}
	return nil
}

func walkStmt(stmt Stmt, visitor Visitor) error {
	switch s := stmt.(type) {
	case *LetStmt:
		if err := walkExpr(s.Value, visitor); err != nil {
			return err
		}
		return visitor.VisitStmt(s)
	case *ExprStmt:
		if err := visitor.VisitStmt(s); err != nil {
			return err
		}
		return walkExpr(s.Expr, visitor)
	default:
		return fmt.Errorf("unknown statement node %T", stmt)
	}
}

// walkExpr recursively walks an expression tree.
func walkExpr(expr Expr, visitor Visitor) error {
	if expr == nil {
		return nil
	}
	if err := visitor.VisitExpr(expr); err != nil {
		return err
	}

	switch e := expr.(type) {
	case *IntLiteral, *CharLiteral, *BoolLiteral, *Ident:
		return nil
	case *ArrayLiteral:
		return walkExprs(e.Elements, visitor)
	case *UnaryExpr:
		return walkExpr(e.Operand, visitor)
	case *BinaryExpr:
		if err := walkExpr(e.Left, visitor); err != nil {
			return err
		}
		return walkExpr(e.Right, visitor)
	case *IndexExpr:
		if err := walkExpr(e.Target, visitor); err != nil {
			return err
		}
		return walkExpr(e.Index, visitor)
	case *CallExpr:
		return walkExprs(e.Args, visitor)
	case *MethodCallExpr:
		if err := walkExpr(e.Receiver, visitor); err != nil {
			return err
		}
		return walkExprs(e.Args, visitor)
	case *IfExpr:
		if err := walkExpr(e.Cond, visitor); err != nil {
			return err
		}
		if err := walkExpr(e.Then, visitor); err != nil {
			return err
		}
		return walkExpr(e.Else, visitor)
	case *BlockExpr:
		return walkBlock(e, e.Stmts, visitor)
	default:
		return fmt.Errorf("unknown expression node %T", expr)
	}
}

func walkExprs(exprs []Expr, visitor Visitor) error {
	for _, expr := range exprs {
		if err := walkExpr(expr, visitor); err != nil {
			return err
		}
	}
	return nil
}
