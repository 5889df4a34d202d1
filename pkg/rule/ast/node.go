package ast

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	Loc() Location
}

// Expr is a node that produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a node that appears in a statement sequence.
type Stmt interface {
	Node
	stmtNode()
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
	OpAnd BinaryOp = "&&"
	OpOr  BinaryOp = "||"
)

// IsArithmetic returns true for + - * / %.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return true
	}
	return false
}

// IsComparison returns true for == != < <= > >=.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// IsLogical returns true for && and ||.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// Program is the root node of a compiled rule.
// Its value is the value of the final expression statement.
type Program struct {
	Stmts    []Stmt
	Location Location
}

func (n *Program) Kind() string  { return "Program" }
func (n *Program) Loc() Location { return n.Location }

// --- Statements ---

// LetStmt binds Name to the value of Value for the rest of the enclosing block.
type LetStmt struct {
	Location Location
	Name     string
	Value    Expr
}

func (n *LetStmt) Kind() string  { return "LetStmt" }
func (n *LetStmt) Loc() Location { return n.Location }
func (n *LetStmt) stmtNode()     {}

// ExprStmt is an expression in statement position.
// Terminated is true when the expression was followed by ';'. A final
// expression yields its value either way.
type ExprStmt struct {
	Location   Location
	Expr       Expr
	Terminated bool
}

func (n *ExprStmt) Kind() string  { return "ExprStmt" }
func (n *ExprStmt) Loc() Location { return n.Location }
func (n *ExprStmt) stmtNode()     {}

// --- Literals ---

type IntLiteral struct {
	Location Location
	Value    int64
}

func (n *IntLiteral) Kind() string  { return "IntLiteral" }
func (n *IntLiteral) Loc() Location { return n.Location }
func (n *IntLiteral) exprNode()     {}

type CharLiteral struct {
	Location Location
	Value    rune
}

func (n *CharLiteral) Kind() string  { return "CharLiteral" }
func (n *CharLiteral) Loc() Location { return n.Location }
func (n *CharLiteral) exprNode()     {}

type BoolLiteral struct {
	Location Location
	Value    bool
}

func (n *BoolLiteral) Kind() string  { return "BoolLiteral" }
func (n *BoolLiteral) Loc() Location { return n.Location }
func (n *BoolLiteral) exprNode()     {}

type ArrayLiteral struct {
	Location Location
	Elements []Expr
}

func (n *ArrayLiteral) Kind() string  { return "ArrayLiteral" }
func (n *ArrayLiteral) Loc() Location { return n.Location }
func (n *ArrayLiteral) exprNode()     {}

// --- References and operators ---

// Ident is a reference to a let binding or to the identifier binding.
type Ident struct {
	Location Location
	Name     string
}

func (n *Ident) Kind() string  { return "Ident" }
func (n *Ident) Loc() Location { return n.Location }
func (n *Ident) exprNode()     {}

type UnaryExpr struct {
	Location Location
	Op       UnaryOp
	Operand  Expr
}

func (n *UnaryExpr) Kind() string  { return "UnaryExpr" }
func (n *UnaryExpr) Loc() Location { return n.Location }
func (n *UnaryExpr) exprNode()     {}

type BinaryExpr struct {
	Location Location
	Op       BinaryOp
	Left     Expr
	Right    Expr
}

func (n *BinaryExpr) Kind() string  { return "BinaryExpr" }
func (n *BinaryExpr) Loc() Location { return n.Location }
func (n *BinaryExpr) exprNode()     {}

// IndexExpr is Target[Index].
type IndexExpr struct {
	Location Location
	Target   Expr
	Index    Expr
}

func (n *IndexExpr) Kind() string  { return "IndexExpr" }
func (n *IndexExpr) Loc() Location { return n.Location }
func (n *IndexExpr) exprNode()     {}

// CallExpr is a call to a built-in function, e.g. len(account_chars).
type CallExpr struct {
	Location Location
	Name     string
	Args     []Expr
}

func (n *CallExpr) Kind() string  { return "CallExpr" }
func (n *CallExpr) Loc() Location { return n.Location }
func (n *CallExpr) exprNode()     {}

// MethodCallExpr is Receiver.Method(Args...), e.g. account_chars.len().
type MethodCallExpr struct {
	Location Location
	Receiver Expr
	Method   string
	Args     []Expr
}

func (n *MethodCallExpr) Kind() string  { return "MethodCallExpr" }
func (n *MethodCallExpr) Loc() Location { return n.Location }
func (n *MethodCallExpr) exprNode()     {}

// --- Control flow ---

// IfExpr is `if Cond { Then } else Else`. Else is a *BlockExpr or, for
// `else if` chains, another *IfExpr. Else is never nil.
type IfExpr struct {
	Location Location
	Cond     Expr
	Then     *BlockExpr
	Else     Expr
}

func (n *IfExpr) Kind() string  { return "IfExpr" }
func (n *IfExpr) Loc() Location { return n.Location }
func (n *IfExpr) exprNode()     {}

// BlockExpr is `{ stmts }` with its own binding scope.
type BlockExpr struct {
	Location Location
	Stmts    []Stmt
}

func (n *BlockExpr) Kind() string  { return "BlockExpr" }
func (n *BlockExpr) Loc() Location { return n.Location }
func (n *BlockExpr) exprNode()     {}
