package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

const tierRule = `let price_tiers = [50000, 20000, 10000, 5000, 2000, 1000];
let len = account_chars.len();
if len > 6 { 100 } else { price_tiers[len - 1] }`

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := Parse(source, "test.rhai", DefaultLimits())
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return program
}

func TestParse_TierRule(t *testing.T) {
	program := mustParse(t, tierRule)

	if len(program.Stmts) != 3 {
		t.Fatalf("len(Stmts) = %d, want 3", len(program.Stmts))
	}

	tiers, ok := program.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("Stmts[0] is %T, want *ast.LetStmt", program.Stmts[0])
	}
	if tiers.Name != "price_tiers" {
		t.Errorf("Name = %q, want price_tiers", tiers.Name)
	}
	arr, ok := tiers.Value.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 6 {
		t.Fatalf("price_tiers value = %#v, want 6-element array", tiers.Value)
	}

	length := program.Stmts[1].(*ast.LetStmt)
	call, ok := length.Value.(*ast.MethodCallExpr)
	if !ok {
		t.Fatalf("len value is %T, want *ast.MethodCallExpr", length.Value)
	}
	if call.Method != "len" || len(call.Args) != 0 {
		t.Errorf("method call = %s/%d args", call.Method, len(call.Args))
	}
	if recv, ok := call.Receiver.(*ast.Ident); !ok || recv.Name != "account_chars" {
		t.Errorf("receiver = %#v, want account_chars", call.Receiver)
	}

	last, ok := program.Stmts[2].(*ast.ExprStmt)
	if !ok || last.Terminated {
		t.Fatalf("final statement must be an unterminated expression, got %#v", program.Stmts[2])
	}
	ifExpr, ok := last.Expr.(*ast.IfExpr)
	if !ok {
		t.Fatalf("final expression is %T, want *ast.IfExpr", last.Expr)
	}
	cond := ifExpr.Cond.(*ast.BinaryExpr)
	if cond.Op != ast.OpGt {
		t.Errorf("condition op = %s, want >", cond.Op)
	}
	elseBlock, ok := ifExpr.Else.(*ast.BlockExpr)
	if !ok {
		t.Fatalf("else is %T, want *ast.BlockExpr", ifExpr.Else)
	}
	index := elseBlock.Stmts[0].(*ast.ExprStmt).Expr.(*ast.IndexExpr)
	if sub, ok := index.Index.(*ast.BinaryExpr); !ok || sub.Op != ast.OpSub {
		t.Errorf("index expression = %#v, want len - 1", index.Index)
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		source string
		wantOp ast.BinaryOp
	}{
		{"1 + 2 * 3", ast.OpAdd},
		{"1 * 2 + 3", ast.OpAdd},
		{"1 < 2 && 3 > 2", ast.OpAnd},
		{"true || false && false", ast.OpOr},
		{"1 + 2 == 3", ast.OpEq},
		{"(1 + 2) * 3", ast.OpMul},
		{"10 - 4 - 3", ast.OpSub},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			program := mustParse(t, tt.source)
			root, ok := program.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
			if !ok {
				t.Fatalf("root is not a binary expression")
			}
			if root.Op != tt.wantOp {
				t.Errorf("root op = %s, want %s", root.Op, tt.wantOp)
			}
		})
	}

	// Subtraction is left-associative: (10 - 4) - 3.
	root := mustParse(t, "10 - 4 - 3").Stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
	if lit, ok := root.Right.(*ast.IntLiteral); !ok || lit.Value != 3 {
		t.Errorf("right operand = %#v, want 3", root.Right)
	}
}

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"len function", "len(account_chars)"},
		{"char index", "account_chars[0] == 'a'"},
		{"unary chain", "!!true"},
		{"negation", "-(1 + 2)"},
		{"else if chain", "if x < 3 { 1 } else if x < 5 { 2 } else { 3 }"},
		{"nested block", "{ let a = 1; { a + 1 } }"},
		{"trailing comma", "[1, 2, 3,][0]"},
		{"empty array", "[].len()"},
		{"if statement without semicolon", "let a = 1; if a > 0 { 1 } else { 2 } a"},
		{"stray semicolons", ";; 1 ;"},
		{"comments", "/* tiers */ 1 // done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustParse(t, tt.source)
		})
	}
}

func TestParse_TerminatedFinalExpression(t *testing.T) {
	program := mustParse(t, "1 + 2;")
	stmt := program.Stmts[0].(*ast.ExprStmt)
	if !stmt.Terminated {
		t.Error("expression followed by ';' must be marked terminated")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantCode string
		wantMsg  string
	}{
		{"empty", "", rerrors.CodeParse, "rule is empty"},
		{"only comments", "// nothing", rerrors.CodeParse, "rule is empty"},
		{"unbalanced brace", "if true { 1 } else { 2", rerrors.CodeParse, "expected ';' or '}', found end of rule"},
		{"extra brace", "1 }", rerrors.CodeParse, "expected ';' or end of rule"},
		{"missing else", "if true { 1 }", rerrors.CodeParse, "requires an else branch"},
		{"missing then block", "if true 1 else 2", rerrors.CodeParse, "expected '{' after if condition"},
		{"dangling operator", "1 +", rerrors.CodeParse, "expected an expression"},
		{"let without name", "let = 1;", rerrors.CodeParse, "expected binding name"},
		{"let as value", "let a = let b = 1;", rerrors.CodeParse, "'let' is a statement"},
		{"missing separator", "let a = 1 a", rerrors.CodeParse, "expected ';' after let binding"},
		{"two expressions", "1 2", rerrors.CodeParse, "expected ';'"},
		{"property access", "account_chars.len", rerrors.CodeParse, "property access is not supported"},
		{"unclosed call", "len(account_chars", rerrors.CodeParse, "expected ')'"},
		{"else without if", "else { 1 }", rerrors.CodeParse, "'else' without a matching 'if'"},
		{"lex error", "1 # 2", rerrors.CodeLex, "unexpected character"},
		{"invalid utf8", "'\xff'", rerrors.CodeLex, "not valid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source, "test.rhai", DefaultLimits())
			if err == nil {
				t.Fatalf("expected error for %q", tt.source)
			}
			var rerr *rerrors.Error
			if !stderrors.As(err, &rerr) {
				t.Fatalf("error is %T, want *errors.Error", err)
			}
			if rerr.Type != rerrors.ErrorTypeSyntax {
				t.Errorf("Type = %s, want syntax", rerr.Type)
			}
			if rerr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", rerr.Code, tt.wantCode)
			}
			if !strings.Contains(rerr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", rerr.Message, tt.wantMsg)
			}
		})
	}
}

func TestParse_ErrorLocation(t *testing.T) {
	_, err := Parse("let a = 1;\nlet b = ;", "tiers.rhai", DefaultLimits())
	var rerr *rerrors.Error
	if !stderrors.As(err, &rerr) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if rerr.Location.String() != "tiers.rhai:2:9" {
		t.Errorf("Location = %s, want tiers.rhai:2:9", rerr.Location)
	}
}

func TestParse_Limits(t *testing.T) {
	t.Run("source size", func(t *testing.T) {
		limits := Limits{MaxSourceBytes: 8, MaxDepth: 64}
		_, err := Parse("1 + 2 + 3 + 4", "test.rhai", limits)
		if !stderrors.Is(err, &rerrors.Error{Type: rerrors.ErrorTypeSyntax, Code: rerrors.CodeLimit}) {
			t.Fatalf("expected %s error, got %v", rerrors.CodeLimit, err)
		}
	})

	t.Run("nesting depth", func(t *testing.T) {
		limits := Limits{MaxSourceBytes: 16384, MaxDepth: 8}
		source := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
		_, err := Parse(source, "test.rhai", limits)
		if !stderrors.Is(err, &rerrors.Error{Type: rerrors.ErrorTypeSyntax, Code: rerrors.CodeLimit}) {
			t.Fatalf("expected %s error, got %v", rerrors.CodeLimit, err)
		}
	})

	t.Run("unary depth", func(t *testing.T) {
		limits := Limits{MaxSourceBytes: 16384, MaxDepth: 8}
		_, err := Parse(strings.Repeat("-", 20)+"1", "test.rhai", limits)
		if err == nil {
			t.Fatal("expected nesting error for deep unary chain")
		}
	})

	t.Run("deep input within default limits", func(t *testing.T) {
		source := strings.Repeat("[", 100000)
		_, err := Parse(source, "test.rhai", DefaultLimits())
		if err == nil {
			t.Fatal("expected error for oversized input")
		}
	})

	t.Run("nesting at the limit", func(t *testing.T) {
		limits := Limits{MaxSourceBytes: 16384, MaxDepth: 8}
		source := strings.Repeat("(", 7) + "1" + strings.Repeat(")", 7)
		if _, err := Parse(source, "test.rhai", limits); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func BenchmarkParse_TierRule(b *testing.B) {
	limits := DefaultLimits()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Parse(tierRule, "bench.rhai", limits); err != nil {
			b.Fatal(err)
		}
	}
}
