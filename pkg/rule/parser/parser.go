package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
	"cellgate-hq/pricelock/pkg/rule/lexer"
)

// Limits bounds the resources the parser may spend on a single rule.
type Limits struct {
	// MaxSourceBytes is the largest accepted rule text, checked before tokenizing.
	MaxSourceBytes int

	// MaxDepth is the deepest accepted expression nesting.
	MaxDepth int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSourceBytes: 16384,
		MaxDepth:       64,
	}
}

type parser struct {
	tokens []lexer.Token
	pos    int
	depth  int
	limits Limits
}

// Parse tokenizes source and parses it into a program.
// The name is recorded in every node location and is typically the rule file name.
// All failures are *errors.Error values of type syntax.
func Parse(source, name string, limits Limits) (*ast.Program, error) {
	if limits.MaxSourceBytes > 0 && len(source) > limits.MaxSourceBytes {
		return nil, rerrors.Newf(rerrors.ErrorTypeSyntax, rerrors.CodeLimit, ast.Location{Source: name},
			"rule text is %d bytes, limit is %d", len(source), limits.MaxSourceBytes)
	}
	if !utf8.ValidString(source) {
		return nil, rerrors.New(rerrors.ErrorTypeSyntax, rerrors.CodeLex, "rule text is not valid UTF-8", ast.Location{Source: name})
	}

	tokens, err := lexer.Tokenize(source, name)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, limits: limits}
	return p.parseProgram()
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) match(typ lexer.TokenType) bool {
	if p.peek() == typ {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, p.errorAt(tok, fmt.Sprintf("expected %s, found %s", typ, describe(tok)))
	}
	return p.advance(), nil
}

func (p *parser) errorAt(tok lexer.Token, msg string) error {
	return rerrors.New(rerrors.ErrorTypeSyntax, rerrors.CodeParse, msg, tok.Loc)
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokEOF:
		return "end of rule"
	case lexer.TokIdent, lexer.TokIntLit:
		return fmt.Sprintf("'%s'", tok.Value)
	case lexer.TokCharLit:
		return fmt.Sprintf("%q", []rune(tok.Value)[0])
	default:
		return tok.Type.String()
	}
}

func (p *parser) enter(tok lexer.Token) error {
	p.depth++
	if p.limits.MaxDepth > 0 && p.depth > p.limits.MaxDepth {
		return rerrors.Newf(rerrors.ErrorTypeSyntax, rerrors.CodeLimit, tok.Loc,
			"expression nesting exceeds the limit of %d", p.limits.MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseProgram() (*ast.Program, error) {
	loc := p.current().Loc
	stmts, err := p.parseStmts(lexer.TokEOF)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, p.errorAt(p.current(), "rule is empty")
	}
	return &ast.Program{Stmts: stmts, Location: loc}, nil
}

// parseStmts parses statements until the closing token, which is not consumed.
// Only the final statement may omit its ';'. Block-like expressions (if, { })
// may also omit it anywhere, as their extent is unambiguous.
func (p *parser) parseStmts(closing lexer.TokenType) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for p.peek() != closing {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		if p.peek() == lexer.TokEOF {
			return nil, p.errorAt(p.current(), fmt.Sprintf("expected %s, found end of rule", closing))
		}

		if p.peek() == lexer.TokLet {
			stmt, err := p.parseLet(closing)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
			continue
		}

		stmt, err := p.parseExprStmt(closing)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *parser) parseLet(closing lexer.TokenType) (*ast.LetStmt, error) {
	start := p.advance() // consume 'let'

	nameTok := p.current()
	if nameTok.Type != lexer.TokIdent {
		return nil, p.errorAt(nameTok, fmt.Sprintf("expected binding name after 'let', found %s", describe(nameTok)))
	}
	p.advance()

	if _, err := p.expect(lexer.TokAssign); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.match(lexer.TokSemicolon) && p.peek() != closing {
		return nil, p.errorAt(p.current(), fmt.Sprintf("expected ';' after let binding, found %s", describe(p.current())))
	}

	return &ast.LetStmt{Location: start.Loc, Name: nameTok.Value, Value: value}, nil
}

func (p *parser) parseExprStmt(closing lexer.TokenType) (*ast.ExprStmt, error) {
	start := p.current()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	stmt := &ast.ExprStmt{Location: start.Loc, Expr: expr}
	switch {
	case p.match(lexer.TokSemicolon):
		stmt.Terminated = true
	case p.peek() == closing:
	case isBlockLike(expr):
	default:
		return nil, p.errorAt(p.current(), fmt.Sprintf("expected ';' or %s, found %s", closing, describe(p.current())))
	}
	return stmt, nil
}

func isBlockLike(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IfExpr, *ast.BlockExpr:
		return true
	}
	return false
}

func (p *parser) parseExpr() (ast.Expr, error) {
	if err := p.enter(p.current()); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.parseOr()
}

// binaryLevel parses a left-associative chain of operators at one precedence level.
func (p *parser) binaryLevel(next func() (ast.Expr, error), ops map[lexer.TokenType]ast.BinaryOp) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left, nil
		}
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Location: opTok.Loc, Op: op, Left: left, Right: right}
	}
}

var (
	orOps             = map[lexer.TokenType]ast.BinaryOp{lexer.TokOrOr: ast.OpOr}
	andOps            = map[lexer.TokenType]ast.BinaryOp{lexer.TokAndAnd: ast.OpAnd}
	equalityOps       = map[lexer.TokenType]ast.BinaryOp{lexer.TokEqEq: ast.OpEq, lexer.TokBangEq: ast.OpNeq}
	comparisonOps     = map[lexer.TokenType]ast.BinaryOp{lexer.TokLt: ast.OpLt, lexer.TokLtEq: ast.OpLte, lexer.TokGt: ast.OpGt, lexer.TokGtEq: ast.OpGte}
	additiveOps       = map[lexer.TokenType]ast.BinaryOp{lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub}
	multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{lexer.TokStar: ast.OpMul, lexer.TokSlash: ast.OpDiv, lexer.TokPercent: ast.OpMod}
)

func (p *parser) parseOr() (ast.Expr, error) {
	return p.binaryLevel(p.parseAnd, orOps)
}

func (p *parser) parseAnd() (ast.Expr, error) {
	return p.binaryLevel(p.parseEquality, andOps)
}

func (p *parser) parseEquality() (ast.Expr, error) {
	return p.binaryLevel(p.parseComparison, equalityOps)
}

func (p *parser) parseComparison() (ast.Expr, error) {
	return p.binaryLevel(p.parseAdditive, comparisonOps)
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, additiveOps)
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	return p.binaryLevel(p.parseUnary, multiplicativeOps)
}

func (p *parser) parseUnary() (ast.Expr, error) {
	var op ast.UnaryOp
	switch p.peek() {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokBang:
		op = ast.OpNot
	default:
		return p.parsePostfix()
	}

	opTok := p.advance()
	if err := p.enter(opTok); err != nil {
		return nil, err
	}
	defer p.leave()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Location: opTok.Loc, Op: op, Operand: operand}, nil
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek() {
		case lexer.TokLBracket:
			open := p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokRBracket); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Location: open.Loc, Target: expr, Index: index}

		case lexer.TokDot:
			p.advance()
			nameTok := p.current()
			if nameTok.Type != lexer.TokIdent {
				return nil, p.errorAt(nameTok, fmt.Sprintf("expected method name after '.', found %s", describe(nameTok)))
			}
			p.advance()
			if p.peek() != lexer.TokLParen {
				return nil, p.errorAt(p.current(), fmt.Sprintf("property access is not supported; call the method as '%s()'", nameTok.Value))
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.MethodCallExpr{Location: nameTok.Loc, Receiver: expr, Method: nameTok.Value, Args: args}

		default:
			return expr, nil
		}
	}
}

// parseArgs parses a parenthesized, comma-separated argument list.
func (p *parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.TokLParen); err != nil {
		return nil, err
	}
	return p.parseList(lexer.TokRParen)
}

// parseList parses comma-separated expressions up to and including closing.
// A trailing comma is accepted.
func (p *parser) parseList(closing lexer.TokenType) ([]ast.Expr, error) {
	var items []ast.Expr
	for p.peek() != closing {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, rerrors.Newf(rerrors.ErrorTypeSyntax, rerrors.CodeLex, tok.Loc, "invalid integer literal %s", tok.Value)
		}
		return &ast.IntLiteral{Location: tok.Loc, Value: n}, nil

	case lexer.TokCharLit:
		p.advance()
		r, _ := utf8.DecodeRuneInString(tok.Value)
		return &ast.CharLiteral{Location: tok.Loc, Value: r}, nil

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Location: tok.Loc, Value: tok.Type == lexer.TokTrue}, nil

	case lexer.TokIdent:
		p.advance()
		if p.peek() == lexer.TokLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Location: tok.Loc, Name: tok.Value, Args: args}, nil
		}
		return &ast.Ident{Location: tok.Loc, Name: tok.Value}, nil

	case lexer.TokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.TokLBracket:
		p.advance()
		elems, err := p.parseList(lexer.TokRBracket)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Location: tok.Loc, Elements: elems}, nil

	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokIf:
		return p.parseIf()

	case lexer.TokElse:
		return nil, p.errorAt(tok, "'else' without a matching 'if'")

	case lexer.TokLet:
		return nil, p.errorAt(tok, "'let' is a statement and cannot be used as a value")
	}

	return nil, p.errorAt(tok, fmt.Sprintf("expected an expression, found %s", describe(tok)))
}

func (p *parser) parseBlock() (*ast.BlockExpr, error) {
	open, err := p.expect(lexer.TokLBrace)
	if err != nil {
		return nil, err
	}
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()

	stmts, err := p.parseStmts(lexer.TokRBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRBrace); err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Location: open.Loc, Stmts: stmts}, nil
}

func (p *parser) parseIf() (*ast.IfExpr, error) {
	start := p.advance() // consume 'if'
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek() != lexer.TokLBrace {
		return nil, p.errorAt(p.current(), fmt.Sprintf("expected '{' after if condition, found %s", describe(p.current())))
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if p.peek() != lexer.TokElse {
		return nil, p.errorAt(p.current(), "if expression requires an else branch")
	}
	p.advance()

	var elseExpr ast.Expr
	switch p.peek() {
	case lexer.TokIf:
		elseExpr, err = p.parseIf()
	case lexer.TokLBrace:
		elseExpr, err = p.parseBlock()
	default:
		return nil, p.errorAt(p.current(), fmt.Sprintf("expected '{' or 'if' after 'else', found %s", describe(p.current())))
	}
	if err != nil {
		return nil, err
	}

	return &ast.IfExpr{Location: start.Loc, Cond: cond, Then: then, Else: elseExpr}, nil
}
