// Package lexer implements the pricing rule tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokLet TokenType = iota
	TokIf
	TokElse
	TokTrue
	TokFalse

	// Literals
	TokIntLit
	TokCharLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokLParen    // (
	TokRParen    // )
	TokComma     // ,
	TokSemicolon // ;
	TokDot       // .
	TokAssign    // =

	// Comparison operators
	TokEqEq   // ==
	TokBangEq // !=
	TokLt     // <
	TokLtEq   // <=
	TokGt     // >
	TokGtEq   // >=

	// Logical operators
	TokAndAnd // &&
	TokOrOr   // ||
	TokBang   // !

	// Arithmetic operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %

	// Special
	TokEOF
)

var tokenNames = map[TokenType]string{
	TokLet: "'let'", TokIf: "'if'", TokElse: "'else'", TokTrue: "'true'", TokFalse: "'false'",
	TokIntLit: "integer", TokCharLit: "character", TokIdent: "identifier",
	TokLBrace: "'{'", TokRBrace: "'}'", TokLBracket: "'['", TokRBracket: "']'",
	TokLParen: "'('", TokRParen: "')'", TokComma: "','", TokSemicolon: "';'",
	TokDot: "'.'", TokAssign: "'='",
	TokEqEq: "'=='", TokBangEq: "'!='", TokLt: "'<'", TokLtEq: "'<='", TokGt: "'>'", TokGtEq: "'>='",
	TokAndAnd: "'&&'", TokOrOr: "'||'", TokBang: "'!'",
	TokPlus: "'+'", TokMinus: "'-'", TokStar: "'*'", TokSlash: "'/'", TokPercent: "'%'",
	TokEOF: "end of rule",
}

// String returns a human-readable token type name for diagnostics.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Loc   ast.Location
}

var keywords = map[string]TokenType{
	"let":   TokLet,
	"if":    TokIf,
	"else":  TokElse,
	"true":  TokTrue,
	"false": TokFalse,
}

type scanner struct {
	source string
	name   string
	pos    int
	line   int
	col    int
}

func newScanner(source, name string) *scanner {
	return &scanner{
		source: source,
		name:   name,
		pos:    0,
		line:   1,
		col:    1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

// advance consumes one character (a full UTF-8 sequence) and returns it.
func (s *scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) loc(line, col, offset int) ast.Location {
	return ast.Location{Source: s.name, Line: line, Column: col, Offset: offset}
}

func (s *scanner) lexError(line, col, offset int, msg string) error {
	return rerrors.New(rerrors.ErrorTypeSyntax, rerrors.CodeLex, msg, s.loc(line, col, offset))
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			line, col, offset := s.line, s.col, s.pos
			s.advance()
			s.advance()
			closed := false
			for !s.atEnd() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				return s.lexError(line, col, offset, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanNumber() (Token, error) {
	line, col, offset := s.line, s.col, s.pos

	for !s.atEnd() && (isDigit(s.peek()) || s.peek() == '_') {
		s.advance()
	}
	if !s.atEnd() && isAlpha(s.peek()) {
		return Token{}, s.lexError(line, col, offset, fmt.Sprintf("invalid integer literal %q", s.source[offset:s.pos+1]))
	}
	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		return Token{}, s.lexError(line, col, offset, "floating point literals are not supported")
	}

	text := s.source[offset:s.pos]
	if strings.HasSuffix(text, "_") || strings.Contains(text, "__") {
		return Token{}, s.lexError(line, col, offset, fmt.Sprintf("misplaced '_' in integer literal %q", text))
	}
	digits := strings.ReplaceAll(text, "_", "")
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		return Token{}, s.lexError(line, col, offset, fmt.Sprintf("integer literal %s does not fit in 64 bits", text))
	}

	return Token{Type: TokIntLit, Value: digits, Loc: s.loc(line, col, offset)}, nil
}

func (s *scanner) scanChar() (Token, error) {
	line, col, offset := s.line, s.col, s.pos
	s.advance() // consume opening '

	if s.atEnd() || s.peek() == '\n' {
		return Token{}, s.lexError(line, col, offset, "unterminated character literal")
	}

	var value rune
	if s.peek() == '\\' {
		s.advance()
		if s.atEnd() {
			return Token{}, s.lexError(line, col, offset, "unterminated character escape")
		}
		switch esc := s.advance(); esc {
		case '\\':
			value = '\\'
		case '\'':
			value = '\''
		case '"':
			value = '"'
		case 'n':
			value = '\n'
		case 'r':
			value = '\r'
		case 't':
			value = '\t'
		case '0':
			value = 0
		default:
			return Token{}, s.lexError(line, col, offset, fmt.Sprintf("invalid escape character: \\%c", esc))
		}
	} else {
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(line, col, offset, "invalid UTF-8 in character literal")
		}
		value = s.advance()
	}

	if s.peek() != '\'' {
		return Token{}, s.lexError(line, col, offset, "character literal must contain exactly one character")
	}
	s.advance() // consume closing '

	return Token{Type: TokCharLit, Value: string(value), Loc: s.loc(line, col, offset)}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	line, col, offset := s.line, s.col, s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[offset:s.pos]
	if tokType, ok := keywords[text]; ok {
		return Token{Type: tokType, Value: text, Loc: s.loc(line, col, offset)}
	}
	return Token{Type: TokIdent, Value: text, Loc: s.loc(line, col, offset)}
}

func (s *scanner) nextToken() (Token, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	line, col, offset := s.line, s.col, s.pos
	if s.atEnd() {
		return Token{Type: TokEOF, Loc: s.loc(line, col, offset)}, nil
	}

	single := func(typ TokenType) (Token, error) {
		s.advance()
		return Token{Type: typ, Value: s.source[offset:s.pos], Loc: s.loc(line, col, offset)}, nil
	}
	double := func(typ TokenType) (Token, error) {
		s.advance()
		s.advance()
		return Token{Type: typ, Value: s.source[offset:s.pos], Loc: s.loc(line, col, offset)}, nil
	}

	ch := s.peek()
	switch ch {
	case '{':
		return single(TokLBrace)
	case '}':
		return single(TokRBrace)
	case '[':
		return single(TokLBracket)
	case ']':
		return single(TokRBracket)
	case '(':
		return single(TokLParen)
	case ')':
		return single(TokRParen)
	case ',':
		return single(TokComma)
	case ';':
		return single(TokSemicolon)
	case '.':
		return single(TokDot)
	case '+':
		return single(TokPlus)
	case '-':
		return single(TokMinus)
	case '*':
		return single(TokStar)
	case '/':
		return single(TokSlash)
	case '%':
		return single(TokPercent)
	case '=':
		if s.peekAt(1) == '=' {
			return double(TokEqEq)
		}
		return single(TokAssign)
	case '!':
		if s.peekAt(1) == '=' {
			return double(TokBangEq)
		}
		return single(TokBang)
	case '<':
		if s.peekAt(1) == '=' {
			return double(TokLtEq)
		}
		return single(TokLt)
	case '>':
		if s.peekAt(1) == '=' {
			return double(TokGtEq)
		}
		return single(TokGt)
	case '&':
		if s.peekAt(1) == '&' {
			return double(TokAndAnd)
		}
	case '|':
		if s.peekAt(1) == '|' {
			return double(TokOrOr)
		}
	case '\'':
		return s.scanChar()
	}

	if isDigit(ch) {
		return s.scanNumber()
	}
	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	if r == utf8.RuneError && size == 1 {
		return Token{}, s.lexError(line, col, offset, "invalid UTF-8 in rule text")
	}
	return Token{}, s.lexError(line, col, offset, fmt.Sprintf("unexpected character %q", r))
}

// Tokenize breaks rule text into a slice of tokens terminated by TokEOF.
// The name is used as the Source of every token location.
func Tokenize(source, name string) ([]Token, error) {
	s := newScanner(source, name)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
