package lexer

import (
	"testing"
)

// FuzzTokenize checks that arbitrary input never panics the lexer.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		`let if else true false`,
		`42 100_000_000 9223372036854775807 9223372036854775808`,
		`'a' '\n' '\'' 'é' ''`,
		`+ - * / % == != < <= > >= && || ! =`,
		`{ } [ ] ( ) , ; .`,
		`account_chars.len() len(account_chars)`,
		`// comment`,
		`/* block */ /* open`,
		``,
		"\t\n\r",
		"\xff\xfe",
		`1_ 1__2 1.5`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens, err := Tokenize(input, "fuzz.rhai")
		if err != nil {
			return
		}
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
			t.Fatalf("token stream for %q does not end with EOF", input)
		}
	})
}
