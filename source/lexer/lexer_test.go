package lexer

import (
	"testing"

	"github.com/tern-lang/tern/source/token"
)

type testItem struct {
	tokType token.TokenType
	literal string
	line    int
}

func TestTokens(t *testing.T) {
	input :=
		`(def f (fn intern int32 ((a (p int32)))
  ; comment here
  (core.p+ a -1 23)))`
	items := []testItem{
		{token.LPAREN, "(", 1},
		{token.SYMBOL, "def", 1},
		{token.SYMBOL, "f", 1},
		{token.LPAREN, "(", 1},
		{token.SYMBOL, "fn", 1},
		{token.SYMBOL, "intern", 1},
		{token.SYMBOL, "int32", 1},
		{token.LPAREN, "(", 1},
		{token.LPAREN, "(", 1},
		{token.SYMBOL, "a", 1},
		{token.LPAREN, "(", 1},
		{token.SYMBOL, "p", 1},
		{token.SYMBOL, "int32", 1},
		{token.RPAREN, ")", 1},
		{token.RPAREN, ")", 1},
		{token.RPAREN, ")", 1},
		{token.COMMENT, " comment here", 2},
		{token.LPAREN, "(", 3},
		{token.SYMBOL, "core.p+", 3},
		{token.SYMBOL, "a", 3},
		{token.INT, "-1", 3},
		{token.INT, "23", 3},
		{token.RPAREN, ")", 3},
		{token.RPAREN, ")", 3},
		{token.RPAREN, ")", 3},
		{token.EOF, "", 3},
	}
	l := New("test", input)
	for i, item := range items {
		tok := l.NextToken()
		if tok.Type != item.tokType || tok.Literal != item.literal || tok.Line != item.line {
			t.Fatalf("Test %d failed | Wanted : %v %q line %d | Got : %v %q line %d.",
				i, item.tokType, item.literal, item.line, tok.Type, tok.Literal, tok.Line)
		}
	}
}

func TestBadInteger(t *testing.T) {
	l := New("test", "(p+ x 12ab)")
	for tok := l.NextToken(); tok.Type != token.EOF; tok = l.NextToken() {
	}
	if len(l.Errors) != 1 || l.Errors[0].ErrorId != "lex/int" {
		t.Fatalf("Wanted one lex/int error, got %v.", l.Errors)
	}
}

func TestMinusIsASymbol(t *testing.T) {
	l := New("test", "- p-")
	for _, want := range []string{"-", "p-"} {
		tok := l.NextToken()
		if tok.Type != token.SYMBOL || tok.Literal != want {
			t.Fatalf("Wanted symbol %q, got %v %q.", want, tok.Type, tok.Literal)
		}
	}
}
