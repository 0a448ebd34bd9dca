package lexer

import (
	"strconv"

	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/token"
)

type Lexer struct {
	rs     *RuneSupplier
	source string
	Errors report.Errors
}

func New(source, input string) *Lexer {
	return &Lexer{rs: NewRuneSupplier([]rune(input)), source: source}
}

func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	if settings.SHOW_READER {
		println(tok.Type, tok.Literal, tok.Line)
	}
	return tok
}

func (l *Lexer) nextToken() token.Token {
	l.skipWhitespace()
	line, ch := l.rs.Position()
	r := l.rs.CurrentRune()
	switch {
	case r == 0:
		return l.makeToken(token.EOF, "", line, ch)
	case r == '(':
		l.rs.Next()
		return l.makeToken(token.LPAREN, "(", line, ch)
	case r == ')':
		l.rs.Next()
		return l.makeToken(token.RPAREN, ")", line, ch)
	case r == ';':
		l.rs.Next()
		comment := l.readWhile(func(r rune) bool { return r != '\n' && r != 0 })
		return l.makeToken(token.COMMENT, comment, line, ch)
	}
	literal := l.readWhile(isSymbolRune)
	if looksNumeric(literal) {
		if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
			return l.Throw("lex/int", line, ch, literal)
		}
		return l.makeToken(token.INT, literal, line, ch)
	}
	return l.makeToken(token.SYMBOL, literal, line, ch)
}

func (l *Lexer) makeToken(t token.TokenType, literal string, line, ch int) token.Token {
	return token.Token{Type: t, Literal: literal, Line: line, ChStart: ch, ChEnd: ch + len([]rune(literal)), Source: l.source}
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.rs.CurrentRune()) {
		l.rs.Next()
	}
}

func (l *Lexer) readWhile(f func(rune) bool) string {
	result := []rune{}
	for r := l.rs.CurrentRune(); r != 0 && f(r); r = l.rs.CurrentRune() {
		result = append(result, r)
		l.rs.Next()
	}
	return string(result)
}

func (l *Lexer) Throw(errorID string, line, ch int, args ...any) token.Token {
	tok := l.makeToken(token.ILLEGAL, errorID, line, ch)
	l.Errors, _ = report.Throw(errorID, l.Errors, &tok, args...)
	return tok
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isSymbolRune(r rune) bool {
	return !isWhitespace(r) && r != '(' && r != ')' && r != ';'
}

// Anything starting with a digit, or with a minus sign followed by a digit, had better be an integer.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
