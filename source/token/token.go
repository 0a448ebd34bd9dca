package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	COMMENT = "COMMENT" // ; foo bar zort troz

	// Atoms
	SYMBOL = "SYMBOL" // p+, foo, core.p+, ...
	INT    = "int"    // 1343456, -1

	LPAREN = "("
	RPAREN = ")"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	ChStart int
	ChEnd   int
	Source  string
}

// Tokens made by the compiler rather than read from source, e.g. for declarations
// imported from the metadata store, get a zero line number.
func Synthetic(literal, source string) *Token {
	return &Token{Type: SYMBOL, Literal: literal, Source: source}
}
