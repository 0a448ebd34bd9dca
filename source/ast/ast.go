package ast

import (
	"bytes"
	"strings"

	"github.com/tern-lang/tern/source/token"
)

// A syntax node is either an atom, or a list of nodes. The compiler looks at the head of a
// list to decide which form processor gets to compile it.
type Node struct {
	Token  *token.Token // The atom itself, or the opening parenthesis of a list.
	List   []*Node
	IsList bool
}

func Atom(tok *token.Token) *Node {
	return &Node{Token: tok}
}

func List(tok *token.Token, items ...*Node) *Node {
	return &Node{Token: tok, List: items, IsList: true}
}

func (n *Node) IsAtom() bool {
	return !n.IsList
}

func (n *Node) GetToken() *token.Token {
	return n.Token
}

// The literal of an atom, or "" for a list.
func (n *Node) Literal() string {
	if n.IsList {
		return ""
	}
	return n.Token.Literal
}

func (n *Node) IsSymbol(s string) bool {
	return !n.IsList && n.Token.Type == token.SYMBOL && n.Token.Literal == s
}

func (n *Node) IsAnySymbol() bool {
	return !n.IsList && n.Token.Type == token.SYMBOL
}

// The head symbol of a list, or "" if the node isn't a list with a symbol at its head.
func (n *Node) Head() string {
	if !n.IsList || len(n.List) == 0 || n.List[0].IsList || n.List[0].Token.Type != token.SYMBOL {
		return ""
	}
	return n.List[0].Token.Literal
}

// Everything but the head.
func (n *Node) Args() []*Node {
	if !n.IsList || len(n.List) == 0 {
		return nil
	}
	return n.List[1:]
}

// Splits a qualified symbol such as core.p+ into its namespace and its name. Symbols
// without a namespace come back with an empty one.
func SplitQualified(s string) (string, string) {
	pos := strings.Index(s, ".")
	if pos <= 0 || pos == len(s)-1 {
		return "", s
	}
	return s[:pos], s[pos+1:]
}

func (n *Node) String() string {
	if !n.IsList {
		return n.Token.Literal
	}
	var out bytes.Buffer
	out.WriteString("(")
	for i, item := range n.List {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(item.String())
	}
	out.WriteString(")")
	return out.String()
}
