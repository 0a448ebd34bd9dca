package parser

import (
	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/lexer"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/token"
)

// The reader. It knows nothing about what any form means; it just builds the trees.
type Parser struct {
	l      *lexer.Lexer
	curTok token.Token
	Errors report.Errors
}

func New(source, input string) *Parser {
	p := &Parser{l: lexer.New(source, input)}
	p.next()
	return p
}

func (p *Parser) next() {
	p.curTok = p.l.NextToken()
	for p.curTok.Type == token.COMMENT {
		p.curTok = p.l.NextToken()
	}
}

// Reads every top-level form. Malformed forms are dropped, with errors, and we carry on with the next one.
func (p *Parser) ParseAll() []*ast.Node {
	result := []*ast.Node{}
	for p.curTok.Type != token.EOF {
		node := p.parseNode()
		if node != nil {
			result = append(result, node)
		}
	}
	p.Errors = append(p.l.Errors, p.Errors...)
	return result
}

func (p *Parser) parseNode() *ast.Node {
	tok := p.curTok
	switch tok.Type {
	case token.LPAREN:
		p.next()
		items := []*ast.Node{}
		for p.curTok.Type != token.RPAREN {
			if p.curTok.Type == token.EOF {
				p.Throw("parse/eof", &tok)
				return nil
			}
			item := p.parseNode()
			if item == nil && p.curTok.Type == token.EOF {
				return nil
			}
			if item != nil {
				items = append(items, item)
			}
		}
		p.next()
		return ast.List(&tok, items...)
	case token.RPAREN:
		p.Throw("parse/rparen", &tok)
		p.next()
		return nil
	case token.ILLEGAL: // The lexer has already said what's wrong.
		p.next()
		return nil
	}
	p.next()
	return ast.Atom(&tok)
}

func (p *Parser) Throw(errorID string, tok *token.Token, args ...any) {
	p.Errors, _ = report.Throw(errorID, p.Errors, tok, args...)
}

func (p *Parser) ErrorsExist() bool {
	return len(p.Errors) > 0
}

func (p *Parser) ReturnErrors() string {
	return report.GetList(p.Errors)
}

// Reads a single form, e.g. a type signature that has come back out of the metadata store.
func ParseOne(source, input string) (*ast.Node, report.Errors) {
	p := New(source, input)
	nodes := p.ParseAll()
	if p.ErrorsExist() {
		return nil, p.Errors
	}
	if len(nodes) != 1 {
		p.Throw("comp/def/form", &token.Token{Type: token.EOF, Source: source})
		return nil, p.Errors
	}
	return nodes[0], nil
}
