// Package parser turns R source into ast expressions.
//
// The parser stops at the first error, like the R console does, and
// distinguishes input that is merely unfinished (an open brace, a dangling
// operator, an unterminated string) so the console can ask for a
// continuation line instead of reporting an error.
package parser

import (
	"fmt"
	"strings"

	"erre/internal/ast"
	"erre/internal/diag"
	"erre/internal/lexer"
	"erre/internal/source"
	"erre/internal/token"
)

// Result is the outcome of parsing one file or console buffer.
type Result struct {
	Exprs []ast.Expr
	Bag   *diag.Bag
}

// Err returns the first error, if any.
func (r Result) Err() (diag.Diagnostic, bool) {
	if r.Bag == nil {
		return diag.Diagnostic{}, false
	}
	return r.Bag.First()
}

// Incomplete reports whether parsing failed only because input ended early.
func (r Result) Incomplete() bool {
	d, ok := r.Err()
	return ok && d.Code.Incomplete()
}

// newline handling per nesting level
type nesting uint8

const (
	nestTop   nesting = iota // newline ends an expression
	nestBrace                // newline separates statements
	nestParen                // newlines are ignored
)

type Parser struct {
	file      *source.File
	lx        *lexer.Lexer
	bag       *diag.Bag
	nest      []nesting
	stmtStart uint32
	last      token.Token
}

// Parse parses every top-level expression in f.
func Parse(f *source.File) Result {
	bag := diag.NewBag(8)
	p := &Parser{file: f, lx: lexer.New(f, bag), bag: bag, nest: []nesting{nestTop}}
	exprs := p.parseTopLevel()
	if bag.HasErrors() {
		exprs = nil
	}
	return Result{Exprs: exprs, Bag: bag}
}

// ParseText adds text to fs as a virtual file and parses it.
func ParseText(fs *source.FileSet, name, text string) Result {
	return Parse(fs.Get(fs.AddVirtual(name, []byte(text))))
}

func (p *Parser) parseTopLevel() []ast.Expr {
	var out []ast.Expr
	for {
		p.skipSeparators()
		tok := p.lx.Peek(0)
		if tok.Kind == token.EOF {
			return out
		}
		p.stmtStart = tok.Span.Start
		e, ok := p.parseExpr(0)
		if !ok {
			return out
		}
		out = append(out, e)
		switch next := p.lx.Peek(0); next.Kind {
		case token.Newline, token.Semicolon, token.EOF:
		default:
			p.unexpected(next)
			return out
		}
	}
}

func (p *Parser) skipSeparators() {
	for {
		switch p.lx.Peek(0).Kind {
		case token.Newline, token.Semicolon:
			p.advance()
		default:
			return
		}
	}
}

func (p *Parser) skipNewlines() {
	for p.lx.Peek(0).Kind == token.Newline {
		p.advance()
	}
}

// peek returns the next token, looking through newlines inside brackets.
func (p *Parser) peek() token.Token {
	if p.nest[len(p.nest)-1] == nestParen {
		p.skipNewlines()
	}
	return p.lx.Peek(0)
}

func (p *Parser) advance() token.Token {
	p.last = p.lx.Next()
	return p.last
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) push(n nesting) { p.nest = append(p.nest, n) }
func (p *Parser) pop()           { p.nest = p.nest[:len(p.nest)-1] }

// expect consumes a token of kind k or reports it as unexpected.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	tok := p.peek()
	if tok.Kind != k {
		p.unexpected(tok)
		return tok, false
	}
	return p.advance(), true
}

// unexpected reports tok the way R does:
//
//	unexpected symbol in "x y"
func (p *Parser) unexpected(tok token.Token) {
	if p.bag.HasErrors() {
		return
	}
	switch tok.Kind {
	case token.EOF:
		p.bag.Report(diag.SynUnexpectedEOF, diag.SevError, tok.Span, "unexpected end of input")
		return
	case token.Invalid:
		p.bag.Report(diag.LexUnknownChar, diag.SevError, tok.Span, fmt.Sprintf("unexpected input in %q", p.context(tok)))
		return
	}
	desc := tok.Kind.String()
	if tok.Kind == token.Special {
		desc = "SPECIAL"
	}
	ctx := p.context(tok)
	msg := fmt.Sprintf("unexpected %s in %q", desc, ctx)
	if strings.Contains(ctx, "\n") {
		msg = fmt.Sprintf("unexpected %s in:\n\"%s\"", desc, ctx)
	}
	p.bag.Report(diag.SynUnexpectedToken, diag.SevError, tok.Span, msg)
}

// context is the statement text up to and including tok.
func (p *Parser) context(tok token.Token) string {
	start := min(p.stmtStart, tok.Span.Start)
	end := min(tok.Span.End, uint32(len(p.file.Content))) //nolint:gosec // bounded by the cursor limit
	return string(p.file.Content[start:end])
}

func (p *Parser) fail(code diag.Code, sp source.Span, msg string) {
	if !p.bag.HasErrors() {
		p.bag.Report(code, diag.SevError, sp, msg)
	}
}

func (p *Parser) text(sp source.Span) string {
	return string(p.file.Content[sp.Start:sp.End])
}
