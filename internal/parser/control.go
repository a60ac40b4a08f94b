package parser

import (
	"strconv"

	"erre/internal/ast"
	"erre/internal/diag"
	"erre/internal/token"
)

// parseCond parses "( expr )" after if/while.
func (p *Parser) parseCond() (ast.Expr, bool) {
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	p.push(nestParen)
	cond, ok := p.parseExpr(0)
	if ok {
		_, ok = p.expect(token.RParen)
	}
	p.pop()
	return cond, ok
}

// parseIf parses if (cond) expr [else expr]. At top level the else must be
// on the same line as the end of the consequent; inside braces or
// parentheses it may follow a newline.
func (p *Parser) parseIf() (ast.Expr, bool) {
	kw := p.advance()
	cond, ok := p.parseCond()
	if !ok {
		return nil, false
	}
	then, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	call := ast.NewCall(kw.Span.Cover(then.Span()), "if", cond, then)

	if !p.elseFollows() {
		return call, true
	}
	p.skipNewlines()
	p.advance() // else
	alt, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	call.Args = append(call.Args, ast.Arg{Value: alt})
	call.Sp = call.Sp.Cover(alt.Span())
	return call, true
}

func (p *Parser) elseFollows() bool {
	if p.nest[len(p.nest)-1] == nestTop {
		return p.lx.Peek(0).Kind == token.KwElse
	}
	for i := 0; ; i++ {
		switch p.lx.Peek(i).Kind {
		case token.Newline:
			continue
		case token.KwElse:
			return true
		default:
			return false
		}
	}
}

// parseFor parses for (var in seq) body.
func (p *Parser) parseFor() (ast.Expr, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	p.push(nestParen)
	varTok, ok := p.expect(token.Ident)
	if ok {
		_, ok = p.expect(token.KwIn)
	}
	var seq ast.Expr
	if ok {
		seq, ok = p.parseExpr(0)
	}
	if ok {
		_, ok = p.expect(token.RParen)
	}
	p.pop()
	if !ok {
		return nil, false
	}
	body, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	return ast.NewCall(kw.Span.Cover(body.Span()), "for", &ast.Sym{Name: varTok.Value, Sp: varTok.Span}, seq, body), true
}

func (p *Parser) parseWhile() (ast.Expr, bool) {
	kw := p.advance()
	cond, ok := p.parseCond()
	if !ok {
		return nil, false
	}
	body, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	return ast.NewCall(kw.Span.Cover(body.Span()), "while", cond, body), true
}

func (p *Parser) parseRepeat() (ast.Expr, bool) {
	kw := p.advance()
	body, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	return ast.NewCall(kw.Span.Cover(body.Span()), "repeat", body), true
}

// parseFunction parses function(formals) body and the \(formals) body
// shorthand.
func (p *Parser) parseFunction() (ast.Expr, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	body, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	sp := kw.Span.Cover(body.Span())
	return &ast.Function{Params: params, Body: body, Src: p.text(sp), Sp: sp}, true
}

func (p *Parser) parseParams() ([]ast.Param, bool) {
	p.push(nestParen)
	defer p.pop()

	var params []ast.Param
	seen := make(map[string]bool)
	if p.at(token.RParen) {
		p.advance()
		return nil, true
	}
	for {
		tok, ok := p.expect(token.Ident)
		if !ok {
			return nil, false
		}
		if seen[tok.Value] {
			line := p.file.Position(tok.Span.Start).Line
			p.fail(diag.SynBadFormal, tok.Span, "repeated formal argument '"+tok.Value+"' on line "+strconv.FormatUint(uint64(line), 10))
			return nil, false
		}
		seen[tok.Value] = true
		param := ast.Param{Name: tok.Value}
		if p.at(token.EqAssign) {
			p.advance()
			def, ok := p.parseExpr(0)
			if !ok {
				return nil, false
			}
			param.Default = def
		}
		params = append(params, param)

		switch next := p.peek(); next.Kind {
		case token.Comma:
			p.advance()
		case token.RParen:
			p.advance()
			return params, true
		default:
			p.unexpected(next)
			return nil, false
		}
	}
}
