package parser

import (
	"math"
	"strconv"
	"strings"

	"erre/internal/ast"
	"erre/internal/diag"
	"erre/internal/source"
	"erre/internal/token"

	"fortio.org/safecast"
)

// parseExpr is the Pratt loop. minPrec is the lowest infix precedence this
// level may consume.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, bool) {
	left, ok := p.parsePrefix()
	if !ok {
		return nil, false
	}
	for {
		tok := p.peek()
		prec, right := binaryPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			return left, true
		}
		switch tok.Kind {
		case token.LParen:
			left, ok = p.parseCall(left)
		case token.LBracket, token.LBB:
			left, ok = p.parseIndex(left)
		case token.Dollar, token.At, token.ColonColon:
			left, ok = p.parseMember(left)
		case token.PipeGt:
			left, ok = p.parsePipe(left)
		default:
			p.advance()
			next := prec + 1
			if right {
				next = prec
			}
			var rhs ast.Expr
			if rhs, ok = p.parseExpr(next); !ok {
				return nil, false
			}
			sp := left.Span().Cover(rhs.Span())
			switch tok.Kind {
			case token.RightAssign, token.RightSuperAssign:
				left = ast.NewCall(sp, opName(tok), rhs, left)
			default:
				left = ast.NewCall(sp, opName(tok), left, rhs)
			}
			if isCompare(tok.Kind) && isCompare(p.peek().Kind) {
				p.unexpected(p.peek())
				return nil, false
			}
		}
		if !ok {
			return nil, false
		}
	}
}

func (p *Parser) parsePrefix() (ast.Expr, bool) {
	p.skipNewlines()
	tok := p.peek()

	if prec, ok := prefixPrec(tok.Kind); ok {
		p.advance()
		operand, ok := p.parseExpr(prec)
		if !ok {
			return nil, false
		}
		return ast.NewCall(tok.Span.Cover(operand.Span()), tok.Text, operand), true
	}

	switch tok.Kind {
	case token.Ident:
		p.advance()
		return &ast.Sym{Name: tok.Value, Sp: tok.Span}, true
	case token.NumLit, token.IntLit, token.ImagLit:
		p.advance()
		return p.number(tok)
	case token.StringLit:
		p.advance()
		return &ast.Str{Value: tok.Value, Sp: tok.Span}, true
	case token.KwTrue, token.KwFalse, token.KwNull, token.KwNA, token.KwNAInteger,
		token.KwNAReal, token.KwNACharacter, token.KwInf, token.KwNaN:
		p.advance()
		return &ast.Const{Kind: constKind(tok.Kind), Sp: tok.Span}, true
	case token.LParen:
		return p.parseParen()
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwRepeat:
		return p.parseRepeat()
	case token.KwBreak, token.KwNext:
		p.advance()
		return &ast.Call{Fn: &ast.Sym{Name: strings.Trim(tok.Kind.String(), "'"), Sp: tok.Span}, Sp: tok.Span}, true
	case token.KwFunction, token.Backslash:
		return p.parseFunction()
	}
	p.unexpected(tok)
	return nil, false
}

func constKind(k token.Kind) ast.ConstKind {
	switch k {
	case token.KwTrue:
		return ast.ConstTrue
	case token.KwFalse:
		return ast.ConstFalse
	case token.KwNull:
		return ast.ConstNull
	case token.KwNA:
		return ast.ConstNA
	case token.KwNAInteger:
		return ast.ConstNAInteger
	case token.KwNAReal:
		return ast.ConstNAReal
	case token.KwNACharacter:
		return ast.ConstNACharacter
	case token.KwInf:
		return ast.ConstInf
	default:
		return ast.ConstNaN
	}
}

// number decodes numeric literals. An L suffix on a value that is not a
// whole number in integer range yields a double, as in R.
func (p *Parser) number(tok token.Token) (ast.Expr, bool) {
	v, err := parseNumber(tok.Value)
	if err != nil {
		p.fail(diag.LexBadNumber, tok.Span, "malformed numeric constant "+tok.Text)
		return nil, false
	}
	switch tok.Kind {
	case token.ImagLit:
		return &ast.Imag{Value: v, Sp: tok.Span}, true
	case token.IntLit:
		if iv, err := safecast.Truncate[int32](v); err == nil && float64(iv) == v && iv != math.MinInt32 {
			return &ast.Int{Value: iv, Sp: tok.Span}, true
		}
	}
	return &ast.Num{Value: v, Sp: tok.Span}, true
}

func parseNumber(s string) (float64, error) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return float64(u), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, nil
		}
		return 0, err
	}
	return v, nil
}

// parseParen parses ( expr ) into a call to `(`.
func (p *Parser) parseParen() (ast.Expr, bool) {
	open := p.advance()
	p.push(nestParen)
	inner, ok := p.parseExpr(0)
	if !ok {
		p.pop()
		return nil, false
	}
	closeTok, ok := p.expect(token.RParen)
	p.pop()
	if !ok {
		return nil, false
	}
	return ast.NewCall(open.Span.Cover(closeTok.Span), "(", inner), true
}

// parseBlock parses { stmt; stmt \n stmt } into a call to `{`.
func (p *Parser) parseBlock() (ast.Expr, bool) {
	open := p.advance()
	p.push(nestBrace)
	defer p.pop()

	call := &ast.Call{Fn: &ast.Sym{Name: "{", Sp: open.Span}}
	for {
		p.skipSeparators()
		if p.lx.Peek(0).Kind == token.RBrace {
			closeTok := p.advance()
			call.Sp = open.Span.Cover(closeTok.Span)
			return call, true
		}
		stmt, ok := p.parseExpr(0)
		if !ok {
			return nil, false
		}
		call.Args = append(call.Args, ast.Arg{Value: stmt})
		switch next := p.lx.Peek(0); next.Kind {
		case token.Newline, token.Semicolon, token.RBrace:
		default:
			p.unexpected(next)
			return nil, false
		}
	}
}

// parseCall parses fn(args).
func (p *Parser) parseCall(fn ast.Expr) (ast.Expr, bool) {
	p.advance()
	args, closeSp, ok := p.parseArgs(token.RParen, false)
	if !ok {
		return nil, false
	}
	return &ast.Call{Fn: fn, Args: args, Sp: fn.Span().Cover(closeSp)}, true
}

// parseIndex parses x[i, j] and x[[i]].
func (p *Parser) parseIndex(obj ast.Expr) (ast.Expr, bool) {
	open := p.advance()
	double := open.Kind == token.LBB
	args, closeSp, ok := p.parseArgs(token.RBracket, double)
	if !ok {
		return nil, false
	}
	name := "["
	if double {
		name = "[["
	}
	all := append([]ast.Arg{{Value: obj}}, args...)
	return &ast.Call{Fn: &ast.Sym{Name: name, Sp: open.Span}, Args: all, Sp: obj.Span().Cover(closeSp)}, true
}

// parseArgs reads a comma separated argument list up to closer (consumed).
// Empty slots become arguments with a nil Value; "f()" has none.
func (p *Parser) parseArgs(closer token.Kind, double bool) ([]ast.Arg, source.Span, bool) {
	p.push(nestParen)
	defer p.pop()

	var args []ast.Arg
	if p.at(closer) {
		sp, ok := p.closeArgs(closer, double)
		return nil, sp, ok
	}
	for {
		arg, ok := p.parseArg(closer)
		if !ok {
			return nil, source.Span{}, false
		}
		args = append(args, arg)
		tok := p.peek()
		switch tok.Kind {
		case token.Comma:
			p.advance()
			if p.at(closer) {
				args = append(args, ast.Arg{})
				sp, ok := p.closeArgs(closer, double)
				return args, sp, ok
			}
		case closer:
			sp, ok := p.closeArgs(closer, double)
			return args, sp, ok
		default:
			p.unexpected(tok)
			return nil, source.Span{}, false
		}
	}
}

func (p *Parser) closeArgs(closer token.Kind, double bool) (source.Span, bool) {
	tok, ok := p.expect(closer)
	if !ok {
		return source.Span{}, false
	}
	if double {
		second, ok := p.expect(token.RBracket)
		if !ok {
			return source.Span{}, false
		}
		return tok.Span.Cover(second.Span), true
	}
	return tok.Span, true
}

func (p *Parser) parseArg(closer token.Kind) (ast.Arg, bool) {
	tok := p.peek()
	if tok.Kind == token.Comma {
		return ast.Arg{}, true
	}
	switch tok.Kind {
	case token.Ident, token.StringLit, token.KwNull:
		if p.lx.Peek(1).Kind == token.EqAssign {
			p.advance()
			p.advance()
			name := tok.Value
			if tok.Kind == token.KwNull {
				name = "NULL"
			}
			if next := p.peek().Kind; next == token.Comma || next == closer {
				return ast.Arg{Name: name, HasName: true}, true
			}
			v, ok := p.parseExpr(0)
			return ast.Arg{Name: name, HasName: true, Value: v}, ok
		}
	}
	v, ok := p.parseExpr(0)
	return ast.Arg{Value: v}, ok
}

// parseMember parses x$name, x@name and pkg::name.
func (p *Parser) parseMember(obj ast.Expr) (ast.Expr, bool) {
	op := p.advance()
	p.skipNewlines()
	tok := p.peek()
	var rhs ast.Expr
	switch tok.Kind {
	case token.Ident:
		rhs = &ast.Sym{Name: tok.Value, Sp: tok.Span}
	case token.StringLit:
		rhs = &ast.Str{Value: tok.Value, Sp: tok.Span}
	case token.LParen:
		if op.Kind != token.ColonColon {
			// x$(expr) is legal syntax and fails at run time
			inner, ok := p.parseParen()
			if !ok {
				return nil, false
			}
			return ast.NewCall(obj.Span().Cover(inner.Span()), op.Text, obj, inner), true
		}
		p.unexpected(tok)
		return nil, false
	default:
		p.unexpected(tok)
		return nil, false
	}
	p.advance()
	return ast.NewCall(obj.Span().Cover(tok.Span), op.Text, obj, rhs), true
}

// parsePipe rewrites lhs |> f(args) as f(lhs, args).
func (p *Parser) parsePipe(lhs ast.Expr) (ast.Expr, bool) {
	op := p.advance()
	rhs, ok := p.parseExpr(precSpecial + 1)
	if !ok {
		return nil, false
	}
	call, isCall := rhs.(*ast.Call)
	if !isCall {
		p.fail(diag.SynUnexpectedToken, op.Span, "The pipe operator requires a function call as RHS")
		return nil, false
	}
	args := append([]ast.Arg{{Value: lhs}}, call.Args...)
	return &ast.Call{Fn: call.Fn, Args: args, Sp: lhs.Span().Cover(call.Sp)}, true
}
