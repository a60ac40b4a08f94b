package lexer

import (
	"erre/internal/diag"
	"erre/internal/token"
)

// scanOperator reads punctuation, longest match first.
func (lx *Lexer) scanOperator() token.Token {
	start := lx.cursor.Mark()
	c := lx.cursor.Bump()
	next := lx.cursor.Peek()

	kind := token.Invalid
	switch c {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
		if next == '>' {
			lx.cursor.Bump()
			kind = token.RightAssign
			if lx.cursor.Eat('>') {
				kind = token.RightSuperAssign
			}
		}
	case '*':
		kind = token.Star
		if lx.cursor.Eat('*') {
			kind = token.Caret
		}
	case '/':
		kind = token.Slash
	case '^':
		kind = token.Caret
	case '%':
		for !lx.cursor.EOF() && lx.cursor.Peek() != '%' && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		if !lx.cursor.Eat('%') {
			tok := lx.token(token.Invalid, start)
			lx.report(diag.LexUnknownChar, tok.Span, "unexpected input")
			return tok
		}
		kind = token.Special
	case '<':
		switch {
		case next == '=':
			lx.cursor.Bump()
			kind = token.LtEq
		case next == '-':
			lx.cursor.Bump()
			kind = token.LeftAssign
		case next == '<' && lx.cursor.PeekAt(1) == '-':
			lx.cursor.Advance(2)
			kind = token.SuperAssign
		default:
			kind = token.Lt
		}
	case '>':
		kind = token.Gt
		if lx.cursor.Eat('=') {
			kind = token.GtEq
		}
	case '=':
		kind = token.EqAssign
		if lx.cursor.Eat('=') {
			kind = token.EqEq
		}
	case '!':
		kind = token.Bang
		if lx.cursor.Eat('=') {
			kind = token.BangEq
		}
	case '&':
		kind = token.Amp
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		}
	case '|':
		switch {
		case lx.cursor.Eat('|'):
			kind = token.OrOr
		case lx.cursor.Eat('>'):
			kind = token.PipeGt
		default:
			kind = token.Pipe
		}
	case '~':
		kind = token.Tilde
	case '?':
		kind = token.Question
	case ':':
		kind = token.Colon
		if lx.cursor.Eat(':') {
			kind = token.ColonColon
			lx.cursor.Eat(':')
		}
	case '$':
		kind = token.Dollar
	case '@':
		kind = token.At
	case '\\':
		kind = token.Backslash
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
		if lx.cursor.Eat('[') {
			kind = token.LBB
		}
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	}
	tok := lx.token(kind, start)
	if kind == token.Invalid {
		lx.report(diag.LexUnknownChar, tok.Span, "unexpected input")
	}
	return tok
}
