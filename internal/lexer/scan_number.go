package lexer

import (
	"erre/internal/diag"
	"erre/internal/token"
)

// scanNumber reads 12, 1.5, .5, 1e-3, 0xFF, optionally followed by L
// (integer) or i (imaginary). Value holds the literal without its suffix.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		lx.cursor.Advance(2)
		digits := 0
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
			digits++
		}
		if digits == 0 {
			tok := lx.token(token.Invalid, start)
			lx.report(diag.LexBadNumber, tok.Span, "malformed hexadecimal constant")
			return tok
		}
	} else {
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if lx.cursor.Peek() == '.' {
			lx.cursor.Bump()
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
		if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
			mark := lx.cursor.Mark()
			lx.cursor.Bump()
			if b := lx.cursor.Peek(); b == '+' || b == '-' {
				lx.cursor.Bump()
			}
			if !isDec(lx.cursor.Peek()) {
				lx.cursor.Reset(mark)
				lx.cursor.Bump()
				tok := lx.token(token.Invalid, start)
				lx.report(diag.LexBadNumber, tok.Span, "malformed exponent in numeric constant")
				return tok
			}
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}

	body := string(lx.file.Content[start:lx.cursor.Off])
	kind := token.NumLit
	switch lx.cursor.Peek() {
	case 'L':
		lx.cursor.Bump()
		kind = token.IntLit
	case 'i':
		lx.cursor.Bump()
		kind = token.ImagLit
	}
	tok := lx.token(kind, start)
	tok.Value = body
	return tok
}
