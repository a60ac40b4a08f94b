package lexer

import (
	"unicode/utf8"

	"erre/internal/diag"
	"erre/internal/token"

	"golang.org/x/text/unicode/norm"
)

// scanIdentOrKeyword reads a name. Non-ASCII names are NFC-normalised so
// that composed and decomposed spellings bind the same symbol.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	ascii := true
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < utf8.RuneSelf {
			if !(isIdentStartByte(b) || isDec(b) || b == '.' || b == '_') {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, sz := utf8.DecodeRune(lx.cursor.Rest())
		if !isIdentContinueRune(r) {
			break
		}
		ascii = false
		lx.cursor.Advance(sz)
	}
	tok := lx.token(token.Ident, start)
	if kw, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = kw
		return tok
	}
	tok.Value = tok.Text
	if !ascii {
		tok.Value = norm.NFC.String(tok.Text)
	}
	return tok
}

// scanQuotedIdent reads a backquoted name: `my var`.
func (lx *Lexer) scanQuotedIdent() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	val, ok := lx.scanQuotedBody('`')
	tok := lx.token(token.Ident, start)
	if !ok {
		lx.report(diag.LexUnterminatedIdent, tok.Span, "unexpected end of input in backquoted name")
		tok.Kind = token.Invalid
		return tok
	}
	if val == "" {
		lx.report(diag.LexUnknownChar, tok.Span, "attempt to use zero-length variable name")
		tok.Kind = token.Invalid
		return tok
	}
	tok.Value = norm.NFC.String(val)
	return tok
}
