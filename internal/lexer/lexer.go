// Package lexer splits R source into tokens.
//
// Newlines are significant in R, so the lexer emits Newline tokens and
// leaves it to the parser to decide where they end an expression. Comments
// are dropped.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"erre/internal/diag"
	"erre/internal/source"
	"erre/internal/token"
)

type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     []token.Token
}

// New returns a lexer over file. A nil reporter discards diagnostics.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), reporter: reporter}
}

// Next returns the next token. After the end it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if n := len(lx.look); n > 0 {
		tok := lx.look[0]
		lx.look = lx.look[1:]
		return tok
	}
	return lx.scan()
}

// Peek returns the token n positions ahead (0 = next) without consuming.
func (lx *Lexer) Peek(n int) token.Token {
	for len(lx.look) <= n {
		lx.look = append(lx.look, lx.scan())
	}
	return lx.look[n]
}

func (lx *Lexer) scan() token.Token {
	lx.skipBlanks()
	if lx.cursor.EOF() {
		off := lx.cursor.Off
		return token.Token{Kind: token.EOF, Span: source.Span{File: lx.file.ID, Start: off, End: off}}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '\n':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		return lx.token(token.Newline, start)
	case (ch == 'r' || ch == 'R') && lx.isRawStringStart():
		return lx.scanRawString()
	case isDec(ch) || (ch == '.' && isDec(lx.cursor.PeekAt(1))):
		return lx.scanNumber()
	case isIdentStartByte(ch) || ch == '.':
		return lx.scanIdentOrKeyword()
	case ch >= utf8.RuneSelf:
		r, _ := utf8.DecodeRune(lx.cursor.Rest())
		if unicode.IsLetter(r) {
			return lx.scanIdentOrKeyword()
		}
		start := lx.cursor.Mark()
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.report(diag.LexUnknownChar, sp, "unexpected input")
		return lx.token(token.Invalid, start)
	case ch == '"' || ch == '\'':
		return lx.scanString()
	case ch == '`':
		return lx.scanQuotedIdent()
	default:
		return lx.scanOperator()
	}
}

// skipBlanks drops spaces, tabs, form feeds and comments. Newlines stay.
func (lx *Lexer) skipBlanks() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\f', '\r', '\v':
			lx.cursor.Bump()
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) token(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.reporter != nil {
		lx.reporter.Report(code, diag.SevError, sp, msg)
	}
}

func (lx *Lexer) bumpRune() {
	_, sz := utf8.DecodeRune(lx.cursor.Rest())
	lx.cursor.Advance(max(sz, 1))
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStartByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueRune(r rune) bool {
	return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
