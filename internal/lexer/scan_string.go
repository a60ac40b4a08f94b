package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"erre/internal/diag"
	"erre/internal/token"

	"golang.org/x/text/unicode/norm"
)

// scanString reads a '...' or "..." constant. Newlines inside are part of
// the string, so an unterminated constant runs to EOF and is reported as
// incomplete input.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	val, ok := lx.scanQuotedBody(quote)
	tok := lx.token(token.StringLit, start)
	if !ok {
		lx.report(diag.LexUnterminatedString, tok.Span, "unexpected end of input in string constant")
		tok.Kind = token.Invalid
		return tok
	}
	tok.Value = norm.NFC.String(val)
	return tok
}

// scanQuotedBody decodes up to the closing quote, which it consumes.
func (lx *Lexer) scanQuotedBody(quote byte) (string, bool) {
	var sb strings.Builder
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == quote:
			lx.cursor.Bump()
			return sb.String(), true
		case b == '\\':
			lx.scanEscape(&sb)
		case b < utf8.RuneSelf:
			sb.WriteByte(lx.cursor.Bump())
		default:
			r, sz := utf8.DecodeRune(lx.cursor.Rest())
			sb.WriteRune(r)
			lx.cursor.Advance(sz)
		}
	}
	return sb.String(), false
}

func (lx *Lexer) scanEscape(sb *strings.Builder) {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	if lx.cursor.EOF() {
		return
	}
	c := lx.cursor.Bump()
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		for i := 0; i < 2 && lx.cursor.Peek() >= '0' && lx.cursor.Peek() <= '7'; i++ {
			v = v*8 + int(lx.cursor.Bump()-'0')
		}
		if v == 0 {
			lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(start), "nul character not allowed")
			return
		}
		sb.WriteByte(byte(v))
	case 'x':
		lx.writeCodePoint(sb, start, 2, false)
	case 'u':
		lx.writeCodePoint(sb, start, 4, true)
	case 'U':
		lx.writeCodePoint(sb, start, 8, true)
	case '\\', '"', '\'', '`', ' ', '\n':
		sb.WriteByte(c)
	default:
		lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(start),
			"'\\"+string(c)+"' is an unrecognized escape in character string")
	}
}

// writeCodePoint decodes up to maxDigits hex digits, optionally wrapped in
// braces ("\u{e9}").
func (lx *Lexer) writeCodePoint(sb *strings.Builder, start Mark, maxDigits int, unicodeEsc bool) {
	braced := unicodeEsc && lx.cursor.Eat('{')
	digitsStart := lx.cursor.Off
	for i := 0; i < maxDigits && isHex(lx.cursor.Peek()); i++ {
		lx.cursor.Bump()
	}
	digits := string(lx.file.Content[digitsStart:lx.cursor.Off])
	if braced && !lx.cursor.Eat('}') {
		lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid \\u{xxxx} sequence")
		return
	}
	if digits == "" {
		lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(start), "'\\x' used without hex digits in character string")
		return
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		lx.report(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid escape sequence")
		return
	}
	if !unicodeEsc {
		sb.WriteByte(byte(v))
		return
	}
	sb.WriteRune(rune(v))
}

// isRawStringStart recognises r"(, r'[, R"---{ and friends.
func (lx *Lexer) isRawStringStart() bool {
	q := lx.cursor.PeekAt(1)
	if q != '"' && q != '\'' {
		return false
	}
	i := uint32(2)
	for lx.cursor.PeekAt(i) == '-' {
		i++
	}
	switch lx.cursor.PeekAt(i) {
	case '(', '[', '{':
		return true
	}
	return false
}

// scanRawString reads r"(...)" with an optional run of dashes between the
// quote and the bracket; no escapes are processed.
func (lx *Lexer) scanRawString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // r
	quote := lx.cursor.Bump()
	dashes := 0
	for lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
		dashes++
	}
	closer := map[byte]byte{'(': ')', '[': ']', '{': '}'}[lx.cursor.Bump()]
	terminator := string(closer) + strings.Repeat("-", dashes) + string(quote)

	bodyStart := lx.cursor.Off
	rest := string(lx.cursor.Rest())
	idx := strings.Index(rest, terminator)
	if idx < 0 {
		lx.cursor.Advance(len(rest))
		tok := lx.token(token.Invalid, start)
		lx.report(diag.LexUnterminatedString, tok.Span, "unexpected end of input in raw string constant")
		return tok
	}
	lx.cursor.Advance(idx + len(terminator))
	tok := lx.token(token.StringLit, start)
	tok.Value = norm.NFC.String(string(lx.file.Content[bodyStart : bodyStart+uint32(idx)])) //nolint:gosec // idx < len(rest)
	return tok
}
