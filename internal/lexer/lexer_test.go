package lexer

import (
	"testing"

	"erre/internal/diag"
	"erre/internal/source"
	"erre/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.R", []byte(src)))
	bag := diag.NewBag(16)
	lx := New(f, bag)
	var out []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out, bag
		}
		out = append(out, tok)
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestOperators(t *testing.T) {
	cases := []struct {
		src  string
		want []token.Kind
	}{
		{"x <- 1", []token.Kind{token.Ident, token.LeftAssign, token.NumLit}},
		{"x<<-y", []token.Kind{token.Ident, token.SuperAssign, token.Ident}},
		{"a -> b ->> c", []token.Kind{token.Ident, token.RightAssign, token.Ident, token.RightSuperAssign, token.Ident}},
		{"x < -1", []token.Kind{token.Ident, token.Lt, token.Minus, token.NumLit}},
		{"a %in% b %% c", []token.Kind{token.Ident, token.Special, token.Ident, token.Special, token.Ident}},
		{"2**3^4", []token.Kind{token.NumLit, token.Caret, token.NumLit, token.Caret, token.NumLit}},
		{"x[[1]]", []token.Kind{token.Ident, token.LBB, token.NumLit, token.RBracket, token.RBracket}},
		{"a && b || !c", []token.Kind{token.Ident, token.AndAnd, token.Ident, token.OrOr, token.Bang, token.Ident}},
		{"x |> f()", []token.Kind{token.Ident, token.PipeGt, token.Ident, token.LParen, token.RParen}},
		{"base::c", []token.Kind{token.Ident, token.ColonColon, token.Ident}},
		{`\(x) x`, []token.Kind{token.Backslash, token.LParen, token.Ident, token.RParen, token.Ident}},
		{"a == b != c = d", []token.Kind{token.Ident, token.EqEq, token.Ident, token.BangEq, token.Ident, token.EqAssign, token.Ident}},
	}
	for _, tc := range cases {
		toks, bag := lexAll(t, tc.src)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected diagnostics %v", tc.src, bag.Items())
			continue
		}
		got := kinds(toks)
		if len(got) != len(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.src, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%q: token %d = %v, want %v", tc.src, i, got[i], tc.want[i])
			}
		}
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		src   string
		kind  token.Kind
		value string
	}{
		{"42", token.NumLit, "42"},
		{"1.5e-3", token.NumLit, "1.5e-3"},
		{".5", token.NumLit, ".5"},
		{"7L", token.IntLit, "7"},
		{"0x1F", token.NumLit, "0x1F"},
		{"2i", token.ImagLit, "2"},
		{"1.", token.NumLit, "1."},
	}
	for _, tc := range cases {
		toks, bag := lexAll(t, tc.src)
		if bag.HasErrors() || len(toks) != 1 {
			t.Fatalf("%q: toks=%v diags=%v", tc.src, toks, bag.Items())
		}
		if toks[0].Kind != tc.kind || toks[0].Value != tc.value {
			t.Errorf("%q: got %v %q", tc.src, toks[0].Kind, toks[0].Value)
		}
	}
	if _, bag := lexAll(t, "1e+"); !bag.HasErrors() {
		t.Fatalf("malformed exponent should be reported")
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks, bag := lexAll(t, ".hidden x.y_2 `my var` TRUE NA_integer_ function ..1 ...")
	if bag.HasErrors() {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	want := []struct {
		kind  token.Kind
		value string
	}{
		{token.Ident, ".hidden"},
		{token.Ident, "x.y_2"},
		{token.Ident, "my var"},
		{token.KwTrue, ""},
		{token.KwNAInteger, ""},
		{token.KwFunction, ""},
		{token.Ident, "..1"},
		{token.Ident, "..."},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %v", len(toks), kinds(toks))
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Value != w.value {
			t.Errorf("token %d = %v %q, want %v %q", i, toks[i].Kind, toks[i].Value, w.kind, w.value)
		}
	}
}

func TestIdentifierNormalisation(t *testing.T) {
	// "é" written as e + combining acute
	toks, _ := lexAll(t, "caf\u0065\u0301")
	if len(toks) != 1 || toks[0].Value != "caf\u00e9" {
		t.Fatalf("identifier not NFC-normalised: %+v", toks)
	}
}

func TestStrings(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`"a\tb"`, "a\tb"},
		{`'it''s'`, "it"},
		{`"q: \" \\"`, `q: " \`},
		{`"\x41\u00e9\U{1F600}"`, "Aé\U0001F600"},
		{`"\101"`, "A"},
		{"\"two\nlines\"", "two\nlines"},
		{`r"(C:\path)"`, `C:\path`},
		{`R"--[a]"b]--"`, `a]"b`},
	}
	for _, tc := range cases {
		toks, bag := lexAll(t, tc.src)
		if bag.HasErrors() {
			t.Errorf("%q: diagnostics %v", tc.src, bag.Items())
			continue
		}
		if toks[0].Kind != token.StringLit || toks[0].Value != tc.want {
			t.Errorf("%q: got %v %q, want %q", tc.src, toks[0].Kind, toks[0].Value, tc.want)
		}
	}
}

func TestIncompleteInputIsReported(t *testing.T) {
	for _, src := range []string{`"open`, "`open", `r"(never closed`} {
		_, bag := lexAll(t, src)
		d, ok := bag.First()
		if !ok || !d.Code.Incomplete() {
			t.Errorf("%q: expected an incomplete-input diagnostic, got %+v", src, bag.Items())
		}
	}
}

func TestNewlinesAndComments(t *testing.T) {
	toks, _ := lexAll(t, "x # note\n\ny; z")
	want := []token.Kind{token.Ident, token.Newline, token.Newline, token.Ident, token.Semicolon, token.Ident}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	lx := New(fs.Get(fs.AddVirtual("p.R", []byte("a b c"))), nil)
	if lx.Peek(2).Text != "c" || lx.Peek(0).Text != "a" {
		t.Fatalf("Peek lookahead wrong")
	}
	if lx.Next().Text != "a" || lx.Next().Text != "b" || lx.Next().Text != "c" {
		t.Fatalf("Next after Peek lost tokens")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatalf("EOF should repeat")
	}
}
