package parser

import (
	"fmt"
	"strings"
	"testing"

	"erre/internal/ast"
	"erre/internal/diag"
	"erre/internal/source"
)

// lisp renders e as a prefix form so tests can compare trees as strings.
func lisp(e ast.Expr) string {
	switch n := e.(type) {
	case nil:
		return "_"
	case *ast.Num:
		return fmt.Sprint(n.Value)
	case *ast.Int:
		return fmt.Sprintf("%dL", n.Value)
	case *ast.Imag:
		return fmt.Sprintf("%vi", n.Value)
	case *ast.Str:
		return fmt.Sprintf("%q", n.Value)
	case *ast.Const:
		return n.Kind.String()
	case *ast.Sym:
		return n.Name
	case *ast.Function:
		parts := []string{"function"}
		for _, prm := range n.Params {
			if prm.Default != nil {
				parts = append(parts, prm.Name+"="+lisp(prm.Default))
			} else {
				parts = append(parts, prm.Name)
			}
		}
		return "(" + strings.Join(parts, " ") + " " + lisp(n.Body) + ")"
	case *ast.Call:
		parts := []string{lisp(n.Fn)}
		for _, a := range n.Args {
			s := lisp(a.Value)
			if a.HasName {
				s = a.Name + "=" + s
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "?"
}

func parse(t *testing.T, src string) Result {
	t.Helper()
	return ParseText(source.NewFileSet(), "test.R", src)
}

func TestPrecedence(t *testing.T) {
	cases := []struct{ src, want string }{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"-2^2", "(- (^ 2 2))"},
		{"2^-1", "(^ 2 (- 1))"},
		{"2^3^2", "(^ 2 (^ 3 2))"},
		{"-1:3", "(: (- 1) 3)"},
		{"1:n-1", "(- (: 1 n) 1)"},
		{"!a == b", "(! (== a b))"},
		{"a & b | c && d", "(| (& a b) (&& c d))"},
		{"x <- y <- 5", "(<- x (<- y 5))"},
		{"5 -> x", "(<- x 5)"},
		{"x = y <- 1", "(= x (<- y 1))"},
		{"a %in% b + 1", "(+ (%in% a b) 1)"},
		{"a$b$c", "($ ($ a b) c)"},
		{"a$b^2", "(^ ($ a b) 2)"},
		{"-x[1]", "(- ([ x 1))"},
		{"base::sum(x)", "((:: base sum) x)"},
		{"y ~ x + z", "(~ y (+ x z))"},
		{"~ x", "(~ x)"},
		{"x |> f(y)", "(f x y)"},
		{"f(x)(y)", "((f x) y)"},
		{"x[[i]][j]", "([ ([[ x i) j)"},
	}
	for _, tc := range cases {
		r := parse(t, tc.src)
		if d, bad := r.Err(); bad {
			t.Errorf("%q: %s", tc.src, d.Message)
			continue
		}
		if len(r.Exprs) != 1 {
			t.Errorf("%q: %d expressions", tc.src, len(r.Exprs))
			continue
		}
		if got := lisp(r.Exprs[0]); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestLiterals(t *testing.T) {
	cases := []struct{ src, want string }{
		{"1L", "1L"},
		{"1.5L", "1.5"},
		{"0x10L", "16L"},
		{"3000000000L", "3e+09"},
		{"0xFF", "255"},
		{"2i", "2i"},
		{"1e400", "+Inf"},
		{"NA_character_", "NA_character_"},
		{`'s'`, `"s"`},
		{"`a b`", "a b"},
	}
	for _, tc := range cases {
		r := parse(t, tc.src)
		if _, bad := r.Err(); bad || len(r.Exprs) != 1 {
			t.Errorf("%q: parse failed %+v", tc.src, r.Bag.Items())
			continue
		}
		if got := lisp(r.Exprs[0]); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestCallsAndIndexing(t *testing.T) {
	cases := []struct{ src, want string }{
		{"f()", "(f)"},
		{"f(1, b = 2, 'c' = 3)", "(f 1 b=2 c=3)"},
		{"f(a = , b)", "(f a=_ b)"},
		{"x[]", "([ x)"},
		{"x[1, ]", "([ x 1 _)"},
		{"x[, 2]", "([ x _ 2)"},
		{"x[[y[1]]]", "([[ x ([ y 1))"},
		{"f(\n  1,\n  2\n)", "(f 1 2)"},
		{"x$`odd name`", "($ x odd name)"},
		{`x$"s"`, `($ x "s")`},
		{"f(NULL = 1)", "(f NULL=1)"},
	}
	for _, tc := range cases {
		r := parse(t, tc.src)
		if d, bad := r.Err(); bad {
			t.Errorf("%q: %s", tc.src, d.Message)
			continue
		}
		if got := lisp(r.Exprs[0]); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestControlFlow(t *testing.T) {
	cases := []struct{ src, want string }{
		{"if (a) b else c", "(if a b c)"},
		{"if (a) b", "(if a b)"},
		{"{\n if (a) b\n else c\n}", "({ (if a b c))"},
		{"x <- if (a) 1 else 2 + 3", "(<- x (if a 1 (+ 2 3)))"},
		{"for (i in 1:10) s <- s + i", "(for i (: 1 10) (<- s (+ s i)))"},
		{"while (TRUE) break", "(while TRUE (break))"},
		{"repeat { next }", "(repeat ({ (next)))"},
		{"function(x, y = 2, ...) x + y", "(function x y=2 ... (+ x y))"},
		{`\(x) x`, "(function x x)"},
		{"function() NULL", "(function NULL)"},
		{"{ a; b\n c }", "({ a b c)"},
		{"(a + b) * c", "(* (( (+ a b)) c)"},
	}
	for _, tc := range cases {
		r := parse(t, tc.src)
		if d, bad := r.Err(); bad {
			t.Errorf("%q: %s", tc.src, d.Message)
			continue
		}
		if got := lisp(r.Exprs[0]); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestTopLevelSequence(t *testing.T) {
	r := parse(t, "x <- 1; y <- 2\n\n# comment\nx + y\n")
	if _, bad := r.Err(); bad || len(r.Exprs) != 3 {
		t.Fatalf("got %d exprs, diags %v", len(r.Exprs), r.Bag.Items())
	}
	// newline ends the expression at top level: f and (1) are separate
	r = parse(t, "f\n(1)")
	if len(r.Exprs) != 2 || lisp(r.Exprs[1]) != "(( 1)" {
		t.Fatalf("unexpected split: %d exprs", len(r.Exprs))
	}
}

func TestFunctionKeepsSource(t *testing.T) {
	r := parse(t, "f <- function(n) {\n  n + 1\n}")
	call := r.Exprs[0].(*ast.Call)
	fn := call.Args[1].Value.(*ast.Function)
	if fn.Src != "function(n) {\n  n + 1\n}" {
		t.Fatalf("Src = %q", fn.Src)
	}
}

func TestIncompleteInput(t *testing.T) {
	for _, src := range []string{
		"f(1,",
		"{ x <- 1",
		"x +",
		"if (a)",
		`"unterminated`,
		"function(x)",
		"x[[1]",
	} {
		r := parse(t, src)
		if !r.Incomplete() {
			t.Errorf("%q: expected incomplete, got %+v", src, r.Bag.Items())
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
		msg  string
	}{
		{"x y", diag.SynUnexpectedToken, `unexpected symbol in "x y"`},
		{"f(1 2)", diag.SynUnexpectedToken, `unexpected numeric constant in "f(1 2"`},
		{"else", diag.SynUnexpectedToken, `unexpected 'else' in "else"`},
		{"if (a) b\nelse c", diag.SynUnexpectedToken, `unexpected 'else' in "else"`},
		{"1 < 2 < 3", diag.SynUnexpectedToken, `unexpected '<' in "1 < 2 <"`},
		{")", diag.SynUnexpectedToken, `unexpected ')' in ")"`},
		{"function(a, a) 1", diag.SynBadFormal, "repeated formal argument 'a' on line 1"},
		{"x |> y", diag.SynUnexpectedToken, "The pipe operator requires a function call as RHS"},
	}
	for _, tc := range cases {
		r := parse(t, tc.src)
		d, bad := r.Err()
		if !bad {
			t.Errorf("%q: expected an error", tc.src)
			continue
		}
		if r.Incomplete() || d.Code != tc.code || d.Message != tc.msg {
			t.Errorf("%q: got %v %q", tc.src, d.Code, d.Message)
		}
		if r.Exprs != nil {
			t.Errorf("%q: expressions returned alongside an error", tc.src)
		}
	}
}
