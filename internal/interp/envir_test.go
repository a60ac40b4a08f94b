package interp

import "testing"

func TestScoping(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"x <- 1; f <- function() { x <- 2; g <- function() x; g() }; f()", "[1] 2\n"},
		{"x", "[1] 1\n"},
		{"h <- function() { x <- 5; rm(x); x }; h()", "[1] 1\n"},
		{"mk <- function() { n <- 0; function() { n <<- n + 1; n } }; cnt <- mk(); cnt(); cnt()", "[1] 1\n[1] 2\n"},
		{"exists(\"n\")", "[1] FALSE\n"},
		{"up <- function() { zz <<- 3 }; invisible(up()); zz", "[1] 3\n"},
		{"e <- new.env(); assign(\"v\", 10, envir = e); get(\"v\", envir = e)", "[1] 10\n"},
		{"exists(\"v\")", "[1] FALSE\n"},
		{"exists(\"v\", envir = e)", "[1] TRUE\n"},
		{"ls(e)", "[1] \"v\"\n"},
		{"c <- 3; c(c, 1)", "[1] 3 1\n"},
		{"pf <- function() parent.frame(); identical(pf(), globalenv())", "[1] TRUE\n"},
		{"sc <- function(a) sys.call(); sc(1 + 2)", "sc(1 + 2)\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}

	evalOK(t, in, out, "rm(x)")
	rerr := evalErr(t, in, out, "x")
	if rerr.Code != ErrUnbound || rerr.Error() != "Error: object 'x' not found" {
		t.Fatalf("lookup after rm: %v", rerr)
	}
	rerr = evalErr(t, in, out, "get(\"nope\")")
	if rerr.Code != ErrUnbound || rerr.Message != "object 'nope' not found" {
		t.Fatalf("get of unbound name: %v", rerr)
	}
}

func TestDefineVarShadowsWithoutTouchingOuter(t *testing.T) {
	in, _ := newTestInterp(t)
	if err := guard(in, func() {
		sym := in.Install("shadowed")
		outer := in.Protect(in.NewEnvironment(in.Nil, in.Nil, in.GlobalEnv))
		inner := in.Protect(in.NewEnvironment(in.Nil, in.Nil, outer))
		in.DefineVar(sym, in.ScalarInteger(1), outer)
		in.DefineVar(sym, in.ScalarInteger(2), inner)
		if v := in.FindVar(sym, inner); in.Integer(v)[0] != 2 {
			t.Fatalf("inner lookup = %d", in.Integer(v)[0])
		}
		if v := in.FindVar(sym, outer); in.Integer(v)[0] != 1 {
			t.Fatalf("outer lookup = %d", in.Integer(v)[0])
		}
		if v := in.FindVar(sym, in.GlobalEnv); v != in.Unbound {
			t.Fatalf("global frame gained a binding")
		}
		in.Unprotect(2)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
