package interp

import (
	"bytes"
	"strings"
	"testing"
)

// newTestInterp returns an interpreter with the base library loaded and
// both streams captured in one buffer.
func newTestInterp(t *testing.T) (*Interp, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	in := New(Options{NSize: 40000, Stdout: &out, Stderr: &out, CheckAccess: true})
	if err := in.LoadBase(); err != nil {
		t.Fatalf("LoadBase: %v", err)
	}
	out.Reset()
	return in, &out
}

// evalOK evaluates src at top level and returns what it printed.
func evalOK(t *testing.T, in *Interp, out *bytes.Buffer, src string) string {
	t.Helper()
	out.Reset()
	if err := in.EvalString("<test>", src); err != nil {
		t.Fatalf("%s: %v\noutput: %s", src, err, out.String())
	}
	return out.String()
}

// evalErr evaluates src and returns the error it stopped at.
func evalErr(t *testing.T, in *Interp, out *bytes.Buffer, src string) *RError {
	t.Helper()
	out.Reset()
	err := in.EvalString("<test>", src)
	rerr, ok := err.(*RError)
	if !ok {
		t.Fatalf("%s: expected an R error, got %v", src, err)
	}
	return rerr
}

// transcript feeds input to the console loop as a non-prompting reader
// and returns the combined output.
func transcript(t *testing.T, in *Interp, out *bytes.Buffer, input string) string {
	t.Helper()
	out.Reset()
	in.SetReader(NewBatchReader(strings.NewReader(input)))
	in.SetInteractive(true)
	if q := in.RunConsole(); q != nil {
		t.Fatalf("unexpected quit %+v", q)
	}
	return out.String()
}

func TestEndToEndScenarios(t *testing.T) {
	in, out := newTestInterp(t)

	if got := evalOK(t, in, out, "1 + 2"); got != "[1] 3\n" {
		t.Fatalf("1 + 2 printed %q", got)
	}
	if !in.Visible {
		t.Fatalf("1 + 2 left the value invisible")
	}
	v := in.SymValue(in.sym.lastValue)
	if in.Kind(v) != RealSXP || in.Real(v)[0] != 3 {
		t.Fatalf(".Last.value = %s", in.Kind(v))
	}

	evalOK(t, in, out, "x <- c(1,2,3)")
	if got := evalOK(t, in, out, "y <- x; y[1] <- 99; x"); got != "[1] 1 2 3\n" {
		t.Fatalf("x after modifying y: %q", got)
	}
	if got := evalOK(t, in, out, "y"); got != "[1] 99  2  3\n" {
		t.Fatalf("y = %q", got)
	}

	evalOK(t, in, out, "f <- function(n) if (n <= 1) 1 else n * f(n-1)")
	if got := evalOK(t, in, out, "f(5)"); got != "[1] 120\n" {
		t.Fatalf("f(5) = %q", got)
	}
	base := in.ContextDepth()
	rerr := evalErr(t, in, out, "f(100000)")
	if rerr.Code != ErrRecursionDepth {
		t.Fatalf("f(100000) raised %v", rerr)
	}
	if in.ContextDepth() != base || in.EvalDepth() != 0 {
		t.Fatalf("depth after recursion error: contexts %d (want %d), eval %d", in.ContextDepth(), base, in.EvalDepth())
	}
	if got := evalOK(t, in, out, "f(3)"); got != "[1] 6\n" {
		t.Fatalf("evaluation after the error: %q", got)
	}
}

func TestCopyOnModify(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"x <- c(1, 2, 3); y <- x; y[1] <- 99; x", "[1] 1 2 3\n"},
		{"x[2] <- 50; y", "[1] 99  2  3\n"},
		{"x", "[1]  1 50  3\n"},
		{"bump <- function(v) { v[1] <- v[1] + 100; v }; bump(x)", "[1] 101  50   3\n"},
		{"x", "[1]  1 50  3\n"},
		{"l <- list(a = 1, b = \"s\"); m <- l; m$a <- 2; l$a", "[1] 1\n"},
		{"l$b <- \"t\"; m$b", "[1] \"s\"\n"},
		{"setb <- function(z) { z$b <- 0; z$b }; setb(l)", "[1] 0\n"},
		{"l$b", "[1] \"t\"\n"},
		{"e <- new.env(); e2 <- e; assign(\"k\", 1, envir = e2); exists(\"k\", envir = e)", "[1] TRUE\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}
}

// TestRecursionHitsDepthLimitFirst checks that with default sizes runaway
// recursion stops at the evaluation depth limit rather than overflowing the
// protection stack, also after options(expressions=) raises the limit.
func TestRecursionHitsDepthLimitFirst(t *testing.T) {
	var out bytes.Buffer
	in := New(Options{Stdout: &out, Stderr: &out})
	if err := in.LoadBase(); err != nil {
		t.Fatalf("LoadBase: %v", err)
	}
	if in.ppsize < ppPerDepth*in.maxDepth {
		t.Fatalf("default ppsize %d below %d per level of depth %d", in.ppsize, ppPerDepth, in.maxDepth)
	}
	cases := []struct {
		name string
		src  string
	}{
		{"unbounded", "f <- function(n) f(n + 1); f(1)"},
		{"arithmetic", "g <- function(n) if (n <= 1) 1 else n * g(n - 1); g(100000)"},
		{"raised limit", "invisible(options(expressions = 25000)); f(1)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rerr := evalErr(t, in, &out, tc.src)
			if rerr.Code != ErrRecursionDepth {
				t.Fatalf("%s raised %v", tc.src, rerr)
			}
			if in.PPStackTop() != 0 || in.EvalDepth() != 0 {
				t.Fatalf("after the error: protect depth %d, eval depth %d", in.PPStackTop(), in.EvalDepth())
			}
		})
	}
	if in.ppsize < ppPerDepth*25000 {
		t.Fatalf("ppsize %d did not follow options(expressions = 25000)", in.ppsize)
	}
}

func TestNestedErrorPrintsOnce(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, `
g3 <- function() stop("deep")
g2 <- function() g3()
g1 <- function() g2()
g1()
cat("still here\n")
`)
	want := "Error in g3() : deep\nstill here\n"
	if got != want {
		t.Fatalf("transcript:\n got %q\nwant %q", got, want)
	}
	if in.ContextDepth() != 1 || in.PPStackTop() != 0 {
		t.Fatalf("after loop: contexts %d, protect depth %d", in.ContextDepth(), in.PPStackTop())
	}
}

func TestUnwindBalance(t *testing.T) {
	in, out := newTestInterp(t)
	evalOK(t, in, out, "nest <- function(n) if (n == 0) stop(\"bottom\") else nest(n - 1)")
	ctx0, pp0 := in.ContextDepth(), in.PPStackTop()
	for _, n := range []int{0, 1, 2, 10, 200} {
		src := "nest(" + itoa(n) + ")"
		if rerr := evalErr(t, in, out, src); rerr.Message != "bottom" {
			t.Fatalf("%s: %v", src, rerr)
		}
		if in.ContextDepth() != ctx0 || in.PPStackTop() != pp0 || in.EvalDepth() != 0 {
			t.Fatalf("%s: contexts %d/%d protect %d/%d eval %d", src, in.ContextDepth(), ctx0, in.PPStackTop(), pp0, in.EvalDepth())
		}
	}
}

func itoa(n int) string { return intString(int32(n)) } //nolint:gosec // small test values

func TestOnExitRunsDuringUnwind(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, `
h <- function() { on.exit(cat("cleanup\n")); stop("fail") }
h()
k <- function() { on.exit(cat("a\n")); on.exit(cat("b\n"), add = TRUE); invisible(1) }
k()
`)
	want := "cleanup\nError in h() : fail\na\nb\n"
	if got != want {
		t.Fatalf("transcript:\n got %q\nwant %q", got, want)
	}
}

func TestOnExitErrorKeepsFirstError(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, `
h <- function() { on.exit(stop("exit-err")); stop("body-err") }
h()
cat("next\n")
`)
	first := strings.Index(got, "body-err")
	second := strings.Index(got, "exit-err")
	if first < 0 || second < first || !strings.HasSuffix(got, "next\n") {
		t.Fatalf("transcript %q", got)
	}
	if in.ContextDepth() != 1 || in.PPStackTop() != 0 {
		t.Fatalf("after loop: contexts %d, protect depth %d", in.ContextDepth(), in.PPStackTop())
	}
}

func TestControlFlow(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"s <- 0; for (i in 1:10) { if (i %% 2 == 0) next; if (i > 7) break; s <- s + i }; s", "[1] 16\n"},
		{"i <- 0; repeat { i <- i + 1; if (i >= 3) break }; i", "[1] 3\n"},
		{"i <- 0; while (TRUE) { i <- i + 1; if (i == 4) break }; i", "[1] 4\n"},
		{"r <- function() { for (i in 1:5) if (i == 2) return(i * 10); 0 }; r()", "[1] 20\n"},
		{"switch(\"b\", a = 1, b = , c = 3)", "[1] 3\n"},
		{"t <- try(stop(\"oops\"), silent = TRUE); class(t)", "[1] \"try-error\"\n"},
		{"invisible(5)", ""},
		{"(invisible(5))", "[1] 5\n"},
		{"m <- function(a, b) missing(b); m(1)", "[1] TRUE\n"},
		{"na <- function(...) nargs(); na(1, 2, 3)", "[1] 3\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}
}

func TestLazyArguments(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"lz <- function(x) 1; lz(stop(\"never\"))", "[1] 1\n"},
		{"dflt <- function(a, b = a * 2) b; dflt(4)", "[1] 8\n"},
		{"once <- function(x) { x; x }; once({cat(\"forced\\n\"); 1})", "forced\n[1] 1\n"},
		{"sq <- function(x) substitute(x); sq(a + b)", "a + b\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		code ErrCode
		want string
	}{
		{"undefined_thing", ErrUnbound, "Error: object 'undefined_thing' not found"},
		{"nofun(1)", ErrNotFunction, "Error in nofun(1) : could not find function \"nofun\""},
		{"f <- function(x) x; f(1, 2)", ErrArgMatch, "Error in f(1, 2) : unused argument (2)"},
		{"g <- function(x) x; g()", ErrMissingArg, "Error in g() : argument \"x\" is missing, with no default"},
		{"break", ErrNoLoop, "Error: no loop for break/next, jumping to top level"},
		{"\"a\" + 1", ErrType, "Error in \"a\" + 1 : non-numeric argument to binary operator"},
	}
	for _, tc := range cases {
		rerr := evalErr(t, in, out, tc.src)
		if rerr.Code != tc.code || rerr.Error() != tc.want {
			t.Errorf("%s:\n got %s %q\nwant %s %q", tc.src, rerr.Code, rerr.Error(), tc.code, tc.want)
		}
	}
}

func TestWarningsFollowTheForm(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, `
w <- function() { warning("careful"); 1 }
w()
as.integer("x")
`)
	want := "[1] 1\nWarning message:\nIn w() : careful\n[1] NA\nWarning message:\nIn as.integer(\"x\") : NAs introduced by coercion\n"
	if got != want {
		t.Fatalf("transcript:\n got %q\nwant %q", got, want)
	}
}

func TestInterruptBecomesUserBreak(t *testing.T) {
	in, out := newTestInterp(t)
	in.Interrupt()
	rerr := evalErr(t, in, out, "repeat {}")
	if rerr.Code != ErrInterrupted || rerr.Error() != "" {
		t.Fatalf("interrupt raised %v", rerr)
	}
	if got := evalOK(t, in, out, "1"); got != "[1] 1\n" {
		t.Fatalf("after interrupt: %q", got)
	}
}
