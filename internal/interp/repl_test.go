package interp

import (
	"strings"
	"testing"
)

func TestBrowser(t *testing.T) {
	const def = "f <- function(x) { browser(); cat(\"after\\n\"); x * 6 }\n"
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"continue", "f(7)\nc\n", "Called from: f(7)\nafter\n[1] 42\n"},
		{"cont", "f(7)\ncont\n", "Called from: f(7)\nafter\n[1] 42\n"},
		{"empty line", "f(7)\n\n", "Called from: f(7)\nafter\n[1] 42\n"},
		{"evaluates in frame", "f(7)\nx + 1\nc\n", "Called from: f(7)\n[1] 8\nafter\n[1] 42\n"},
		{"assigns in frame", "f(7)\nx <- 1\nc\n", "Called from: f(7)\nafter\n[1] 6\n"},
		{"step", "f(7)\nn\nn\nn\n", "Called from: f(7)\ndebug: cat(\"after\\n\")\nafter\ndebug: x * 6\n[1] 42\n"},
		{"quit to top", "f(7)\nQ\ncat(\"top\\n\")\n", "Called from: f(7)\ntop\n"},
		{"top level", "browser()\n1\nc\n", "Called from: top level \n[1] 1\n"},
		{"return ends browser", "f(7)\nreturn(99)\n", "Called from: f(7)\nafter\n[1] 42\n"},
		{"return value", "g <- function() { v <- browser(); v * 2 }\ng()\nreturn(21)\n", "Called from: g()\n[1] 42\n"},
		{"return at top level", "browser()\nreturn(5)\n.Last.value\n", "Called from: top level \n[1] 5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, out := newTestInterp(t)
			got := transcript(t, in, out, def+tc.input)
			if got != tc.want {
				t.Fatalf("transcript:\n got %q\nwant %q", got, tc.want)
			}
			if in.ContextDepth() != 1 || in.PPStackTop() != 0 {
				t.Fatalf("after loop: contexts %d, protect depth %d", in.ContextDepth(), in.PPStackTop())
			}
		})
	}
}

func TestBrowserErrorStaysInBrowser(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, "f <- function(x) { browser(); x }\nf(3)\nstop(\"inner\")\nx\nc\n")
	if !strings.HasPrefix(got, "Called from: f(3)\n") || !strings.Contains(got, "inner") {
		t.Fatalf("transcript %q", got)
	}
	if !strings.HasSuffix(got, "[1] 3\n[1] 3\n") {
		t.Fatalf("browser did not resume after the error: %q", got)
	}
}

func TestConsoleInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"continuation", "1 +\n2\n", "[1] 3\n"},
		{"open brace", "{\nx <- 4\nx * 2\n}\n", "[1] 8\n"},
		{"several forms", "1; 2\n", "[1] 1\n[1] 2\n"},
		{"comment", "# nothing\n3 # trailing\n", "[1] 3\n"},
		{"invisible assignment", "y <- 5\n(y <- 6)\n", "[1] 6\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, out := newTestInterp(t)
			if got := transcript(t, in, out, tc.input); got != tc.want {
				t.Fatalf("transcript:\n got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestParseErrorContinues(t *testing.T) {
	in, out := newTestInterp(t)
	got := transcript(t, in, out, "1 +* 2\n5\n")
	if !strings.HasPrefix(got, "Error") || !strings.HasSuffix(got, "[1] 5\n") {
		t.Fatalf("transcript %q", got)
	}
}

func TestBatchConsoleHalts(t *testing.T) {
	in, out := newTestInterp(t)
	out.Reset()
	in.SetReader(NewBatchReader(strings.NewReader("cat(\"one\\n\")\nstop(\"halt\")\ncat(\"two\\n\")\n")))
	in.SetInteractive(false)
	q := in.RunConsole()
	if q == nil || !q.Halted || q.Status != 1 {
		t.Fatalf("quit = %+v", q)
	}
	if got := out.String(); got != "one\nError: halt\n" {
		t.Fatalf("output %q", got)
	}
}

func TestQuitFromConsole(t *testing.T) {
	in, out := newTestInterp(t)
	out.Reset()
	in.SetReader(NewBatchReader(strings.NewReader("q(\"yes\", 4)\ncat(\"never\\n\")\n")))
	q := in.RunConsole()
	if q == nil || q.Save != "yes" || q.Status != 4 || !q.RunLast {
		t.Fatalf("quit = %+v", q)
	}
	if out.Len() != 0 {
		t.Fatalf("output after q(): %q", out.String())
	}
}
