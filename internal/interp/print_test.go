package interp

import "testing"

func TestPrintValues(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"1:10", " [1]  1  2  3  4  5  6  7  8  9 10\n"},
		{"c(1.5, 2, NA)", "[1] 1.5 2.0  NA\n"},
		{"1e10", "[1] 1e+10\n"},
		{"123456789", "[1] 123456789\n"},
		{"1/3", "[1] 0.3333333\n"},
		{"0.1 + 0.2", "[1] 0.3\n"},
		{"c(1/0, -1/0, 0/0)", "[1]  Inf -Inf  NaN\n"},
		{"\"a\"", "[1] \"a\"\n"},
		{"c(TRUE, NA, FALSE)", "[1]  TRUE    NA FALSE\n"},
		{"NULL", "NULL\n"},
		{"integer(0)", "integer(0)\n"},
		{"c(a = 1, bb = 22)", " a bb \n 1 22 \n"},
		{"list(1, b = \"x\")", "[[1]]\n[1] 1\n\n$b\n[1] \"x\"\n\n"},
		{"list()", "list()\n"},
		{"quote(f(x, y = 2))", "f(x, y = 2)\n"},
		{"deparse(quote(if (a) b else c))", "[1] \"if (a) b else c\"\n"},
		{"deparse(quote(function(x) if (x) 1 else 2))", "[1] \"function(x) if (x) 1 else 2\"\n"},
		{"cat(deparse(quote({if (a) b else c})), sep = \"|\")", "{|    if (a) b|    else c|}"},
		{"deparse(c(1L, 2L, 3L))", "[1] \"1:3\"\n"},
		{"v <- 1:2; attr(v, \"tag\") <- \"t\"; v", "[1] 1 2\nattr(,\"tag\")\n[1] \"t\"\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}
}

func TestArithmeticAndSubsetting(t *testing.T) {
	in, out := newTestInterp(t)
	cases := []struct {
		src  string
		want string
	}{
		{"5 %/% 2", "[1] 2\n"},
		{"-5 %% 3", "[1] 1\n"},
		{"2^10", "[1] 1024\n"},
		{"1:6 + 1:2", "[1] 2 4 4 6 6 8\n"},
		{"typeof(1:2 * 2L)", "[1] \"integer\"\n"},
		{"typeof(1:2 * 2)", "[1] \"double\"\n"},
		{"sum(1:10)", "[1] 55\n"},
		{"x <- c(10, 20, 30); x[2]", "[1] 20\n"},
		{"x[-1]", "[1] 20 30\n"},
		{"x[c(TRUE, FALSE)]", "[1] 10 30\n"},
		{"x[[3]]", "[1] 30\n"},
		{"x[5]", "[1] NA\n"},
		{"x[5] <- 50; x", "[1] 10 20 30 NA 50\n"},
		{"l <- list(a = 1, b = 2); l$b", "[1] 2\n"},
		{"l[[\"a\"]]", "[1] 1\n"},
		{"l$a <- NULL; names(l)", "[1] \"b\"\n"},
		{"n <- c(one = 1, two = 2); n[\"two\"]", "two \n  2 \n"},
		{"1 == 1 && (2 > 3 || TRUE)", "[1] TRUE\n"},
		{"!c(TRUE, FALSE)", "[1] FALSE  TRUE\n"},
		{"as.numeric(\"0x1A\")", "[1] 26\n"},
		{"as.numeric(\"-0x10\")", "[1] -16\n"},
		{"as.numeric(\" 2.5 \") + 1", "[1] 3.5\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}

	rerr := evalErr(t, in, out, "x[[10]]")
	if rerr.Code != ErrSubscript {
		t.Fatalf("x[[10]] raised %v", rerr)
	}
}
