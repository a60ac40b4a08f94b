package interp

import (
	"io"
	"math"
	"testing"
)

func newBareInterp(t *testing.T, nsize int) *Interp {
	t.Helper()
	return New(Options{NSize: nsize, Stdout: io.Discard, Stderr: io.Discard, CheckAccess: true})
}

// guard runs fn and returns the interpreter error it raised, if any.
func guard(in *Interp, fn func()) *RError {
	err := in.Guard(fn)
	if err == nil {
		return nil
	}
	return err.(*RError)
}

func TestProtectedSurvivesCollection(t *testing.T) {
	in := newBareInterp(t, 4000)
	if err := guard(in, func() {
		keep := in.Protect(in.AllocVector(RealSXP, 16))
		for i := range in.Real(keep) {
			in.Real(keep)[i] = float64(i) * 1.5
		}
		// churn through the arena several times over
		for range 50 {
			for range 200 {
				in.AllocVector(IntSXP, 8)
			}
			in.GC()
		}
		if in.IsFree(keep) {
			t.Fatalf("protected vector was reclaimed")
		}
		for i, v := range in.Real(keep) {
			if v != float64(i)*1.5 {
				t.Fatalf("element %d = %v after collection", i, v)
			}
		}
		in.Unprotect(1)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnprotectedIsReclaimed(t *testing.T) {
	in := newBareInterp(t, 4000)
	var loose SEXP
	if err := guard(in, func() {
		loose = in.AllocVector(IntSXP, 4)
		in.GC()
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.IsFree(loose) {
		t.Fatalf("unreachable vector survived a collection")
	}
	err := guard(in, func() { in.Length(loose) })
	if err == nil || err.Code != ErrUseAfterFree {
		t.Fatalf("reading a swept cell raised %v", err)
	}
}

func TestProtectStackDiscipline(t *testing.T) {
	in := New(Options{NSize: 4000, PPSize: 8, Stdout: io.Discard, Stderr: io.Discard})
	err := guard(in, func() {
		for range 9 {
			in.Protect(in.Nil)
		}
	})
	if err == nil || err.Code != ErrProtectOverflow {
		t.Fatalf("overflow raised %v", err)
	}
	if in.PPStackTop() != 0 {
		t.Fatalf("protect depth %d after the error unwound", in.PPStackTop())
	}

	err = guard(in, func() { in.Unprotect(1) })
	if err == nil || err.Code != ErrProtectUnderflow {
		t.Fatalf("underflow raised %v", err)
	}

	if err := guard(in, func() {
		a := in.Protect(in.ScalarInteger(1))
		b := in.Protect(in.ScalarInteger(2))
		c := in.Protect(in.ScalarInteger(3))
		in.UnprotectPtr(b)
		if in.PPStackTop() != 2 || in.ppstack[0] != a || in.ppstack[1] != c {
			t.Fatalf("UnprotectPtr left %v", in.ppstack)
		}
		idx := in.ProtectIndex(in.Nil)
		in.Reprotect(b, idx)
		in.GC()
		if in.IsFree(b) {
			t.Fatalf("reprotected value was reclaimed")
		}
		in.Unprotect(3)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = guard(in, func() { in.UnprotectPtr(in.Nil) })
	if err == nil || err.Code != ErrProtectNotFound {
		t.Fatalf("UnprotectPtr of unknown value raised %v", err)
	}
}

func TestHeapExhaustion(t *testing.T) {
	in := newBareInterp(t, 4000)
	err := guard(in, func() {
		l := in.Protect(in.Nil)
		idx := in.PPStackTop() - 1
		for {
			l = in.Cons(in.Nil, l)
			in.Reprotect(l, idx)
		}
	})
	if err == nil || err.Code != ErrHeapExhausted || !err.Code.Resource() {
		t.Fatalf("exhaustion raised %v", err)
	}
	// everything built was garbage once the guard unwound
	in.GC()
	if st := in.HeapStats(); st.ConsFree < st.ConsTotal/2 {
		t.Fatalf("heap not reclaimed after the error: %+v", st)
	}

	small := New(Options{NSize: 4000, VSize: 64 << 10, Stdout: io.Discard, Stderr: io.Discard})
	err = guard(small, func() { small.AllocVector(RealSXP, 100000) })
	if err == nil || err.Code != ErrVectorHeapExhausted {
		t.Fatalf("vector exhaustion raised %v", err)
	}
}

func TestAllocVectorDefaults(t *testing.T) {
	in := newBareInterp(t, 4000)
	kinds := []Kind{LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP, VecSXP, ExprSXP}
	for _, k := range kinds {
		for _, n := range []int{0, 1, 17} {
			if err := guard(in, func() {
				v := in.AllocVector(k, n)
				if in.Kind(v) != k || in.Length(v) != n {
					t.Fatalf("AllocVector(%s, %d) = %s of length %d", k, n, in.Kind(v), in.Length(v))
				}
				for i := range n {
					switch k {
					case LglSXP, IntSXP:
						if in.Integer(v)[i] != 0 {
							t.Errorf("%s[%d] = %d", k, i, in.Integer(v)[i])
						}
					case RealSXP:
						if in.Real(v)[i] != 0 || math.Signbit(in.Real(v)[i]) {
							t.Errorf("%s[%d] = %v", k, i, in.Real(v)[i])
						}
					case CplxSXP:
						if in.Complex(v)[i] != 0 {
							t.Errorf("%s[%d] = %v", k, i, in.Complex(v)[i])
						}
					case StrSXP:
						if in.StringElt(v, i) != in.BlankString {
							t.Errorf("%s[%d] = %q", k, i, in.Str(v, i))
						}
					default:
						if in.VectorElt(v, i) != in.Nil {
							t.Errorf("%s[%d] is not NULL", k, i)
						}
					}
				}
			}); err != nil {
				t.Fatalf("AllocVector(%s, %d): %v", k, n, err)
			}
		}
	}
	err := guard(in, func() { in.AllocVector(SymSXP, 1) })
	if err == nil || err.Code != ErrType {
		t.Fatalf("non-vector kind raised %v", err)
	}
}

// TestTortureRun evaluates a small workload with a collection before every
// allocation; any temporary left unprotected across an allocation shows up
// as a use-after-free error or a wrong result.
func TestTortureRun(t *testing.T) {
	in, out := newTestInterp(t)
	in.SetTorture(true)
	defer in.SetTorture(false)
	got := evalOK(t, in, out, `
fib <- function(n) if (n < 2) n else fib(n - 1) + fib(n - 2)
l <- list(a = 1:3, b = "x")
l$c <- paste("v", 1:2, sep = "")
v <- c(fib(5), length(l), nchar(l$c[2]))
names(v) <- c("fib", "len", "nc")
v
`)
	want := "fib len  nc \n  5   3   2 \n"
	if got != want {
		t.Fatalf("torture output %q, want %q", got, want)
	}
}

// TestTortureNamedArguments parses calls and formals with tags while every
// allocation collects, so argument values must stay rooted while the tag
// symbols are created.
func TestTortureNamedArguments(t *testing.T) {
	in, out := newTestInterp(t)
	in.SetTorture(true)
	defer in.SetTorture(false)
	cases := []struct {
		src  string
		want string
	}{
		{`paste("a", 1:3, sep = "-")`, "[1] \"a-1\" \"a-2\" \"a-3\"\n"},
		{`k <- function(first, second = "x") paste(first, second); k(second = "y", first = "z")`, "[1] \"z y\"\n"},
		{`k("w")`, "[1] \"w x\"\n"},
		{`list(alpha = 1.5, beta = "b")$beta`, "[1] \"b\"\n"},
	}
	for _, tc := range cases {
		if got := evalOK(t, in, out, tc.src); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.src, got, tc.want)
		}
	}
}

func TestGCReport(t *testing.T) {
	in, out := newTestInterp(t)
	got := evalOK(t, in, out, "g <- gc(); dim(g); attr(g, \"dimnames\")[[1]]")
	if got != "[1] 2 2\n[1] \"Ncells\" \"Vcells\"\n" {
		t.Fatalf("gc() shape: %q", got)
	}
	before := in.HeapStats().Collections
	evalOK(t, in, out, "invisible(gc())")
	if in.HeapStats().Collections != before+1 {
		t.Fatalf("gc() did not collect")
	}
}
