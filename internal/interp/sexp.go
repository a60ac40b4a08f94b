package interp

import (
	"math"
)

// NA sentinels. NA_real_ is a NaN with the low word 1954, which keeps it
// distinguishable from an ordinary NaN.
const (
	NALogical int32 = math.MinInt32
	NAInteger int32 = math.MinInt32
)

var (
	NAReal    = math.Float64frombits(0x7FF00000000007A2)
	NAComplex = complex(NAReal, NAReal)
)

// IsNA reports whether x is NA_real_ (not merely NaN).
func IsNA(x float64) bool {
	return math.IsNaN(x) && uint32(math.Float64bits(x)) == 1954 //nolint:gosec // low word
}

// IsNAComplex reports a complex NA.
func IsNAComplex(z complex128) bool { return IsNA(real(z)) || IsNA(imag(z)) }

func (in *Interp) Kind(s SEXP) Kind { return in.cell(s).kind }

func (in *Interp) Car(s SEXP) SEXP    { return in.cell(s).car }
func (in *Interp) Cdr(s SEXP) SEXP    { return in.cell(s).cdr }
func (in *Interp) Tag(s SEXP) SEXP    { return in.cell(s).tag }
func (in *Interp) Cadr(s SEXP) SEXP   { return in.Car(in.Cdr(s)) }
func (in *Interp) Cddr(s SEXP) SEXP   { return in.Cdr(in.Cdr(s)) }
func (in *Interp) Caddr(s SEXP) SEXP  { return in.Car(in.Cddr(s)) }
func (in *Interp) Cadddr(s SEXP) SEXP { return in.Car(in.Cdr(in.Cddr(s))) }

func (in *Interp) SetCar(s, v SEXP) { in.cell(s).car = v }
func (in *Interp) SetCdr(s, v SEXP) { in.cell(s).cdr = v }
func (in *Interp) SetTag(s, v SEXP) { in.cell(s).tag = v }

// Attrib returns the attribute pairlist of s.
func (in *Interp) Attrib(s SEXP) SEXP { return in.cell(s).attr }

// SetAttribList replaces the whole attribute pairlist.
func (in *Interp) SetAttribList(s, a SEXP) {
	if s == in.Nil {
		return
	}
	in.cell(s).attr = a
}

func (in *Interp) Named(s SEXP) int { return int(in.cell(s).named) }

// SetNamed records how many bindings may reach s (2 means shared).
func (in *Interp) SetNamed(s SEXP, n int) {
	if s == in.Nil {
		return
	}
	in.cell(s).named = uint8(min(max(n, 0), 2)) //nolint:gosec // clamped
}

func (in *Interp) IsDebug(s SEXP) bool { return in.cell(s).flags&flagDebug != 0 }

func (in *Interp) SetDebug(s SEXP, on bool) {
	c := in.cell(s)
	if on {
		c.flags |= flagDebug
	} else {
		c.flags &^= flagDebug
	}
}

func (in *Interp) isMissingBinding(b SEXP) bool { return in.cell(b).flags&flagMissing != 0 }

func (in *Interp) setMissingBinding(b SEXP, on bool) {
	c := in.cell(b)
	if on {
		c.flags |= flagMissing
	} else {
		c.flags &^= flagMissing
	}
}

// Length is the element count of a vector or the node count of a list.
// Every other kind has length 1, except NULL and environments.
func (in *Interp) Length(s SEXP) int {
	c := in.cell(s)
	switch c.kind {
	case NilSXP:
		return 0
	case LglSXP, IntSXP:
		return len(c.ints)
	case RealSXP:
		return len(c.reals)
	case CplxSXP:
		return len(c.cplx)
	case StrSXP, VecSXP, ExprSXP:
		return len(c.elts)
	case ListSXP, LangSXP, DotSXP:
		return in.listLength(s)
	case EnvSXP:
		return in.listLength(c.car)
	}
	return 1
}

// listLength counts pairlist nodes. A walk longer than the arena can only
// be a cycle.
func (in *Interp) listLength(s SEXP) int {
	n := 0
	limit := len(in.cells)
	for ; s != in.Nil && in.cell(s).kind.IsPairKind(); s = in.cell(s).cdr {
		n++
		if n > limit {
			in.ErrorCode(ErrCyclicList, 0, "cyclic pairlist")
		}
	}
	return n
}

// Payload accessors. The returned slices alias the cell; writes through
// them are in-place mutations.
func (in *Interp) Logical(s SEXP) []int32      { return in.cell(s).ints }
func (in *Interp) Integer(s SEXP) []int32      { return in.cell(s).ints }
func (in *Interp) Real(s SEXP) []float64       { return in.cell(s).reals }
func (in *Interp) Complex(s SEXP) []complex128 { return in.cell(s).cplx }
func (in *Interp) elts(s SEXP) []SEXP          { return in.cell(s).elts }

func (in *Interp) StringElt(s SEXP, i int) SEXP    { return in.cell(s).elts[i] }
func (in *Interp) SetStringElt(s SEXP, i int, v SEXP) { in.cell(s).elts[i] = v }
func (in *Interp) VectorElt(s SEXP, i int) SEXP    { return in.cell(s).elts[i] }
func (in *Interp) SetVectorElt(s SEXP, i int, v SEXP) { in.cell(s).elts[i] = v }

// CharText is the text of a CHARSXP.
func (in *Interp) CharText(c SEXP) string { return in.cell(c).chars }

// Str returns element i of a character vector as Go text ("NA" for NA).
func (in *Interp) Str(s SEXP, i int) string { return in.cell(in.cell(s).elts[i]).chars }

// IsNAStringElt reports whether element i is NA_character_.
func (in *Interp) IsNAStringElt(s SEXP, i int) bool { return in.cell(s).elts[i] == in.NAString }

// PrintName is the name of a symbol.
func (in *Interp) PrintName(sym SEXP) string { return in.cell(in.cell(sym).car).chars }

func (in *Interp) SymValue(sym SEXP) SEXP       { return in.cell(sym).cdr }
func (in *Interp) SetSymValue(sym SEXP, v SEXP) { in.cell(sym).cdr = v }

func (in *Interp) Formals(f SEXP) SEXP { return in.cell(f).car }
func (in *Interp) Body(f SEXP) SEXP    { return in.cell(f).cdr }
func (in *Interp) CloEnv(f SEXP) SEXP  { return in.cell(f).tag }

func (in *Interp) PrValue(p SEXP) SEXP { return in.cell(p).car }
func (in *Interp) PrCode(p SEXP) SEXP  { return in.cell(p).cdr }
func (in *Interp) PrEnv(p SEXP) SEXP   { return in.cell(p).tag }

func (in *Interp) Frame(env SEXP) SEXP  { return in.cell(env).car }
func (in *Interp) Enclos(env SEXP) SEXP { return in.cell(env).cdr }

// PrimName is the name a builtin or special was installed under.
func (in *Interp) PrimName(p SEXP) string { return in.prims[in.cell(p).prim].name }

// Constructors.

// Cons allocates a pairlist node. Both arguments are protected across the
// allocation.
func (in *Interp) Cons(car, cdr SEXP) SEXP {
	in.Protect(car)
	in.Protect(cdr)
	s := in.allocCell(ListSXP)
	in.Unprotect(2)
	c := &in.cells[s]
	c.car = car
	c.cdr = cdr
	return s
}

// LCons allocates a call node.
func (in *Interp) LCons(car, cdr SEXP) SEXP {
	s := in.Cons(car, cdr)
	in.cells[s].kind = LangSXP
	return s
}

func (in *Interp) List1(a SEXP) SEXP { return in.Cons(a, in.Nil) }

func (in *Interp) List2(a, b SEXP) SEXP {
	in.Protect(a)
	s := in.Cons(a, in.List1(b))
	in.Unprotect(1)
	return s
}

func (in *Interp) List3(a, b, c SEXP) SEXP {
	in.Protect(a)
	s := in.Cons(a, in.List2(b, c))
	in.Unprotect(1)
	return s
}

func (in *Interp) List4(a, b, c, d SEXP) SEXP {
	in.Protect(a)
	s := in.Cons(a, in.List3(b, c, d))
	in.Unprotect(1)
	return s
}

func (in *Interp) Lang1(f SEXP) SEXP { return in.LCons(f, in.Nil) }

func (in *Interp) Lang2(f, a SEXP) SEXP {
	in.Protect(f)
	s := in.LCons(f, in.List1(a))
	in.Unprotect(1)
	return s
}

func (in *Interp) Lang3(f, a, b SEXP) SEXP {
	in.Protect(f)
	s := in.LCons(f, in.List2(a, b))
	in.Unprotect(1)
	return s
}

func (in *Interp) Lang4(f, a, b, c SEXP) SEXP {
	in.Protect(f)
	s := in.LCons(f, in.List3(a, b, c))
	in.Unprotect(1)
	return s
}

// AllocList builds a pairlist of n NULL elements.
func (in *Interp) AllocList(n int) SEXP {
	s := in.Nil
	for range n {
		s = in.Cons(in.Nil, s)
	}
	return s
}

// Nth returns the node at position i of a pairlist.
func (in *Interp) Nth(s SEXP, i int) SEXP {
	for ; i > 0 && s != in.Nil; i-- {
		s = in.Cdr(s)
	}
	return s
}

// LastNode returns the final node of a non-empty pairlist.
func (in *Interp) LastNode(s SEXP) SEXP {
	for in.Cdr(s) != in.Nil {
		s = in.Cdr(s)
	}
	return s
}

func (in *Interp) MkString(s string) SEXP {
	ch := in.Protect(in.MkChar(s))
	v := in.AllocVector(StrSXP, 1)
	in.cells[v].elts[0] = ch
	in.Unprotect(1)
	return v
}

// MkStrings builds a character vector from Go strings.
func (in *Interp) MkStrings(ss []string) SEXP {
	v := in.Protect(in.AllocVector(StrSXP, len(ss)))
	for i, s := range ss {
		in.SetStringElt(v, i, in.MkChar(s))
	}
	in.Unprotect(1)
	return v
}

func (in *Interp) ScalarLogical(b int32) SEXP {
	v := in.AllocVector(LglSXP, 1)
	in.cells[v].ints[0] = b
	return v
}

// ScalarBool is ScalarLogical for a Go bool.
func (in *Interp) ScalarBool(b bool) SEXP {
	if b {
		return in.ScalarLogical(1)
	}
	return in.ScalarLogical(0)
}

func (in *Interp) ScalarInteger(i int32) SEXP {
	v := in.AllocVector(IntSXP, 1)
	in.cells[v].ints[0] = i
	return v
}

func (in *Interp) ScalarReal(x float64) SEXP {
	v := in.AllocVector(RealSXP, 1)
	in.cells[v].reals[0] = x
	return v
}

func (in *Interp) ScalarComplex(z complex128) SEXP {
	v := in.AllocVector(CplxSXP, 1)
	in.cells[v].cplx[0] = z
	return v
}

// ScalarString wraps an existing CHARSXP.
func (in *Interp) ScalarString(ch SEXP) SEXP {
	in.Protect(ch)
	v := in.AllocVector(StrSXP, 1)
	in.cells[v].elts[0] = ch
	in.Unprotect(1)
	return v
}

// MkClosure builds a closure from formals, body and environment.
func (in *Interp) MkClosure(formals, body, env SEXP) SEXP {
	in.Protect(formals)
	in.Protect(body)
	in.Protect(env)
	f := in.allocCell(CloSXP)
	in.Unprotect(3)
	c := &in.cells[f]
	c.car = formals
	c.cdr = body
	c.tag = env
	return f
}

// MkPromise wraps expr for lazy evaluation in env.
func (in *Interp) MkPromise(expr, env SEXP) SEXP {
	in.Protect(expr)
	in.Protect(env)
	p := in.allocCell(PromSXP)
	in.Unprotect(2)
	c := &in.cells[p]
	c.car = in.Unbound
	c.cdr = expr
	c.tag = env
	in.SetNamed(expr, 2)
	return p
}

// forcedPromise wraps an already computed value, as complex assignment
// does for its value= argument.
func (in *Interp) forcedPromise(expr, value SEXP) SEXP {
	in.Protect(value)
	p := in.MkPromise(expr, in.Nil)
	in.Unprotect(1)
	in.cells[p].car = value
	return p
}

// NewEnvironment creates an environment whose frame binds the tags of
// names to the values of values, pairwise.
func (in *Interp) NewEnvironment(names, values, enclos SEXP) SEXP {
	in.Protect(names)
	in.Protect(values)
	in.Protect(enclos)
	env := in.allocCell(EnvSXP)
	in.Unprotect(3)
	v := values
	for n := names; v != in.Nil && n != in.Nil; n = in.Cdr(n) {
		in.SetTag(v, in.Tag(n))
		v = in.Cdr(v)
	}
	c := &in.cells[env]
	c.car = values
	c.cdr = enclos
	return env
}

// newPrimitive allocates the cell for primitive table entry i.
func (in *Interp) newPrimitive(i int) SEXP {
	p := in.prims[i]
	s := in.allocCell(p.kind)
	in.cells[s].prim = uint16(i) //nolint:gosec // the table has far fewer than 65536 entries
	return s
}

// Protected runs f with the given values protected, restoring the stack
// depth afterwards.
func (in *Interp) Protected(f func(), vals ...SEXP) {
	top := len(in.ppstack)
	for _, v := range vals {
		in.Protect(v)
	}
	f()
	in.ResetPPStack(top)
}
