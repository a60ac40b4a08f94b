package interp

import "math"

// Duplicate deep-copies vectors, pairlists, calls, closures and promises
// together with their attributes. Environments, symbols, primitives and
// the singletons are returned as is.
func (in *Interp) Duplicate(s SEXP) SEXP {
	switch in.Kind(s) {
	case NilSXP, SymSXP, EnvSXP, SpecialSXP, BuiltinSXP, CharSXP:
		return s
	case ListSXP, LangSXP, DotSXP:
		return in.duplicateList(s)
	case CloSXP:
		in.Protect(s)
		f := in.MkClosure(in.Formals(s), in.Body(s), in.CloEnv(s))
		in.Protect(f)
		in.copyAttribs(s, f)
		in.Unprotect(2)
		return f
	case PromSXP:
		in.Protect(s)
		p := in.MkPromise(in.PrCode(s), in.PrEnv(s))
		in.cells[p].car = in.PrValue(s)
		in.Unprotect(1)
		return p
	}
	in.Protect(s)
	n := in.Length(s)
	out := in.Protect(in.AllocVector(in.Kind(s), n))
	src, dst := in.cell(s), in.cell(out)
	switch src.kind {
	case LglSXP, IntSXP:
		copy(dst.ints, src.ints)
	case RealSXP:
		copy(dst.reals, src.reals)
	case CplxSXP:
		copy(dst.cplx, src.cplx)
	case StrSXP:
		copy(dst.elts, src.elts)
	case VecSXP, ExprSXP:
		for i := range n {
			in.SetVectorElt(out, i, in.Duplicate(in.VectorElt(s, i)))
		}
	}
	in.copyAttribs(s, out)
	in.Unprotect(2)
	return out
}

// duplicateList copies a pairlist node by node, duplicating each element.
func (in *Interp) duplicateList(s SEXP) SEXP {
	if s == in.Nil {
		return s
	}
	top := in.PPStackTop()
	in.Protect(s)
	head := in.Protect(in.Cons(in.Nil, in.Nil))
	tail := head
	for p := s; p != in.Nil; p = in.Cdr(p) {
		node := in.Cons(in.Nil, in.Nil)
		in.SetCdr(tail, node)
		tail = node
		in.cell(node).kind = in.Kind(p)
		in.SetTag(node, in.Tag(p))
		in.SetCar(node, in.Duplicate(in.Car(p)))
		in.copyAttribs(p, node)
	}
	out := in.Cdr(head)
	in.ResetPPStack(top)
	return out
}

// Identical is the deep structural comparison behind identical(). NaN
// equals NaN; NA equals NA but not NaN.
func (in *Interp) Identical(x, y SEXP) bool {
	if x == y {
		return true
	}
	kx, ky := in.Kind(x), in.Kind(y)
	if kx != ky {
		return false
	}
	if !in.identicalAttribs(x, y) {
		return false
	}
	cx, cy := in.cell(x), in.cell(y)
	switch kx {
	case NilSXP:
		return true
	case SymSXP, EnvSXP:
		return false
	case SpecialSXP, BuiltinSXP:
		return cx.prim == cy.prim
	case CharSXP:
		return (x == in.NAString) == (y == in.NAString) && cx.chars == cy.chars
	case LglSXP, IntSXP:
		if len(cx.ints) != len(cy.ints) {
			return false
		}
		for i := range cx.ints {
			if cx.ints[i] != cy.ints[i] {
				return false
			}
		}
		return true
	case RealSXP:
		if len(cx.reals) != len(cy.reals) {
			return false
		}
		for i := range cx.reals {
			if !identicalReal(cx.reals[i], cy.reals[i]) {
				return false
			}
		}
		return true
	case CplxSXP:
		if len(cx.cplx) != len(cy.cplx) {
			return false
		}
		for i := range cx.cplx {
			a, b := cx.cplx[i], cy.cplx[i]
			if !identicalReal(real(a), real(b)) || !identicalReal(imag(a), imag(b)) {
				return false
			}
		}
		return true
	case StrSXP, VecSXP, ExprSXP:
		if len(cx.elts) != len(cy.elts) {
			return false
		}
		for i := range cx.elts {
			if !in.Identical(cx.elts[i], cy.elts[i]) {
				return false
			}
		}
		return true
	case CloSXP:
		return in.Identical(cx.car, cy.car) && in.Identical(cx.cdr, cy.cdr) && cx.tag == cy.tag
	case PromSXP:
		return false
	}
	// pairlists and calls
	for x != in.Nil && y != in.Nil {
		if in.Kind(x) != in.Kind(y) || in.Tag(x) != in.Tag(y) || !in.Identical(in.Car(x), in.Car(y)) {
			return false
		}
		x, y = in.Cdr(x), in.Cdr(y)
	}
	return x == y
}

func identicalReal(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b) && IsNA(a) == IsNA(b)
	}
	return a == b
}

// identicalAttribs compares attribute sets irrespective of order.
func (in *Interp) identicalAttribs(x, y SEXP) bool {
	ax, ay := in.Attrib(x), in.Attrib(y)
	if in.Kind(x).IsPairKind() || ax == ay {
		return true
	}
	if in.listLength(ax) != in.listLength(ay) {
		return false
	}
	for a := ax; a != in.Nil; a = in.Cdr(a) {
		found := false
		for b := ay; b != in.Nil; b = in.Cdr(b) {
			if in.Tag(a) == in.Tag(b) {
				if !in.Identical(in.Car(a), in.Car(b)) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
