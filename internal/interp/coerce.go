package interp

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Element conversions. Each returns the typed NA for NA input; warn is
// set when information was lost in a way R reports.

func realToInt(x float64) (v int32, warn bool) {
	if math.IsNaN(x) {
		return NAInteger, false
	}
	i, err := safecast.Truncate[int32](x)
	if err != nil || i == NAInteger {
		return NAInteger, true
	}
	return i, false
}

func realToLgl(x float64) int32 {
	switch {
	case math.IsNaN(x):
		return NALogical
	case x == 0:
		return 0
	}
	return 1
}

func intToReal(i int32) float64 {
	if i == NAInteger {
		return NAReal
	}
	return float64(i)
}

func intToLgl(i int32) int32 {
	switch i {
	case NAInteger:
		return NALogical
	case 0:
		return 0
	}
	return 1
}

func stringToLgl(s string) int32 {
	switch s {
	case "TRUE", "true", "T", "True":
		return 1
	case "FALSE", "false", "F", "False":
		return 0
	}
	return NALogical
}

// stringToReal parses a number the way as.numeric does: surrounding
// space is ignored, Inf/NaN/NA are accepted, anything else is NA.
func stringToReal(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	switch t {
	case "NA":
		return NAReal, true
	case "Inf", "inf", "+Inf":
		return math.Inf(1), true
	case "-Inf", "-inf":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	if hex, neg := strings.CutPrefix(t, "-"); strings.HasPrefix(strings.ToLower(hex), "0x") {
		u, err := strconv.ParseUint(hex[2:], 16, 64)
		if err != nil {
			return NAReal, false
		}
		if neg {
			return -float64(u), true
		}
		return float64(u), true
	}
	x, err := strconv.ParseFloat(t, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return x, true
		}
		return NAReal, false
	}
	return x, true
}

func stringToComplex(s string) (complex128, bool) {
	t := strings.TrimSpace(s)
	if t == "NA" {
		return NAComplex, true
	}
	if x, ok := stringToReal(t); ok {
		return complex(x, 0), true
	}
	z, err := strconv.ParseComplex(t, 128)
	if err != nil {
		return NAComplex, false
	}
	return z, true
}

// CoerceVector converts x to kind k. Atomic targets keep the attributes
// of x. Unparsable strings become NA with a warning.
func (in *Interp) CoerceVector(x SEXP, k Kind) SEXP {
	xk := in.Kind(x)
	if xk == k {
		return x
	}
	switch xk {
	case NilSXP:
		return in.AllocVector(k, 0)
	case SymSXP:
		if k == StrSXP {
			return in.ScalarString(in.cell(x).car)
		}
		if k == ExprSXP || k == VecSXP {
			in.Protect(x)
			v := in.AllocVector(k, 1)
			in.SetVectorElt(v, 0, x)
			in.Unprotect(1)
			return v
		}
	case ListSXP, LangSXP, DotSXP:
		return in.coercePairList(x, k)
	case VecSXP, ExprSXP:
		return in.coerceVectorList(x, k)
	case CloSXP, BuiltinSXP, SpecialSXP, EnvSXP:
		if k == VecSXP {
			in.Protect(x)
			v := in.AllocVector(VecSXP, 1)
			in.SetVectorElt(v, 0, x)
			in.Unprotect(1)
			return v
		}
	}
	if !xk.IsAtomic() {
		in.ErrorCode(ErrType, in.curCall, "cannot coerce type '%s' to vector of type '%s'", xk, k)
	}
	switch k {
	case VecSXP, ExprSXP:
		return in.atomicToList(x, k)
	case ListSXP:
		return in.vectorToPairList(x)
	}
	if !k.IsAtomic() {
		in.ErrorCode(ErrType, in.curCall, "cannot coerce type '%s' to vector of type '%s'", xk, k)
	}
	in.Protect(x)
	n := in.Length(x)
	out := in.Protect(in.AllocVector(k, n))
	warn := false
	for i := range n {
		if in.coerceElt(x, i, out, i) {
			warn = true
		}
	}
	in.copyAttribs(x, out)
	in.Unprotect(2)
	if warn {
		switch {
		case xk == StrSXP:
			in.Warning(in.curCall, "NAs introduced by coercion")
		case xk == CplxSXP:
			in.Warning(in.curCall, "imaginary parts discarded in coercion")
		default:
			in.Warning(in.curCall, "NAs introduced by coercion to integer range")
		}
	}
	return out
}

// coerceElt stores element i of atomic x into element j of atomic out,
// converting between kinds.
func (in *Interp) coerceElt(x SEXP, i int, out SEXP, j int) (warn bool) {
	xc, oc := in.cell(x), in.cell(out)
	switch oc.kind {
	case LglSXP:
		switch xc.kind {
		case LglSXP:
			oc.ints[j] = xc.ints[i]
		case IntSXP:
			oc.ints[j] = intToLgl(xc.ints[i])
		case RealSXP:
			oc.ints[j] = realToLgl(xc.reals[i])
		case CplxSXP:
			z := xc.cplx[i]
			switch {
			case IsNAComplex(z):
				oc.ints[j] = NALogical
			case z == 0:
				oc.ints[j] = 0
			default:
				oc.ints[j] = 1
			}
		case StrSXP:
			if xc.elts[i] == in.NAString {
				oc.ints[j] = NALogical
			} else {
				oc.ints[j] = stringToLgl(in.cells[xc.elts[i]].chars)
			}
		}
	case IntSXP:
		switch xc.kind {
		case LglSXP, IntSXP:
			oc.ints[j] = xc.ints[i]
		case RealSXP:
			oc.ints[j], warn = realToInt(xc.reals[i])
		case CplxSXP:
			z := xc.cplx[i]
			oc.ints[j], warn = realToInt(real(z))
			warn = warn || (!IsNAComplex(z) && imag(z) != 0)
		case StrSXP:
			if xc.elts[i] == in.NAString {
				oc.ints[j] = NAInteger
				break
			}
			v, ok := stringToReal(in.cells[xc.elts[i]].chars)
			oc.ints[j], warn = realToInt(v)
			warn = warn || !ok
		}
	case RealSXP:
		switch xc.kind {
		case LglSXP, IntSXP:
			oc.reals[j] = intToReal(xc.ints[i])
		case RealSXP:
			oc.reals[j] = xc.reals[i]
		case CplxSXP:
			z := xc.cplx[i]
			if IsNAComplex(z) {
				oc.reals[j] = NAReal
			} else {
				oc.reals[j] = real(z)
				warn = imag(z) != 0
			}
		case StrSXP:
			if xc.elts[i] == in.NAString {
				oc.reals[j] = NAReal
				break
			}
			var ok bool
			oc.reals[j], ok = stringToReal(in.cells[xc.elts[i]].chars)
			warn = !ok
		}
	case CplxSXP:
		switch xc.kind {
		case LglSXP, IntSXP:
			if xc.ints[i] == NAInteger {
				oc.cplx[j] = NAComplex
			} else {
				oc.cplx[j] = complex(float64(xc.ints[i]), 0)
			}
		case RealSXP:
			if IsNA(xc.reals[i]) {
				oc.cplx[j] = NAComplex
			} else {
				oc.cplx[j] = complex(xc.reals[i], 0)
			}
		case CplxSXP:
			oc.cplx[j] = xc.cplx[i]
		case StrSXP:
			if xc.elts[i] == in.NAString {
				oc.cplx[j] = NAComplex
				break
			}
			var ok bool
			oc.cplx[j], ok = stringToComplex(in.cells[xc.elts[i]].chars)
			warn = !ok
		}
	case StrSXP:
		var s string
		na := false
		switch xc.kind {
		case LglSXP:
			na = xc.ints[i] == NALogical
			s = lglString(xc.ints[i])
		case IntSXP:
			na = xc.ints[i] == NAInteger
			s = intString(xc.ints[i])
		case RealSXP:
			na = IsNA(xc.reals[i])
			s = realString(xc.reals[i], 15)
		case CplxSXP:
			na = IsNAComplex(xc.cplx[i])
			s = complexString(xc.cplx[i], 15)
		case StrSXP:
			in.cells[out].elts[j] = xc.elts[i]
			return false
		}
		if na {
			in.cells[out].elts[j] = in.NAString
		} else {
			in.cells[out].elts[j] = in.MkChar(s)
		}
	}
	return warn
}

func (in *Interp) atomicToList(x SEXP, k Kind) SEXP {
	in.Protect(x)
	n := in.Length(x)
	out := in.Protect(in.AllocVector(k, n))
	for i := range n {
		in.SetVectorElt(out, i, in.vectorSlice(x, i))
	}
	if names := in.Names(x); names != in.Nil {
		in.SetAttrib(out, in.sym.names, names)
	}
	in.Unprotect(2)
	return out
}

// vectorSlice returns element i of atomic x as a length-one vector.
func (in *Interp) vectorSlice(x SEXP, i int) SEXP {
	in.Protect(x)
	v := in.AllocVector(in.Kind(x), 1)
	in.copyElt(x, i, v, 0)
	in.Unprotect(1)
	return v
}

// copyElt copies element i of x into element j of y; both share a kind.
func (in *Interp) copyElt(x SEXP, i int, y SEXP, j int) {
	xc, yc := in.cell(x), in.cell(y)
	switch xc.kind {
	case LglSXP, IntSXP:
		yc.ints[j] = xc.ints[i]
	case RealSXP:
		yc.reals[j] = xc.reals[i]
	case CplxSXP:
		yc.cplx[j] = xc.cplx[i]
	case StrSXP, VecSXP, ExprSXP:
		yc.elts[j] = xc.elts[i]
	}
}

// setNA stores the kind's NA at element i.
func (in *Interp) setNA(x SEXP, i int) {
	c := in.cell(x)
	switch c.kind {
	case LglSXP, IntSXP:
		c.ints[i] = NAInteger
	case RealSXP:
		c.reals[i] = NAReal
	case CplxSXP:
		c.cplx[i] = NAComplex
	case StrSXP:
		c.elts[i] = in.NAString
	case VecSXP, ExprSXP:
		c.elts[i] = in.Nil
	}
}

func (in *Interp) vectorToPairList(x SEXP) SEXP {
	in.Protect(x)
	n := in.Length(x)
	names := in.Protect(in.Names(x))
	out := in.Protect(in.AllocList(n))
	p := out
	for i := range n {
		if in.Kind(x) == VecSXP || in.Kind(x) == ExprSXP {
			in.SetCar(p, in.VectorElt(x, i))
		} else {
			in.SetCar(p, in.vectorSlice(x, i))
		}
		if names != in.Nil && !in.IsNAStringElt(names, i) && in.Str(names, i) != "" {
			in.SetTag(p, in.Install(in.Str(names, i)))
		}
		p = in.Cdr(p)
	}
	in.Unprotect(3)
	return out
}

func (in *Interp) coercePairList(x SEXP, k Kind) SEXP {
	in.Protect(x)
	defer in.Unprotect(1)
	switch k {
	case VecSXP, ExprSXP:
		n := in.Length(x)
		out := in.Protect(in.AllocVector(k, n))
		i := 0
		for p := x; p != in.Nil; p = in.Cdr(p) {
			in.SetVectorElt(out, i, in.Car(p))
			i++
		}
		if names := in.tagNames(x); names != in.Nil {
			in.Protect(names)
			in.SetAttrib(out, in.sym.names, names)
			in.Unprotect(1)
		}
		in.Unprotect(1)
		return out
	case ListSXP:
		out := in.duplicateList(x)
		in.cell(out).kind = ListSXP
		return out
	case StrSXP:
		if in.Kind(x) == LangSXP {
			return in.MkStrings(in.Deparse(x, 60))
		}
	}
	v := in.Protect(in.coercePairList(x, VecSXP))
	out := in.coerceVectorList(v, k)
	in.Unprotect(1)
	return out
}

// coerceVectorList converts a list whose elements are all length one to
// an atomic vector; character targets deparse the other elements.
func (in *Interp) coerceVectorList(x SEXP, k Kind) SEXP {
	in.Protect(x)
	defer in.Unprotect(1)
	n := in.Length(x)
	switch k {
	case VecSXP, ExprSXP:
		out := in.Protect(in.AllocVector(k, n))
		copy(in.elts(out), in.elts(x))
		in.copyAttribs(x, out)
		in.Unprotect(1)
		return out
	case ListSXP:
		return in.vectorToPairList(x)
	}
	if !k.IsAtomic() {
		in.ErrorCode(ErrType, in.curCall, "cannot coerce type '%s' to vector of type '%s'", in.Kind(x), k)
	}
	out := in.Protect(in.AllocVector(k, n))
	for i := range n {
		e := in.VectorElt(x, i)
		switch {
		case in.Kind(e).IsAtomic() && in.Length(e) == 1:
			tmp := in.Protect(in.CoerceVector(e, k))
			in.copyElt(tmp, 0, out, i)
			in.Unprotect(1)
		case k == StrSXP:
			in.SetStringElt(out, i, in.MkChar(strings.Join(in.Deparse(e, 60), " ")))
		default:
			in.ErrorCode(ErrType, in.curCall, "(list) object cannot be coerced to type '%s'", k)
		}
	}
	if names := in.Names(x); names != in.Nil {
		in.SetAttrib(out, in.sym.names, names)
	}
	in.Unprotect(1)
	return out
}

// Scalar readers used for conditions and arguments: the first element
// converted, NA when empty.

func (in *Interp) AsLogical(x SEXP) int32 {
	if !in.Kind(x).IsAtomic() || in.Length(x) == 0 {
		return NALogical
	}
	switch in.Kind(x) {
	case LglSXP:
		return in.Logical(x)[0]
	case IntSXP:
		return intToLgl(in.Integer(x)[0])
	case RealSXP:
		return realToLgl(in.Real(x)[0])
	case CplxSXP:
		return realToLgl(real(in.Complex(x)[0]))
	case StrSXP:
		if in.IsNAStringElt(x, 0) {
			return NALogical
		}
		return stringToLgl(in.Str(x, 0))
	}
	return NALogical
}

func (in *Interp) AsInteger(x SEXP) int32 {
	if !in.Kind(x).IsAtomic() || in.Length(x) == 0 {
		return NAInteger
	}
	switch in.Kind(x) {
	case LglSXP, IntSXP:
		return in.Integer(x)[0]
	case RealSXP:
		v, _ := realToInt(in.Real(x)[0])
		return v
	case CplxSXP:
		v, _ := realToInt(real(in.Complex(x)[0]))
		return v
	case StrSXP:
		if in.IsNAStringElt(x, 0) {
			return NAInteger
		}
		f, _ := stringToReal(in.Str(x, 0))
		v, _ := realToInt(f)
		return v
	}
	return NAInteger
}

func (in *Interp) AsReal(x SEXP) float64 {
	if !in.Kind(x).IsAtomic() || in.Length(x) == 0 {
		return NAReal
	}
	switch in.Kind(x) {
	case LglSXP, IntSXP:
		return intToReal(in.Integer(x)[0])
	case RealSXP:
		return in.Real(x)[0]
	case CplxSXP:
		return real(in.Complex(x)[0])
	case StrSXP:
		if in.IsNAStringElt(x, 0) {
			return NAReal
		}
		f, _ := stringToReal(in.Str(x, 0))
		return f
	}
	return NAReal
}

// AsString returns the first element as text; ok is false for NA or a
// non-atomic value.
func (in *Interp) AsString(x SEXP) (string, bool) {
	switch in.Kind(x) {
	case SymSXP:
		return in.PrintName(x), true
	case CharSXP:
		return in.CharText(x), x != in.NAString
	}
	if !in.Kind(x).IsAtomic() || in.Length(x) == 0 {
		return "", false
	}
	if in.Kind(x) == StrSXP {
		return in.Str(x, 0), !in.IsNAStringElt(x, 0)
	}
	s := in.Protect(in.CoerceVector(in.vectorSlice(x, 0), StrSXP))
	defer in.Unprotect(1)
	return in.Str(s, 0), !in.IsNAStringElt(s, 0)
}
