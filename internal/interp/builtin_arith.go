package interp

import (
	"math"
	"math/cmplx"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	opPlus = iota + 1
	opMinus
	opTimes
	opDiv
	opPow
	opMod
	opIDiv
)

const (
	relEQ = iota + 1
	relNE
	relLT
	relGT
	relLE
	relGE
)

const (
	mathSqrt = iota + 1
	mathExp
	mathAbs
	mathFloor
	mathCeiling
	mathSin
	mathCos
	mathTan
)

const (
	sumSum = iota + 1
	sumProd
	sumMax
	sumMin
)

func isNumericKind(k Kind) bool {
	switch k {
	case LglSXP, IntSXP, RealSXP, CplxSXP:
		return true
	}
	return false
}

// recycle returns the result length of a binary element-wise operation,
// warning when the longer length is not a multiple of the shorter.
func (in *Interp) recycle(call SEXP, nx, ny int) int {
	if nx == 0 || ny == 0 {
		return 0
	}
	n := max(nx, ny)
	if n%nx != 0 || n%ny != 0 {
		in.Warning(call, "longer object length is not a multiple of shorter object length")
	}
	return n
}

// binaryAttribs gives out the attributes of the full-length operands, x
// taking precedence.
func (in *Interp) binaryAttribs(x, y, out SEXP, nx, ny, n int) {
	if ny == n && in.Attrib(y) != in.Nil {
		in.copyAttribs(y, out)
	}
	if nx == n && in.Attrib(x) != in.Nil {
		in.copyAttribs(x, out)
	}
}

func doArith(in *Interp, call, op, args, rho SEXP) SEXP {
	code := in.primCode(op)
	switch in.Length(args) {
	case 1:
		return in.unaryArith(call, code, in.Car(args))
	case 2:
		return in.binaryArith(call, code, in.Car(args), in.Cadr(args))
	}
	in.ErrorCall(call, "operator needs one or two arguments")
	return in.Nil
}

func (in *Interp) unaryArith(call SEXP, code int, x SEXP) SEXP {
	k := in.Kind(x)
	if !isNumericKind(k) {
		in.ErrorCall(call, "invalid argument to unary operator")
	}
	if code != opPlus && code != opMinus {
		in.ErrorCall(call, "invalid unary operator")
	}
	if k == LglSXP {
		k = IntSXP
	}
	if code == opPlus && k == in.Kind(x) {
		return x
	}
	n := in.Length(x)
	out := in.Protect(in.AllocVector(k, n))
	switch k {
	case IntSXP:
		src, dst := in.Integer(x), in.Integer(out)
		for i, v := range src {
			if v == NAInteger || code == opPlus {
				dst[i] = v
			} else {
				dst[i] = -v
			}
		}
	case RealSXP:
		for i, v := range in.Real(x) {
			if code == opMinus {
				v = -v
			}
			in.Real(out)[i] = v
		}
	case CplxSXP:
		for i, v := range in.Complex(x) {
			if code == opMinus {
				v = -v
			}
			in.Complex(out)[i] = v
		}
	}
	in.copyAttribs(x, out)
	in.Unprotect(1)
	return out
}

func (in *Interp) binaryArith(call SEXP, code int, x, y SEXP) SEXP {
	xk, yk := in.Kind(x), in.Kind(y)
	if (!isNumericKind(xk) && xk != NilSXP) || (!isNumericKind(yk) && yk != NilSXP) {
		in.ErrorCode(ErrType, call, "non-numeric argument to binary operator")
	}
	k := IntSXP
	switch {
	case xk == CplxSXP || yk == CplxSXP:
		k = CplxSXP
	case xk == RealSXP || yk == RealSXP || code == opDiv || code == opPow:
		k = RealSXP
	}
	if k == CplxSXP && (code == opMod || code == opIDiv) {
		in.ErrorCall(call, "invalid operation on complex numbers")
	}
	top := in.PPStackTop()
	nx, ny := in.Length(x), in.Length(y)
	n := in.recycle(call, nx, ny)
	cx := in.Protect(in.CoerceVector(x, k))
	cy := in.Protect(in.CoerceVector(y, k))
	out := in.Protect(in.AllocVector(k, n))
	switch k {
	case IntSXP:
		a, b, r := in.Integer(cx), in.Integer(cy), in.Integer(out)
		overflow := false
		for i := range n {
			v, o := intArith(code, a[i%nx], b[i%ny])
			r[i] = v
			overflow = overflow || o
		}
		if overflow {
			in.Warning(call, "NAs produced by integer overflow")
		}
	case RealSXP:
		a, b, r := in.Real(cx), in.Real(cy), in.Real(out)
		for i := range n {
			r[i] = realArith(code, a[i%nx], b[i%ny])
		}
	case CplxSXP:
		a, b, r := in.Complex(cx), in.Complex(cy), in.Complex(out)
		for i := range n {
			r[i] = complexArith(code, a[i%nx], b[i%ny])
		}
	}
	if n > 0 {
		in.binaryAttribs(x, y, out, nx, ny, n)
	}
	in.ResetPPStack(top)
	return out
}

func intArith(code int, a, b int32) (int32, bool) {
	if a == NAInteger || b == NAInteger {
		return NAInteger, false
	}
	var r int64
	switch code {
	case opPlus:
		r = int64(a) + int64(b)
	case opMinus:
		r = int64(a) - int64(b)
	case opTimes:
		r = int64(a) * int64(b)
	case opMod:
		if b == 0 {
			return NAInteger, false
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, false
	case opIDiv:
		if b == 0 {
			return NAInteger, false
		}
		return int32(math.Floor(float64(a) / float64(b))), false
	}
	if r > math.MaxInt32 || r <= math.MinInt32 {
		return NAInteger, true
	}
	return int32(r), false //nolint:gosec // range checked above
}

func realArith(code int, a, b float64) float64 {
	if code == opPow && (a == 1 || b == 0) {
		return 1
	}
	if IsNA(a) || IsNA(b) {
		return NAReal
	}
	switch code {
	case opPlus:
		return a + b
	case opMinus:
		return a - b
	case opTimes:
		return a * b
	case opDiv:
		return a / b
	case opPow:
		return math.Pow(a, b)
	case opMod:
		if b == 0 {
			return math.NaN()
		}
		return a - math.Floor(a/b)*b
	case opIDiv:
		return math.Floor(a / b)
	}
	return NAReal
}

func complexArith(code int, a, b complex128) complex128 {
	if IsNAComplex(a) || IsNAComplex(b) {
		return NAComplex
	}
	switch code {
	case opPlus:
		return a + b
	case opMinus:
		return a - b
	case opTimes:
		return a * b
	case opDiv:
		return a / b
	case opPow:
		if b == 0 {
			return 1
		}
		return cmplx.Pow(a, b)
	}
	return NAComplex
}

// relopOperand turns symbols and calls into their text, so that they
// compare with strings.
func (in *Interp) relopOperand(call, x SEXP) SEXP {
	switch in.Kind(x) {
	case SymSXP:
		return in.MkString(in.PrintName(x))
	case LangSXP:
		return in.MkStrings(in.Deparse(x, DefaultCutoff))
	case NilSXP:
		return in.AllocVector(LglSXP, 0)
	}
	if !in.Kind(x).IsAtomic() {
		in.ErrorCall(call, "comparison (%s) is possible only for atomic and list types", in.callName(call))
	}
	return x
}

func doRelop(in *Interp, call, op, args, rho SEXP) SEXP {
	code := in.primCode(op)
	top := in.PPStackTop()
	x := in.Protect(in.relopOperand(call, in.Car(args)))
	y := in.Protect(in.relopOperand(call, in.Cadr(args)))
	xk, yk := in.Kind(x), in.Kind(y)
	k := xk
	if yk.rank() > k.rank() {
		k = yk
	}
	if k == LglSXP || k == IntSXP {
		k = RealSXP
	}
	if k == CplxSXP && code != relEQ && code != relNE {
		in.ErrorCall(call, "invalid comparison with complex values")
	}
	nx, ny := in.Length(x), in.Length(y)
	n := in.recycle(call, nx, ny)
	cx := in.Protect(in.CoerceVector(x, k))
	cy := in.Protect(in.CoerceVector(y, k))
	out := in.Protect(in.AllocVector(LglSXP, n))
	r := in.Logical(out)
	switch k {
	case RealSXP:
		a, b := in.Real(cx), in.Real(cy)
		for i := range n {
			u, v := a[i%nx], b[i%ny]
			if math.IsNaN(u) || math.IsNaN(v) {
				r[i] = NALogical
				continue
			}
			r[i] = cmpResult(code, cmpFloat(u, v))
		}
	case CplxSXP:
		a, b := in.Complex(cx), in.Complex(cy)
		for i := range n {
			u, v := a[i%nx], b[i%ny]
			if cmplx.IsNaN(u) || cmplx.IsNaN(v) || IsNAComplex(u) || IsNAComplex(v) {
				r[i] = NALogical
				continue
			}
			c := 1
			if u == v {
				c = 0
			}
			r[i] = cmpResult(code, c)
		}
	case StrSXP:
		var col *collate.Collator
		for i := range n {
			if in.IsNAStringElt(cx, i%nx) || in.IsNAStringElt(cy, i%ny) {
				r[i] = NALogical
				continue
			}
			u, v := in.Str(cx, i%nx), in.Str(cy, i%ny)
			c := 0
			switch {
			case u == v:
			case code == relEQ || code == relNE:
				c = 1
			default:
				if col == nil {
					col = collate.New(language.English)
				}
				c = col.CompareString(u, v)
				if c == 0 {
					c = cmpString(u, v)
				}
			}
			r[i] = cmpResult(code, c)
		}
	}
	if n > 0 {
		in.binaryAttribs(x, y, out, nx, ny, n)
	}
	in.ResetPPStack(top)
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpResult(code, c int) int32 {
	var ok bool
	switch code {
	case relEQ:
		ok = c == 0
	case relNE:
		ok = c != 0
	case relLT:
		ok = c < 0
	case relGT:
		ok = c > 0
	case relLE:
		ok = c <= 0
	case relGE:
		ok = c >= 0
	}
	if ok {
		return 1
	}
	return 0
}

// asLogicalVector coerces an operand of ! & | to logical.
func (in *Interp) asLogicalVector(call, x SEXP) SEXP {
	switch in.Kind(x) {
	case LglSXP:
		return x
	case IntSXP, RealSXP, CplxSXP, NilSXP:
		return in.CoerceVector(x, LglSXP)
	}
	in.ErrorCall(call, "operations are possible only for numeric, logical or complex types")
	return in.Nil
}

func doNot(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	if !isNumericKind(in.Kind(x)) && in.Kind(x) != NilSXP {
		in.ErrorCall(call, "invalid argument type")
	}
	lx := in.Protect(in.asLogicalVector(call, x))
	n := in.Length(lx)
	out := in.Protect(in.AllocVector(LglSXP, n))
	for i, v := range in.Logical(lx) {
		switch v {
		case NALogical:
			in.Logical(out)[i] = NALogical
		case 0:
			in.Logical(out)[i] = 1
		}
	}
	for _, a := range []SEXP{in.sym.names, in.sym.dim, in.sym.dimnames} {
		if v := in.GetAttrib(x, a); v != in.Nil {
			in.SetAttrib(out, a, v)
		}
	}
	in.Unprotect(2)
	return out
}

// doLogic implements element-wise & (code 1) and | (code 2) in three-valued
// logic.
func doLogic(in *Interp, call, op, args, rho SEXP) SEXP {
	and := in.primCode(op) == 1
	top := in.PPStackTop()
	x := in.Protect(in.asLogicalVector(call, in.Car(args)))
	y := in.Protect(in.asLogicalVector(call, in.Cadr(args)))
	nx, ny := in.Length(x), in.Length(y)
	n := in.recycle(call, nx, ny)
	out := in.Protect(in.AllocVector(LglSXP, n))
	a, b, r := in.Logical(x), in.Logical(y), in.Logical(out)
	for i := range n {
		u, v := a[i%nx], b[i%ny]
		switch {
		case and && (u == 0 || v == 0):
			r[i] = 0
		case !and && (u == 1 || v == 1):
			r[i] = 1
		case u == NALogical || v == NALogical:
			r[i] = NALogical
		case and:
			r[i] = 1
		default:
			r[i] = 0
		}
	}
	if n > 0 {
		in.binaryAttribs(in.Car(args), in.Cadr(args), out, nx, ny, n)
	}
	in.ResetPPStack(top)
	return out
}

func doMath1(in *Interp, call, op, args, rho SEXP) SEXP {
	code := in.primCode(op)
	x := in.Car(args)
	k := in.Kind(x)
	if !isNumericKind(k) || k == CplxSXP {
		in.ErrorCall(call, "non-numeric argument to mathematical function")
	}
	if code == mathAbs && (k == IntSXP || k == LglSXP) {
		out := in.Protect(in.AllocVector(IntSXP, in.Length(x)))
		for i, v := range in.Integer(x) {
			if v != NAInteger && v < 0 {
				v = -v
			}
			in.Integer(out)[i] = v
		}
		in.copyAttribs(x, out)
		in.Unprotect(1)
		return out
	}
	rx := in.Protect(in.CoerceVector(x, RealSXP))
	out := in.Protect(in.AllocVector(RealSXP, in.Length(x)))
	nan := false
	f := math1(code)
	for i, v := range in.Real(rx) {
		if IsNA(v) {
			in.Real(out)[i] = NAReal
			continue
		}
		r := f(v)
		if math.IsNaN(r) && !math.IsNaN(v) {
			nan = true
		}
		in.Real(out)[i] = r
	}
	in.copyAttribs(x, out)
	in.Unprotect(2)
	if nan {
		in.Warning(call, "NaNs produced")
	}
	return out
}

func math1(code int) func(float64) float64 {
	switch code {
	case mathSqrt:
		return math.Sqrt
	case mathExp:
		return math.Exp
	case mathAbs:
		return math.Abs
	case mathFloor:
		return math.Floor
	case mathCeiling:
		return math.Ceil
	case mathSin:
		return math.Sin
	case mathCos:
		return math.Cos
	}
	return math.Tan
}

func doLog(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "base")
	if !a.has(0) {
		in.ErrorCall(call, "argument \"x\" is missing, with no default")
	}
	x := a.vals[0]
	if !isNumericKind(in.Kind(x)) || in.Kind(x) == CplxSXP {
		in.ErrorCall(call, "non-numeric argument to mathematical function")
	}
	div := 1.0
	if a.has(1) {
		b := in.AsReal(a.vals[1])
		if IsNA(b) || b <= 0 {
			in.ErrorCall(call, "invalid argument 'base' of length 0")
		}
		div = math.Log(b)
	}
	rx := in.Protect(in.CoerceVector(x, RealSXP))
	out := in.Protect(in.AllocVector(RealSXP, in.Length(x)))
	nan := false
	for i, v := range in.Real(rx) {
		switch {
		case IsNA(v):
			in.Real(out)[i] = NAReal
		case v < 0:
			nan = true
			in.Real(out)[i] = math.NaN()
		default:
			in.Real(out)[i] = math.Log(v) / div
		}
	}
	in.copyAttribs(x, out)
	in.Unprotect(2)
	if nan {
		in.Warning(call, "NaNs produced")
	}
	return out
}

// doRound rounds half to even at the given number of decimal places.
func doRound(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "digits")
	x := a.get(0, in.Nil)
	if !isNumericKind(in.Kind(x)) || in.Kind(x) == CplxSXP {
		in.ErrorCall(call, "non-numeric argument to mathematical function")
	}
	digits := 0
	if a.has(1) {
		if d := in.AsInteger(a.vals[1]); d != NAInteger {
			digits = int(d)
		}
	}
	if in.Kind(x) == IntSXP && digits >= 0 {
		return x
	}
	rx := in.Protect(in.CoerceVector(x, RealSXP))
	out := in.Protect(in.AllocVector(RealSXP, in.Length(x)))
	p := math.Pow(10, float64(digits))
	for i, v := range in.Real(rx) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			in.Real(out)[i] = v
			continue
		}
		in.Real(out)[i] = math.RoundToEven(v*p) / p
	}
	in.copyAttribs(x, out)
	in.Unprotect(2)
	return out
}

// doSummary implements sum, prod, max and min over all ... arguments.
func doSummary(in *Interp, call, op, args, rho SEXP) SEXP {
	code := in.primCode(op)
	a := in.matchPrimArgs(call, args, "...", "na.rm")
	narm := a.has(1) && in.AsLogical(a.vals[1]) == 1
	k := IntSXP
	if code == sumProd {
		k = RealSXP
	}
	for _, n := range a.dots {
		v := in.Car(n)
		vk := in.Kind(v)
		switch {
		case vk == NilSXP || vk == LglSXP || vk == IntSXP:
		case vk == RealSXP:
			if k == IntSXP {
				k = RealSXP
			}
		case vk == CplxSXP && (code == sumSum || code == sumProd):
			if k != StrSXP {
				k = CplxSXP
			}
		case vk == StrSXP && (code == sumMax || code == sumMin):
			k = StrSXP
		default:
			in.ErrorCall(call, "invalid 'type' (%s) of argument", vk)
		}
	}
	switch code {
	case sumSum, sumProd:
		return in.sumProd(call, code, k, a.dots, narm)
	}
	return in.minMax(call, code == sumMax, k, a.dots, narm)
}

func (in *Interp) sumProd(call SEXP, code int, k Kind, dots []SEXP, narm bool) SEXP {
	switch k {
	case IntSXP:
		var s int64
		for _, n := range dots {
			for _, v := range in.Integer(in.Car(n)) {
				if v == NAInteger {
					if narm {
						continue
					}
					return in.ScalarInteger(NAInteger)
				}
				s += int64(v)
				if s > math.MaxInt32 || s <= math.MinInt32 {
					in.Warning(call, "integer overflow - use sum(as.numeric(.))")
					return in.ScalarInteger(NAInteger)
				}
			}
		}
		return in.ScalarInteger(int32(s)) //nolint:gosec // range checked in the loop
	case CplxSXP:
		var s complex128
		if code == sumProd {
			s = 1
		}
		for _, n := range dots {
			v := in.Protect(in.CoerceVector(in.Car(n), CplxSXP))
			for _, z := range in.Complex(v) {
				if IsNAComplex(z) {
					if narm {
						continue
					}
					in.Unprotect(1)
					return in.ScalarComplex(NAComplex)
				}
				if code == sumProd {
					s *= z
				} else {
					s += z
				}
			}
			in.Unprotect(1)
		}
		return in.ScalarComplex(s)
	}
	s := 0.0
	if code == sumProd {
		s = 1
	}
	na := false
	for _, n := range dots {
		v := in.Protect(in.CoerceVector(in.Car(n), RealSXP))
		for _, x := range in.Real(v) {
			if math.IsNaN(x) && narm {
				continue
			}
			if IsNA(x) {
				na = true
			}
			if code == sumProd {
				s *= x
			} else {
				s += x
			}
		}
		in.Unprotect(1)
	}
	if na {
		return in.ScalarReal(NAReal)
	}
	return in.ScalarReal(s)
}

func (in *Interp) minMax(call SEXP, isMax bool, k Kind, dots []SEXP, narm bool) SEXP {
	name := "min"
	if isMax {
		name = "max"
	}
	better := func(c int) bool { return (isMax && c > 0) || (!isMax && c < 0) }
	switch k {
	case StrSXP:
		best, found := "", false
		for _, n := range dots {
			v := in.Protect(in.CoerceVector(in.Car(n), StrSXP))
			for i := range in.Length(v) {
				if in.IsNAStringElt(v, i) {
					if narm {
						continue
					}
					in.Unprotect(1)
					return in.ScalarString(in.NAString)
				}
				if s := in.Str(v, i); !found || better(cmpString(s, best)) {
					best, found = s, true
				}
			}
			in.Unprotect(1)
		}
		if !found {
			in.ErrorCall(call, "no non-missing arguments to %s", name)
		}
		return in.MkString(best)
	case IntSXP:
		var best int32
		found := false
		for _, n := range dots {
			for _, v := range in.Integer(in.Car(n)) {
				if v == NAInteger {
					if narm {
						continue
					}
					return in.ScalarInteger(NAInteger)
				}
				if !found || better(cmpFloat(float64(v), float64(best))) {
					best, found = v, true
				}
			}
		}
		if found {
			return in.ScalarInteger(best)
		}
	default:
		best, found, nan := 0.0, false, false
		for _, n := range dots {
			v := in.Protect(in.CoerceVector(in.Car(n), RealSXP))
			for _, x := range in.Real(v) {
				switch {
				case IsNA(x) && !narm:
					in.Unprotect(1)
					return in.ScalarReal(NAReal)
				case math.IsNaN(x):
					nan = nan || !narm
				case !found || better(cmpFloat(x, best)):
					best, found = x, true
				}
			}
			in.Unprotect(1)
		}
		if nan {
			return in.ScalarReal(math.NaN())
		}
		if found {
			return in.ScalarReal(best)
		}
	}
	inf := math.Inf(1)
	if isMax {
		inf = math.Inf(-1)
	}
	in.Warning(call, "no non-missing arguments to %s; returning %s", name, realString(inf, 7))
	return in.ScalarReal(inf)
}

func doMean(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "...")
	x := a.get(0, in.Nil)
	switch in.Kind(x) {
	case LglSXP, IntSXP, RealSXP:
		rx := in.Protect(in.CoerceVector(x, RealSXP))
		xs := in.Real(rx)
		s := 0.0
		for _, v := range xs {
			if IsNA(v) {
				in.Unprotect(1)
				return in.ScalarReal(NAReal)
			}
			s += v
		}
		in.Unprotect(1)
		if len(xs) == 0 {
			return in.ScalarReal(math.NaN())
		}
		return in.ScalarReal(s / float64(len(xs)))
	case CplxSXP:
		var s complex128
		zs := in.Complex(x)
		for _, z := range zs {
			s += z
		}
		return in.ScalarComplex(s / complex(float64(len(zs)), 0))
	}
	in.Warning(call, "argument is not numeric or logical: returning NA")
	return in.ScalarReal(NAReal)
}

// doAnyAll implements any (code 1) and all.
func doAnyAll(in *Interp, call, op, args, rho SEXP) SEXP {
	isAny := in.primCode(op) == 1
	a := in.matchPrimArgs(call, args, "...", "na.rm")
	narm := a.has(1) && in.AsLogical(a.vals[1]) == 1
	na := false
	for _, n := range a.dots {
		v := in.Car(n)
		switch in.Kind(v) {
		case NilSXP, LglSXP, IntSXP:
		case RealSXP:
			in.Warning(call, "coercing argument of type 'double' to logical")
		default:
			in.ErrorCall(call, "invalid 'type' (%s) of argument", in.Kind(v))
		}
		lv := in.Protect(in.CoerceVector(v, LglSXP))
		for _, b := range in.Logical(lv) {
			switch {
			case b == NALogical:
				na = na || !narm
			case isAny && b == 1:
				in.Unprotect(1)
				return in.ScalarLogical(1)
			case !isAny && b == 0:
				in.Unprotect(1)
				return in.ScalarLogical(0)
			}
		}
		in.Unprotect(1)
	}
	if na {
		return in.ScalarLogical(NALogical)
	}
	if isAny {
		return in.ScalarLogical(0)
	}
	return in.ScalarLogical(1)
}
