package interp

import (
	"math"
	"strings"
)

// subscript resolves the index vector s against a vector of length n with
// the given names. The result holds 0-based positions; -1 stands for NA
// and positions >= n lie past the end. When assigning, character indices
// that match no name address new elements, whose names are returned.
func (in *Interp) subscript(call, s SEXP, n int, names SEXP, assign bool) ([]int, []string) {
	switch in.Kind(s) {
	case SymSXP:
		if s == in.MissingArg {
			idx := make([]int, n)
			for i := range idx {
				idx[i] = i
			}
			return idx, nil
		}
	case NilSXP:
		return nil, nil
	case LglSXP:
		ls := in.Logical(s)
		m := max(n, len(ls))
		if len(ls) == 0 {
			return nil, nil
		}
		var idx []int
		for i := range m {
			switch ls[i%len(ls)] {
			case 1:
				idx = append(idx, i)
			case NALogical:
				idx = append(idx, -1)
			}
		}
		return idx, nil
	case IntSXP, RealSXP:
		return in.numericSubscript(call, s, n), nil
	case StrSXP:
		var idx []int
		var extra []string
		for j := range in.Length(s) {
			if in.IsNAStringElt(s, j) {
				idx = append(idx, -1)
				continue
			}
			name := in.Str(s, j)
			pos := in.nameIndex(names, name)
			if pos < 0 && assign {
				for k, e := range extra {
					if e == name {
						pos = n + k
					}
				}
				if pos < 0 {
					pos = n + len(extra)
					extra = append(extra, name)
				}
			}
			idx = append(idx, pos)
		}
		return idx, extra
	}
	in.ErrorCode(ErrType, call, "invalid subscript type '%s'", in.Kind(s))
	return nil, nil
}

func (in *Interp) numericSubscript(call, s SEXP, n int) []int {
	m := in.Length(s)
	vals := make([]int, m)
	na := make([]bool, m)
	neg, pos := false, false
	for j := range m {
		var v float64
		if in.Kind(s) == IntSXP {
			if in.Integer(s)[j] == NAInteger {
				na[j] = true
				continue
			}
			v = float64(in.Integer(s)[j])
		} else {
			v = in.Real(s)[j]
			if math.IsNaN(v) {
				na[j] = true
				continue
			}
		}
		if v >= math.MaxInt32 {
			v = math.MaxInt32 - 1
		}
		vals[j] = int(v)
		switch {
		case vals[j] < 0:
			neg = true
		case vals[j] > 0:
			pos = true
		}
	}
	if neg {
		if pos {
			in.ErrorCode(ErrSubscript, call, "can't mix positive and negative subscripts")
		}
		for _, b := range na {
			if b {
				in.ErrorCode(ErrSubscript, call, "can't mix NAs and negative subscripts")
			}
		}
		drop := make([]bool, n)
		for _, v := range vals {
			if -v <= n && v < 0 {
				drop[-v-1] = true
			}
		}
		var idx []int
		for i := range n {
			if !drop[i] {
				idx = append(idx, i)
			}
		}
		return idx
	}
	idx := make([]int, 0, m)
	for j, v := range vals {
		switch {
		case na[j]:
			idx = append(idx, -1)
		case v > 0:
			idx = append(idx, v-1)
		}
	}
	return idx
}

// nameIndex finds the first element called name, or -1.
func (in *Interp) nameIndex(names SEXP, name string) int {
	if names == in.Nil || name == "" {
		return -1
	}
	for i := range in.Length(names) {
		if !in.IsNAStringElt(names, i) && in.Str(names, i) == name {
			return i
		}
	}
	return -1
}

// partialIndex finds name exactly or as the unique prefix of one name.
func (in *Interp) partialIndex(names SEXP, name string) int {
	if i := in.nameIndex(names, name); i >= 0 || names == in.Nil || name == "" {
		return i
	}
	hit := -1
	for i := range in.Length(names) {
		if !in.IsNAStringElt(names, i) && strings.HasPrefix(in.Str(names, i), name) {
			if hit >= 0 {
				return -1
			}
			hit = i
		}
	}
	return hit
}

// subsetArgs evaluates the operands of [ and [[, separating drop= and
// exact= from the indices.
func (in *Interp) subsetArgs(call, args, rho SEXP) (x SEXP, idx []SEXP, drop, exact bool) {
	x = in.Protect(in.Eval(in.Car(args), rho))
	subs := in.Protect(in.evalListKeepMissing(in.Cdr(args), rho, call))
	drop, exact = true, true
	for s := subs; s != in.Nil; s = in.Cdr(s) {
		if t := in.Tag(s); t != in.Nil {
			switch in.PrintName(t) {
			case "drop":
				drop = in.AsLogical(in.Car(s)) != 0
				continue
			case "exact":
				exact = in.AsLogical(in.Car(s)) != 0
				continue
			}
		}
		idx = append(idx, in.Car(s))
	}
	return x, idx, drop, exact
}

func doSubset(in *Interp, call, op, args, rho SEXP) SEXP {
	top := in.PPStackTop()
	x, idx, drop, _ := in.subsetArgs(call, args, rho)
	var out SEXP
	switch {
	case x == in.Nil:
		out = in.Nil
	case len(idx) == 0:
		out = x
	case in.Kind(x).IsPairKind():
		if len(idx) != 1 {
			in.ErrorCode(ErrSubscript, call, "incorrect number of dimensions")
		}
		v := in.Protect(in.CoerceVector(x, VecSXP))
		r := in.Protect(in.vectorSubset(call, v, idx[0]))
		out = in.CoerceVector(r, ListSXP)
		if in.Kind(x) == LangSXP && out != in.Nil {
			in.cell(out).kind = LangSXP
		}
	case !in.Kind(x).IsVector():
		in.ErrorCode(ErrType, call, "object of type '%s' is not subsettable", in.Kind(x))
	case len(idx) == 1:
		out = in.vectorSubset(call, x, idx[0])
	default:
		out = in.matrixSubset(call, x, idx, drop)
	}
	in.ResetPPStack(top)
	return out
}

func (in *Interp) vectorSubset(call, x, s SEXP) SEXP {
	top := in.PPStackTop()
	n := in.Length(x)
	names := in.Names(x)
	idx, _ := in.subscript(call, s, n, names, false)
	out := in.Protect(in.AllocVector(in.Kind(x), len(idx)))
	for j, i := range idx {
		if i < 0 || i >= n {
			in.setNA(out, j)
			continue
		}
		in.copyElt(x, i, out, j)
	}
	if names != in.Nil {
		in.Protect(names)
		nn := in.Protect(in.AllocVector(StrSXP, len(idx)))
		for j, i := range idx {
			switch {
			case i >= 0 && i < n:
				in.SetStringElt(nn, j, in.StringElt(names, i))
			case in.Kind(s) == StrSXP || i < 0:
				in.SetStringElt(nn, j, in.NAString)
			default:
				in.SetStringElt(nn, j, in.MkChar("<NA>"))
			}
		}
		in.SetAttrib(out, in.sym.names, nn)
	}
	if in.Inherits(x, "factor") {
		in.SetAttrib(out, in.sym.levels, in.GetAttrib(x, in.sym.levels))
		in.SetAttrib(out, in.sym.class, in.Class(x))
	}
	in.ResetPPStack(top)
	return out
}

// matrixDims returns the row and column extents of x, raising unless x is
// a matrix and two indices were given.
func (in *Interp) matrixDims(call, x SEXP, nidx int) (int, int) {
	dim := in.Dim(x)
	if in.Length(dim) != 2 || nidx != 2 {
		in.ErrorCode(ErrSubscript, call, "incorrect number of dimensions")
	}
	d := in.Integer(dim)
	return int(d[0]), int(d[1])
}

func (in *Interp) dimNames(x SEXP, i int) SEXP {
	dn := in.GetAttrib(x, in.sym.dimnames)
	if in.Kind(dn) != VecSXP || in.Length(dn) <= i {
		return in.Nil
	}
	return in.VectorElt(dn, i)
}

func (in *Interp) boundedSubscript(call, s SEXP, n int, names SEXP) []int {
	idx, _ := in.subscript(call, s, n, names, false)
	for _, i := range idx {
		if i < 0 || i >= n {
			in.ErrorCode(ErrSubscript, call, "subscript out of bounds")
		}
	}
	return idx
}

func (in *Interp) matrixSubset(call, x SEXP, idx []SEXP, drop bool) SEXP {
	top := in.PPStackTop()
	nr, nc := in.matrixDims(call, x, len(idx))
	rn, cn := in.dimNames(x, 0), in.dimNames(x, 1)
	ri := in.boundedSubscript(call, idx[0], nr, rn)
	ci := in.boundedSubscript(call, idx[1], nc, cn)
	out := in.Protect(in.AllocVector(in.Kind(x), len(ri)*len(ci)))
	for b, c := range ci {
		for a, r := range ri {
			in.copyElt(x, r+c*nr, out, a+b*len(ri))
		}
	}
	pickNames := func(names SEXP, at []int) SEXP {
		if names == in.Nil {
			return in.Nil
		}
		nn := in.Protect(in.AllocVector(StrSXP, len(at)))
		for j, i := range at {
			in.SetStringElt(nn, j, in.StringElt(names, i))
		}
		return nn
	}
	switch {
	case drop && len(ri) == 1 && len(ci) == 1:
	case drop && len(ri) == 1:
		if nn := pickNames(cn, ci); nn != in.Nil {
			in.SetAttrib(out, in.sym.names, nn)
		}
	case drop && len(ci) == 1:
		if nn := pickNames(rn, ri); nn != in.Nil {
			in.SetAttrib(out, in.sym.names, nn)
		}
	default:
		dim := in.Protect(in.AllocVector(IntSXP, 2))
		in.Integer(dim)[0] = int32(len(ri)) //nolint:gosec // bounded by the matrix
		in.Integer(dim)[1] = int32(len(ci)) //nolint:gosec // bounded by the matrix
		in.SetAttrib(out, in.sym.dim, dim)
		if rn != in.Nil || cn != in.Nil {
			dn := in.Protect(in.AllocVector(VecSXP, 2))
			in.SetVectorElt(dn, 0, pickNames(rn, ri))
			in.SetVectorElt(dn, 1, pickNames(cn, ci))
			in.SetAttrib(out, in.sym.dimnames, dn)
		}
	}
	in.ResetPPStack(top)
	return out
}

// index1 resolves a single [[ or $ index to a position, -1 when a name
// does not match.
func (in *Interp) index1(call, s SEXP, n int, names SEXP, partial bool) int {
	if in.Length(s) != 1 {
		if in.Length(s) == 0 {
			in.ErrorCode(ErrSubscript, call, "subscript of length 0")
		}
		in.ErrorCode(ErrSubscript, call, "attempt to select more than one element")
	}
	switch in.Kind(s) {
	case StrSXP:
		if in.IsNAStringElt(s, 0) {
			return -1
		}
		if partial {
			return in.partialIndex(names, in.Str(s, 0))
		}
		return in.nameIndex(names, in.Str(s, 0))
	case SymSXP:
		return in.nameIndex(names, in.PrintName(s))
	case LglSXP, IntSXP, RealSXP:
		v := in.AsReal(s)
		if math.IsNaN(v) {
			return -1
		}
		switch {
		case v >= 1:
			return int(v) - 1
		case v < 0 && n == 2 && int(-v) <= 2:
			return 2 + int(v)
		case v < 0:
			in.ErrorCode(ErrSubscript, call, "invalid negative subscript in get1index <real>")
		}
		in.ErrorCode(ErrSubscript, call, "attempt to select less than one element")
	}
	in.ErrorCode(ErrType, call, "invalid subscript type '%s'", in.Kind(s))
	return -1
}

// element1 extracts x[[s]].
func (in *Interp) element1(call, x, s SEXP, exact bool) SEXP {
	switch k := in.Kind(x); {
	case k == NilSXP:
		return in.Nil
	case k == EnvSXP:
		name, ok := in.AsString(s)
		if !ok || in.Kind(s) != StrSXP {
			in.ErrorCode(ErrType, call, "wrong args for environment subassignment")
		}
		v := in.FindVarInFrame(x, in.Install(name))
		if v == in.Unbound {
			return in.Nil
		}
		if in.Kind(v) == PromSXP {
			v = in.forcePromise(v)
		}
		return in.shared(v)
	case k.IsPairKind():
		n := in.Length(x)
		i := in.index1(call, s, n, in.Names(x), !exact)
		if i < 0 || i >= n {
			in.ErrorCode(ErrSubscript, call, "subscript out of bounds")
		}
		return in.shared(in.Car(in.Nth(x, i)))
	case k.IsVector():
		n := in.Length(x)
		i := in.index1(call, s, n, in.Names(x), !exact)
		if i < 0 || i >= n {
			in.ErrorCode(ErrSubscript, call, "subscript out of bounds")
		}
		if k == VecSXP || k == ExprSXP {
			return in.shared(in.VectorElt(x, i))
		}
		return in.vectorSlice(x, i)
	}
	in.ErrorCode(ErrType, call, "object of type '%s' is not subsettable", in.Kind(x))
	return in.Nil
}

func doSubset2(in *Interp, call, op, args, rho SEXP) SEXP {
	top := in.PPStackTop()
	x, idx, _, exact := in.subsetArgs(call, args, rho)
	var out SEXP
	switch len(idx) {
	case 0:
		in.ErrorCode(ErrSubscript, call, "invalid subscript")
	case 1:
		s := idx[0]
		if s == in.MissingArg {
			in.ErrorCode(ErrSubscript, call, "invalid subscript")
		}
		k := in.Kind(x)
		if (k == VecSXP || k == ListSXP) && in.Length(s) > 1 && in.Kind(s) != SymSXP {
			// recursive indexing
			out = x
			for j := range in.Length(s) {
				out = in.element1(call, out, in.Protect(in.vectorSlice(s, j)), exact)
			}
			break
		}
		out = in.element1(call, x, s, exact)
	default:
		nr, nc := in.matrixDims(call, x, len(idx))
		r := in.index1(call, idx[0], nr, in.dimNames(x, 0), false)
		c := in.index1(call, idx[1], nc, in.dimNames(x, 1), false)
		if r < 0 || r >= nr || c < 0 || c >= nc {
			in.ErrorCode(ErrSubscript, call, "subscript out of bounds")
		}
		if in.Kind(x) == VecSXP {
			out = in.shared(in.VectorElt(x, r+c*nr))
		} else {
			out = in.vectorSlice(x, r+c*nr)
		}
	}
	in.ResetPPStack(top)
	return out
}

// dollarName reads the name operand of $ and $<-.
func (in *Interp) dollarName(call, s SEXP) SEXP {
	switch in.Kind(s) {
	case SymSXP:
		return in.MkString(in.PrintName(s))
	case StrSXP:
		if in.Length(s) == 1 {
			return s
		}
	case LangSXP:
		if v := in.Eval(s, in.GlobalEnv); in.Kind(v) == StrSXP && in.Length(v) == 1 {
			return v
		}
	}
	in.ErrorCall(call, "invalid subscript type '%s'", in.Kind(s))
	return in.Nil
}

func doDollar(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.Length(args) != 2 {
		in.ErrorCode(ErrArity, call, "%d arguments passed to '$' which requires 2", in.Length(args))
	}
	top := in.PPStackTop()
	x := in.Protect(in.Eval(in.Car(args), rho))
	name := in.Protect(in.dollarName(call, in.Cadr(args)))
	var out SEXP
	switch k := in.Kind(x); {
	case k == NilSXP:
		out = in.Nil
	case k == EnvSXP:
		out = in.element1(call, x, name, true)
	case k == VecSXP || k == ExprSXP || k.IsPairKind():
		out = in.Nil
		n := in.Length(x)
		if i := in.partialIndex(in.Names(x), in.Str(name, 0)); i >= 0 && i < n {
			out = in.element1(call, x, in.Protect(in.ScalarInteger(int32(i+1))), true) //nolint:gosec // bounded by n
		}
	case k.IsAtomic():
		in.ErrorCall(call, "$ operator is invalid for atomic vectors")
	default:
		in.ErrorCode(ErrType, call, "object of type '%s' is not subsettable", k)
	}
	in.ResetPPStack(top)
	return out
}

// assignArgs evaluates the operands of [<- and [[<-: the target, the
// indices and the value.
func (in *Interp) assignArgs(call, args, rho SEXP) (x SEXP, idx []SEXP, value SEXP) {
	argv := in.Protect(in.evalListKeepMissing(args, rho, call))
	n := in.Length(argv)
	if n < 2 {
		in.ErrorCode(ErrArity, call, "SubAssignArgs: invalid number of arguments")
	}
	x = in.Car(argv)
	i := 0
	for a := in.Cdr(argv); a != in.Nil; a = in.Cdr(a) {
		i++
		if i == n-1 {
			value = in.Car(a)
			break
		}
		idx = append(idx, in.Car(a))
	}
	if value == in.MissingArg {
		in.ErrorCode(ErrMissingArg, call, "argument \"value\" is missing, with no default")
	}
	return x, idx, value
}

// promote brings x and value to a common kind for storing value into x.
func (in *Interp) promote(call, x, value SEXP) (SEXP, SEXP) {
	xk, vk := in.Kind(x), in.Kind(value)
	switch {
	case xk == vk, vk == NilSXP:
		return x, value
	case xk == VecSXP || xk == ExprSXP:
		return x, value
	case vk == VecSXP || vk == ExprSXP:
		return in.CoerceVector(x, vk), value
	case !vk.IsAtomic():
		if xk.IsAtomic() {
			return in.CoerceVector(x, VecSXP), value
		}
	case vk.rank() > xk.rank():
		return in.CoerceVector(x, vk), value
	default:
		return x, in.CoerceVector(value, xk)
	}
	in.ErrorCode(ErrType, call, "incompatible types (from %s to %s) in subassignment type fix", vk, xk)
	return x, value
}

// grow extends x to length n, padding with NA and blank names.
func (in *Interp) grow(x SEXP, n int, extra []string) SEXP {
	top := in.PPStackTop()
	old := in.Length(x)
	out := in.Protect(in.AllocVector(in.Kind(x), n))
	for i := range n {
		if i < old {
			in.copyElt(x, i, out, i)
		} else {
			in.setNA(out, i)
		}
	}
	in.copyMostAttrib(x, out)
	names := in.Names(x)
	if names != in.Nil || len(extra) > 0 {
		nn := in.Protect(in.AllocVector(StrSXP, n))
		for i := range n {
			switch {
			case i < old && names != in.Nil:
				in.SetStringElt(nn, i, in.StringElt(names, i))
			case i >= n-len(extra):
				in.SetStringElt(nn, i, in.MkChar(extra[i-(n-len(extra))]))
			}
		}
		in.SetAttrib(out, in.sym.names, nn)
	}
	in.ResetPPStack(top)
	return out
}

// storeElt sets x[i] from value[j]; both share a kind unless x is a list.
func (in *Interp) storeElt(x SEXP, i int, value SEXP, j int) {
	switch {
	case in.Kind(x) == VecSXP || in.Kind(x) == ExprSXP:
		if in.Kind(value) == VecSXP || in.Kind(value) == ExprSXP {
			v := in.VectorElt(value, j)
			in.SetNamed(v, 2)
			in.SetVectorElt(x, i, v)
		} else {
			in.SetVectorElt(x, i, in.vectorSlice(value, j))
		}
	default:
		in.copyElt(value, j, x, i)
	}
}

func doSubassign(in *Interp, call, op, args, rho SEXP) SEXP {
	top := in.PPStackTop()
	x, idx, value := in.assignArgs(call, args, rho)
	if x == in.Nil {
		if value == in.Nil {
			in.ResetPPStack(top)
			return in.Nil
		}
		k := in.Kind(value)
		if !k.IsVector() {
			k = VecSXP
		}
		x = in.Protect(in.AllocVector(k, 0))
	}
	x = in.Protect(in.modifiable(call, x))
	var out SEXP
	switch {
	case in.Kind(x).IsPairKind():
		v := in.Protect(in.CoerceVector(x, VecSXP))
		if len(idx) != 1 {
			in.ErrorCode(ErrSubscript, call, "incorrect number of subscripts")
		}
		r := in.Protect(in.vectorAssign(call, v, idx[0], value))
		out = in.CoerceVector(r, ListSXP)
		if in.Kind(x) == LangSXP && out != in.Nil {
			in.cell(out).kind = LangSXP
		}
	case !in.Kind(x).IsVector():
		in.ErrorCode(ErrType, call, "object of type '%s' is not subsettable", in.Kind(x))
	case len(idx) == 0:
		out = in.vectorAssign(call, x, in.MissingArg, value)
	case len(idx) == 1:
		out = in.vectorAssign(call, x, idx[0], value)
	default:
		out = in.matrixAssign(call, x, idx, value)
	}
	in.ResetPPStack(top)
	return out
}

func (in *Interp) vectorAssign(call, x, s, value SEXP) SEXP {
	top := in.PPStackTop()
	n := in.Length(x)
	idx, extra := in.subscript(call, s, n, in.Names(x), true)
	if value == in.Nil && (in.Kind(x) == VecSXP || in.Kind(x) == ExprSXP) {
		out := in.deleteElts(x, idx)
		in.ResetPPStack(top)
		return out
	}
	nv := in.Length(value)
	if len(idx) == 0 {
		in.ResetPPStack(top)
		return x
	}
	if nv == 0 {
		in.ErrorCall(call, "replacement has length zero")
	}
	x, value = in.promote(call, x, value)
	in.Protect(x)
	in.Protect(value)
	newLen := n
	for _, i := range idx {
		if i < 0 && nv > 1 {
			in.ErrorCall(call, "NAs are not allowed in subscripted assignments")
		}
		newLen = max(newLen, i+1)
	}
	if len(idx)%nv != 0 {
		in.Warning(call, "number of items to replace is not a multiple of replacement length")
	}
	if newLen > n {
		x = in.Protect(in.grow(x, newLen, extra))
	}
	for j, i := range idx {
		if i >= 0 {
			in.storeElt(x, i, value, j%nv)
		}
	}
	in.ResetPPStack(top)
	return x
}

// deleteElts drops the listed positions from list x.
func (in *Interp) deleteElts(x SEXP, idx []int) SEXP {
	n := in.Length(x)
	gone := make([]bool, n)
	for _, i := range idx {
		if i >= 0 && i < n {
			gone[i] = true
		}
	}
	var keep []int
	for i := range n {
		if !gone[i] {
			keep = append(keep, i)
		}
	}
	if len(keep) == n {
		return x
	}
	out := in.pick(x, keep)
	in.Protect(out)
	in.copyMostAttrib(x, out)
	in.Unprotect(1)
	return out
}

func (in *Interp) matrixAssign(call, x SEXP, idx []SEXP, value SEXP) SEXP {
	nr, nc := in.matrixDims(call, x, len(idx))
	ri := in.boundedSubscript(call, idx[0], nr, in.dimNames(x, 0))
	ci := in.boundedSubscript(call, idx[1], nc, in.dimNames(x, 1))
	m := len(ri) * len(ci)
	if m == 0 {
		return x
	}
	nv := in.Length(value)
	if nv == 0 {
		in.ErrorCall(call, "replacement has length zero")
	}
	if m%nv != 0 {
		in.ErrorCall(call, "number of items to replace is not a multiple of replacement length")
	}
	top := in.PPStackTop()
	x, value = in.promote(call, x, value)
	in.Protect(x)
	in.Protect(value)
	k := 0
	for _, c := range ci {
		for _, r := range ri {
			in.storeElt(x, r+c*nr, value, k%nv)
			k++
		}
	}
	in.ResetPPStack(top)
	return x
}

func doSubassign2(in *Interp, call, op, args, rho SEXP) SEXP {
	top := in.PPStackTop()
	x, idx, value := in.assignArgs(call, args, rho)
	if len(idx) != 1 {
		if len(idx) == 2 && in.Length(in.Dim(x)) == 2 {
			x = in.Protect(in.modifiable(call, x))
			out := in.matrixAssign(call, x, idx, value)
			in.ResetPPStack(top)
			return out
		}
		in.ErrorCode(ErrSubscript, call, "[[ ]] improper number of subscripts")
	}
	out := in.assignElement(call, x, idx[0], value)
	in.ResetPPStack(top)
	return out
}

// assignElement implements x[[s]] <- value.
func (in *Interp) assignElement(call, x, s, value SEXP) SEXP {
	if in.Kind(x) == EnvSXP {
		name, ok := in.AsString(s)
		if !ok {
			in.ErrorCode(ErrType, call, "wrong args for environment subassignment")
		}
		in.DefineVar(in.Install(name), value, x)
		return x
	}
	if x == in.Nil {
		if value == in.Nil {
			return in.Nil
		}
		if in.Kind(value).IsAtomic() && in.Length(value) == 1 {
			x = in.AllocVector(in.Kind(value), 0)
		} else {
			x = in.AllocVector(VecSXP, 0)
		}
	}
	in.Protect(x)
	x = in.modifiable(call, x)
	in.Unprotect(1)
	x = in.Protect(x)
	if in.Kind(x).IsPairKind() {
		v := in.Protect(in.CoerceVector(x, VecSXP))
		r := in.Protect(in.assignElement(call, v, s, value))
		out := in.CoerceVector(r, ListSXP)
		if in.Kind(x) == LangSXP && out != in.Nil {
			in.cell(out).kind = LangSXP
		}
		in.Unprotect(3)
		return out
	}
	if !in.Kind(x).IsVector() {
		in.ErrorCode(ErrType, call, "object of type '%s' is not subsettable", in.Kind(x))
	}
	isList := in.Kind(x) == VecSXP || in.Kind(x) == ExprSXP
	n := in.Length(x)
	i := in.index1(call, s, n+1, in.Names(x), false)
	var extra []string
	if i < 0 {
		if in.Kind(s) != StrSXP {
			in.ErrorCode(ErrSubscript, call, "subscript out of bounds")
		}
		i = n
		extra = []string{in.Str(s, 0)}
	}
	if isList && value == in.Nil {
		out := in.deleteElts(x, []int{i})
		in.Unprotect(1)
		return out
	}
	if !isList {
		if in.Length(value) == 0 {
			in.ErrorCall(call, "replacement has length zero")
		}
		if in.Length(value) > 1 || !in.Kind(value).IsAtomic() {
			x = in.Protect(in.CoerceVector(x, VecSXP))
			in.Unprotect(1)
			isList = true
		} else {
			x, value = in.promote(call, x, value)
		}
	}
	in.Protect(x)
	in.Protect(value)
	if i >= n {
		x = in.grow(x, i+1, extra)
	}
	if isList {
		in.SetNamed(value, 2)
		in.SetVectorElt(x, i, value)
	} else {
		in.copyElt(value, 0, x, i)
	}
	in.Unprotect(3)
	return x
}

func doDollarAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.Length(args) != 3 {
		in.ErrorCode(ErrArity, call, "%d arguments passed to '$<-' which requires 3", in.Length(args))
	}
	top := in.PPStackTop()
	x := in.Protect(in.Eval(in.Car(args), rho))
	name := in.Protect(in.dollarName(call, in.Cadr(args)))
	value := in.Protect(in.Eval(in.Caddr(args), rho))
	if in.Kind(x).IsAtomic() {
		in.Warning(call, "Coercing LHS to a list")
		x = in.Protect(in.CoerceVector(x, VecSXP))
	}
	out := in.assignElement(call, x, name, value)
	in.ResetPPStack(top)
	return out
}

func doNamesAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	if in.Kind(x) == EnvSXP {
		in.ErrorCall(call, "names() applied to a non-vector")
	}
	x = in.Protect(in.modifiable(call, x))
	in.SetAttrib(x, in.sym.names, in.Cadr(args))
	in.Unprotect(1)
	return x
}

func doAttrAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	name, ok := in.AsString(in.Cadr(args))
	if !ok || in.Length(in.Cadr(args)) != 1 {
		in.ErrorCall(call, "'name' must be non-null character string")
	}
	x = in.Protect(in.modifiable(call, x))
	in.SetAttrib(x, in.Install(name), in.Caddr(args))
	in.Unprotect(1)
	return x
}

func doDimAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Protect(in.modifiable(call, in.Car(args)))
	if v := in.Cadr(args); v == in.Nil {
		in.RemoveAttrib(x, in.sym.dim)
	} else {
		in.RemoveAttrib(x, in.sym.names)
		in.SetAttrib(x, in.sym.dim, v)
	}
	in.Unprotect(1)
	return x
}

func doClassAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Protect(in.modifiable(call, in.Car(args)))
	v := in.Cadr(args)
	if in.Kind(v) != StrSXP && v != in.Nil {
		in.ErrorCall(call, "attempt to set invalid 'class' attribute")
	}
	in.SetAttrib(x, in.sym.class, v)
	in.Unprotect(1)
	return x
}

func doLevelsAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Protect(in.modifiable(call, in.Car(args)))
	in.SetAttrib(x, in.sym.levels, in.Cadr(args))
	in.Unprotect(1)
	return x
}
