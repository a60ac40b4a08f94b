package interp

import (
	"math"
	"strconv"
)

// combiner fills the result of c() and unlist() element by element.
type combiner struct {
	in    *Interp
	out   SEXP
	i     int
	names []string
	named bool
}

// combineShape finds the result kind and length of combining v.
func (in *Interp) combineShape(v SEXP, recursive bool, k *Kind, n *int, named *bool) {
	vk := in.Kind(v)
	switch {
	case vk == NilSXP:
	case vk.IsAtomic():
		if vk.rank() > k.rank() {
			*k = vk
		}
		*n += in.Length(v)
		if in.Names(v) != in.Nil {
			*named = true
		}
	case vk == VecSXP || vk == ExprSXP || vk == ListSXP:
		if in.Names(v) != in.Nil {
			*named = true
		}
		if !recursive {
			if vk.rank() > k.rank() {
				*k = vk
			}
			*n += in.Length(v)
			return
		}
		if vk == ListSXP {
			for p := v; p != in.Nil; p = in.Cdr(p) {
				in.combineShape(in.Car(p), true, k, n, named)
			}
			return
		}
		for i := range in.Length(v) {
			in.combineShape(in.VectorElt(v, i), true, k, n, named)
		}
	default:
		if k.rank() < VecSXP.rank() {
			*k = VecSXP
		}
		*n++
	}
}

// elementName composes the name of element j of a component tagged base.
func elementName(base, tag string, j, count int) string {
	switch {
	case base != "" && tag != "":
		return base + "." + tag
	case base != "" && count == 1:
		return base
	case base != "":
		return base + strconv.Itoa(j+1)
	}
	return tag
}

func (cb *combiner) put(v SEXP, name string) {
	in := cb.in
	switch in.Kind(cb.out) {
	case VecSXP, ExprSXP:
		in.SetVectorElt(cb.out, cb.i, v)
	default:
		in.coerceElt(v, 0, cb.out, cb.i)
	}
	cb.names[cb.i] = name
	cb.i++
}

func (cb *combiner) add(v SEXP, base string, recursive bool) {
	in := cb.in
	vk := in.Kind(v)
	switch {
	case vk == NilSXP:
	case vk.IsAtomic():
		names := in.Names(v)
		n := in.Length(v)
		isList := in.Kind(cb.out) == VecSXP || in.Kind(cb.out) == ExprSXP
		for j := range n {
			tag := ""
			if names != in.Nil && !in.IsNAStringElt(names, j) {
				tag = in.Str(names, j)
			}
			name := elementName(base, tag, j, n)
			if isList {
				in.SetVectorElt(cb.out, cb.i, in.vectorSlice(v, j))
				cb.names[cb.i] = name
				cb.i++
				continue
			}
			if vk == in.Kind(cb.out) {
				in.copyElt(v, j, cb.out, cb.i)
			} else {
				in.coerceElt(v, j, cb.out, cb.i)
			}
			cb.names[cb.i] = name
			cb.i++
		}
	case vk == VecSXP || vk == ExprSXP || vk == ListSXP:
		elts, tags := in.listItems(v)
		for j, e := range elts {
			name := elementName(base, tags[j], j, len(elts))
			if recursive {
				cb.add(e, name, true)
				continue
			}
			cb.put(e, name)
		}
	default:
		cb.put(v, base)
	}
}

// listItems returns the elements and element names of a list or pairlist.
func (in *Interp) listItems(v SEXP) ([]SEXP, []string) {
	var elts []SEXP
	var tags []string
	if in.Kind(v).IsPairKind() {
		for p := v; p != in.Nil; p = in.Cdr(p) {
			elts = append(elts, in.Car(p))
			tag := ""
			if in.Tag(p) != in.Nil {
				tag = in.PrintName(in.Tag(p))
			}
			tags = append(tags, tag)
		}
		return elts, tags
	}
	names := in.Names(v)
	for i := range in.Length(v) {
		elts = append(elts, in.VectorElt(v, i))
		tag := ""
		if names != in.Nil && !in.IsNAStringElt(names, i) {
			tag = in.Str(names, i)
		}
		tags = append(tags, tag)
	}
	return elts, tags
}

// combine concatenates the values of the pairlist nodes, naming elements
// after their tags.
func (in *Interp) combine(nodes []SEXP, recursive bool) SEXP {
	k := NilSXP
	n := 0
	named := false
	for _, node := range nodes {
		if in.Tag(node) != in.Nil {
			named = true
		}
		in.combineShape(in.Car(node), recursive, &k, &n, &named)
	}
	if k == NilSXP {
		return in.Nil
	}
	if k == ListSXP {
		k = VecSXP
	}
	cb := &combiner{in: in, out: in.Protect(in.AllocVector(k, n)), names: make([]string, n)}
	for _, node := range nodes {
		base := ""
		if in.Tag(node) != in.Nil {
			base = in.PrintName(in.Tag(node))
		}
		cb.add(in.Car(node), base, recursive)
	}
	if named {
		for _, s := range cb.names {
			if s != "" {
				in.SetAttrib(cb.out, in.sym.names, in.MkStrings(cb.names))
				break
			}
		}
	}
	in.Unprotect(1)
	return cb.out
}

func doC(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...", "recursive")
	recursive := a.has(1) && in.AsLogical(a.vals[1]) == 1
	return in.combine(a.dots, recursive)
}

func doUnlist(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	switch in.Kind(x) {
	case VecSXP, ExprSXP, ListSXP:
	default:
		return x
	}
	var nodes []SEXP
	elts, tags := in.listItems(x)
	top := in.PPStackTop()
	for j, e := range elts {
		node := in.Protect(in.Cons(e, in.Nil))
		if tags[j] != "" {
			in.SetTag(node, in.Install(tags[j]))
		}
		nodes = append(nodes, node)
	}
	out := in.combine(nodes, true)
	in.ResetPPStack(top)
	return out
}

// modeKind maps a mode or type name to a vector kind.
func modeKind(mode string) (Kind, bool) {
	switch mode {
	case "numeric", "double":
		return RealSXP, true
	case "list":
		return VecSXP, true
	case "logical", "integer", "complex", "character", "expression":
		return KindByName(mode)
	}
	return NilSXP, false
}

func doVector(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "mode", "length")
	mode := "logical"
	if a.has(0) {
		s, ok := in.AsString(a.vals[0])
		if !ok {
			in.ErrorCall(call, "invalid 'mode' argument")
		}
		mode = s
	}
	n := 0
	if a.has(1) {
		v := in.AsInteger(a.vals[1])
		if v == NAInteger || v < 0 {
			in.ErrorCall(call, "invalid 'length' argument")
		}
		n = int(v)
	}
	k, ok := modeKind(mode)
	if !ok {
		in.ErrorCall(call, "vector: cannot make a vector of mode '%s'.", mode)
	}
	return in.AllocVector(k, n)
}

func doList(in *Interp, call, op, args, rho SEXP) SEXP {
	n := in.Length(args)
	out := in.Protect(in.AllocVector(VecSXP, n))
	names := make([]string, n)
	named := false
	i := 0
	for a := args; a != in.Nil; a = in.Cdr(a) {
		v := in.Car(a)
		in.SetNamed(v, 2)
		in.SetVectorElt(out, i, v)
		if in.Tag(a) != in.Nil {
			names[i] = in.PrintName(in.Tag(a))
			named = true
		}
		i++
	}
	if named {
		in.SetAttrib(out, in.sym.names, in.MkStrings(names))
	}
	in.Unprotect(1)
	return out
}

func (in *Interp) lengthArg(call, v SEXP, what string) int {
	if in.Length(v) != 1 {
		in.ErrorCall(call, "argument of length 0")
	}
	x := in.AsReal(v)
	if math.IsNaN(x) || x < 0 || x > math.MaxInt32 {
		in.ErrorCall(call, "argument '%s' must be coercible to non-negative integer", what)
	}
	return int(x)
}

func (in *Interp) intSeq(from, n int, step int) SEXP {
	out := in.AllocVector(IntSXP, n)
	for i, p := 0, in.Integer(out); i < n; i++ {
		p[i] = int32(from + i*step) //nolint:gosec // callers bound the range
	}
	return out
}

func doSeqLen(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.intSeq(1, in.lengthArg(call, in.Car(args), "length.out"), 1)
}

// colon builds from:to, integer when from is integral and the range fits.
func (in *Interp) colon(call SEXP, from, to float64) SEXP {
	if math.IsNaN(from) || math.IsNaN(to) {
		in.ErrorCall(call, "NA/NaN argument")
	}
	r := math.Abs(to - from)
	if r >= math.MaxInt32 {
		in.ErrorCall(call, "result would be too long a vector")
	}
	n := int(r+1e-10) + 1
	step := 1.0
	if from > to {
		step = -1
	}
	if from == math.Trunc(from) && from <= math.MaxInt32 && from >= math.MinInt32+1 &&
		from+step*float64(n-1) <= math.MaxInt32 && from+step*float64(n-1) > math.MinInt32 {
		return in.intSeq(int(from), n, int(step))
	}
	out := in.AllocVector(RealSXP, n)
	for i, p := 0, in.Real(out); i < n; i++ {
		p[i] = from + step*float64(i)
	}
	return out
}

func doColon(in *Interp, call, op, args, rho SEXP) SEXP {
	x, y := in.Car(args), in.Cadr(args)
	if in.Length(x) == 0 || in.Length(y) == 0 {
		in.ErrorCall(call, "argument of length 0")
	}
	if !isNumericKind(in.Kind(x)) && in.Kind(x) != StrSXP || !isNumericKind(in.Kind(y)) && in.Kind(y) != StrSXP {
		in.ErrorCall(call, "NA/NaN argument")
	}
	return in.colon(call, in.AsReal(x), in.AsReal(y))
}

func doSeq(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "from", "to", "by", "length.out")
	hasFrom, hasTo, hasBy, hasLen := a.has(0), a.has(1), a.has(2), a.has(3)
	if hasFrom && !hasTo && !hasBy && !hasLen {
		from := a.vals[0]
		if n := in.Length(from); n != 1 {
			return in.intSeq(1, n, 1)
		}
		return in.colon(call, 1, in.AsReal(from))
	}
	allInt := true
	num := func(i int, def float64) float64 {
		if !a.has(i) {
			return def
		}
		v := a.vals[i]
		if in.Length(v) != 1 {
			in.ErrorCall(call, "'%s' must be of length 1", [...]string{"from", "to", "by", "length.out"}[i])
		}
		if in.Kind(v) != IntSXP && in.Kind(v) != LglSXP {
			allInt = false
		}
		x := in.AsReal(v)
		if !math.IsInf(x, 0) && math.IsNaN(x) {
			in.ErrorCall(call, "'%s' must be a finite number", [...]string{"from", "to", "by", "length.out"}[i])
		}
		return x
	}
	from, to := num(0, 1), num(1, 1)
	switch {
	case hasLen:
		n := in.lengthArg(call, a.vals[3], "length.out")
		var by float64
		switch {
		case hasBy:
			by = num(2, 1)
			if !hasFrom && hasTo {
				from = to - by*float64(n-1)
			}
		case hasFrom && hasTo && n > 1:
			by = (to - from) / float64(n-1)
			allInt = false
		case !hasFrom && hasTo:
			by = 1
			from = to - float64(n-1)
		default:
			by = 1
		}
		if !hasFrom && !hasTo && !hasBy {
			return in.intSeq(1, n, 1)
		}
		return in.arithSeq(from, by, n, allInt && by == math.Trunc(by))
	case hasBy:
		by := num(2, 1)
		d := to - from
		if d == 0 {
			return in.arithSeq(from, by, 1, allInt)
		}
		if by == 0 {
			in.ErrorCall(call, "invalid '(to - from)/by' in seq(.)")
		}
		if d/by < 0 {
			in.ErrorCall(call, "wrong sign in 'by' argument")
		}
		n := int(d/by+1e-10) + 1
		return in.arithSeq(from, by, n, allInt)
	}
	return in.colon(call, from, to)
}

func (in *Interp) arithSeq(from, by float64, n int, integer bool) SEXP {
	if integer {
		return in.intSeq(int(from), n, int(by))
	}
	out := in.AllocVector(RealSXP, n)
	for i, p := 0, in.Real(out); i < n; i++ {
		p[i] = from + float64(i)*by
	}
	return out
}

// pick builds a vector of x's elements at the given positions, carrying
// names along.
func (in *Interp) pick(x SEXP, idx []int) SEXP {
	top := in.PPStackTop()
	out := in.Protect(in.AllocVector(in.Kind(x), len(idx)))
	for j, i := range idx {
		in.copyElt(x, i, out, j)
	}
	if names := in.Names(x); names != in.Nil {
		nn := in.Protect(in.AllocVector(StrSXP, len(idx)))
		for j, i := range idx {
			in.SetStringElt(nn, j, in.StringElt(names, i))
		}
		in.SetAttrib(out, in.sym.names, nn)
	}
	in.ResetPPStack(top)
	return out
}

func doRep(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "times", "each", "length.out")
	x := a.get(0, in.Nil)
	if x == in.Nil {
		return in.Nil
	}
	if !in.Kind(x).IsVector() {
		in.ErrorCall(call, "attempt to replicate an object of type '%s'", in.Kind(x))
	}
	n := in.Length(x)
	idx := make([]int, 0, n)
	each := 1
	if a.has(2) {
		each = in.lengthArg(call, a.vals[2], "each")
	}
	for i := range n {
		for range each {
			idx = append(idx, i)
		}
	}
	if a.has(1) && !a.has(3) {
		times := in.Protect(in.CoerceVector(a.vals[1], IntSXP))
		t := in.Integer(times)
		switch {
		case len(t) == 1:
			if t[0] == NAInteger || t[0] < 0 {
				in.ErrorCall(call, "invalid 'times' argument")
			}
			base := idx
			idx = make([]int, 0, len(base)*int(t[0]))
			for range t[0] {
				idx = append(idx, base...)
			}
		case len(t) == len(idx):
			base := idx
			idx = nil
			for j, i := range base {
				if t[j] == NAInteger || t[j] < 0 {
					in.ErrorCall(call, "invalid 'times' argument")
				}
				for range t[j] {
					idx = append(idx, i)
				}
			}
		default:
			in.ErrorCall(call, "invalid 'times' argument")
		}
		in.Unprotect(1)
	}
	if a.has(3) {
		lo := in.lengthArg(call, a.vals[3], "length.out")
		if len(idx) > 0 {
			base := idx
			idx = make([]int, lo)
			for i := range lo {
				idx[i] = base[i%len(base)]
			}
		}
	}
	return in.pick(x, idx)
}

func doRev(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	if x == in.Nil {
		return x
	}
	if !in.Kind(x).IsVector() {
		in.ErrorCall(call, "argument is not a vector")
	}
	n := in.Length(x)
	idx := make([]int, n)
	for i := range n {
		idx[i] = n - 1 - i
	}
	return in.pick(x, idx)
}

func doWhich(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	if in.Kind(x) != LglSXP {
		in.ErrorCall(call, "argument to 'which' is not logical")
	}
	var idx []int
	for i, v := range in.Logical(x) {
		if v == 1 {
			idx = append(idx, i)
		}
	}
	top := in.PPStackTop()
	out := in.Protect(in.AllocVector(IntSXP, len(idx)))
	for j, i := range idx {
		in.Integer(out)[j] = int32(i + 1) //nolint:gosec // bounded by the vector length
	}
	if names := in.Names(x); names != in.Nil {
		nn := in.Protect(in.AllocVector(StrSXP, len(idx)))
		for j, i := range idx {
			in.SetStringElt(nn, j, in.StringElt(names, i))
		}
		in.SetAttrib(out, in.sym.names, nn)
	}
	in.ResetPPStack(top)
	return out
}

func doMatrix(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "data", "nrow", "ncol", "byrow", "dimnames")
	top := in.PPStackTop()
	data := a.get(0, 0)
	if data == 0 {
		data = in.Protect(in.ScalarLogical(NALogical))
	}
	if !in.Kind(data).IsVector() {
		in.ErrorCall(call, "'data' must be of a vector type, was '%s'", in.Kind(data))
	}
	lendat := in.Length(data)
	nrow, ncol := 1, 1
	switch {
	case a.has(1) && a.has(2):
		nrow = in.lengthArg(call, a.vals[1], "nrow")
		ncol = in.lengthArg(call, a.vals[2], "ncol")
	case a.has(1):
		nrow = in.lengthArg(call, a.vals[1], "nrow")
		if nrow > 0 {
			ncol = (lendat + nrow - 1) / nrow
		}
	case a.has(2):
		ncol = in.lengthArg(call, a.vals[2], "ncol")
		if ncol > 0 {
			nrow = (lendat + ncol - 1) / ncol
		}
	default:
		nrow = lendat
	}
	byrow := a.has(3) && in.AsLogical(a.vals[3]) == 1
	n := nrow * ncol
	if lendat > 0 && n > 0 {
		switch {
		case lendat > 1 && n%lendat != 0:
			if (lendat > nrow && (lendat/nrow)*nrow != lendat) || (lendat < nrow && (nrow/lendat)*lendat != nrow) {
				in.Warning(call, "data length [%d] is not a sub-multiple or multiple of the number of rows [%d]", lendat, nrow)
			} else {
				in.Warning(call, "data length [%d] is not a sub-multiple or multiple of the number of columns [%d]", lendat, ncol)
			}
		case lendat > n:
			in.Warning(call, "data length exceeds size of matrix")
		}
	}
	out := in.Protect(in.AllocVector(in.Kind(data), n))
	for k := range n {
		if lendat == 0 {
			in.setNA(out, k)
			continue
		}
		src := k
		if byrow {
			i, j := k%nrow, k/nrow
			src = i*ncol + j
		}
		in.copyElt(data, src%lendat, out, k)
	}
	dim := in.Protect(in.AllocVector(IntSXP, 2))
	in.Integer(dim)[0] = int32(nrow) //nolint:gosec // bounded by lengthArg
	in.Integer(dim)[1] = int32(ncol) //nolint:gosec // bounded by lengthArg
	in.SetAttrib(out, in.sym.dim, dim)
	if a.has(4) && a.vals[4] != in.Nil {
		in.SetAttrib(out, in.sym.dimnames, a.vals[4])
	}
	in.ResetPPStack(top)
	return out
}

func doLength(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.ScalarInteger(int32(in.Length(in.Car(args)))) //nolint:gosec // bounded by the heap
}

func doTypeof(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.MkString(in.Kind(in.Car(args)).String())
}

// modeName is what mode() reports for x.
func (in *Interp) modeName(x SEXP) string {
	switch in.Kind(x) {
	case IntSXP, RealSXP:
		return "numeric"
	case SymSXP:
		return "name"
	case LangSXP:
		if in.Car(x) == in.sym.paren {
			return "("
		}
		return "call"
	case CloSXP, BuiltinSXP, SpecialSXP:
		return "function"
	}
	return in.Kind(x).String()
}

func doMode(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.MkString(in.modeName(in.Car(args)))
}

// implicitClass is the class of x, explicit or derived from its type and
// dimensions.
func (in *Interp) implicitClass(x SEXP) SEXP {
	if cl := in.Class(x); cl != in.Nil {
		return cl
	}
	if dim := in.Dim(x); dim != in.Nil {
		if in.Length(dim) == 2 {
			return in.MkString("matrix")
		}
		return in.MkString("array")
	}
	switch in.Kind(x) {
	case IntSXP:
		return in.MkString("integer")
	case RealSXP:
		return in.MkString("numeric")
	case LangSXP:
		if in.Kind(in.Car(x)) == SymSXP {
			switch name := in.PrintName(in.Car(x)); name {
			case "if", "for", "while", "{", "(", "<-", "=":
				return in.MkString(name)
			}
		}
	}
	return in.MkString(in.modeName(x))
}

func doClass(in *Interp, call, op, args, rho SEXP) SEXP {
	cl := in.implicitClass(in.Car(args))
	in.SetNamed(cl, 2)
	return cl
}

func doInherits(in *Interp, call, op, args, rho SEXP) SEXP {
	what := in.Cadr(args)
	if in.Kind(what) != StrSXP {
		in.ErrorCall(call, "'what' must be a character vector")
	}
	cl := in.Protect(in.implicitClass(in.Car(args)))
	found := false
	for i := range in.Length(cl) {
		for j := range in.Length(what) {
			if in.Str(cl, i) == in.Str(what, j) {
				found = true
			}
		}
	}
	in.Unprotect(1)
	return in.ScalarBool(found)
}

const (
	isNull = iota + 1
	isNumeric
	isCharacter
	isFunction
	isList
	isLogical
	isEnvironment
)

func doIs(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	k := in.Kind(x)
	var ok bool
	switch in.primCode(op) {
	case isNull:
		ok = k == NilSXP
	case isNumeric:
		ok = (k == IntSXP || k == RealSXP) && !in.Inherits(x, "factor")
	case isCharacter:
		ok = k == StrSXP
	case isFunction:
		ok = k == CloSXP || k == BuiltinSXP || k == SpecialSXP
	case isList:
		ok = k == VecSXP || k == ListSXP
	case isLogical:
		ok = k == LglSXP
	case isEnvironment:
		ok = k == EnvSXP
	}
	return in.ScalarBool(ok)
}

// isNAElt reports whether element i of a vector is missing. Only
// length-one atomic list elements can be.
func (in *Interp) isNAElt(x SEXP, i int) bool {
	switch in.Kind(x) {
	case LglSXP, IntSXP:
		return in.Integer(x)[i] == NAInteger
	case RealSXP:
		return math.IsNaN(in.Real(x)[i])
	case CplxSXP:
		z := in.Complex(x)[i]
		return math.IsNaN(real(z)) || math.IsNaN(imag(z))
	case StrSXP:
		return in.IsNAStringElt(x, i)
	case VecSXP:
		e := in.VectorElt(x, i)
		return in.Kind(e).IsAtomic() && in.Length(e) == 1 && in.isNAElt(e, 0)
	}
	return false
}

func doIsNA(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	k := in.Kind(x)
	if !k.IsVector() && k != NilSXP {
		in.Warning(call, "is.na() applied to non-(list or vector) of type '%s'", k)
		return in.ScalarLogical(0)
	}
	n := in.Length(x)
	out := in.Protect(in.AllocVector(LglSXP, n))
	for i := range n {
		if in.isNAElt(x, i) {
			in.Logical(out)[i] = 1
		}
	}
	for _, a := range []SEXP{in.sym.names, in.sym.dim, in.sym.dimnames} {
		if v := in.GetAttrib(x, a); v != in.Nil {
			in.SetAttrib(out, a, v)
		}
	}
	in.Unprotect(1)
	return out
}

// shared marks a value handed out by a getter, so that modifying it copies.
func (in *Interp) shared(v SEXP) SEXP {
	in.SetNamed(v, 2)
	return v
}

func doNames(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	if in.Kind(x) == EnvSXP {
		return in.MkStrings(in.sortedNames(x, true))
	}
	return in.shared(in.Names(x))
}

func doAttributes(in *Interp, call, op, args, rho SEXP) SEXP {
	x := in.Car(args)
	var tags []SEXP
	var vals []SEXP
	top := in.PPStackTop()
	if in.Kind(x).IsPairKind() {
		if names := in.tagNames(x); names != in.Nil {
			tags = append(tags, in.sym.names)
			vals = append(vals, in.Protect(names))
		}
	}
	for a := in.Attrib(x); a != in.Nil; a = in.Cdr(a) {
		tags = append(tags, in.Tag(a))
		vals = append(vals, in.Car(a))
	}
	if len(vals) == 0 {
		in.ResetPPStack(top)
		return in.Nil
	}
	out := in.Protect(in.AllocVector(VecSXP, len(vals)))
	names := make([]string, len(tags))
	for i, v := range vals {
		in.SetVectorElt(out, i, in.shared(v))
		names[i] = in.PrintName(tags[i])
	}
	in.SetAttrib(out, in.sym.names, in.MkStrings(names))
	in.ResetPPStack(top)
	return out
}

// attrName resolves which against the attribute names of x, exactly or
// by unique prefix.
func (in *Interp) attrName(call, x SEXP, which string, exact bool) SEXP {
	if sym, ok := in.Lookup(which); ok && in.GetAttrib(x, sym) != in.Nil {
		return sym
	}
	if exact {
		return 0
	}
	var hit SEXP
	candidates := []SEXP{}
	if in.Kind(x).IsPairKind() && in.tagNames(x) != in.Nil {
		candidates = append(candidates, in.sym.names)
	}
	for a := in.Attrib(x); a != in.Nil; a = in.Cdr(a) {
		candidates = append(candidates, in.Tag(a))
	}
	for _, t := range candidates {
		if name := in.PrintName(t); len(name) >= len(which) && name[:len(which)] == which {
			if hit != 0 {
				return 0
			}
			hit = t
		}
	}
	return hit
}

func doAttr(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "which", "exact")
	x := a.get(0, in.Nil)
	which, ok := in.AsString(a.get(1, in.Nil))
	if !ok || in.Length(a.get(1, in.Nil)) != 1 {
		in.ErrorCall(call, "exactly one attribute 'which' must be given")
	}
	exact := a.has(2) && in.AsLogical(a.vals[2]) == 1
	sym := in.attrName(call, x, which, exact)
	if sym == 0 {
		return in.Nil
	}
	return in.shared(in.GetAttrib(x, sym))
}

func doDim(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.shared(in.Dim(in.Car(args)))
}

func doLevels(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.shared(in.GetAttrib(in.Car(args), in.sym.levels))
}

// asVector converts x to kind k. Atomic results carry no attributes; lists
// keep their names.
func (in *Interp) asVector(call, x SEXP, k Kind) SEXP {
	xk := in.Kind(x)
	if xk == k {
		if k.IsAtomic() && in.Attrib(x) != in.Nil {
			v := in.Duplicate(x)
			in.SetAttribList(v, in.Nil)
			return v
		}
		return x
	}
	if xk == EnvSXP && k == VecSXP {
		names := in.sortedNames(x, true)
		out := in.Protect(in.AllocVector(VecSXP, len(names)))
		for i, name := range names {
			v := in.FindVarInFrame(x, in.Install(name))
			if in.Kind(v) == PromSXP {
				v = in.forcePromise(v)
			}
			in.SetVectorElt(out, i, in.shared(v))
		}
		in.SetAttrib(out, in.sym.names, in.MkStrings(names))
		in.Unprotect(1)
		return out
	}
	prev := in.curCall
	in.curCall = call
	v := in.CoerceVector(x, k)
	in.curCall = prev
	if k.IsAtomic() && in.Attrib(v) != in.Nil {
		in.SetAttribList(v, in.Nil)
	}
	return v
}

func doAsVector(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.asVector(call, in.Car(args), Kind(in.primCode(op))) //nolint:gosec // codes are kinds
}

func doAsVectorMode(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "mode")
	x := a.get(0, in.Nil)
	mode := "any"
	if a.has(1) {
		s, ok := in.AsString(a.vals[1])
		if !ok {
			in.ErrorCall(call, "invalid 'mode' argument")
		}
		mode = s
	}
	switch mode {
	case "any":
		if in.Kind(x).IsAtomic() {
			return in.asVector(call, x, in.Kind(x))
		}
		return x
	case "symbol", "name":
		s, ok := in.AsString(x)
		if !ok || s == "" {
			in.ErrorCall(call, "invalid type/length (symbol/%d) in vector allocation", in.Length(x))
		}
		return in.Install(s)
	case "pairlist":
		return in.CoerceVector(x, ListSXP)
	}
	k, ok := modeKind(mode)
	if !ok {
		in.ErrorCall(call, "vector: cannot make a vector of mode '%s'.", mode)
	}
	return in.asVector(call, x, k)
}
