package interp

import (
	"bufio"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"
)

func doPrint(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "digits", "quote", "...")
	x := a.get(0, in.Nil)
	p := in.newPrinter()
	if a.has(1) && a.vals[1] != in.Nil {
		d := in.AsInteger(a.vals[1])
		if d == NAInteger || d < 1 || d > 22 {
			in.ErrorCall(call, "invalid '%s' argument", "digits")
		}
		p.digits = int(d)
	}
	if a.has(2) {
		q := in.AsLogical(a.vals[2])
		if q == NALogical {
			in.ErrorCall(call, "invalid '%s' argument", "quote")
		}
		p.quote = q == 1
	}
	p.value(x)
	return x
}

// catStrings renders one argument of cat element by element.
func (in *Interp) catStrings(call, x SEXP, argno, digits int) []string {
	switch in.Kind(x) {
	case NilSXP:
		return nil
	case SymSXP:
		return []string{in.PrintName(x)}
	case LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP:
		n := in.Length(x)
		out := make([]string, n)
		for i := range n {
			switch in.Kind(x) {
			case LglSXP:
				out[i] = lglString(in.Logical(x)[i])
			case IntSXP:
				out[i] = intString(in.Integer(x)[i])
			case RealSXP:
				out[i] = realString(in.Real(x)[i], digits)
			case CplxSXP:
				out[i] = complexString(in.Complex(x)[i], digits)
			default:
				out[i] = in.Str(x, i)
			}
		}
		return out
	case VecSXP, ListSXP:
		var out []string
		l := in.Protect(in.CoerceVector(x, VecSXP))
		for i := range in.Length(l) {
			e := in.VectorElt(l, i)
			if !in.Kind(e).IsAtomic() || in.Length(e) != 1 {
				in.ErrorCall(call, "argument %d (type 'list') cannot be handled by 'cat'", argno)
			}
			out = append(out, in.catStrings(call, e, argno, digits)...)
		}
		in.Unprotect(1)
		return out
	}
	in.ErrorCall(call, "argument %d (type '%s') cannot be handled by 'cat'", argno, in.Kind(x))
	return nil
}

func doCat(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...", "file", "sep", "fill", "labels", "append")
	seps := []string{" "}
	if a.has(2) {
		s := a.vals[2]
		if in.Kind(s) != StrSXP || in.Length(s) == 0 {
			in.ErrorCall(call, "invalid '%s' specification", "sep")
		}
		seps = in.stringsOf(s)
	}
	fill := 0
	if a.has(3) {
		f := a.vals[3]
		switch {
		case in.Kind(f) == LglSXP && in.AsLogical(f) == 1:
			fill = in.optionInt("width", 80)
		case in.Kind(f) == IntSXP || in.Kind(f) == RealSXP:
			fill = int(in.AsInteger(f))
		}
	}
	digits := min(in.optionInt("digits", 7), 15)
	var items []string
	for i, n := range a.dots {
		items = append(items, in.catStrings(call, in.Car(n), i+1, digits)...)
	}

	var out io.Writer = in.stdout
	if a.has(1) {
		path, ok := in.AsString(a.vals[1])
		if !ok {
			in.ErrorCall(call, "invalid connection")
		}
		if path != "" {
			flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if a.has(5) && in.AsLogical(a.vals[5]) == 1 {
				flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			f, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				in.ErrorCall(call, "cannot open file '%s': %v", path, err)
			}
			defer f.Close()
			out = f
		}
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	width := 0
	for i, s := range items {
		if i > 0 {
			sep := seps[(i-1)%len(seps)]
			if fill > 0 && width+len(sep)+displayWidth(s) > fill {
				w.WriteString("\n")
				width = 0
			} else {
				w.WriteString(sep)
				width += displayWidth(sep)
				if j := strings.LastIndexByte(sep, '\n'); j >= 0 {
					width = displayWidth(sep[j+1:])
				}
			}
		}
		w.WriteString(s)
		width += displayWidth(s)
	}
	if fill > 0 && len(items) > 0 {
		w.WriteString("\n")
	}
	return in.Nil
}

// pasteStrings coerces one paste argument to strings.
func (in *Interp) pasteStrings(x SEXP) []string {
	switch in.Kind(x) {
	case NilSXP:
		return nil
	case SymSXP:
		return []string{in.PrintName(x)}
	case LangSXP, CloSXP:
		return []string{strings.Join(in.Deparse(x, DefaultCutoff), "\n")}
	}
	s := in.Protect(in.CoerceVector(x, StrSXP))
	out := make([]string, in.Length(s))
	for i := range out {
		out[i] = in.Str(s, i)
	}
	in.Unprotect(1)
	return out
}

// stringArg reads a scalar string argument.
func (in *Interp) stringArg(call, v SEXP, what string) string {
	if in.Kind(v) != StrSXP || in.Length(v) != 1 || in.IsNAStringElt(v, 0) {
		in.ErrorCall(call, "invalid '%s' argument", what)
	}
	return in.Str(v, 0)
}

// doPaste concatenates its arguments element-wise; code 1 is paste0.
// Zero-length arguments are dropped.
func doPaste(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...", "sep", "collapse")
	sep := " "
	if in.primCode(op) == 1 {
		sep = ""
	} else if a.has(1) {
		sep = in.stringArg(call, a.vals[1], "separator")
	}
	var parts [][]string
	n := 0
	for _, d := range a.dots {
		ss := in.pasteStrings(in.Car(d))
		if len(ss) == 0 {
			continue
		}
		parts = append(parts, ss)
		n = max(n, len(ss))
	}
	res := make([]string, n)
	elems := make([]string, len(parts))
	for i := range n {
		for j, ss := range parts {
			elems[j] = ss[i%len(ss)]
		}
		res[i] = strings.Join(elems, sep)
	}
	if a.has(2) && a.vals[2] != in.Nil {
		collapse := in.stringArg(call, a.vals[2], "collapse")
		return in.MkString(strings.Join(res, collapse))
	}
	return in.MkStrings(res)
}

// justify pads s to width w; mode is left, right, centre or none.
func justify(s string, w int, mode string) string {
	switch mode {
	case "right":
		return padLeft(s, w)
	case "centre":
		d := w - displayWidth(s)
		if d <= 0 {
			return s
		}
		return strings.Repeat(" ", d/2) + s + strings.Repeat(" ", d-d/2)
	case "none":
		return s
	}
	return padRight(s, w)
}

// formatElements renders x for format(): a common layout, nsmall
// decimals at least for doubles.
func (in *Interp) formatElements(x SEXP, digits, nsmall int) []string {
	switch in.Kind(x) {
	case RealSXP:
		xs := in.Real(x)
		f := formatReal(xs, digits)
		if !f.sci && f.digits < nsmall {
			f.digits = nsmall
		}
		out := make([]string, len(xs))
		for i, v := range xs {
			out[i] = encodeReal(v, f)
		}
		return out
	case StrSXP:
		out := in.elementStrings(x, digits, false)
		for i := range out {
			if in.IsNAStringElt(x, i) {
				out[i] = "NA"
			}
		}
		return out
	case VecSXP:
		out := make([]string, in.Length(x))
		for i := range out {
			e := in.VectorElt(x, i)
			if in.Kind(e).IsAtomic() {
				out[i] = strings.Join(in.formatElements(e, digits, nsmall), ", ")
			} else {
				out[i] = strings.Join(in.Deparse(e, DefaultCutoff), " ")
			}
		}
		return out
	}
	return in.elementStrings(x, digits, false)
}

func doFormat(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "trim", "digits", "nsmall", "justify", "width", "...")
	x := a.get(0, in.Nil)
	if x == in.Nil {
		return in.AllocVector(StrSXP, 0)
	}
	if !in.Kind(x).IsAtomic() && in.Kind(x) != VecSXP {
		return in.MkStrings(in.Deparse(x, DefaultCutoff))
	}
	trim := a.has(1) && in.AsLogical(a.vals[1]) == 1
	digits := in.optionInt("digits", 7)
	if a.has(2) && a.vals[2] != in.Nil {
		d := in.AsInteger(a.vals[2])
		if d == NAInteger || d < 1 || d > 22 {
			in.ErrorCall(call, "invalid '%s' argument", "digits")
		}
		digits = int(d)
	}
	nsmall := 0
	if a.has(3) {
		ns := in.AsInteger(a.vals[3])
		if ns == NAInteger || ns < 0 || ns > 20 {
			in.ErrorCall(call, "invalid '%s' argument", "nsmall")
		}
		nsmall = int(ns)
	}
	mode := "left"
	if a.has(4) {
		m := in.stringArg(call, a.vals[4], "justify")
		for _, j := range []string{"left", "right", "centre", "none"} {
			if strings.HasPrefix(j, m) {
				mode = j
				break
			}
		}
	}
	minw := 0
	if a.has(5) && a.vals[5] != in.Nil {
		minw = max(int(in.AsInteger(a.vals[5])), 0)
	}
	strs := in.formatElements(x, digits, nsmall)
	w := max(maxWidth(strs), minw)
	for i, s := range strs {
		switch {
		case in.Kind(x) == StrSXP:
			strs[i] = justify(s, w, mode)
		case !trim:
			strs[i] = padLeft(s, w)
		}
	}
	out := in.Protect(in.MkStrings(strs))
	for _, sym := range []SEXP{in.sym.names, in.sym.dim, in.sym.dimnames} {
		if v := in.GetAttrib(x, sym); v != in.Nil {
			in.SetAttrib(out, sym, v)
		}
	}
	in.Unprotect(1)
	return out
}

func doNchar(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "type", "allowNA", "keepNA")
	x := a.get(0, in.Nil)
	if in.Inherits(x, "factor") {
		in.ErrorCall(call, "'nchar()' requires a character vector")
	}
	typ := "chars"
	if a.has(1) {
		t := in.stringArg(call, a.vals[1], "type")
		typ = ""
		for _, c := range []string{"bytes", "chars", "width"} {
			if t != "" && strings.HasPrefix(c, t) {
				typ = c
			}
		}
		if typ == "" {
			in.ErrorCall(call, "invalid '%s' argument", "type")
		}
	}
	keepNA := NALogical
	if a.has(3) {
		keepNA = in.AsLogical(a.vals[3])
	}
	isStr := in.Kind(x) == StrSXP
	s := in.Protect(in.CoerceVector(x, StrSXP))
	n := in.Length(s)
	out := in.Protect(in.AllocVector(IntSXP, n))
	res := in.Integer(out)
	for i := range n {
		if in.IsNAStringElt(s, i) {
			naAsNA := keepNA == 1 || keepNA == NALogical && typ != "bytes"
			if isStr && naAsNA {
				res[i] = NAInteger
			} else {
				res[i] = 2
			}
			continue
		}
		str := in.Str(s, i)
		var c int
		switch typ {
		case "bytes":
			c = len(str)
		case "width":
			c = displayWidth(str)
		default:
			c = utf8.RuneCountInString(str)
		}
		res[i] = int32(min(c, math.MaxInt32)) //nolint:gosec // clamped
	}
	for _, sym := range []SEXP{in.sym.names, in.sym.dim, in.sym.dimnames} {
		if v := in.GetAttrib(x, sym); v != in.Nil {
			in.SetAttrib(out, sym, v)
		}
	}
	in.Unprotect(2)
	return out
}
