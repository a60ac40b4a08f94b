package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// printer renders values the way the console shows them.
type printer struct {
	in     *Interp
	w      io.Writer
	digits int
	quote  bool
	width  int
	tag    string // prefix of nested list element headers
}

func (in *Interp) newPrinter() *printer {
	return &printer{
		in:     in,
		w:      in.stdout,
		digits: in.optionInt("digits", 7),
		quote:  true,
		width:  in.optionInt("width", 80),
	}
}

// PrintValue writes x to standard output with the current options.
func (in *Interp) PrintValue(x SEXP) {
	in.newPrinter().value(x)
}

func (p *printer) line(s string) { fmt.Fprintln(p.w, s) }

func (p *printer) value(x SEXP) {
	in := p.in
	in.checkInterrupt()
	switch in.Kind(x) {
	case NilSXP:
		p.line("NULL")
	case SymSXP, LangSXP, ExprSXP:
		for _, l := range in.Deparse(x, DefaultCutoff) {
			p.line(l)
		}
	case CloSXP:
		p.closure(x)
	case EnvSXP:
		p.line(in.envLabel(x))
	case BuiltinSXP, SpecialSXP:
		p.line("function (...) .Primitive(" + quoteString(in.PrimName(x)) + ")")
	case PromSXP:
		p.line("<promise: " + strings.Join(in.Deparse(in.PrCode(x), DefaultCutoff), " ") + ">")
	case DotSXP:
		p.line("<...>")
	case VecSXP, ListSXP:
		p.list(x)
	case LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP:
		switch {
		case in.Inherits(x, "factor"):
			p.factor(x)
		case in.Kind(x) == RealSXP && in.Inherits(x, "POSIXct"):
			p.posixct(x)
		case in.Length(in.Dim(x)) == 2:
			p.matrix(x)
		case in.Names(x) != in.Nil:
			p.named(x)
		default:
			p.vector(x)
		}
	default:
		p.line("<" + in.Kind(x).String() + ">")
	}
	p.attributes(x)
}

// envLabel is how an environment prints.
func (in *Interp) envLabel(env SEXP) string {
	if name := in.envName(env); name != "" {
		return "<environment: " + name + ">"
	}
	return fmt.Sprintf("<environment: %#08x>", uint32(env))
}

func (p *printer) closure(f SEXP) {
	in := p.in
	src := in.GetAttrib(f, in.sym.srcref)
	if in.Kind(src) == StrSXP && in.Length(src) > 0 {
		for _, l := range strings.Split(in.Str(src, 0), "\n") {
			p.line(l)
		}
	} else {
		for _, l := range in.Deparse(f, DefaultCutoff) {
			p.line(l)
		}
	}
	if env := in.CloEnv(f); env != in.GlobalEnv && env != in.Nil {
		p.line(in.envLabel(env))
	}
}

func emptyVector(k Kind) string {
	switch k {
	case LglSXP:
		return "logical(0)"
	case IntSXP:
		return "integer(0)"
	case RealSXP:
		return "numeric(0)"
	case CplxSXP:
		return "complex(0)"
	}
	return "character(0)"
}

// pad justifies s in a field of width w: numbers right, strings left.
func pad(s string, w int, right bool) string {
	if right {
		return padLeft(s, w)
	}
	return padRight(s, w)
}

func maxWidth(ss []string) int {
	w := 0
	for _, s := range ss {
		w = max(w, displayWidth(s))
	}
	return w
}

// vector prints an unnamed atomic vector with [k] labels, as many
// elements per line as fit the width.
func (p *printer) vector(x SEXP) {
	in := p.in
	n := in.Length(x)
	if n == 0 {
		p.line(emptyVector(in.Kind(x)))
		return
	}
	strs := in.elementStrings(x, p.digits, p.quote)
	w := maxWidth(strs)
	right := in.Kind(x) != StrSXP
	labw := len(strconv.Itoa(n)) + 2
	perLine := max(1, (p.width-labw)/(w+1))
	var sb strings.Builder
	for i := 0; i < n; i += perLine {
		sb.Reset()
		sb.WriteString(padLeft("["+strconv.Itoa(i+1)+"]", labw))
		for j := i; j < min(i+perLine, n); j++ {
			sb.WriteByte(' ')
			sb.WriteString(pad(strs[j], w, right))
		}
		p.line(sb.String())
	}
}

// named prints a vector with names as alternating name and value rows.
func (p *printer) named(x SEXP) {
	in := p.in
	n := in.Length(x)
	if n == 0 {
		p.line("named " + emptyVector(in.Kind(x)))
		return
	}
	strs := in.elementStrings(x, p.digits, p.quote)
	names := in.Names(x)
	labels := make([]string, n)
	for i := range n {
		if in.IsNAStringElt(names, i) {
			labels[i] = "<NA>"
		} else {
			labels[i] = in.Str(names, i)
		}
	}
	w := max(maxWidth(strs), maxWidth(labels))
	perLine := max(1, p.width/(w+1))
	var top, bottom strings.Builder
	for i := 0; i < n; i += perLine {
		top.Reset()
		bottom.Reset()
		for j := i; j < min(i+perLine, n); j++ {
			top.WriteString(padLeft(labels[j], w) + " ")
			bottom.WriteString(padLeft(strs[j], w) + " ")
		}
		p.line(top.String())
		p.line(bottom.String())
	}
}

func (p *printer) factor(x SEXP) {
	in := p.in
	levels := in.GetAttrib(x, in.sym.levels)
	nl := 0
	if in.Kind(levels) == StrSXP {
		nl = in.Length(levels)
	}
	codes := in.Protect(in.CoerceVector(x, IntSXP))
	n := in.Length(codes)
	if n == 0 {
		p.line("factor(0)")
	} else {
		vals := in.Protect(in.AllocVector(StrSXP, n))
		for i, c := range in.Integer(codes) {
			if c == NAInteger || c < 1 || int(c) > nl {
				in.SetStringElt(vals, i, in.NAString)
			} else {
				in.SetStringElt(vals, i, in.StringElt(levels, int(c)-1))
			}
		}
		q := p.quote
		p.quote = false
		p.vector(vals)
		p.quote = q
		in.Unprotect(1)
	}
	in.Unprotect(1)
	lv := make([]string, nl)
	for i := range nl {
		lv[i] = in.Str(levels, i)
	}
	p.line("Levels: " + strings.Join(lv, " "))
}

// posixct prints seconds since the epoch as local date-times.
func (p *printer) posixct(x SEXP) {
	in := p.in
	xs := in.Real(x)
	vals := make([]string, len(xs))
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vals[i] = "NA"
			continue
		}
		sec, frac := math.Modf(v)
		vals[i] = time.Unix(int64(sec), int64(frac*1e9)).Format("2006-01-02 15:04:05 MST")
	}
	p.vector(in.Protect(in.MkStrings(vals)))
	in.Unprotect(1)
}

// columnStrings formats column j of a matrix. Doubles get a layout per
// column.
func (p *printer) columnStrings(x SEXP, all []string, j, nr int) []string {
	in := p.in
	if in.Kind(x) == RealSXP {
		col := in.Real(x)[j*nr : (j+1)*nr]
		f := formatReal(col, p.digits)
		out := make([]string, nr)
		for i, v := range col {
			out[i] = encodeReal(v, f)
		}
		return out
	}
	return all[j*nr : (j+1)*nr]
}

func (p *printer) matrix(x SEXP) {
	in := p.in
	dim := in.Dim(x)
	nr, nc := int(in.Integer(dim)[0]), int(in.Integer(dim)[1])
	if nr == 0 || nc == 0 {
		p.line(fmt.Sprintf("<%d x %d matrix>", nr, nc))
		return
	}
	rowNames, colNames := in.stringsOf(in.dimNames(x, 0)), in.stringsOf(in.dimNames(x, 1))
	rows := make([]string, nr)
	for i := range nr {
		if len(rowNames) == nr {
			rows[i] = rowNames[i]
		} else {
			rows[i] = "[" + strconv.Itoa(i+1) + ",]"
		}
	}
	roww := maxWidth(rows)
	right := in.Kind(x) != StrSXP
	var all []string
	if in.Kind(x) != RealSXP {
		all = in.elementStrings(x, p.digits, p.quote)
	}
	cols := make([][]string, nc)
	heads := make([]string, nc)
	widths := make([]int, nc)
	for j := range nc {
		cols[j] = p.columnStrings(x, all, j, nr)
		if len(colNames) == nc {
			heads[j] = colNames[j]
		} else {
			heads[j] = "[," + strconv.Itoa(j+1) + "]"
		}
		widths[j] = max(maxWidth(cols[j]), displayWidth(heads[j]))
	}
	var sb strings.Builder
	for start := 0; start < nc; {
		end, used := start, roww
		for end < nc && (end == start || used+widths[end]+1 <= p.width) {
			used += widths[end] + 1
			end++
		}
		sb.Reset()
		sb.WriteString(strings.Repeat(" ", roww))
		for j := start; j < end; j++ {
			sb.WriteByte(' ')
			sb.WriteString(pad(heads[j], widths[j], right))
		}
		p.line(sb.String())
		for i := range nr {
			sb.Reset()
			sb.WriteString(padRight(rows[i], roww))
			for j := start; j < end; j++ {
				sb.WriteByte(' ')
				sb.WriteString(pad(cols[j][i], widths[j], right))
			}
			p.line(sb.String())
		}
		start = end
	}
}

// stringsOf reads a character vector, nil when v is not one.
func (in *Interp) stringsOf(v SEXP) []string {
	if in.Kind(v) != StrSXP {
		return nil
	}
	out := make([]string, in.Length(v))
	for i := range out {
		out[i] = in.Str(v, i)
	}
	return out
}

// list prints each element under a $name or [[i]] header.
func (p *printer) list(x SEXP) {
	in := p.in
	if in.Kind(x) == ListSXP {
		x = in.Protect(in.CoerceVector(x, VecSXP))
		defer in.Unprotect(1)
	}
	n := in.Length(x)
	names := in.Names(x)
	if n == 0 {
		if names != in.Nil {
			p.line("named list()")
		} else {
			p.line("list()")
		}
		return
	}
	outer := p.tag
	for i := range n {
		tag := outer + "[[" + strconv.Itoa(i+1) + "]]"
		if names != in.Nil && !in.IsNAStringElt(names, i) && in.Str(names, i) != "" {
			tag = outer + "$" + quoteName(in.Str(names, i))
		}
		p.line(tag)
		p.tag = tag
		p.value(in.VectorElt(x, i))
		p.tag = outer
		p.line("")
	}
}

// attributes prints the attributes not already shown by the layout.
func (p *printer) attributes(x SEXP) {
	in := p.in
	k := in.Kind(x)
	if k == CloSXP || k == EnvSXP || k == SymSXP || k == NilSXP {
		return
	}
	factor := in.Inherits(x, "factor")
	posix := in.Kind(x) == RealSXP && in.Inherits(x, "POSIXct")
	for a := in.Attrib(x); a != in.Nil; a = in.Cdr(a) {
		tag := in.Tag(a)
		switch {
		case tag == in.sym.names || tag == in.sym.srcref:
			continue
		case (tag == in.sym.dim || tag == in.sym.dimnames) && in.Length(in.Dim(x)) == 2:
			continue
		case factor && (tag == in.sym.levels || tag == in.sym.class):
			continue
		case posix && tag == in.sym.class:
			continue
		}
		p.line("attr(," + quoteString(in.PrintName(tag)) + ")")
		outer := p.tag
		p.tag = ""
		p.value(in.Car(a))
		p.tag = outer
	}
}
