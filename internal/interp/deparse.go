package interp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCutoff is the line width deparse aims for.
const DefaultCutoff = 60

// operator precedence, loosest first
const (
	precAssign = iota + 1
	precTilde
	precOr
	precAnd
	precNot
	precCompare
	precSum
	precProd
	precSpecial
	precColon
	precUnary
	precPow
	precSubset
	precCall
)

type opInfo struct {
	prec   int
	right  bool // right associative
	spaced bool // written with blanks around it
}

var binaryOps = map[string]opInfo{
	"<-": {precAssign, true, true}, "<<-": {precAssign, true, true}, "=": {precAssign, true, true},
	"~":  {precTilde, false, true},
	"||": {precOr, false, true}, "|": {precOr, false, true},
	"&&": {precAnd, false, true}, "&": {precAnd, false, true},
	"==": {precCompare, false, true}, "!=": {precCompare, false, true}, "<": {precCompare, false, true},
	">": {precCompare, false, true}, "<=": {precCompare, false, true}, ">=": {precCompare, false, true},
	"+": {precSum, false, true}, "-": {precSum, false, true},
	"*": {precProd, false, true}, "/": {precProd, false, false},
	"%%": {precSpecial, false, false}, "%/%": {precSpecial, false, false},
	":": {precColon, false, false},
	"^": {precPow, true, false},
	"$": {precSubset, false, false},
}

var reservedWords = map[string]bool{
	"if": true, "else": true, "repeat": true, "while": true, "function": true, "for": true,
	"next": true, "break": true, "TRUE": true, "FALSE": true, "NULL": true, "Inf": true,
	"NaN": true, "NA": true, "NA_integer_": true, "NA_real_": true, "NA_character_": true, "in": true,
}

// isSyntacticName reports whether s can be written as a bare symbol.
func isSyntacticName(s string) bool {
	if s == "..." || ddIndex(s) > 0 {
		return true
	}
	if s == "" || reservedWords[s] {
		return false
	}
	r, size := utf8.DecodeRuneInString(s)
	switch {
	case r == '.':
		if len(s) > 1 {
			if r2, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsDigit(r2) {
				return false
			}
		}
	case !unicode.IsLetter(r):
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' {
			return false
		}
	}
	return true
}

func quoteName(s string) string {
	if isSyntacticName(s) {
		return s
	}
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

type deparser struct {
	in        *Interp
	cutoff    int
	lines     []string
	buf       strings.Builder
	indent    int
	startLine bool
	depth     int
	curly     int // open braces around the current position
}

// Deparse renders s as source text, broken into lines near width.
func (in *Interp) Deparse(s SEXP, width int) []string {
	if width <= 0 {
		width = DefaultCutoff
	}
	d := &deparser{in: in, cutoff: width}
	d.expr(s, 0)
	d.newline()
	return d.lines
}

func (d *deparser) write(s string) {
	if d.startLine {
		d.startLine = false
		d.buf.WriteString(strings.Repeat("    ", d.indent))
	}
	d.buf.WriteString(s)
}

func (d *deparser) newline() {
	d.lines = append(d.lines, d.buf.String())
	d.buf.Reset()
	d.startLine = true
}

// linebreak starts a continuation line once the current one is too long.
func (d *deparser) linebreak(broke *bool) {
	if d.buf.Len() > d.cutoff {
		if !*broke {
			*broke = true
			d.indent++
		}
		d.newline()
	}
}

func (d *deparser) expr(s SEXP, prec int) {
	in := d.in
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > 1000 {
		d.write("...")
		return
	}
	switch in.Kind(s) {
	case NilSXP:
		d.write("NULL")
	case SymSXP:
		if s == in.MissingArg {
			return
		}
		d.write(quoteName(in.PrintName(s)))
	case CharSXP:
		d.write(quoteString(in.CharText(s)))
	case LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP:
		d.atomic(s)
	case VecSXP:
		d.list(s, "list")
	case ExprSXP:
		d.list(s, "expression")
	case ListSXP:
		d.pairlist(s)
	case LangSXP:
		d.call(s, prec)
	case CloSXP:
		d.closure(s)
	case EnvSXP:
		d.write("<environment>")
	case PromSXP:
		d.expr(in.PrCode(s), prec)
	case SpecialSXP, BuiltinSXP:
		d.write(".Primitive(" + quoteString(in.PrimName(s)) + ")")
	case DotSXP:
		d.write("...")
	default:
		d.write("<" + in.Kind(s).String() + ">")
	}
}

// extraAttribs reports attributes other than names, which need a
// structure() wrapper.
func (d *deparser) extraAttribs(s SEXP) bool {
	for a := d.in.Attrib(s); a != d.in.Nil; a = d.in.Cdr(a) {
		if d.in.Tag(a) != d.in.sym.names {
			return true
		}
	}
	return false
}

func (d *deparser) structureTail(s SEXP) {
	in := d.in
	for a := in.Attrib(s); a != in.Nil; a = in.Cdr(a) {
		tag := in.Tag(a)
		if tag == in.sym.names {
			continue
		}
		d.write(", ")
		name := in.PrintName(tag)
		switch tag {
		case in.sym.dim:
			name = "dim"
		case in.sym.dimnames:
			name = "dimnames"
		case in.sym.class:
			name = "class"
		}
		d.write(quoteName(name) + " = ")
		d.expr(in.Car(a), 0)
	}
	d.write(")")
}

func (d *deparser) atomic(s SEXP) {
	in := d.in
	wrap := d.extraAttribs(s)
	if wrap {
		d.write("structure(")
	}
	n := in.Length(s)
	names := in.Names(s)
	elt := func(i int) string {
		switch in.Kind(s) {
		case LglSXP:
			return lglString(in.Logical(s)[i])
		case IntSXP:
			v := in.Integer(s)[i]
			if v == NAInteger {
				if n == 1 {
					return "NA_integer_"
				}
				return "NA"
			}
			return intString(v) + "L"
		case RealSXP:
			v := in.Real(s)[i]
			if IsNA(v) {
				if n == 1 {
					return "NA_real_"
				}
				return "NA"
			}
			return realString(v, 15)
		case CplxSXP:
			z := in.Complex(s)[i]
			if IsNAComplex(z) {
				if n == 1 {
					return "NA_complex_"
				}
				return "NA"
			}
			return complexString(z, 15)
		}
		if in.IsNAStringElt(s, i) {
			if n == 1 {
				return "NA_character_"
			}
			return "NA"
		}
		return quoteString(in.Str(s, i))
	}
	switch {
	case n == 0:
		d.write(map[Kind]string{LglSXP: "logical(0)", IntSXP: "integer(0)", RealSXP: "numeric(0)",
			CplxSXP: "complex(0)", StrSXP: "character(0)"}[in.Kind(s)])
	case names == in.Nil && in.Kind(s) == IntSXP && n > 1 && d.isRange(s):
		v := in.Integer(s)
		d.write(intString(v[0]) + ":" + intString(v[n-1]))
	case n == 1 && names == in.Nil:
		d.write(elt(0))
	default:
		d.write("c(")
		broke := false
		for i := range n {
			if i > 0 {
				d.write(", ")
				d.linebreak(&broke)
			}
			if names != in.Nil && !in.IsNAStringElt(names, i) && in.Str(names, i) != "" {
				d.write(quoteName(in.Str(names, i)) + " = ")
			}
			d.write(elt(i))
		}
		d.write(")")
		if broke {
			d.indent--
		}
	}
	if wrap {
		d.structureTail(s)
	}
}

func (d *deparser) isRange(s SEXP) bool {
	v := d.in.Integer(s)
	for i := 1; i < len(v); i++ {
		if v[i-1] == NAInteger || v[i] != v[i-1]+1 {
			return false
		}
	}
	return true
}

func (d *deparser) list(s SEXP, fn string) {
	in := d.in
	wrap := d.extraAttribs(s)
	if wrap {
		d.write("structure(")
	}
	d.write(fn + "(")
	names := in.Names(s)
	broke := false
	for i := range in.Length(s) {
		if i > 0 {
			d.write(", ")
			d.linebreak(&broke)
		}
		if names != in.Nil && !in.IsNAStringElt(names, i) && in.Str(names, i) != "" {
			d.write(quoteName(in.Str(names, i)) + " = ")
		}
		d.expr(in.VectorElt(s, i), 0)
	}
	d.write(")")
	if broke {
		d.indent--
	}
	if wrap {
		d.structureTail(s)
	}
}

func (d *deparser) pairlist(s SEXP) {
	d.write("pairlist(")
	d.args(s)
	d.write(")")
}

// args writes the argument list of a call.
func (d *deparser) args(a SEXP) {
	in := d.in
	broke := false
	for first := true; a != in.Nil; a = in.Cdr(a) {
		if !first {
			d.write(", ")
			d.linebreak(&broke)
		}
		first = false
		if t := in.Tag(a); t != in.Nil {
			d.write(quoteName(in.PrintName(t)))
			if in.Car(a) == in.MissingArg {
				d.write(" = ")
				continue
			}
			d.write(" = ")
		}
		d.expr(in.Car(a), 0)
	}
	if broke {
		d.indent--
	}
}

// formals writes a function's parameter list.
func (d *deparser) formals(f SEXP) {
	in := d.in
	for first := true; f != in.Nil; f = in.Cdr(f) {
		if !first {
			d.write(", ")
		}
		first = false
		d.write(quoteName(in.PrintName(in.Tag(f))))
		if in.Car(f) != in.MissingArg {
			d.write(" = ")
			d.expr(in.Car(f), 0)
		}
	}
}

func (d *deparser) closure(s SEXP) {
	in := d.in
	d.write("function (")
	d.formals(in.Formals(s))
	d.write(") ")
	d.expr(in.Body(s), 0)
}

// body writes the body of if, for, while, repeat and function.
func (d *deparser) body(s SEXP) {
	d.expr(s, 0)
}

func (d *deparser) call(s SEXP, prec int) {
	in := d.in
	fn := in.Car(s)
	args := in.Cdr(s)
	nargs := in.Length(args)
	if in.Kind(fn) != SymSXP {
		if in.Kind(fn) == LangSXP && in.Car(fn) == in.sym.function || in.Kind(fn) == CloSXP {
			d.write("(")
			d.expr(fn, 0)
			d.write(")")
		} else {
			d.expr(fn, precCall)
		}
		d.write("(")
		d.args(args)
		d.write(")")
		return
	}
	name := in.PrintName(fn)
	tagged := false
	for a := args; a != in.Nil; a = in.Cdr(a) {
		if in.Tag(a) != in.Nil {
			tagged = true
		}
	}
	switch name {
	case "{":
		d.write("{")
		d.indent++
		d.curly++
		for a := args; a != in.Nil; a = in.Cdr(a) {
			d.newline()
			d.expr(in.Car(a), 0)
		}
		d.curly--
		d.indent--
		d.newline()
		d.write("}")
		return
	case "(":
		if nargs == 1 {
			d.write("(")
			d.expr(in.Car(args), 0)
			d.write(")")
			return
		}
	case "if":
		if nargs == 2 || nargs == 3 {
			paren := prec > precAssign
			if paren {
				d.write("(")
			}
			d.write("if (")
			d.expr(in.Car(args), 0)
			d.write(") ")
			d.body(in.Cadr(args))
			if nargs == 3 {
				// a statement in braces ending after the consequent would
				// leave the else dangling
				if d.curly == 0 || in.isBrace(in.Cadr(args)) {
					d.write(" else ")
				} else {
					d.newline()
					d.write("else ")
				}
				d.body(in.Caddr(args))
			}
			if paren {
				d.write(")")
			}
			return
		}
	case "for":
		if nargs == 3 {
			d.write("for (")
			d.expr(in.Car(args), 0)
			d.write(" in ")
			d.expr(in.Cadr(args), 0)
			d.write(") ")
			d.body(in.Caddr(args))
			return
		}
	case "while":
		if nargs == 2 {
			d.write("while (")
			d.expr(in.Car(args), 0)
			d.write(") ")
			d.body(in.Cadr(args))
			return
		}
	case "repeat":
		if nargs == 1 {
			d.write("repeat ")
			d.body(in.Car(args))
			return
		}
	case "break", "next":
		if nargs == 0 {
			d.write(name)
			return
		}
	case "function":
		d.write("function(")
		d.formals(in.Car(args))
		d.write(") ")
		d.body(in.Cadr(args))
		return
	case "[", "[[":
		if nargs >= 1 && !tagged || nargs >= 1 && in.Tag(args) == in.Nil {
			d.expr(in.Car(args), precSubset)
			d.write(name)
			d.args(in.Cdr(args))
			if name == "[" {
				d.write("]")
			} else {
				d.write("]]")
			}
			return
		}
	}
	if op, ok := binaryOps[name]; ok && nargs == 2 && !tagged {
		paren := op.prec < prec
		if paren {
			d.write("(")
		}
		lp, rp := op.prec, op.prec+1
		if op.right {
			lp, rp = op.prec+1, op.prec
		}
		d.expr(in.Car(args), lp)
		if op.spaced {
			d.write(" " + name + " ")
		} else {
			d.write(name)
		}
		d.expr(in.Cadr(args), rp)
		if paren {
			d.write(")")
		}
		return
	}
	if strings.HasPrefix(name, "%") && strings.HasSuffix(name, "%") && len(name) > 1 && nargs == 2 && !tagged {
		paren := precSpecial < prec
		if paren {
			d.write("(")
		}
		d.expr(in.Car(args), precSpecial)
		d.write(" " + name + " ")
		d.expr(in.Cadr(args), precSpecial+1)
		if paren {
			d.write(")")
		}
		return
	}
	if (name == "-" || name == "+" || name == "!") && nargs == 1 && !tagged {
		p := precUnary
		if name == "!" {
			p = precNot
		}
		paren := p < prec
		if paren {
			d.write("(")
		}
		d.write(name)
		d.expr(in.Car(args), p)
		if paren {
			d.write(")")
		}
		return
	}
	d.write(quoteName(name))
	d.write("(")
	d.args(args)
	d.write(")")
}

func doDeparse(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "expr", "width.cutoff")
	width := DefaultCutoff
	if a.has(1) {
		w := in.AsInteger(a.vals[1])
		if w == NAInteger || w < 20 || w > 500 {
			in.Warning(call, "invalid 'cutoff' value for 'deparse', using default")
		} else {
			width = int(w)
		}
	}
	return in.MkStrings(in.Deparse(a.get(0, in.Nil), width))
}
