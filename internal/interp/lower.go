package interp

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"erre/internal/ast"
	"erre/internal/diag"
	"erre/internal/parser"
)

// Lower turns a parsed expression into cells. Constants come out shared,
// so code is never modified in place.
func (in *Interp) Lower(e ast.Expr) SEXP {
	switch e := e.(type) {
	case *ast.Num:
		return in.constant(in.ScalarReal(e.Value))
	case *ast.Int:
		return in.constant(in.ScalarInteger(e.Value))
	case *ast.Imag:
		return in.constant(in.ScalarComplex(complex(0, e.Value)))
	case *ast.Str:
		return in.constant(in.MkString(e.Value))
	case *ast.Const:
		return in.lowerConst(e.Kind)
	case *ast.Sym:
		return in.Install(e.Name)
	case *ast.Call:
		return in.lowerCall(e)
	case *ast.Function:
		return in.lowerFunction(e)
	}
	panic(fmt.Sprintf("interp: cannot lower %T", e))
}

func (in *Interp) constant(v SEXP) SEXP {
	in.SetNamed(v, 2)
	return v
}

func (in *Interp) lowerConst(k ast.ConstKind) SEXP {
	switch k {
	case ast.ConstTrue:
		return in.constant(in.ScalarLogical(1))
	case ast.ConstFalse:
		return in.constant(in.ScalarLogical(0))
	case ast.ConstNull:
		return in.Nil
	case ast.ConstNA:
		return in.constant(in.ScalarLogical(NALogical))
	case ast.ConstNAInteger:
		return in.constant(in.ScalarInteger(NAInteger))
	case ast.ConstNAReal:
		return in.constant(in.ScalarReal(NAReal))
	case ast.ConstNACharacter:
		return in.constant(in.ScalarString(in.NAString))
	case ast.ConstInf:
		return in.constant(in.ScalarReal(math.Inf(1)))
	case ast.ConstNaN:
		return in.constant(in.ScalarReal(math.NaN()))
	}
	return in.Nil
}

func (in *Interp) lowerCall(e *ast.Call) SEXP {
	top := in.PPStackTop()
	fn := in.Protect(in.Lower(e.Fn))
	b := in.newListBuilder()
	// tags are installed first: Install allocates, and a freshly lowered
	// value is unrooted until add links it in
	for _, a := range e.Args {
		tag := in.Nil
		if a.HasName {
			tag = in.Install(a.Name)
		}
		v := in.MissingArg
		if a.Value != nil {
			v = in.Lower(a.Value)
		}
		b.add(v, tag)
	}
	out := in.LCons(fn, b.list())
	in.ResetPPStack(top)
	return out
}

// lowerFunction builds the call function(formals, body[, source]). The
// source text is kept when the keep.source option is on.
func (in *Interp) lowerFunction(e *ast.Function) SEXP {
	top := in.PPStackTop()
	b := in.newListBuilder()
	for _, p := range e.Params {
		tag := in.Install(p.Name)
		v := in.MissingArg
		if p.Default != nil {
			v = in.Lower(p.Default)
		}
		b.add(v, tag)
	}
	formals := in.Protect(b.list())
	body := in.Protect(in.Lower(e.Body))
	src := in.Nil
	if in.AsLogical(in.GetOption("keep.source")) == 1 && e.Src != "" {
		src = in.Protect(in.constant(in.MkString(e.Src)))
	}
	var out SEXP
	if src == in.Nil {
		out = in.Lang3(in.sym.function, formals, body)
	} else {
		out = in.Lang4(in.sym.function, formals, body, src)
	}
	in.ResetPPStack(top)
	return out
}

// ParseError is a syntax error in source text.
type ParseError struct {
	Diag       diag.Diagnostic
	Text       string // formatted the way the console prints it
	Incomplete bool
}

func (e *ParseError) Error() string { return e.Text }

// Parse parses text and lowers every top-level expression into an
// expression vector.
func (in *Interp) Parse(name, text string) (SEXP, error) {
	res := parser.ParseText(in.files, name, text)
	if d, ok := res.Err(); ok {
		return in.Nil, &ParseError{Diag: d, Text: diag.Format(in.files, d, false), Incomplete: res.Incomplete()}
	}
	out := in.Protect(in.AllocVector(ExprSXP, len(res.Exprs)))
	for i, e := range res.Exprs {
		in.SetVectorElt(out, i, in.Lower(e))
	}
	in.Unprotect(1)
	return out, nil
}

// ParseFile reads and parses a source file.
func (in *Interp) ParseFile(path string) (SEXP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return in.Nil, fmt.Errorf("cannot open file '%s': %w", path, err)
	}
	return in.Parse(path, string(data))
}

func doParse(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "file", "n", "text")
	var (
		exprs SEXP
		err   error
	)
	switch {
	case a.has(2) && a.vals[2] != in.Nil:
		t := in.Protect(in.CoerceVector(a.vals[2], StrSXP))
		lines := make([]string, in.Length(t))
		for i := range lines {
			lines[i] = in.Str(t, i)
		}
		in.Unprotect(1)
		exprs, err = in.Parse("<text>", strings.Join(lines, "\n"))
	case a.has(0):
		path, ok := in.AsString(a.vals[0])
		if !ok {
			in.ErrorCall(call, "invalid 'file' argument")
		}
		exprs, err = in.ParseFile(path)
	default:
		return in.AllocVector(ExprSXP, 0)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			in.ErrorCall(call, "%s", strings.TrimPrefix(pe.Text, "Error: "))
		}
		in.ErrorCall(call, "%s", err.Error())
	}
	if a.has(1) {
		if n := in.AsInteger(a.vals[1]); n != NAInteger && n >= 0 && int(n) < in.Length(exprs) {
			in.Protect(exprs)
			out := in.AllocVector(ExprSXP, int(n))
			copy(in.elts(out), in.elts(exprs)[:n])
			in.Unprotect(1)
			return out
		}
	}
	return exprs
}
