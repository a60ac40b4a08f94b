package interp

import (
	"fmt"
	"strings"
)

func doQuote(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.Length(args) != 1 {
		in.ErrorCode(ErrArity, call, "%d arguments passed to 'quote' which requires 1", in.Length(args))
	}
	return in.Car(args)
}

// asCondition reads the test of if and while.
func (in *Interp) asCondition(call, v SEXP) bool {
	n := in.Length(v)
	if n == 0 {
		in.ErrorCall(call, "argument is of length zero")
	}
	if n > 1 {
		in.Warning(call, "the condition has length > 1 and only the first element will be used")
	}
	b := in.AsLogical(v)
	if b == NALogical {
		switch in.Kind(v) {
		case LglSXP, IntSXP, RealSXP, CplxSXP:
			in.ErrorCall(call, "missing value where TRUE/FALSE needed")
		default:
			in.ErrorCall(call, "argument is not interpretable as logical")
		}
	}
	return b != 0
}

func doIf(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.asCondition(call, in.Eval(in.Car(args), rho)) {
		return in.Eval(in.Cadr(args), rho)
	}
	if in.Length(args) > 2 {
		return in.Eval(in.Caddr(args), rho)
	}
	in.Visible = false
	return in.Nil
}

func doFor(in *Interp, call, op, args, rho SEXP) SEXP {
	sym := in.Car(args)
	if in.Kind(sym) != SymSXP {
		in.ErrorCall(call, "non-symbol loop variable")
	}
	top := in.PPStackTop()
	val := in.Protect(in.Eval(in.Cadr(args), rho))
	body := in.Caddr(args)
	k := in.Kind(val)
	if k != NilSXP && !k.IsVector() && k != ListSXP {
		in.ErrorCall(call, "invalid for() loop sequence")
	}
	n := in.Length(val)
	node := val
	c := in.BeginContext(CtxLoop, call, rho, rho, in.Nil, in.Nil)
	in.withContext(c, func() SEXP {
		for i := range n {
			in.checkInterrupt()
			var v SEXP
			switch k {
			case VecSXP, ExprSXP:
				v = in.VectorElt(val, i)
				in.SetNamed(v, 2)
			case ListSXP:
				v = in.Car(node)
				node = in.Cdr(node)
				in.SetNamed(v, 2)
			default:
				v = in.vectorSlice(val, i)
			}
			in.DefineVar(sym, v, rho)
			if in.loopBody(c, body, rho) == CtxBreak {
				break
			}
		}
		return in.Nil
	})
	in.ResetPPStack(top)
	in.Visible = false
	return in.Nil
}

func doWhile(in *Interp, call, op, args, rho SEXP) SEXP {
	c := in.BeginContext(CtxLoop, call, rho, rho, in.Nil, in.Nil)
	in.withContext(c, func() SEXP {
		for {
			in.checkInterrupt()
			if !in.asCondition(call, in.Eval(in.Car(args), rho)) {
				break
			}
			if in.loopBody(c, in.Cadr(args), rho) == CtxBreak {
				break
			}
		}
		return in.Nil
	})
	in.Visible = false
	return in.Nil
}

func doRepeat(in *Interp, call, op, args, rho SEXP) SEXP {
	c := in.BeginContext(CtxLoop, call, rho, rho, in.Nil, in.Nil)
	in.withContext(c, func() SEXP {
		for {
			in.checkInterrupt()
			if in.loopBody(c, in.Car(args), rho) == CtxBreak {
				break
			}
		}
		return in.Nil
	})
	in.Visible = false
	return in.Nil
}

// doBreak serves break and next; the code is the context kind to find.
func doBreak(in *Interp, call, op, args, rho SEXP) SEXP {
	in.FindContext(CtxKind(in.primCode(op)), rho, in.Nil) //nolint:gosec // codes are context kinds
	return in.Nil
}

func doReturn(in *Interp, call, op, args, rho SEXP) SEXP {
	v := in.Nil
	switch in.Length(args) {
	case 0:
	case 1:
		v = in.Eval(in.Car(args), rho)
	default:
		in.ErrorCall(call, "multi-argument returns are not permitted")
	}
	in.FindContext(CtxBrowser|CtxFunction, rho, v)
	return in.Nil
}

// doFunction closes over rho. The optional third argument is the source
// text kept for printing.
func doFunction(in *Interp, call, op, args, rho SEXP) SEXP {
	fn := in.Protect(in.MkClosure(in.Car(args), in.Cadr(args), rho))
	if src := in.Caddr(args); in.Kind(src) == StrSXP {
		in.SetAttrib(fn, in.sym.srcref, src)
	}
	in.Unprotect(1)
	return fn
}

// doBegin evaluates the statements of a brace in turn. While rho is being
// stepped through, each statement is shown and the browser is entered
// before it runs.
func doBegin(in *Interp, call, op, args, rho SEXP) SEXP {
	s := in.Nil
	for a := args; a != in.Nil; a = in.Cdr(a) {
		if rho != in.Nil && in.IsDebug(rho) {
			in.printLines("debug: ", in.Deparse(in.Car(a), DefaultCutoff))
			in.browse(call, rho)
		}
		s = in.Eval(in.Car(a), rho)
	}
	return s
}

func doParen(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.Eval(in.Car(args), rho)
}

func doOnExit(in *Interp, call, op, args, rho SEXP) SEXP {
	code := in.Nil
	add := false
	for a := args; a != in.Nil; a = in.Cdr(a) {
		if in.Tag(a) != in.Nil && in.PrintName(in.Tag(a)) == "add" {
			add = in.AsLogical(in.Eval(in.Car(a), rho)) == 1
			continue
		}
		code = in.Car(a)
	}
	if code == in.MissingArg {
		code = in.Nil
	}
	c := in.functionContext(rho)
	if c == nil {
		return in.Nil
	}
	switch {
	case add && c.ConExit != in.Nil && code != in.Nil:
		old := c.ConExit
		if in.isBrace(old) {
			in.SetCdr(in.LastNode(old), in.List1(code))
		} else {
			c.ConExit = in.Lang3(in.sym.brace, old, code)
		}
	case add:
		if code != in.Nil {
			c.ConExit = code
		}
	default:
		c.ConExit = code
	}
	return in.Nil
}

func doMissing(in *Interp, call, op, args, rho SEXP) SEXP {
	sym := in.Car(args)
	if in.Kind(sym) == StrSXP && in.Length(sym) > 0 {
		sym = in.Install(in.Str(sym, 0))
	}
	if in.Kind(sym) != SymSXP {
		in.ErrorCall(call, "invalid use of 'missing'")
	}
	if rho == in.Nil {
		in.ErrorCall(call, "'missing' can only be used for arguments")
	}
	b := in.frameBinding(rho, sym)
	if b == 0 {
		in.ErrorCall(call, "'missing' can only be used for arguments")
	}
	return in.ScalarBool(in.isMissingBindingDeep(b, 0))
}

// isMissingBindingDeep looks through promises that merely pass on another
// argument.
func (in *Interp) isMissingBindingDeep(b SEXP, depth int) bool {
	if in.isMissingBinding(b) || in.Car(b) == in.MissingArg {
		return true
	}
	v := in.Car(b)
	if depth < 100 && in.Kind(v) == PromSXP && in.PrValue(v) == in.Unbound && in.Kind(in.PrCode(v)) == SymSXP {
		env := in.PrEnv(v)
		if env == in.Nil {
			return false
		}
		if nb := in.frameBinding(env, in.PrCode(v)); nb != 0 {
			return in.isMissingBindingDeep(nb, depth+1)
		}
	}
	return false
}

func doSwitch(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.Length(args) < 1 {
		in.ErrorCall(call, "'EXPR' is missing")
	}
	top := in.PPStackTop()
	x := in.Protect(in.Eval(in.Car(args), rho))
	alts := in.Cdr(args)
	if in.Kind(x) == StrSXP && in.Length(x) == 1 {
		s := in.Str(x, 0)
		for a := alts; a != in.Nil; a = in.Cdr(a) {
			if in.Tag(a) == in.Nil || in.PrintName(in.Tag(a)) != s {
				continue
			}
			for in.Car(a) == in.MissingArg && in.Cdr(a) != in.Nil {
				a = in.Cdr(a)
			}
			in.ResetPPStack(top)
			if in.Car(a) == in.MissingArg {
				break
			}
			return in.Eval(in.Car(a), rho)
		}
		for a := alts; a != in.Nil; a = in.Cdr(a) {
			if in.Tag(a) == in.Nil && in.Car(a) != in.MissingArg {
				in.ResetPPStack(top)
				return in.Eval(in.Car(a), rho)
			}
		}
	} else if in.Kind(x).IsAtomic() && in.Length(x) == 1 {
		i := in.AsInteger(x)
		if i != NAInteger && i >= 1 && int(i) <= in.Length(alts) {
			in.ResetPPStack(top)
			if e := in.Car(in.Nth(alts, int(i)-1)); e != in.MissingArg {
				return in.Eval(e, rho)
			}
		}
	} else {
		in.ErrorCall(call, "EXPR must be a length 1 vector")
	}
	in.ResetPPStack(top)
	in.Visible = false
	return in.Nil
}

// doAndOr implements && (code 1) and || (code 2), evaluating the right
// operand only when it decides the result.
func doAndOr(in *Interp, call, op, args, rho SEXP) SEXP {
	and := in.primCode(op) == 1
	x1 := in.andOrOperand(call, in.Eval(in.Car(args), rho), "x")
	if and && x1 == 0 {
		return in.ScalarLogical(0)
	}
	if !and && x1 == 1 {
		return in.ScalarLogical(1)
	}
	x2 := in.andOrOperand(call, in.Eval(in.Cadr(args), rho), "y")
	if x1 == NALogical {
		if and && x2 == 0 {
			return in.ScalarLogical(0)
		}
		if !and && x2 == 1 {
			return in.ScalarLogical(1)
		}
		return in.ScalarLogical(NALogical)
	}
	return in.ScalarLogical(x2)
}

func (in *Interp) andOrOperand(call, v SEXP, which string) int32 {
	switch in.Kind(v) {
	case LglSXP, IntSXP, RealSXP, CplxSXP, NilSXP:
	case StrSXP:
		if b := in.AsLogical(v); b != NALogical {
			return b
		}
		fallthrough
	default:
		in.ErrorCall(call, "invalid '%s' type in 'x %s y'", which, in.callName(call))
	}
	return in.AsLogical(v)
}

func doSubstitute(in *Interp, call, op, args, rho SEXP) SEXP {
	env := rho
	if in.Length(args) > 1 {
		e := in.Eval(in.Cadr(args), rho)
		switch in.Kind(e) {
		case EnvSXP:
			env = e
		case VecSXP:
			l := in.Protect(in.CoerceVector(e, ListSXP))
			env = in.NewEnvironment(l, l, in.Nil)
			in.Unprotect(1)
		default:
			in.ErrorCall(call, "invalid environment specified")
		}
	}
	if env == in.GlobalEnv {
		return in.Car(args)
	}
	in.Protect(env)
	v := in.substitute(in.Car(args), env)
	in.Unprotect(1)
	return v
}

// substitute replaces symbols bound in env by their values, or by the
// expressions of promises bound to them.
func (in *Interp) substitute(e, env SEXP) SEXP {
	switch in.Kind(e) {
	case SymSXP:
		if env == in.Nil {
			return e
		}
		t := in.FindVarInFrame(env, e)
		switch {
		case t == in.Unbound:
			return e
		case in.Kind(t) == PromSXP:
			for in.Kind(t) == PromSXP {
				t = in.PrCode(t)
			}
			return t
		case in.Kind(t) == DotSXP:
			in.Error("'...' used in an incorrect context")
		}
		return t
	case LangSXP:
		return in.substituteList(e, env)
	}
	return e
}

func (in *Interp) substituteList(el, env SEXP) SEXP {
	b := in.newListBuilder()
	for ; el != in.Nil; el = in.Cdr(el) {
		a := in.Car(el)
		if a == in.sym.dots && env != in.Nil {
			h := in.FindVarInFrame(env, a)
			if in.Kind(h) == DotSXP {
				for ; h != in.Nil; h = in.Cdr(h) {
					v := in.Car(h)
					for in.Kind(v) == PromSXP {
						v = in.PrCode(v)
					}
					b.add(v, in.Tag(h))
				}
				continue
			}
			if h == in.MissingArg {
				continue
			}
		}
		b.add(in.substitute(a, env), in.Tag(el))
	}
	out := b.list()
	if out != in.Nil {
		in.cell(out).kind = LangSXP
	}
	in.Unprotect(1)
	return out
}

func doBrowser(in *Interp, call, op, args, rho SEXP) SEXP {
	if c := in.functionContext(rho); c != nil {
		in.printLines("Called from: ", in.Deparse(c.Call, DefaultCutoff))
	} else {
		fmt.Fprintln(in.stdout, "Called from: top level ")
	}
	return in.browse(call, rho)
}

// doTry evaluates its argument under a restart context. An error is
// printed unless silent and returned as a "try-error" string.
func doTry(in *Interp, call, op, args, rho SEXP) SEXP {
	silent := false
	expr := in.Car(args)
	for a := in.Cdr(args); a != in.Nil; a = in.Cdr(a) {
		silent = in.AsLogical(in.Eval(in.Car(a), rho)) == 1
	}
	c := in.BeginContext(CtxRestart, call, rho, rho, in.Nil, in.Nil)
	v, j := in.withContext(c, func() SEXP { return in.Eval(expr, rho) })
	if j == nil || j.Err == nil {
		return v
	}
	if j.Err.Code == ErrInterrupted {
		in.jumpToTopLevel(j.Err)
	}
	msg := j.Err.Error() + "\n"
	if !silent {
		fmt.Fprint(in.stderr, msg)
	}
	res := in.Protect(in.MkString(msg))
	in.SetAttrib(res, in.sym.class, in.MkString("try-error"))
	in.Unprotect(1)
	in.Visible = false
	return res
}

func doNargs(in *Interp, call, op, args, rho SEXP) SEXP {
	c := in.functionContext(rho)
	if c == nil {
		return in.ScalarInteger(NAInteger)
	}
	n := 0
	for a := c.PromArgs; a != in.Nil; a = in.Cdr(a) {
		n++
	}
	return in.ScalarInteger(int32(n)) //nolint:gosec // bounded by the heap
}

func doInvisible(in *Interp, call, op, args, rho SEXP) SEXP {
	if args == in.Nil {
		return in.Nil
	}
	return in.Car(args)
}

// conditionMessage pastes the ... arguments of stop and warning.
func (in *Interp) conditionMessage(dots []SEXP) string {
	var sb strings.Builder
	for _, n := range dots {
		v := in.Car(n)
		if in.Kind(v) != StrSXP {
			v = in.CoerceVector(v, StrSXP)
		}
		for i := range in.Length(v) {
			sb.WriteString(in.Str(v, i))
		}
	}
	return sb.String()
}

// conditionCall is the call of the function that called stop or warning.
func (in *Interp) conditionCall(a primArgs, i int, rho SEXP) SEXP {
	if a.has(i) && in.AsLogical(a.vals[i]) == 0 {
		return 0
	}
	if c := in.functionContext(rho); c != nil {
		return c.Call
	}
	return 0
}

func doStop(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...", "call.")
	in.ErrorCode(ErrGeneric, in.conditionCall(a, 1, rho), "%s", in.conditionMessage(a.dots))
	return in.Nil
}

func doWarning(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...", "call.")
	msg := in.conditionMessage(a.dots)
	in.Warning(in.conditionCall(a, 1, rho), "%s", msg)
	return in.MkString(msg)
}

func doEval(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "expr", "envir")
	env := rho
	if a.has(1) {
		e := a.vals[1]
		switch in.Kind(e) {
		case EnvSXP:
			env = e
		case NilSXP:
			env = in.Nil
		case VecSXP:
			l := in.Protect(in.CoerceVector(e, ListSXP))
			env = in.NewEnvironment(l, l, rho)
			in.Unprotect(1)
		default:
			in.ErrorCall(call, "invalid 'envir' argument")
		}
	}
	in.Protect(env)
	expr := a.get(0, in.Nil)
	v := in.Nil
	if in.Kind(expr) == ExprSXP {
		for i := range in.Length(expr) {
			v = in.Eval(in.VectorElt(expr, i), env)
		}
	} else {
		v = in.Eval(expr, env)
	}
	in.Unprotect(1)
	return v
}

func doIdentical(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.ScalarBool(in.Identical(in.Car(args), in.Cadr(args)))
}

// doDebug sets (code 1) or clears the debug bit of a closure.
func doDebug(in *Interp, call, op, args, rho SEXP) SEXP {
	f := in.Car(args)
	if in.Kind(f) != CloSXP {
		in.ErrorCall(call, "argument must be a closure")
	}
	in.SetDebug(f, in.primCode(op) == 1)
	return in.Nil
}
