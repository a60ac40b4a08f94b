package interp

import (
	"fmt"
	"strings"

	"erre/internal/trace"
)

// interruptPoll is how many evaluations pass between interrupt checks.
const interruptPoll = 1000

// Eval evaluates e in rho. Errors and every other non-local exit leave by
// panic and are caught by the context that owns them.
func (in *Interp) Eval(e, rho SEXP) SEXP {
	in.Visible = true
	switch in.Kind(e) {
	case NilSXP, LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP, VecSXP, ExprSXP,
		EnvSXP, CloSXP, SpecialSXP, BuiltinSXP, CharSXP, DotSXP:
		return e
	}

	in.evalCount++
	if in.evalCount >= interruptPoll {
		in.evalCount = 0
		in.checkInterrupt()
	}
	depth := in.evalDepth
	in.evalDepth++
	if in.evalDepth > in.maxDepth {
		in.ErrorCode(ErrRecursionDepth, 0, "evaluation nested too deeply: infinite recursion / options(expressions=)?")
	}

	var v SEXP
	switch in.Kind(e) {
	case SymSXP:
		v = in.evalSymbol(e, rho)
	case PromSXP:
		v = in.forcePromise(e)
	case LangSXP:
		v = in.evalCall(e, rho)
	default:
		in.ErrorCode(ErrType, 0, "unimplemented type '%s' in 'eval'", in.Kind(e))
	}
	in.evalDepth = depth
	return v
}

// envCall is the call of the closure evaluating in rho, or Nil at top
// level. Errors about symbols are attributed to it.
func (in *Interp) envCall(rho SEXP) SEXP {
	if c := in.functionContext(rho); c != nil {
		return c.Call
	}
	return in.Nil
}

func (in *Interp) unusedArgs(call SEXP, unused []string) {
	what := "argument"
	if len(unused) > 1 {
		what = "arguments"
	}
	in.ErrorCode(ErrArgMatch, call, "unused %s (%s)", what, strings.Join(unused, ", "))
}

// checkInterrupt turns a pending Interrupt into a "user break" error.
func (in *Interp) checkInterrupt() {
	if in.interrupted.Swap(false) {
		in.jumpToTopLevel(&RError{Code: ErrInterrupted, Message: "user break"})
	}
}

func (in *Interp) evalSymbol(e, rho SEXP) SEXP {
	if e == in.sym.dots {
		in.ErrorCode(ErrGeneric, 0, "'...' used in an incorrect context")
	}
	name := in.PrintName(e)
	var v SEXP
	if n := ddIndex(name); n > 0 {
		v = in.ddVal(n, rho, e)
	} else {
		v = in.FindVar(e, rho)
	}
	switch {
	case v == in.Unbound:
		in.ErrorCode(ErrUnbound, in.envCall(rho), "object '%s' not found", name)
	case v == in.MissingArg:
		if name == "" {
			in.ErrorCode(ErrMissingArg, in.envCall(rho), "argument is missing, with no default")
		}
		in.ErrorCode(ErrMissingArg, in.envCall(rho), "argument \"%s\" is missing, with no default", name)
	case in.Kind(v) == PromSXP:
		v = in.forcePromise(v)
		in.SetNamed(v, 2)
	case in.Named(v) == 0:
		in.SetNamed(v, 1)
	}
	return v
}

// forcePromise evaluates p once and memoises the value. The seen bit
// catches a promise that needs its own value.
func (in *Interp) forcePromise(p SEXP) SEXP {
	if v := in.PrValue(p); v != in.Unbound {
		return v
	}
	c := in.cell(p)
	if c.flags&flagSeen != 0 {
		in.ErrorCode(ErrPromiseRecursion, 0, "promise already under evaluation: recursive default argument reference or earlier problems?")
	}
	c.flags |= flagSeen
	defer func() { in.cells[p].flags &^= flagSeen }()
	in.Protect(p)
	v := in.Eval(in.PrCode(p), in.PrEnv(p))
	in.Unprotect(1)
	c = in.cell(p)
	c.car = v
	c.tag = in.Nil
	in.SetNamed(v, 2)
	return v
}

func (in *Interp) evalCall(e, rho SEXP) SEXP {
	head := in.Car(e)
	var op SEXP
	if in.Kind(head) == SymSXP {
		op = in.FindFun(head, rho, e)
	} else {
		op = in.Eval(head, rho)
	}
	top := in.PPStackTop()
	in.Protect(op)

	var v SEXP
	switch in.Kind(op) {
	case SpecialSXP:
		p := &in.prims[in.cell(op).prim]
		in.Visible = true
		v = p.fn(in, e, op, in.Cdr(e), rho)
		p.vis.apply(in)
	case BuiltinSXP:
		args := in.Protect(in.evalList(in.Cdr(e), rho, e))
		p := &in.prims[in.cell(op).prim]
		in.checkArity(p, args, e)
		saved := in.curCall
		in.curCall = e
		in.Visible = true
		v = p.fn(in, e, op, args, rho)
		in.curCall = saved
		p.vis.apply(in)
	case CloSXP:
		args := in.Protect(in.promiseArgs(in.Cdr(e), rho))
		v = in.ApplyClosure(e, op, args, rho, in.Nil)
	default:
		in.ErrorCode(ErrNotFunction, e, "attempt to apply non-function")
	}
	in.ResetPPStack(top)
	return v
}

// listBuilder appends to a pairlist whose head sentinel sits on the
// protection stack. The caller pops it with Unprotect(1).
type listBuilder struct {
	in   *Interp
	head SEXP
	tail SEXP
}

func (in *Interp) newListBuilder() listBuilder {
	h := in.Protect(in.Cons(in.Nil, in.Nil))
	return listBuilder{in: in, head: h, tail: h}
}

func (b *listBuilder) add(v, tag SEXP) SEXP {
	n := b.in.Cons(v, b.in.Nil)
	b.in.SetTag(n, tag)
	b.in.SetCdr(b.tail, n)
	b.tail = n
	return n
}

func (b *listBuilder) list() SEXP { return b.in.Cdr(b.head) }

// evalList evaluates the arguments of a builtin left to right in rho,
// splicing in the contents of `...`.
func (in *Interp) evalList(el, rho, call SEXP) SEXP {
	return in.evalArgs(el, rho, call, false)
}

// evalListKeepMissing is evalList for primitives that accept empty
// arguments, as x[i, ] does.
func (in *Interp) evalListKeepMissing(el, rho, call SEXP) SEXP {
	return in.evalArgs(el, rho, call, true)
}

func (in *Interp) evalArgs(el, rho, call SEXP, keepMissing bool) SEXP {
	b := in.newListBuilder()
	n := 0
	for ; el != in.Nil; el = in.Cdr(el) {
		n++
		a := in.Car(el)
		switch {
		case a == in.sym.dots:
			h := in.FindVar(a, rho)
			switch {
			case in.Kind(h) == DotSXP:
				for ; h != in.Nil; h = in.Cdr(h) {
					if in.Car(h) == in.MissingArg {
						if !keepMissing {
							in.ErrorCode(ErrMissingArg, call, "argument is missing, with no default")
						}
						b.add(in.MissingArg, in.Tag(h))
						continue
					}
					b.add(in.Eval(in.Car(h), rho), in.Tag(h))
				}
			case h != in.MissingArg:
				in.ErrorCode(ErrGeneric, call, "'...' used in an incorrect context")
			}
		case a == in.MissingArg:
			if !keepMissing {
				in.ErrorCode(ErrMissingArg, call, "argument %d is empty", n)
			}
			b.add(in.MissingArg, in.Tag(el))
		default:
			b.add(in.Eval(a, rho), in.Tag(el))
		}
	}
	out := b.list()
	in.Unprotect(1)
	return out
}

// promiseArgs wraps the arguments of a closure call in promises. Constants
// are passed as they are and `...` is spliced without re-wrapping.
func (in *Interp) promiseArgs(el, rho SEXP) SEXP {
	b := in.newListBuilder()
	for ; el != in.Nil; el = in.Cdr(el) {
		a := in.Car(el)
		switch {
		case a == in.sym.dots:
			h := in.FindVar(a, rho)
			switch {
			case in.Kind(h) == DotSXP:
				for ; h != in.Nil; h = in.Cdr(h) {
					b.add(in.Car(h), in.Tag(h))
				}
			case h != in.MissingArg:
				in.ErrorCode(ErrGeneric, 0, "'...' used in an incorrect context")
			}
		case a == in.MissingArg:
			b.add(a, in.Tag(el))
		case in.Kind(a).IsAtomic() && in.Attrib(a) == in.Nil:
			b.add(a, in.Tag(el))
		default:
			b.add(in.MkPromise(a, rho), in.Tag(el))
		}
	}
	out := b.list()
	in.Unprotect(1)
	return out
}

// ApplyClosure calls op with the already promised arglist. The new frame
// encloses the closure's environment; sysparent is the caller's
// environment. Bindings of suppliedenv not claimed by a formal are copied
// into the new frame.
func (in *Interp) ApplyClosure(call, op, arglist, rho, suppliedenv SEXP) SEXP {
	top := in.PPStackTop()
	formals := in.Formals(op)
	body := in.Body(op)

	actuals := in.Protect(in.matchArgs(formals, arglist, call))
	newrho := in.Protect(in.NewEnvironment(formals, actuals, in.CloEnv(op)))

	// defaults become promises evaluated in the callee's frame
	f, a := formals, actuals
	for ; f != in.Nil && a != in.Nil; f, a = in.Cdr(f), in.Cdr(a) {
		if in.Car(a) == in.MissingArg && in.Car(f) != in.MissingArg {
			in.SetCar(a, in.MkPromise(in.Car(f), newrho))
			in.setMissingBinding(a, true)
		}
	}
	if suppliedenv != in.Nil {
		for s := in.Frame(suppliedenv); s != in.Nil; s = in.Cdr(s) {
			if in.frameBinding(newrho, in.Tag(s)) == 0 {
				in.DefineVar(in.Tag(s), in.Car(s), newrho)
			}
		}
	}

	var span *trace.Span
	if in.traceCalls {
		span = trace.Begin(in.tracer, trace.ScopeCall, in.callName(call), 0)
	}

	debugging := in.IsDebug(op)
	c := in.BeginContext(CtxReturn, call, newrho, rho, arglist, op)
	result, _ := in.withContext(c, func() SEXP {
		if debugging {
			in.SetDebug(newrho, true)
			in.printLines("debugging in: ", in.Deparse(call, DefaultCutoff))
			if in.isBrace(body) {
				in.printLines("debug: ", in.Deparse(body, DefaultCutoff))
				in.browse(call, newrho)
			}
		}
		return in.Eval(body, newrho)
	})
	if debugging {
		in.Protect(result)
		in.printLines("exiting from: ", in.Deparse(call, DefaultCutoff))
		in.Unprotect(1)
	}
	if span != nil {
		span.WithExtra("depth", fmt.Sprint(in.evalDepth)).End(in.Kind(result).String())
	}
	in.ResetPPStack(top)
	return result
}

func (in *Interp) isBrace(e SEXP) bool {
	return in.Kind(e) == LangSXP && in.Car(e) == in.sym.brace
}

// callName names the function of call for traces and messages.
func (in *Interp) callName(call SEXP) string {
	if in.Kind(call) == LangSXP && in.Kind(in.Car(call)) == SymSXP {
		return in.PrintName(in.Car(call))
	}
	return "<anonymous>"
}

// printLines writes lines to stdout, the first one after prefix.
func (in *Interp) printLines(prefix string, lines []string) {
	for i, l := range lines {
		if i == 0 {
			fmt.Fprintln(in.stdout, prefix+l)
			continue
		}
		fmt.Fprintln(in.stdout, l)
	}
}

type suppliedArg struct {
	value SEXP
	tag   SEXP
	used  bool
}

// matchArgs binds supplied arguments to formals by exact name, then by
// unique partial name for formals before `...`, then by position. Leftovers
// are collected into `...` or reported as unused. The result is a fresh
// pairlist parallel to formals; unmatched slots hold MissingArg.
func (in *Interp) matchArgs(formals, supplied, call SEXP) SEXP {
	var fnames []string
	dotsAt := -1
	for f := formals; f != in.Nil; f = in.Cdr(f) {
		if in.Tag(f) == in.sym.dots {
			dotsAt = len(fnames)
		}
		fnames = append(fnames, in.PrintName(in.Tag(f)))
	}
	var sup []suppliedArg
	for s := supplied; s != in.Nil; s = in.Cdr(s) {
		sup = append(sup, suppliedArg{value: in.Car(s), tag: in.Tag(s)})
	}
	matched := make([]int, len(fnames))
	for i := range matched {
		matched[i] = -1
	}

	// exact
	for fi, name := range fnames {
		if fi == dotsAt {
			continue
		}
		for si := range sup {
			if sup[si].tag == in.Nil || sup[si].used || in.PrintName(sup[si].tag) != name {
				continue
			}
			if matched[fi] >= 0 {
				in.ErrorCode(ErrArgMatch, call, "formal argument \"%s\" matched by multiple actual arguments", name)
			}
			matched[fi] = si
			sup[si].used = true
		}
	}

	// partial, only for formals ahead of ...
	for si := range sup {
		if sup[si].used || sup[si].tag == in.Nil {
			continue
		}
		tag := in.PrintName(sup[si].tag)
		if tag == "" {
			continue
		}
		hit := -1
		for fi, name := range fnames {
			if dotsAt >= 0 && fi >= dotsAt {
				break
			}
			if matched[fi] >= 0 || !strings.HasPrefix(name, tag) {
				continue
			}
			if hit >= 0 {
				in.ErrorCode(ErrArgMatch, call, "argument %d matches multiple formal arguments", si+1)
			}
			hit = fi
		}
		if hit >= 0 {
			matched[hit] = si
			sup[si].used = true
		}
	}

	// positional, up to ...
	si := 0
	for fi := range fnames {
		if fi == dotsAt {
			break
		}
		if matched[fi] >= 0 {
			continue
		}
		for si < len(sup) && (sup[si].used || sup[si].tag != in.Nil) {
			si++
		}
		if si == len(sup) {
			break
		}
		matched[fi] = si
		sup[si].used = true
	}

	actuals := in.Protect(in.AllocList(len(fnames)))
	a := actuals
	for fi := range fnames {
		if matched[fi] >= 0 {
			in.SetCar(a, sup[matched[fi]].value)
		} else {
			in.SetCar(a, in.MissingArg)
		}
		a = in.Cdr(a)
	}

	var unused []string
	var rest []suppliedArg
	for _, s := range sup {
		if !s.used {
			rest = append(rest, s)
		}
	}
	if dotsAt >= 0 {
		if len(rest) > 0 {
			dots := in.Protect(in.AllocList(len(rest)))
			d := dots
			for _, s := range rest {
				in.SetCar(d, s.value)
				in.SetTag(d, s.tag)
				in.cell(d).kind = DotSXP
				d = in.Cdr(d)
			}
			in.SetCar(in.Nth(actuals, dotsAt), dots)
			in.Unprotect(1)
		}
	} else {
		for _, s := range rest {
			text := in.deparseArg(s.value)
			if s.tag != in.Nil {
				text = in.PrintName(s.tag) + " = " + text
			}
			unused = append(unused, text)
		}
	}
	if len(unused) > 0 {
		in.unusedArgs(call, unused)
	}
	in.Unprotect(1)
	return actuals
}

// deparseArg renders a supplied argument, looking through its promise.
func (in *Interp) deparseArg(v SEXP) string {
	if in.Kind(v) == PromSXP {
		v = in.PrCode(v)
	}
	return strings.Join(in.Deparse(v, DefaultCutoff), " ")
}

// loopBody evaluates one iteration of the loop owning c. It reports
// CtxBreak when the iteration ended in break and CtxNext otherwise; jumps
// addressed elsewhere keep unwinding.
func (in *Interp) loopBody(c *Context, body, rho SEXP) (kind CtxKind) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		j, ok := r.(*Jump)
		if !ok || j.Target != c {
			panic(r)
		}
		in.restoreContext(c)
		in.returned = in.Nil
		kind = j.Kind
	}()
	in.Eval(body, rho)
	return CtxNext
}
