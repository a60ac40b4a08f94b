package interp

// doAssign implements <-, = and <<- (code 1).
func doAssign(in *Interp, call, op, args, rho SEXP) SEXP {
	if in.Length(args) != 2 {
		in.ErrorCode(ErrArity, call, "invalid assignment")
	}
	super := in.primCode(op) == 1
	lhs := in.Car(args)
	switch in.Kind(lhs) {
	case StrSXP:
		if in.Length(lhs) == 0 {
			break
		}
		lhs = in.Install(in.Str(lhs, 0))
		fallthrough
	case SymSXP:
		v := in.Eval(in.Cadr(args), rho)
		bumpNamed(in, v)
		in.Protect(v)
		in.bind(lhs, v, rho, super)
		in.Unprotect(1)
		in.Visible = false
		return v
	case LangSXP:
		v := in.Protect(in.Eval(in.Cadr(args), rho))
		bumpNamed(in, v)
		in.replaceInto(call, lhs, v, rho, super)
		in.RemoveVar(in.sym.tmp, rho)
		in.Unprotect(1)
		in.Visible = false
		return v
	}
	in.ErrorCall(call, "invalid (do_set) left-hand side to assignment")
	return in.Nil
}

// bumpNamed records one more binding of v.
func bumpNamed(in *Interp, v SEXP) {
	switch in.Named(v) {
	case 0:
		in.SetNamed(v, 1)
	case 1:
		in.SetNamed(v, 2)
	}
}

func (in *Interp) bind(sym, v, rho SEXP, super bool) {
	if super {
		in.SetVar(sym, v, in.Enclos(rho))
		return
	}
	in.DefineVar(sym, v, rho)
}

// replaceInto stores value into the place lhs denotes. For f(target, ...)
// it fetches the current value of target into *tmp*, calls
// `f<-`(*tmp*, ..., value = value) and stores the result into target in
// turn.
func (in *Interp) replaceInto(call, lhs, value, rho SEXP, super bool) {
	switch in.Kind(lhs) {
	case SymSXP:
		in.bind(lhs, value, rho, super)
		return
	case StrSXP:
		if in.Length(lhs) == 1 {
			in.bind(in.Install(in.Str(lhs, 0)), value, rho, super)
			return
		}
	case LangSXP:
		if in.Kind(in.Car(lhs)) != SymSXP {
			in.ErrorCall(call, "invalid function in complex assignment")
		}
	default:
		in.ErrorCall(call, "invalid assignment target")
	}
	top := in.PPStackTop()
	target := in.Cadr(lhs)
	cur := in.Protect(in.targetValue(call, target, rho, super))
	in.DefineVar(in.sym.tmp, cur, rho)

	fn := in.Install(in.PrintName(in.Car(lhs)) + "<-")
	prom := in.Protect(in.forcedPromise(value, value))
	b := in.newListBuilder()
	b.add(in.sym.tmp, in.Nil)
	for a := in.Cddr(lhs); a != in.Nil; a = in.Cdr(a) {
		b.add(in.Car(a), in.Tag(a))
	}
	b.add(prom, in.sym.value)
	rcall := in.Protect(in.LCons(fn, b.list()))
	nv := in.Protect(in.Eval(rcall, rho))
	if in.Named(nv) == 0 {
		in.SetNamed(nv, 1)
	}
	in.replaceInto(call, target, nv, rho, super)
	in.ResetPPStack(top)
}

// targetValue fetches the value a replacement call will modify. Shared
// values are copied first, and so are values that live in an enclosing
// frame, since <- must not modify them.
func (in *Interp) targetValue(call, target, rho SEXP, super bool) SEXP {
	env := rho
	if super {
		env = in.Enclos(rho)
	}
	if in.Kind(target) == StrSXP && in.Length(target) == 1 {
		target = in.Install(in.Str(target, 0))
	}
	switch in.Kind(target) {
	case SymSXP:
		v := in.FindVar(target, env)
		if v == in.Unbound {
			in.ErrorCode(ErrUnbound, call, "object '%s' not found", in.PrintName(target))
		}
		if in.Kind(v) == PromSXP {
			v = in.forcePromise(v)
		}
		local := super || env == in.Nil || in.frameBinding(env, target) != 0
		if in.Named(v) == 2 || !local {
			v = in.Duplicate(v)
		}
		return v
	case LangSXP:
		v := in.Eval(target, env)
		if in.Named(v) == 2 {
			v = in.Duplicate(v)
		}
		return v
	}
	in.ErrorCall(call, "target of assignment expands to non-language object")
	return in.Nil
}

// modifiable returns x ready for in-place modification by a replacement
// function: only a value reached through *tmp* with a single binding is
// modified where it lies.
func (in *Interp) modifiable(call, x SEXP) SEXP {
	if in.Named(x) == 2 || in.Cadr(call) != in.sym.tmp {
		return in.Duplicate(x)
	}
	return x
}
