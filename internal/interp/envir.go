package interp

// Environments are frames of (tag, value) pairlist nodes plus an
// enclosure. The chain of the global environment ends in Nil; bindings of
// the base library live in the symbols themselves and are consulted when a
// lookup runs off the end of the chain.

// frameBinding returns the frame node binding sym in env, or 0.
func (in *Interp) frameBinding(env, sym SEXP) SEXP {
	for f := in.Frame(env); f != in.Nil; f = in.Cdr(f) {
		if in.Tag(f) == sym {
			return f
		}
	}
	return 0
}

// FindVarInFrame returns the value bound to sym in env itself, or Unbound.
// Nil stands for the base environment.
func (in *Interp) FindVarInFrame(env, sym SEXP) SEXP {
	if env == in.Nil {
		return in.SymValue(sym)
	}
	if b := in.frameBinding(env, sym); b != 0 {
		return in.Car(b)
	}
	return in.Unbound
}

// FindVar looks sym up through the enclosure chain and finally in base.
func (in *Interp) FindVar(sym, env SEXP) SEXP {
	for env != in.Nil {
		if b := in.frameBinding(env, sym); b != 0 {
			return in.Car(b)
		}
		env = in.Enclos(env)
	}
	return in.SymValue(sym)
}

// findVarLoc returns the environment binding sym, Nil for base, or 0 when
// sym is unbound everywhere.
func (in *Interp) findVarLoc(sym, env SEXP) SEXP {
	for env != in.Nil {
		if in.frameBinding(env, sym) != 0 {
			return env
		}
		env = in.Enclos(env)
	}
	if in.SymValue(sym) != in.Unbound {
		return in.Nil
	}
	return 0
}

// FindFun looks sym up skipping non-function bindings, forcing promises
// on the way.
func (in *Interp) FindFun(sym, env SEXP, call SEXP) SEXP {
	for {
		var v SEXP
		if env == in.Nil {
			v = in.SymValue(sym)
		} else if b := in.frameBinding(env, sym); b != 0 {
			v = in.Car(b)
		} else {
			env = in.Enclos(env)
			continue
		}
		if in.Kind(v) == PromSXP {
			v = in.forcePromise(v)
		}
		switch in.Kind(v) {
		case CloSXP, BuiltinSXP, SpecialSXP:
			return v
		}
		if v == in.MissingArg {
			in.ErrorCode(ErrMissingArg, call, "argument \"%s\" is missing, with no default", in.PrintName(sym))
		}
		if env == in.Nil {
			break
		}
		env = in.Enclos(env)
	}
	in.ErrorCode(ErrNotFunction, call, "could not find function \"%s\"", in.PrintName(sym))
	return in.Nil
}

// DefineVar binds sym to value in env, replacing an existing binding.
// Nil stands for the base environment.
func (in *Interp) DefineVar(sym, value, env SEXP) {
	if env == in.Nil {
		in.SetSymValue(sym, value)
		return
	}
	if b := in.frameBinding(env, sym); b != 0 {
		in.SetCar(b, value)
		in.setMissingBinding(b, false)
		return
	}
	in.Protect(env)
	node := in.Cons(value, in.Frame(env))
	in.SetTag(node, sym)
	in.cell(env).car = node
	in.Unprotect(1)
}

// SetVar assigns to the nearest existing binding of sym strictly above
// env, as <<- does, defining it in the global environment otherwise.
func (in *Interp) SetVar(sym, value, env SEXP) {
	for env != in.Nil {
		if b := in.frameBinding(env, sym); b != 0 {
			in.SetCar(b, value)
			return
		}
		env = in.Enclos(env)
	}
	if in.SymValue(sym) != in.Unbound {
		in.SetSymValue(sym, value)
		return
	}
	in.DefineVar(sym, value, in.GlobalEnv)
}

// RemoveVar unbinds sym from env's own frame and reports whether it was
// bound there.
func (in *Interp) RemoveVar(sym, env SEXP) bool {
	if env == in.Nil {
		if in.SymValue(sym) == in.Unbound {
			return false
		}
		in.SetSymValue(sym, in.Unbound)
		return true
	}
	var prev SEXP
	for f := in.Frame(env); f != in.Nil; f = in.Cdr(f) {
		if in.Tag(f) == sym {
			if prev == 0 {
				in.cell(env).car = in.Cdr(f)
			} else {
				in.SetCdr(prev, in.Cdr(f))
			}
			return true
		}
		prev = f
	}
	return false
}

// FrameNames lists the symbols bound in env in binding order, skipping
// names that start with a dot unless all is set.
func (in *Interp) FrameNames(env SEXP, all bool) []string {
	var out []string
	if env == in.Nil {
		for name, s := range in.symbols {
			if in.SymValue(s) != in.Unbound && (all || name == "" || name[0] != '.') {
				out = append(out, name)
			}
		}
		return out
	}
	for f := in.Frame(env); f != in.Nil; f = in.Cdr(f) {
		name := in.PrintName(in.Tag(f))
		if all || name == "" || name[0] != '.' {
			out = append(out, name)
		}
	}
	// frames grow at the front
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ddVal evaluates ..n in env.
func (in *Interp) ddVal(n int, env SEXP, sym SEXP) SEXP {
	dots := in.FindVar(in.sym.dots, env)
	if dots == in.Unbound {
		in.ErrorCode(ErrUnbound, 0, "..%d used in an incorrect context, no ... to look in", n)
	}
	if in.Kind(dots) == DotSXP && in.Length(dots) >= n {
		v := in.Car(in.Nth(dots, n-1))
		if v == in.MissingArg {
			in.ErrorCode(ErrMissingArg, 0, "argument \"%s\" is missing, with no default", in.PrintName(sym))
		}
		return in.Eval(v, env)
	}
	in.ErrorCode(ErrUnbound, 0, "the ... list does not contain %d elements", n)
	return in.Nil
}

// ddIndex returns n for symbols of the form ..n, 0 otherwise.
func ddIndex(name string) int {
	if len(name) < 3 || name[0] != '.' || name[1] != '.' {
		return 0
	}
	n := 0
	for _, r := range name[2:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// envName renders an environment for printing.
func (in *Interp) envName(env SEXP) string {
	switch env {
	case in.GlobalEnv:
		return "R_GlobalEnv"
	case in.Nil:
		return "base"
	}
	return ""
}
