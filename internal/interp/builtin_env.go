package interp

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortedNames lists the bindings of env in collation order.
func (in *Interp) sortedNames(env SEXP, all bool) []string {
	names := in.FrameNames(env, all)
	col := collate.New(language.English)
	slices.SortFunc(names, func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return cmpString(a, b)
	})
	return names
}

// envArg checks an envir argument, defaulting to rho.
func (in *Interp) envArg(call, v, rho SEXP) SEXP {
	if v == 0 {
		return rho
	}
	switch in.Kind(v) {
	case EnvSXP:
		return v
	case NilSXP:
		in.ErrorCall(call, "use of NULL environment is defunct")
	}
	in.ErrorCall(call, "invalid 'envir' argument")
	return rho
}

// envirOf resolves the pos and envir arguments of assign, get and exists.
func (in *Interp) envirOf(call SEXP, a primArgs, pos, envir int, rho SEXP) SEXP {
	if a.has(envir) {
		return in.envArg(call, a.vals[envir], rho)
	}
	if a.has(pos) {
		p := a.vals[pos]
		if in.Kind(p) == EnvSXP {
			return p
		}
		if n := in.AsInteger(p); n != -1 {
			in.ErrorCall(call, "invalid 'pos' argument")
		}
	}
	return rho
}

// nameArg reads the first element of a character argument naming a
// variable.
func (in *Interp) nameArg(call, v SEXP, what string) SEXP {
	if in.Kind(v) != StrSXP || in.Length(v) == 0 || in.IsNAStringElt(v, 0) {
		in.ErrorCall(call, "invalid %s argument", what)
	}
	if in.Str(v, 0) == "" {
		in.ErrorCall(call, "attempt to use zero-length variable name")
	}
	return in.Install(in.Str(v, 0))
}

// modeMatches tests a value against the mode argument of get and exists.
func (in *Interp) modeMatches(v SEXP, mode string) bool {
	switch mode {
	case "any":
		return true
	case "function":
		switch in.Kind(v) {
		case CloSXP, BuiltinSXP, SpecialSXP:
			return true
		}
		return false
	}
	return in.modeName(v) == mode || in.Kind(v).String() == mode
}

// lookupMode searches env, and its enclosures when inherits is set, for a
// binding of sym whose value has the given mode. Promises are forced on the
// way. It returns Unbound when nothing matches.
func (in *Interp) lookupMode(call, sym, env SEXP, mode string, inherits bool) SEXP {
	for {
		v := in.FindVarInFrame(env, sym)
		if v != in.Unbound {
			if in.Kind(v) == PromSXP {
				v = in.forcePromise(v)
			}
			if v == in.MissingArg {
				in.ErrorCode(ErrMissingArg, call, "argument \"%s\" is missing, with no default", in.PrintName(sym))
			}
			if in.modeMatches(v, mode) {
				return v
			}
		}
		if !inherits || env == in.Nil {
			return in.Unbound
		}
		env = in.Enclos(env)
	}
}

func doEnvironment(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "fun")
	f := a.get(0, in.Nil)
	switch in.Kind(f) {
	case NilSXP:
		return rho
	case CloSXP:
		return in.CloEnv(f)
	}
	return in.Nil
}

func doNewEnv(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "hash", "parent", "size")
	parent := rho
	if a.has(1) {
		parent = a.vals[1]
		if in.Kind(parent) != EnvSXP {
			in.ErrorCall(call, "'enclos' must be an environment")
		}
	}
	return in.NewEnvironment(in.Nil, in.Nil, parent)
}

func doGlobalEnv(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.GlobalEnv
}

func doAssignFn(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "x", "value", "pos", "envir", "inherits", "immediate")
	sym := in.nameArg(call, a.get(0, in.Nil), "first")
	if !a.has(1) {
		in.ErrorCode(ErrMissingArg, call, "argument \"value\" is missing, with no default")
	}
	v := a.vals[1]
	env := in.envirOf(call, a, 2, 3, rho)
	inherits := a.has(4) && in.AsLogical(a.vals[4]) == 1
	in.SetNamed(v, 2)
	if inherits {
		for e := env; e != in.Nil; e = in.Enclos(e) {
			if b := in.frameBinding(e, sym); b != 0 {
				in.SetCar(b, v)
				in.setMissingBinding(b, false)
				return v
			}
		}
		in.DefineVar(sym, v, in.GlobalEnv)
		return v
	}
	in.DefineVar(sym, v, env)
	return v
}

// getArgs is shared by get and exists.
func (in *Interp) getArgs(call, args, rho SEXP) (sym, env SEXP, mode string, inherits bool) {
	a := in.matchPrimArgs(call, args, "x", "pos", "envir", "mode", "inherits")
	sym = in.nameArg(call, a.get(0, in.Nil), "first")
	env = in.envirOf(call, a, 1, 2, rho)
	mode = "any"
	if a.has(3) {
		m, ok := in.AsString(a.vals[3])
		if !ok {
			in.ErrorCall(call, "invalid '%s' argument", "mode")
		}
		mode = m
	}
	inherits = !a.has(4) || in.AsLogical(a.vals[4]) != 0
	return sym, env, mode, inherits
}

func doGet(in *Interp, call, op, args, rho SEXP) SEXP {
	sym, env, mode, inherits := in.getArgs(call, args, rho)
	v := in.lookupMode(call, sym, env, mode, inherits)
	if v == in.Unbound {
		if mode == "any" {
			in.ErrorCode(ErrUnbound, call, "object '%s' not found", in.PrintName(sym))
		}
		in.ErrorCode(ErrUnbound, call, "object '%s' of mode '%s' was not found", in.PrintName(sym), mode)
	}
	return in.shared(v)
}

func doExists(in *Interp, call, op, args, rho SEXP) SEXP {
	sym, env, mode, inherits := in.getArgs(call, args, rho)
	return in.ScalarBool(in.lookupMode(call, sym, env, mode, inherits) != in.Unbound)
}

// doRm unbinds the names given as symbols, strings or in list=.
func doRm(in *Interp, call, op, args, rho SEXP) SEXP {
	env := rho
	inherits := false
	var names []string
	for a := args; a != in.Nil; a = in.Cdr(a) {
		v := in.Car(a)
		tag := in.Tag(a)
		if tag != in.Nil {
			switch in.PrintName(tag) {
			case "list":
				l := in.Protect(in.Eval(v, rho))
				if l != in.Nil && in.Kind(l) != StrSXP {
					in.ErrorCall(call, "invalid first argument")
				}
				for i := range in.Length(l) {
					names = append(names, in.Str(l, i))
				}
				in.Unprotect(1)
				continue
			case "envir":
				env = in.envArg(call, in.Eval(v, rho), rho)
				continue
			case "inherits":
				inherits = in.AsLogical(in.Eval(v, rho)) == 1
				continue
			case "pos":
				continue
			}
		}
		switch in.Kind(v) {
		case SymSXP:
			names = append(names, in.PrintName(v))
		case StrSXP:
			if in.Length(v) != 1 {
				in.ErrorCall(call, "... must contain names or character strings")
			}
			names = append(names, in.Str(v, 0))
		default:
			in.ErrorCall(call, "... must contain names or character strings")
		}
	}
	for _, name := range names {
		sym := in.Install(name)
		e := env
		for !in.RemoveVar(sym, e) {
			if !inherits || e == in.Nil {
				in.Warning(call, "object '%s' not found", name)
				break
			}
			e = in.Enclos(e)
		}
	}
	return in.Nil
}

func doLs(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "name", "pos", "envir", "all.names", "sorted")
	env := rho
	switch {
	case a.has(2):
		env = in.envArg(call, a.vals[2], rho)
	case a.has(0):
		env = in.envArg(call, a.vals[0], rho)
	}
	all := a.has(3) && in.AsLogical(a.vals[3]) == 1
	if a.has(4) && in.AsLogical(a.vals[4]) == 0 {
		return in.MkStrings(in.FrameNames(env, all))
	}
	return in.MkStrings(in.sortedNames(env, all))
}

// whichArg reads the which argument of sys.call and sys.function.
func (in *Interp) whichArg(call SEXP, a primArgs) int {
	if !a.has(0) {
		return 0
	}
	n := in.AsInteger(a.vals[0])
	if n == NAInteger {
		in.ErrorCall(call, "invalid '%s' argument", "which")
	}
	return int(n)
}

func doSysCall(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "which")
	c := in.sysFrame(in.whichArg(call, a), rho, call)
	if c == nil {
		return in.Nil
	}
	return in.shared(c.Call)
}

func doSysFunction(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "which")
	c := in.sysFrame(in.whichArg(call, a), rho, call)
	if c == nil {
		in.ErrorCall(call, "not that many frames on the stack")
	}
	return c.CallFun
}

func doParentFrame(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "n")
	n := int32(1)
	if a.has(0) {
		n = in.AsInteger(a.vals[0])
	}
	if n == NAInteger || n < 1 {
		in.ErrorCall(call, "invalid 'n' value")
	}
	return in.parentFrame(rho, int(n))
}
