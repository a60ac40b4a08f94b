package interp

// Hooks for code outside the evaluator that builds heap objects directly,
// such as the workspace image loader.

// Guard runs fn under its own top-level context. An error raised inside
// fn unwinds to it and is returned; the protection stack is restored.
func (in *Interp) Guard(fn func()) error {
	top := in.PPStackTop()
	c := in.BeginContext(CtxTopLevel, in.Nil, in.GlobalEnv, in.Nil, in.Nil, in.Nil)
	saved := in.toplevel
	in.toplevel = c
	j := in.catchTopLevel(c, fn)
	in.ctx = c.next
	in.toplevel = saved
	in.ResetPPStack(top)
	if j != nil && j.Err != nil {
		return j.Err
	}
	return nil
}

// PrimitiveByName allocates a builtin or special for the primitive
// installed as name.
func (in *Interp) PrimitiveByName(name string) (SEXP, bool) {
	if sym, ok := in.symbols[name]; ok {
		if v := in.SymValue(sym); in.isPrimitive(v) && in.PrimName(v) == name {
			return v, true
		}
	}
	for i, p := range in.prims {
		if p.name == name {
			return in.newPrimitive(i), true
		}
	}
	return in.Nil, false
}

func (in *Interp) isPrimitive(s SEXP) bool {
	k := in.Kind(s)
	return k == BuiltinSXP || k == SpecialSXP
}

// MkForcedPromise builds a promise whose value is already known.
func (in *Interp) MkForcedPromise(expr, value SEXP) SEXP { return in.forcedPromise(expr, value) }

// SetEnclos replaces the enclosure of env.
func (in *Interp) SetEnclos(env, enclos SEXP) { in.cell(env).cdr = enclos }
