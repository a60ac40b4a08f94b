package interp

// browse runs a nested read-eval-print loop in rho one level deeper. The
// browser context is where return() typed at the prompt lands, and its
// value becomes the value of browse; every form read gets its own
// top-level context, so errors come back to this level. The loop ends at
// end of input or on n, c and cont.
func (in *Interp) browse(call, rho SEXP) SEXP {
	saved := in.browseLevel
	top := in.PPStackTop()
	c := in.BeginContext(CtxBrowser, call, rho, rho, in.Nil, in.Nil)
	vis := in.Visible
	v, j := in.withContext(c, func() SEXP {
		in.browseLevel = saved + 1
		in.Repl(rho, in.PPStackTop(), in.browseLevel)
		return in.Nil
	})
	in.browseLevel = saved
	in.ResetPPStack(top)
	if j != nil {
		in.SetDebug(rho, false)
		return v
	}
	in.Visible = vis
	return in.Nil
}
