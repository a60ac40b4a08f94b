package interp

// Protect pushes s on the protection stack and returns it, so it can be
// used inline: x := in.Protect(in.AllocVector(RealSXP, n)).
func (in *Interp) Protect(s SEXP) SEXP {
	if len(in.ppstack) >= in.ppsize {
		// every context on the way out truncates to its own saved depth
		in.ErrorCode(ErrProtectOverflow, 0, "protect(): protection stack overflow")
	}
	in.ppstack = append(in.ppstack, s)
	return s
}

// Unprotect pops n entries.
func (in *Interp) Unprotect(n int) {
	if n > len(in.ppstack) {
		in.ErrorCode(ErrProtectUnderflow, 0, "unprotect(): only %d protected items", len(in.ppstack))
	}
	in.ppstack = in.ppstack[:len(in.ppstack)-n]
}

// UnprotectPtr removes the most recent entry equal to s, shifting the
// entries above it down.
func (in *Interp) UnprotectPtr(s SEXP) {
	for i := len(in.ppstack) - 1; i >= 0; i-- {
		if in.ppstack[i] == s {
			in.ppstack = append(in.ppstack[:i], in.ppstack[i+1:]...)
			return
		}
	}
	in.ErrorCode(ErrProtectNotFound, 0, "unprotect_ptr: pointer not found")
}

// PPStackTop is the current protection depth.
func (in *Interp) PPStackTop() int { return len(in.ppstack) }

// ResetPPStack truncates the protection stack to depth. Only unwinding
// and the read-eval-print loop use it.
func (in *Interp) ResetPPStack(depth int) {
	if depth < len(in.ppstack) {
		clear(in.ppstack[depth:])
		in.ppstack = in.ppstack[:depth]
	}
}

// Reprotect replaces the protected entry at index i (as returned by
// ProtectIndex) with s.
func (in *Interp) Reprotect(s SEXP, i int) { in.ppstack[i] = s }

// ProtectIndex protects s and returns its slot for Reprotect.
func (in *Interp) ProtectIndex(s SEXP) int {
	in.Protect(s)
	return len(in.ppstack) - 1
}
