package interp

// GetAttrib returns attribute name of s, or Nil. The names of a pairlist
// or call are read from its tags.
func (in *Interp) GetAttrib(s, name SEXP) SEXP {
	if s == in.Nil {
		return in.Nil
	}
	if name == in.sym.names && in.Kind(s).IsPairKind() {
		return in.tagNames(s)
	}
	for a := in.Attrib(s); a != in.Nil; a = in.Cdr(a) {
		if in.Tag(a) == name {
			return in.Car(a)
		}
	}
	return in.Nil
}

func (in *Interp) tagNames(s SEXP) SEXP {
	n := in.Length(s)
	tagged := false
	for p := s; p != in.Nil; p = in.Cdr(p) {
		if in.Tag(p) != in.Nil {
			tagged = true
			break
		}
	}
	if !tagged {
		return in.Nil
	}
	in.Protect(s)
	out := in.Protect(in.AllocVector(StrSXP, n))
	i := 0
	for p := s; p != in.Nil; p = in.Cdr(p) {
		if t := in.Tag(p); t != in.Nil {
			in.SetStringElt(out, i, in.cell(t).car)
		}
		i++
	}
	in.Unprotect(2)
	return out
}

// SetAttrib sets or, for a Nil value, removes attribute name. names, dim
// and class are checked and coerced the way their replacement functions
// require.
func (in *Interp) SetAttrib(s, name, value SEXP) {
	if value == in.Nil {
		in.RemoveAttrib(s, name)
		return
	}
	if s == in.Nil {
		in.Error("attempt to set an attribute on NULL")
	}
	top := in.PPStackTop()
	in.Protect(s)
	in.Protect(value)
	switch name {
	case in.sym.names:
		value = in.checkNames(s, value)
		if in.Kind(s).IsPairKind() {
			i := 0
			for p := s; p != in.Nil; p = in.Cdr(p) {
				if i < in.Length(value) && !in.IsNAStringElt(value, i) && in.Str(value, i) != "" {
					in.SetTag(p, in.Install(in.Str(value, i)))
				} else {
					in.SetTag(p, in.Nil)
				}
				i++
			}
			in.ResetPPStack(top)
			return
		}
	case in.sym.dim:
		value = in.checkDim(s, value)
	case in.sym.class:
		if in.Kind(value) != StrSXP {
			in.Error("attempt to set invalid 'class' attribute")
		}
	}
	in.Protect(value)
	in.installAttrib(s, name, value)
	in.ResetPPStack(top)
}

func (in *Interp) installAttrib(s, name, value SEXP) {
	var last SEXP
	for a := in.Attrib(s); a != in.Nil; a = in.Cdr(a) {
		if in.Tag(a) == name {
			in.SetCar(a, value)
			return
		}
		last = a
	}
	node := in.Cons(value, in.Nil)
	in.SetTag(node, name)
	if last == 0 {
		in.SetAttribList(s, node)
	} else {
		in.SetCdr(last, node)
	}
}

// RemoveAttrib drops attribute name from s.
func (in *Interp) RemoveAttrib(s, name SEXP) {
	if s == in.Nil {
		return
	}
	if name == in.sym.names && in.Kind(s).IsPairKind() {
		for p := s; p != in.Nil; p = in.Cdr(p) {
			in.SetTag(p, in.Nil)
		}
		return
	}
	if name == in.sym.dim {
		in.RemoveAttrib(s, in.sym.dimnames)
	}
	var prev SEXP
	for a := in.Attrib(s); a != in.Nil; a = in.Cdr(a) {
		if in.Tag(a) == name {
			if prev == 0 {
				in.SetAttribList(s, in.Cdr(a))
			} else {
				in.SetCdr(prev, in.Cdr(a))
			}
			return
		}
		prev = a
	}
}

// checkNames coerces value to character and pads it with NA to the length
// of s.
func (in *Interp) checkNames(s, value SEXP) SEXP {
	if in.Kind(value) != StrSXP {
		value = in.CoerceVector(value, StrSXP)
	}
	n, m := in.Length(s), in.Length(value)
	if m > n {
		in.Error("'names' attribute [%d] must be the same length as the vector [%d]", m, n)
	}
	if m == n && in.Attrib(value) == in.Nil {
		return value
	}
	in.Protect(value)
	out := in.AllocVector(StrSXP, n)
	for i := range n {
		if i < m {
			in.SetStringElt(out, i, in.StringElt(value, i))
		} else {
			in.SetStringElt(out, i, in.NAString)
		}
	}
	in.Unprotect(1)
	return out
}

func (in *Interp) checkDim(s, value SEXP) SEXP {
	if !in.Kind(value).IsAtomic() || in.Kind(value) == StrSXP || in.Kind(value) == CplxSXP {
		in.Error("invalid second argument, must be vector or NULL")
	}
	value = in.CoerceVector(value, IntSXP)
	if in.Length(value) == 0 {
		in.Error("length-0 dimension vector is invalid")
	}
	prod := 1
	for _, d := range in.Integer(value) {
		if d == NAInteger || d < 0 {
			in.Error("the dims contain missing or negative values")
		}
		prod *= int(d)
	}
	if prod != in.Length(s) {
		in.Error("dims [product %d] do not match the length of object [%d]", prod, in.Length(s))
	}
	return value
}

func (in *Interp) Names(s SEXP) SEXP { return in.GetAttrib(s, in.sym.names) }
func (in *Interp) Dim(s SEXP) SEXP   { return in.GetAttrib(s, in.sym.dim) }
func (in *Interp) Class(s SEXP) SEXP { return in.GetAttrib(s, in.sym.class) }

// Inherits reports whether class is among the class attribute of s.
func (in *Interp) Inherits(s SEXP, class string) bool {
	cl := in.Class(s)
	if in.Kind(cl) != StrSXP {
		return false
	}
	for i := range in.Length(cl) {
		if in.Str(cl, i) == class {
			return true
		}
	}
	return false
}

// copyMostAttrib copies every attribute except names, dim and dimnames.
func (in *Interp) copyMostAttrib(from, to SEXP) {
	if from == in.Nil || to == in.Nil {
		return
	}
	top := in.PPStackTop()
	in.Protect(from)
	in.Protect(to)
	for a := in.Attrib(from); a != in.Nil; a = in.Cdr(a) {
		switch in.Tag(a) {
		case in.sym.names, in.sym.dim, in.sym.dimnames:
			continue
		}
		in.installAttrib(to, in.Tag(a), in.Car(a))
	}
	in.ResetPPStack(top)
}

// copyAttribs copies the whole attribute list structure of from onto to.
func (in *Interp) copyAttribs(from, to SEXP) {
	if from == in.Nil || to == in.Nil || in.Attrib(from) == in.Nil {
		return
	}
	in.Protect(to)
	in.SetAttribList(to, in.duplicateList(in.Attrib(from)))
	in.Unprotect(1)
}
