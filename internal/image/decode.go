package image

import (
	"erre/internal/interp"
)

type decoder struct {
	in   *interp.Interp
	doc  *Document
	envs interp.SEXP // list holding the environment table, protected
}

// decode allocates every environment of the table first so references
// between them resolve, then fills the frames and defines the globals.
// It runs under interp.Guard: allocation failures unwind to it.
func decode(in *interp.Interp, doc *Document) {
	d := &decoder{in: in, doc: doc}
	d.envs = in.Protect(in.AllocVector(interp.VecSXP, len(doc.Envs)))
	for i := range doc.Envs {
		in.SetVectorElt(d.envs, i, in.NewEnvironment(in.Nil, in.Nil, in.GlobalEnv))
	}
	for i, e := range doc.Envs {
		env := in.VectorElt(d.envs, i)
		in.SetEnclos(env, d.env(e.Enclos))
		d.defineAll(e.Frame, env)
	}
	d.defineAll(doc.Globals, in.GlobalEnv)
	in.Unprotect(1)
}

func (d *decoder) defineAll(bs []Binding, env interp.SEXP) {
	in := d.in
	for _, b := range bs {
		sym := in.Install(b.Name)
		v := d.node(b.Value)
		in.SetNamed(v, 2)
		in.DefineVar(sym, v, env)
	}
}

func (d *decoder) env(ref int) interp.SEXP {
	switch ref {
	case envGlobal:
		return d.in.GlobalEnv
	case envBase:
		return d.in.Nil
	}
	return d.in.VectorElt(d.envs, ref)
}

// node builds nd. The result is unprotected.
func (d *decoder) node(nd *Node) interp.SEXP {
	in := d.in
	if nd == nil {
		return in.Nil
	}
	k := interp.Kind(nd.Kind)
	var s interp.SEXP
	switch k {
	case interp.NilSXP:
		return in.Nil
	case interp.SymSXP:
		switch nd.Mark {
		case markMissing:
			return in.MissingArg
		case markUnbound:
			return in.Unbound
		}
		return in.Install(nd.Name)
	case interp.BuiltinSXP, interp.SpecialSXP:
		p, ok := in.PrimitiveByName(nd.Name)
		if !ok {
			in.Error("image: unknown primitive '%s'", nd.Name)
		}
		return p
	case interp.EnvSXP:
		return d.env(nd.Env)
	case interp.CloSXP:
		formals := in.Protect(d.node(nd.Formals))
		body := in.Protect(d.node(nd.Body))
		s = in.MkClosure(formals, body, d.env(nd.Env))
		in.Unprotect(2)
	case interp.PromSXP:
		code := in.Protect(d.node(nd.Body))
		if nd.Forced {
			v := in.Protect(d.node(nd.Value))
			s = in.MkForcedPromise(code, v)
			in.Unprotect(1)
		} else {
			s = in.MkPromise(code, d.env(nd.Env))
		}
		in.Unprotect(1)
	case interp.ListSXP, interp.LangSXP:
		s = d.pairlist(nd.Elts, nd.Tags, k == interp.LangSXP)
	case interp.LglSXP, interp.IntSXP:
		s = in.AllocVector(k, len(nd.Ints))
		copy(in.Integer(s), nd.Ints)
	case interp.RealSXP:
		s = in.AllocVector(k, len(nd.Reals))
		copy(in.Real(s), nd.Reals)
	case interp.CplxSXP:
		s = in.AllocVector(k, len(nd.Cplx)/2)
		zs := in.Complex(s)
		for i := range zs {
			zs[i] = complex(nd.Cplx[2*i], nd.Cplx[2*i+1])
		}
	case interp.StrSXP:
		s = in.Protect(in.AllocVector(k, len(nd.Strs)))
		for i, p := range nd.Strs {
			if p == nil {
				in.SetStringElt(s, i, in.NAString)
			} else {
				in.SetStringElt(s, i, in.MkChar(*p))
			}
		}
		in.Unprotect(1)
	case interp.VecSXP, interp.ExprSXP:
		s = in.Protect(in.AllocVector(k, len(nd.Elts)))
		for i, e := range nd.Elts {
			in.SetVectorElt(s, i, d.node(e))
		}
		in.Unprotect(1)
	default:
		in.Error("image: cannot restore object of type '%s'", k)
	}
	if len(nd.Attr) > 0 {
		in.Protect(s)
		names := make([]string, len(nd.Attr))
		vals := make([]*Node, len(nd.Attr))
		for i, a := range nd.Attr {
			names[i], vals[i] = a.Name, a.Value
		}
		in.SetAttribList(s, d.pairlist(vals, names, false))
		in.Unprotect(1)
	}
	return s
}

// pairlist builds a list from the back so each node is consed once.
func (d *decoder) pairlist(elts []*Node, tags []string, lang bool) interp.SEXP {
	in := d.in
	res := in.Nil
	idx := in.ProtectIndex(res)
	for i := len(elts) - 1; i >= 0; i-- {
		v := in.Protect(d.node(elts[i]))
		if i == 0 && lang {
			res = in.LCons(v, res)
		} else {
			res = in.Cons(v, res)
		}
		in.Unprotect(1)
		in.Reprotect(res, idx)
		if i < len(tags) && tags[i] != "" {
			in.SetTag(res, in.Install(tags[i]))
		}
	}
	in.Unprotect(1)
	return res
}
