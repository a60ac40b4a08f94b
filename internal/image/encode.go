package image

import (
	"fmt"
	"slices"

	"erre/internal/interp"
)

type encoder struct {
	in   *interp.Interp
	envs map[interp.SEXP]int
	doc  *Document
}

// unsupported aborts encoding of an object that has no image form.
type unsupported struct{ kind interp.Kind }

func encode(in *interp.Interp) (doc *Document, err error) {
	e := &encoder{in: in, envs: make(map[interp.SEXP]int), doc: &Document{Magic: Magic, Schema: schemaVersion}}
	defer func() {
		if r := recover(); r != nil {
			u, ok := r.(unsupported)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("image: cannot save object of type '%s'", u.kind)
		}
	}()
	e.doc.Globals = e.frame(in.GlobalEnv)
	return e.doc, nil
}

// frame lists the bindings of env in definition order. Frames are kept
// newest first.
func (e *encoder) frame(env interp.SEXP) []Binding {
	in := e.in
	var out []Binding
	for f := in.Frame(env); f != in.Nil; f = in.Cdr(f) {
		out = append(out, Binding{Name: in.PrintName(in.Tag(f)), Value: e.node(in.Car(f))})
	}
	slices.Reverse(out)
	return out
}

// envRef returns the table index of env, emitting it on first sight.
func (e *encoder) envRef(env interp.SEXP) int {
	in := e.in
	switch env {
	case in.GlobalEnv:
		return envGlobal
	case in.Nil:
		return envBase
	}
	if idx, ok := e.envs[env]; ok {
		return idx
	}
	idx := len(e.doc.Envs)
	e.envs[env] = idx
	e.doc.Envs = append(e.doc.Envs, Env{})
	enclos := e.envRef(in.Enclos(env))
	frame := e.frame(env)
	e.doc.Envs[idx] = Env{Enclos: enclos, Frame: frame}
	return idx
}

func (e *encoder) attrs(s interp.SEXP) []Binding {
	in := e.in
	var out []Binding
	for a := in.Attrib(s); a != in.Nil; a = in.Cdr(a) {
		out = append(out, Binding{Name: in.PrintName(in.Tag(a)), Value: e.node(in.Car(a))})
	}
	return out
}

func (e *encoder) node(s interp.SEXP) *Node {
	in := e.in
	k := in.Kind(s)
	if k == interp.NilSXP {
		return nil
	}
	nd := &Node{Kind: uint8(k)}
	switch k {
	case interp.SymSXP:
		switch s {
		case in.MissingArg:
			nd.Mark = markMissing
		case in.Unbound:
			nd.Mark = markUnbound
		default:
			nd.Name = in.PrintName(s)
		}
		return nd
	case interp.BuiltinSXP, interp.SpecialSXP:
		nd.Name = in.PrimName(s)
		return nd
	case interp.EnvSXP:
		nd.Env = e.envRef(s)
		return nd
	case interp.CloSXP:
		nd.Formals = e.node(in.Formals(s))
		nd.Body = e.node(in.Body(s))
		nd.Env = e.envRef(in.CloEnv(s))
	case interp.PromSXP:
		nd.Body = e.node(in.PrCode(s))
		if v := in.PrValue(s); v != in.Unbound {
			nd.Forced = true
			nd.Value = e.node(v)
		} else {
			nd.Env = e.envRef(in.PrEnv(s))
		}
	case interp.ListSXP, interp.LangSXP:
		for l := s; l != in.Nil; l = in.Cdr(l) {
			tag := ""
			if t := in.Tag(l); t != in.Nil {
				tag = in.PrintName(t)
			}
			nd.Tags = append(nd.Tags, tag)
			nd.Elts = append(nd.Elts, e.node(in.Car(l)))
		}
	case interp.LglSXP, interp.IntSXP:
		nd.Ints = slices.Clone(in.Integer(s))
	case interp.RealSXP:
		nd.Reals = slices.Clone(in.Real(s))
	case interp.CplxSXP:
		for _, z := range in.Complex(s) {
			nd.Cplx = append(nd.Cplx, real(z), imag(z))
		}
	case interp.StrSXP:
		nd.Strs = make([]*string, in.Length(s))
		for i := range nd.Strs {
			if !in.IsNAStringElt(s, i) {
				str := in.Str(s, i)
				nd.Strs[i] = &str
			}
		}
	case interp.VecSXP, interp.ExprSXP:
		nd.Elts = make([]*Node, in.Length(s))
		for i := range nd.Elts {
			nd.Elts[i] = e.node(in.VectorElt(s, i))
		}
	default:
		panic(unsupported{k})
	}
	nd.Attr = e.attrs(s)
	return nd
}
