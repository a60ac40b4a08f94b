package interp

import (
	"slices"
	"time"
)

// doGC collects and reports free and total space of both arenas as a
// matrix with rows Ncells and Vcells.
func doGC(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "verbose")
	verbose := a.has(0) && in.AsLogical(a.vals[0]) == 1
	old := in.SetGCInfo(verbose || in.gcInfo)
	in.GC()
	in.SetGCInfo(old)
	st := in.HeapStats()
	top := in.PPStackTop()
	out := in.Protect(in.AllocVector(RealSXP, 4))
	copy(in.Real(out), []float64{
		float64(st.ConsFree), float64(st.VecFree / 8),
		float64(st.ConsTotal), float64(st.VecTotal / 8),
	})
	dim := in.Protect(in.AllocVector(IntSXP, 2))
	copy(in.Integer(dim), []int32{2, 2})
	in.SetAttrib(out, in.sym.dim, dim)
	dn := in.Protect(in.AllocVector(VecSXP, 2))
	in.SetVectorElt(dn, 0, in.MkStrings([]string{"Ncells", "Vcells"}))
	in.SetVectorElt(dn, 1, in.MkStrings([]string{"free", "total"}))
	in.SetAttrib(out, in.sym.dimnames, dn)
	in.ResetPPStack(top)
	return out
}

func doGCInfo(in *Interp, call, op, args, rho SEXP) SEXP {
	on := in.AsLogical(in.Car(args))
	if on == NALogical {
		in.ErrorCall(call, "'verbose' must be TRUE or FALSE")
	}
	return in.ScalarBool(in.SetGCInfo(on == 1))
}

func doGCTorture(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "on")
	on := true
	if a.has(0) {
		v := in.AsLogical(a.vals[0])
		if v == NALogical {
			in.ErrorCall(call, "invalid '%s' argument", "on")
		}
		on = v == 1
	}
	old := in.torture
	in.SetTorture(on)
	return in.ScalarBool(old)
}

// optionsList returns every option as a named list sorted by name.
func (in *Interp) optionsList() SEXP {
	type opt struct {
		tag, val SEXP
	}
	var opts []opt
	for o := in.SymValue(in.sym.options); o != in.Nil && o != in.Unbound; o = in.Cdr(o) {
		opts = append(opts, opt{in.Tag(o), in.Car(o)})
	}
	slices.SortFunc(opts, func(a, b opt) int { return cmpString(in.PrintName(a.tag), in.PrintName(b.tag)) })
	b := in.newListBuilder()
	for _, o := range opts {
		b.add(o.val, o.tag)
	}
	out := in.CoerceVector(b.list(), VecSXP)
	in.Unprotect(1)
	return out
}

// doOptions queries and sets options. Setting returns the previous values
// invisibly; queries are visible.
func doOptions(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "...")
	if len(a.dots) == 0 {
		in.Visible = true
		return in.optionsList()
	}
	visible := false
	b := in.newListBuilder()
	set := func(tag, v SEXP) {
		node := b.add(in.Nil, tag)
		in.SetCar(node, in.SetOption(in.PrintName(tag), v))
	}
	for _, n := range a.dots {
		v, tag := in.Car(n), in.Tag(n)
		if tag != in.Nil {
			set(tag, v)
			continue
		}
		switch in.Kind(v) {
		case NilSXP:
		case StrSXP:
			visible = true
			for i := range in.Length(v) {
				name := in.Str(v, i)
				b.add(in.GetOption(name), in.Install(name))
			}
		case VecSXP:
			names := in.Names(v)
			if names == in.Nil && in.Length(v) > 0 {
				in.ErrorCall(call, "list argument has no valid names")
			}
			for i := range in.Length(v) {
				set(in.Install(in.Str(names, i)), in.VectorElt(v, i))
			}
		default:
			in.ErrorCall(call, "invalid argument")
		}
	}
	out := in.CoerceVector(b.list(), VecSXP)
	in.Unprotect(1)
	in.Visible = visible
	return out
}

func doInteractive(in *Interp, call, op, args, rho SEXP) SEXP {
	return in.ScalarBool(in.interactive)
}

// doQuit ends the session by unwinding every context with a quit request.
func doQuit(in *Interp, call, op, args, rho SEXP) SEXP {
	a := in.matchPrimArgs(call, args, "save", "status", "runLast")
	q := &QuitRequest{Save: "default", RunLast: true}
	if a.has(0) {
		q.Save = in.stringArg(call, a.vals[0], "save")
		switch q.Save {
		case "yes", "no", "default", "ask":
		default:
			in.ErrorCall(call, "unrecognized value of 'save'")
		}
	}
	if a.has(1) {
		s := in.AsInteger(a.vals[1])
		if s == NAInteger {
			in.ErrorCall(call, "invalid '%s' argument", "status")
		}
		q.Status = int(s)
	}
	if a.has(2) {
		r := in.AsLogical(a.vals[2])
		if r == NALogical {
			in.ErrorCall(call, "invalid '%s' argument", "runLast")
		}
		q.RunLast = r == 1
	}
	in.jumpToRoot(q)
	return in.Nil
}

// doSysTime returns seconds since the epoch classed as POSIXct.
func doSysTime(in *Interp, call, op, args, rho SEXP) SEXP {
	now := time.Now()
	out := in.Protect(in.ScalarReal(float64(now.UnixNano()) / 1e9))
	in.SetAttrib(out, in.sym.class, in.MkStrings([]string{"POSIXct", "POSIXt"}))
	in.Unprotect(1)
	return out
}

func doProcTime(in *Interp, call, op, args, rho SEXP) SEXP {
	user, sys := cpuTimes()
	out := in.Protect(in.AllocVector(RealSXP, 3))
	copy(in.Real(out), []float64{user.Seconds(), sys.Seconds(), time.Since(in.started).Seconds()})
	in.SetAttrib(out, in.sym.names, in.MkStrings([]string{"user.self", "sys.self", "elapsed"}))
	in.Unprotect(1)
	return out
}
