package interp

import "strings"

// primFn implements a builtin or special. Builtins receive their evaluated
// arguments; specials receive the unevaluated argument list and rho.
type primFn func(in *Interp, call, op, args, rho SEXP) SEXP

// visibility is what a primitive leaves in Visible when it returns.
type visibility uint8

const (
	visOn    visibility = iota // result is printed
	visOff                     // result is invisible
	visLeave                   // the primitive sets Visible itself
)

func (v visibility) apply(in *Interp) {
	switch v {
	case visOn:
		in.Visible = true
	case visOff:
		in.Visible = false
	}
}

type primitive struct {
	name  string
	fn    primFn
	code  int // variant for implementations shared between names
	kind  Kind
	vis   visibility
	arity int // -1 for any number
}

func special(name string, fn primFn, code int, vis visibility) primitive {
	return primitive{name: name, fn: fn, code: code, kind: SpecialSXP, vis: vis, arity: -1}
}

func builtin(name string, fn primFn, code int, vis visibility, arity int) primitive {
	return primitive{name: name, fn: fn, code: code, kind: BuiltinSXP, vis: vis, arity: arity}
}

// primitives is the function table installed into base.
var primitives = []primitive{
	// language
	special("quote", doQuote, 0, visOn),
	special("if", doIf, 0, visLeave),
	special("for", doFor, 0, visOff),
	special("while", doWhile, 0, visOff),
	special("repeat", doRepeat, 0, visOff),
	special("break", doBreak, int(CtxBreak), visOn),
	special("next", doBreak, int(CtxNext), visOn),
	special("return", doReturn, 0, visLeave),
	special("function", doFunction, 0, visOn),
	special("{", doBegin, 0, visLeave),
	special("(", doParen, 0, visOn),
	special("<-", doAssign, 0, visOff),
	special("=", doAssign, 0, visOff),
	special("<<-", doAssign, 1, visOff),
	special("on.exit", doOnExit, 0, visOff),
	special("missing", doMissing, 0, visOn),
	special("switch", doSwitch, 0, visLeave),
	special("&&", doAndOr, 1, visOn),
	special("||", doAndOr, 2, visOn),
	special("substitute", doSubstitute, 0, visOn),
	special("browser", doBrowser, 0, visOff),
	special("try", doTry, 0, visLeave),
	special("nargs", doNargs, 0, visOn),
	builtin("invisible", doInvisible, 0, visOff, -1),
	builtin("stop", doStop, 0, visOn, -1),
	builtin("warning", doWarning, 0, visOff, -1),
	builtin("eval", doEval, 0, visLeave, -1),
	builtin("identical", doIdentical, 0, visOn, 2),
	builtin("debug", doDebug, 1, visOff, 1),
	builtin("undebug", doDebug, 0, visOff, 1),

	// arithmetic
	builtin("+", doArith, opPlus, visOn, -1),
	builtin("-", doArith, opMinus, visOn, -1),
	builtin("*", doArith, opTimes, visOn, 2),
	builtin("/", doArith, opDiv, visOn, 2),
	builtin("^", doArith, opPow, visOn, 2),
	builtin("%%", doArith, opMod, visOn, 2),
	builtin("%/%", doArith, opIDiv, visOn, 2),
	builtin("==", doRelop, relEQ, visOn, 2),
	builtin("!=", doRelop, relNE, visOn, 2),
	builtin("<", doRelop, relLT, visOn, 2),
	builtin(">", doRelop, relGT, visOn, 2),
	builtin("<=", doRelop, relLE, visOn, 2),
	builtin(">=", doRelop, relGE, visOn, 2),
	builtin("!", doNot, 0, visOn, 1),
	builtin("&", doLogic, 1, visOn, 2),
	builtin("|", doLogic, 2, visOn, 2),
	builtin("sqrt", doMath1, mathSqrt, visOn, 1),
	builtin("exp", doMath1, mathExp, visOn, 1),
	builtin("abs", doMath1, mathAbs, visOn, 1),
	builtin("floor", doMath1, mathFloor, visOn, 1),
	builtin("ceiling", doMath1, mathCeiling, visOn, 1),
	builtin("sin", doMath1, mathSin, visOn, 1),
	builtin("cos", doMath1, mathCos, visOn, 1),
	builtin("tan", doMath1, mathTan, visOn, 1),
	builtin("log", doLog, 0, visOn, -1),
	builtin("round", doRound, 0, visOn, -1),
	builtin("sum", doSummary, sumSum, visOn, -1),
	builtin("prod", doSummary, sumProd, visOn, -1),
	builtin("max", doSummary, sumMax, visOn, -1),
	builtin("min", doSummary, sumMin, visOn, -1),
	builtin("mean", doMean, 0, visOn, -1),
	builtin("any", doAnyAll, 1, visOn, -1),
	builtin("all", doAnyAll, 0, visOn, -1),

	// vectors
	builtin("c", doC, 0, visOn, -1),
	builtin("vector", doVector, 0, visOn, -1),
	builtin("list", doList, 0, visOn, -1),
	builtin("seq_len", doSeqLen, 0, visOn, 1),
	builtin("seq", doSeq, 0, visOn, -1),
	builtin(":", doColon, 0, visOn, 2),
	builtin("rep", doRep, 0, visOn, -1),
	builtin("rev", doRev, 0, visOn, 1),
	builtin("which", doWhich, 0, visOn, 1),
	builtin("matrix", doMatrix, 0, visOn, -1),
	builtin("length", doLength, 0, visOn, 1),
	builtin("unlist", doUnlist, 0, visOn, 1),

	// inspection and coercion
	builtin("typeof", doTypeof, 0, visOn, 1),
	builtin("mode", doMode, 0, visOn, 1),
	builtin("class", doClass, 0, visOn, 1),
	builtin("inherits", doInherits, 0, visOn, 2),
	builtin("is.null", doIs, isNull, visOn, 1),
	builtin("is.numeric", doIs, isNumeric, visOn, 1),
	builtin("is.character", doIs, isCharacter, visOn, 1),
	builtin("is.function", doIs, isFunction, visOn, 1),
	builtin("is.list", doIs, isList, visOn, 1),
	builtin("is.logical", doIs, isLogical, visOn, 1),
	builtin("is.environment", doIs, isEnvironment, visOn, 1),
	builtin("is.na", doIsNA, 0, visOn, 1),
	builtin("names", doNames, 0, visOn, 1),
	builtin("attributes", doAttributes, 0, visOn, 1),
	builtin("attr", doAttr, 0, visOn, -1),
	builtin("dim", doDim, 0, visOn, 1),
	builtin("levels", doLevels, 0, visOn, 1),
	builtin("as.logical", doAsVector, int(LglSXP), visOn, 1),
	builtin("as.integer", doAsVector, int(IntSXP), visOn, 1),
	builtin("as.numeric", doAsVector, int(RealSXP), visOn, 1),
	builtin("as.double", doAsVector, int(RealSXP), visOn, 1),
	builtin("as.complex", doAsVector, int(CplxSXP), visOn, 1),
	builtin("as.character", doAsVector, int(StrSXP), visOn, 1),
	builtin("as.list", doAsVector, int(VecSXP), visOn, 1),
	builtin("as.vector", doAsVectorMode, 0, visOn, -1),

	// subsetting
	special("[", doSubset, 0, visOn),
	special("[[", doSubset2, 0, visOn),
	special("$", doDollar, 0, visOn),
	special("[<-", doSubassign, 0, visOn),
	special("[[<-", doSubassign2, 0, visOn),
	special("$<-", doDollarAssign, 0, visOn),
	builtin("names<-", doNamesAssign, 0, visOn, 2),
	builtin("attr<-", doAttrAssign, 0, visOn, 3),
	builtin("dim<-", doDimAssign, 0, visOn, 2),
	builtin("class<-", doClassAssign, 0, visOn, 2),
	builtin("levels<-", doLevelsAssign, 0, visOn, 2),

	// environments
	builtin("environment", doEnvironment, 0, visOn, -1),
	builtin("new.env", doNewEnv, 0, visOn, -1),
	builtin("globalenv", doGlobalEnv, 0, visOn, 0),
	builtin("assign", doAssignFn, 0, visOff, -1),
	builtin("get", doGet, 0, visOn, -1),
	builtin("exists", doExists, 0, visOn, -1),
	special("rm", doRm, 0, visOff),
	builtin("ls", doLs, 0, visOn, -1),
	builtin("sys.call", doSysCall, 0, visOn, -1),
	builtin("sys.function", doSysFunction, 0, visOn, -1),
	builtin("parent.frame", doParentFrame, 0, visOn, -1),

	// input and output
	builtin("print", doPrint, 0, visOff, -1),
	builtin("cat", doCat, 0, visOff, -1),
	builtin("paste", doPaste, 0, visOn, -1),
	builtin("paste0", doPaste, 1, visOn, -1),
	builtin("format", doFormat, 0, visOn, -1),
	builtin("nchar", doNchar, 0, visOn, -1),
	builtin("deparse", doDeparse, 0, visOn, -1),
	builtin("parse", doParse, 0, visOn, -1),

	// session
	builtin("gc", doGC, 0, visOn, -1),
	builtin("gcinfo", doGCInfo, 0, visOff, 1),
	builtin("gctorture", doGCTorture, 0, visOff, -1),
	builtin("options", doOptions, 0, visLeave, -1),
	builtin("interactive", doInteractive, 0, visOn, 0),
	builtin("q", doQuit, 0, visOff, -1),
	builtin("quit", doQuit, 0, visOff, -1),
	builtin("Sys.time", doSysTime, 0, visOn, 0),
	builtin("proc.time", doProcTime, 0, visOn, 0),
}

// installPrimitives binds every primitive in base.
func (in *Interp) installPrimitives() {
	in.prims = primitives
	for i, p := range in.prims {
		sym := in.Install(p.name)
		in.SetSymValue(sym, in.newPrimitive(i))
	}
}

func (in *Interp) primCode(op SEXP) int { return in.prims[in.cell(op).prim].code }

func (in *Interp) checkArity(p *primitive, args, call SEXP) {
	if p.arity < 0 {
		return
	}
	if n := in.Length(args); n != p.arity {
		in.ErrorCode(ErrArity, call, "%d argument%s passed to '%s' which requires %d", n, plural(n), p.name, p.arity)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// initOptions creates .Options in base with the console defaults.
func (in *Interp) initOptions() {
	b := in.newListBuilder()
	b.add(in.MkString("> "), in.sym.prompt)
	b.add(in.MkString("+ "), in.sym.cont)
	b.add(in.ScalarInteger(7), in.Install("digits"))
	b.add(in.ScalarInteger(int32(min(in.maxDepth, 500000))), in.Install("expressions")) //nolint:gosec // clamped
	b.add(in.ScalarInteger(80), in.Install("width"))
	b.add(in.ScalarLogical(0), in.Install("keep.source"))
	in.SetSymValue(in.sym.options, b.list())
	in.Unprotect(1)
}

// GetOption returns the value of option name, or Nil.
func (in *Interp) GetOption(name string) SEXP {
	sym := in.Install(name)
	for o := in.SymValue(in.sym.options); o != in.Nil && o != in.Unbound; o = in.Cdr(o) {
		if in.Tag(o) == sym {
			return in.Car(o)
		}
	}
	return in.Nil
}

// SetOption sets option name and returns its previous value. Setting Nil
// removes it.
func (in *Interp) SetOption(name string, value SEXP) SEXP {
	sym := in.Install(name)
	opts := in.SymValue(in.sym.options)
	var prev SEXP
	for o := opts; o != in.Nil; o = in.Cdr(o) {
		if in.Tag(o) == sym {
			old := in.Car(o)
			if value == in.Nil {
				if prev == 0 {
					in.SetSymValue(in.sym.options, in.Cdr(o))
				} else {
					in.SetCdr(prev, in.Cdr(o))
				}
			} else {
				in.SetCar(o, value)
			}
			in.applyOption(name, value)
			return old
		}
		prev = o
	}
	if value != in.Nil {
		in.Protect(value)
		node := in.Cons(value, in.Nil)
		in.SetTag(node, sym)
		if prev == 0 {
			in.SetSymValue(in.sym.options, node)
		} else {
			in.SetCdr(prev, node)
		}
		in.Unprotect(1)
		in.applyOption(name, value)
	}
	return in.Nil
}

// applyOption mirrors options the interpreter keeps in fields.
func (in *Interp) applyOption(name string, value SEXP) {
	if name == "expressions" && value != in.Nil {
		n := in.AsInteger(value)
		if n == NAInteger || n < 25 || n > 500000 {
			in.Error("'expressions' parameter invalid, allowed 25...500000")
		}
		in.maxDepth = int(n)
		if in.derivedPP {
			in.ppsize = max(in.ppsize, PPSizeFor(in.maxDepth))
		}
	}
}

// optionString reads a character option, falling back to def.
func (in *Interp) optionString(name, def string) string {
	v := in.GetOption(name)
	if in.Kind(v) == StrSXP && in.Length(v) > 0 && !in.IsNAStringElt(v, 0) {
		return in.Str(v, 0)
	}
	return def
}

// optionInt reads an integer option, falling back to def.
func (in *Interp) optionInt(name string, def int) int {
	v := in.GetOption(name)
	if v == in.Nil {
		return def
	}
	n := in.AsInteger(v)
	if n == NAInteger {
		return def
	}
	return int(n)
}

// primArgs is the result of matching a builtin's evaluated arguments
// against its formal names.
type primArgs struct {
	vals []SEXP // per formal; 0 when not supplied
	dots []SEXP // pairlist nodes collected by "..."
}

func (a primArgs) has(i int) bool { return a.vals[i] != 0 }

// get returns argument i or def when it was not supplied.
func (a primArgs) get(i int, def SEXP) SEXP {
	if a.vals[i] == 0 {
		return def
	}
	return a.vals[i]
}

// matchPrimArgs matches the evaluated args of a builtin by exact name,
// unique prefix and position, the way closures match. A formal named
// "..." absorbs everything left over; without one, leftovers are an error.
// Formals after "..." match by exact name only.
func (in *Interp) matchPrimArgs(call, args SEXP, formals ...string) primArgs {
	out := primArgs{vals: make([]SEXP, len(formals))}
	dotsAt := -1
	for i, f := range formals {
		if f == "..." {
			dotsAt = i
		}
	}
	var nodes []SEXP
	for a := args; a != in.Nil; a = in.Cdr(a) {
		nodes = append(nodes, a)
	}
	used := make([]bool, len(nodes))
	for i, n := range nodes {
		if in.Tag(n) == in.Nil {
			continue
		}
		name := in.PrintName(in.Tag(n))
		for fi, f := range formals {
			if f == name && fi != dotsAt && out.vals[fi] == 0 {
				out.vals[fi] = in.Car(n)
				used[i] = true
				break
			}
		}
	}
	for i, n := range nodes {
		if used[i] || in.Tag(n) == in.Nil {
			continue
		}
		name := in.PrintName(in.Tag(n))
		hit := -1
		for fi, f := range formals {
			if dotsAt >= 0 && fi >= dotsAt {
				break
			}
			if out.vals[fi] == 0 && strings.HasPrefix(f, name) {
				if hit >= 0 {
					in.ErrorCode(ErrArgMatch, call, "argument %d matches multiple formal arguments", i+1)
				}
				hit = fi
			}
		}
		if hit >= 0 {
			out.vals[hit] = in.Car(n)
			used[i] = true
		}
	}
	fi := 0
	for i, n := range nodes {
		if used[i] || in.Tag(n) != in.Nil {
			continue
		}
		for fi < len(formals) && fi != dotsAt && out.vals[fi] != 0 {
			fi++
		}
		if fi >= len(formals) || fi == dotsAt {
			break
		}
		out.vals[fi] = in.Car(n)
		used[i] = true
	}
	var unused []string
	for i, n := range nodes {
		if used[i] {
			continue
		}
		if dotsAt >= 0 {
			out.dots = append(out.dots, n)
			continue
		}
		text := in.deparseArg(in.Car(n))
		if in.Tag(n) != in.Nil {
			text = in.PrintName(in.Tag(n)) + " = " + text
		}
		unused = append(unused, text)
	}
	if len(unused) > 0 {
		in.unusedArgs(call, unused)
	}
	return out
}
