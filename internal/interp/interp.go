// Package interp is the evaluation engine: the cell heap with its
// protection stack, the context stack used for every non-local exit, the
// evaluator and its primitives, and the read-eval-print loop with the
// browser.
//
// An Interp is single-threaded. Independent interpreters share nothing and
// may run on separate goroutines.
package interp

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"erre/internal/source"
	"erre/internal/trace"
)

// Options sizes an interpreter. Zero fields take the defaults.
type Options struct {
	NSize       int   // cons cells
	VSize       int64 // vector arena bytes
	PPSize      int   // protection stack entries
	Expressions int   // evaluation depth limit

	Stdout io.Writer
	Stderr io.Writer
	Tracer trace.Tracer

	HeapTrace   bool // emit a trace point per allocation and free
	CheckAccess bool // raise on reads of swept cells
	Interactive bool

	derivedPP bool
}

const (
	DefaultNSize       = 350000
	DefaultVSize       = 8 << 20
	DefaultPPSize      = 50000
	DefaultExpressions = 5000

	// ppPerDepth bounds the protection entries one level of evaluation
	// pushes. A derived ppsize keeps that many per level of expressions,
	// so runaway recursion meets the depth limit before the stack limit.
	ppPerDepth = 10

	minNSize = 2000
)

// PPSizeFor is the protection stack size used when none is configured.
func PPSizeFor(expressions int) int {
	return max(DefaultPPSize, ppPerDepth*expressions)
}

func (o Options) withDefaults() Options {
	if o.NSize <= 0 {
		o.NSize = DefaultNSize
	}
	o.NSize = max(o.NSize, minNSize)
	if o.VSize <= 0 {
		o.VSize = DefaultVSize
	}
	if o.Expressions <= 0 {
		o.Expressions = DefaultExpressions
	}
	if o.PPSize <= 0 {
		o.PPSize = PPSizeFor(o.Expressions)
		o.derivedPP = true
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}

// Interp holds all interpreter state.
type Interp struct {
	// heap
	cells       []cell
	free        SEXP
	nfree       int
	vused       int64
	vsize       int64
	gcCount     int
	gcInfo      bool
	checkAccess bool
	torture     bool
	heapTrace   bool
	markStack   []SEXP

	// protection stack
	ppstack   []SEXP
	ppsize    int
	derivedPP bool // ppsize follows options(expressions=)

	// context stack
	ctx      *Context // innermost
	toplevel *Context // current error target of the read-eval-print loop
	root     *Context
	returned SEXP // value carried by a jump in flight
	curCall  SEXP // call of the running builtin, for its messages

	evalDepth   int
	maxDepth    int
	evalCount   int
	interrupted atomic.Bool

	// permanent values
	Nil         SEXP
	Unbound     SEXP
	MissingArg  SEXP
	NAString    SEXP
	BlankString SEXP
	GlobalEnv   SEXP
	permanent   []SEXP

	symbols map[string]SEXP
	sym     commonSymbols
	prims   []primitive

	// Visible says whether the last top-level value should be printed.
	Visible bool

	browseLevel int
	halted      bool
	reader      LineReader
	errStyle    func(string) string
	warnings    []warning
	stdout      io.Writer
	stderr      io.Writer
	tracer      trace.Tracer
	traceCalls  bool
	files       *source.FileSet
	interactive bool
	started     time.Time
}

type commonSymbols struct {
	dots, names, dim, dimnames, class, levels, srcref SEXP
	value, tmp, brace, paren, function, lastValue     SEXP
	options, bracket, bracket2, dollar, assign        SEXP
	superAssign, eqAssign, quote, missing, prompt     SEXP
	cont, browserN, browserC, browserQ, first, last   SEXP
}

// New builds an interpreter with an empty global environment and the
// primitives installed. The base library is loaded by LoadBase.
func New(opts Options) *Interp {
	opts = opts.withDefaults()
	in := &Interp{
		ppsize:      opts.PPSize,
		derivedPP:   opts.derivedPP,
		maxDepth:    opts.Expressions,
		checkAccess: opts.CheckAccess,
		heapTrace:   opts.HeapTrace,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		tracer:      opts.Tracer,
		traceCalls:  opts.Tracer.Enabled() && opts.Tracer.Level().ShouldEmit(trace.ScopeCall),
		interactive: opts.Interactive,
		symbols:     make(map[string]SEXP, 1024),
		files:       source.NewFileSet(),
		started:     time.Now(),
		ppstack:     make([]SEXP, 0, 256),
	}
	in.initHeap(opts.NSize, opts.VSize)
	in.initSingletons()
	in.initSymbols()
	in.installPrimitives()
	in.initOptions()
	in.root = &Context{Kind: CtxTopLevel, Call: in.Nil, CloEnv: in.GlobalEnv, SysParent: in.Nil, PromArgs: in.Nil, ConExit: in.Nil}
	in.ctx = in.root
	in.toplevel = in.root
	return in
}

func (in *Interp) initSingletons() {
	// Nil is its own CAR, CDR, TAG and attribute list.
	s := in.free
	c := &in.cells[s]
	in.free = c.cdr
	in.nfree--
	*c = cell{kind: NilSXP, attr: s, car: s, cdr: s, tag: s}
	in.Nil = s
	in.permanent = append(in.permanent, s)

	in.Unbound = in.allocCell(SymSXP)
	in.cells[in.Unbound].cdr = in.Unbound
	in.MissingArg = in.allocCell(SymSXP)
	in.cells[in.MissingArg].cdr = in.MissingArg
	in.permanent = append(in.permanent, in.Unbound, in.MissingArg)

	in.NAString = in.MkChar("NA")
	in.BlankString = in.MkChar("")
	in.permanent = append(in.permanent, in.NAString, in.BlankString)

	// print names of the markers, for deparse and debugging
	in.cells[in.MissingArg].car = in.BlankString

	in.GlobalEnv = in.allocCell(EnvSXP)
	in.permanent = append(in.permanent, in.GlobalEnv)
}

func (in *Interp) initSymbols() {
	s := &in.sym
	s.dots = in.Install("...")
	s.names = in.Install("names")
	s.dim = in.Install("dim")
	s.dimnames = in.Install("dimnames")
	s.class = in.Install("class")
	s.levels = in.Install("levels")
	s.srcref = in.Install("srcref")
	s.value = in.Install("value")
	s.tmp = in.Install("*tmp*")
	s.brace = in.Install("{")
	s.paren = in.Install("(")
	s.function = in.Install("function")
	s.lastValue = in.Install(".Last.value")
	s.options = in.Install(".Options")
	s.bracket = in.Install("[")
	s.bracket2 = in.Install("[[")
	s.dollar = in.Install("$")
	s.assign = in.Install("<-")
	s.superAssign = in.Install("<<-")
	s.eqAssign = in.Install("=")
	s.quote = in.Install("quote")
	s.missing = in.Install("missing")
	s.prompt = in.Install("prompt")
	s.cont = in.Install("cont")
	s.browserN = in.Install("n")
	s.browserC = in.Install("c")
	s.browserQ = in.Install("Q")
	s.first = in.Install(".First")
	s.last = in.Install(".Last")
}

// Install returns the unique symbol named name, creating it on first use.
// Symbols are permanent.
func (in *Interp) Install(name string) SEXP {
	if s, ok := in.symbols[name]; ok {
		return s
	}
	pname := in.Protect(in.MkChar(name))
	s := in.allocCell(SymSXP)
	c := &in.cells[s]
	c.car = pname
	c.cdr = in.Unbound
	in.Unprotect(1)
	in.symbols[name] = s
	return s
}

// Lookup returns the symbol for name if it has been installed.
func (in *Interp) Lookup(name string) (SEXP, bool) {
	s, ok := in.symbols[name]
	return s, ok
}

// Interrupt asks the evaluator to stop at its next poll point. It is the
// only method safe to call from another goroutine.
func (in *Interp) Interrupt() { in.interrupted.Store(true) }

// SetTorture makes every allocation collect first. Tests use it to flush
// out unprotected temporaries.
func (in *Interp) SetTorture(on bool) { in.torture = on }

// Stdout is where printed values go.
func (in *Interp) Stdout() io.Writer { return in.stdout }

// Stderr is where errors and warnings go.
func (in *Interp) Stderr() io.Writer { return in.stderr }

// SetOutput redirects printed values and diagnostics.
func (in *Interp) SetOutput(stdout, stderr io.Writer) {
	in.stdout = stdout
	in.stderr = stderr
}

// Tracer returns the interpreter's tracer.
func (in *Interp) Tracer() trace.Tracer { return in.tracer }

// Files is the file set parsed sources are registered in.
func (in *Interp) Files() *source.FileSet { return in.files }

// Interactive reports whether the session reads from a console.
func (in *Interp) Interactive() bool { return in.interactive }

// SetInteractive switches between console and batch behaviour.
func (in *Interp) SetInteractive(on bool) { in.interactive = on }

// EvalDepth is the current evaluation depth.
func (in *Interp) EvalDepth() int { return in.evalDepth }

// BrowseLevel is the number of active browser loops.
func (in *Interp) BrowseLevel() int { return in.browseLevel }
