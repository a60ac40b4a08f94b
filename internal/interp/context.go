package interp

import "fmt"

// CtxKind classifies a context. The values are bit masks so a search can
// accept several kinds at once.
type CtxKind uint16

const (
	CtxTopLevel CtxKind = 0
	CtxNext     CtxKind = 1
	CtxBreak    CtxKind = 2
	CtxLoop     CtxKind = CtxNext | CtxBreak
	CtxFunction CtxKind = 4
	CtxCCode    CtxKind = 8
	CtxReturn   CtxKind = CtxFunction | CtxCCode
	CtxBrowser  CtxKind = 16
	CtxRestart  CtxKind = 32 // try(): catches errors raised below it
)

func (k CtxKind) String() string {
	switch k {
	case CtxTopLevel:
		return "toplevel"
	case CtxNext:
		return "next"
	case CtxBreak:
		return "break"
	case CtxLoop:
		return "loop"
	case CtxFunction, CtxReturn:
		return "function"
	case CtxBrowser:
		return "browser"
	case CtxRestart:
		return "restart"
	}
	return "unknown"
}

// Context is one activation record. Contexts form a stack through next;
// the interpreter's ctx field is the innermost.
type Context struct {
	Kind      CtxKind
	Call      SEXP // the call that created the context
	CloEnv    SEXP // evaluation environment
	SysParent SEXP // environment of the caller
	PromArgs  SEXP // supplied arguments as promises
	CallFun   SEXP // the function being applied
	ConExit   SEXP // on.exit expression

	ppTop       int
	evalDepth   int
	browseLevel int
	next        *Context
}

// Next is the enclosing context.
func (c *Context) Next() *Context { return c.next }

// PPTop is the protection depth recorded when c began.
func (c *Context) PPTop() int { return c.ppTop }

// Jump is the panic payload of every non-local exit: break, next,
// return, errors, quitting the browser and q().
type Jump struct {
	Target *Context
	Kind   CtxKind
	Value  SEXP
	Err    *RError
	Quit   *QuitRequest
}

// QuitRequest is carried by the jump q() raises to the outermost level.
type QuitRequest struct {
	Save    string // "yes", "no", "ask" or "default"
	Status  int
	RunLast bool
	Halted  bool // a batch run stopped at an error
}

func (q *QuitRequest) Error() string {
	if q.Halted {
		return "execution halted"
	}
	return fmt.Sprintf("quit with status %d", q.Status)
}

// BeginContext pushes a context recording the protection and evaluation
// depths.
func (in *Interp) BeginContext(kind CtxKind, call, env, sysparent, promargs, callfun SEXP) *Context {
	c := &Context{
		Kind:        kind,
		Call:        call,
		CloEnv:      env,
		SysParent:   sysparent,
		PromArgs:    promargs,
		CallFun:     callfun,
		ConExit:     in.Nil,
		ppTop:       len(in.ppstack),
		evalDepth:   in.evalDepth,
		browseLevel: in.browseLevel,
		next:        in.ctx,
	}
	in.ctx = c
	return c
}

// EndContext runs the on.exit expression of c in its environment and pops
// it. The expression is detached first, so an error inside it cannot run
// it twice.
func (in *Interp) EndContext(c *Context) {
	if s := c.ConExit; s != in.Nil {
		c.ConExit = in.Nil
		vis := in.Visible
		in.Protect(s)
		in.Eval(s, c.CloEnv)
		in.Unprotect(1)
		in.Visible = vis
	}
	in.ctx = c.next
}

// endContextUnwinding ends c while j passes through it. When j carries an
// error and the on.exit expression raises another, the first error is
// reported before the second takes its place.
func (in *Interp) endContextUnwinding(c *Context, j *Jump) {
	if j.Err == nil {
		in.EndContext(c)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if nj, ok := r.(*Jump); ok && nj.Err != nil && nj.Err != j.Err {
				in.PrintError(j.Err)
			}
			panic(r)
		}
	}()
	in.EndContext(c)
}

// restoreContext makes c current again with the depths it recorded.
func (in *Interp) restoreContext(c *Context) {
	in.ctx = c
	in.ResetPPStack(c.ppTop)
	in.evalDepth = c.evalDepth
	in.browseLevel = c.browseLevel
}

// withContext runs body with c pushed. A jump addressed to c stops there:
// c is ended and the jump is returned. Any other jump, and any Go panic,
// ends c and continues outward. On normal completion c is ended and body's
// value is returned.
func (in *Interp) withContext(c *Context, body func() SEXP) (result SEXP, caught *Jump) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		j, ok := r.(*Jump)
		if !ok {
			in.ctx = c.next
			panic(r)
		}
		in.restoreContext(c)
		if j.Target != c {
			in.endContextUnwinding(c, j)
			panic(j)
		}
		result = in.takeReturned(j)
		in.Protect(result)
		in.EndContext(c)
		in.Unprotect(1)
		caught = j
	}()
	result = body()
	in.Protect(result)
	in.EndContext(c)
	in.Unprotect(1)
	return result, nil
}

// takeReturned detaches the value carried by j from the in-flight root.
func (in *Interp) takeReturned(j *Jump) SEXP {
	v := j.Value
	if v == 0 {
		v = in.Nil
	}
	in.returned = in.Nil
	return v
}

// JumpToContext transfers control to target, carrying value.
func (in *Interp) JumpToContext(target *Context, kind CtxKind, value SEXP) {
	in.returned = value
	panic(&Jump{Target: target, Kind: kind, Value: value})
}

// FindContext locates the innermost context matching mask whose
// environment is env and jumps to it. Loop and return searches stop at
// the nearest top-level context, except that a search for a browser looks
// past the context of a form typed at the browser prompt.
func (in *Interp) FindContext(mask CtxKind, env, value SEXP) {
	for c := in.ctx; c != nil; c = c.next {
		if c.Kind == CtxTopLevel {
			if mask&CtxBrowser == 0 || c.next == nil || c.next.Kind != CtxBrowser {
				break
			}
			continue
		}
		if c.Kind&mask != 0 && c.CloEnv == env {
			in.JumpToContext(c, mask, value)
		}
	}
	if mask&CtxLoop != 0 {
		in.ErrorCode(ErrNoLoop, 0, "no loop for break/next, jumping to top level")
	}
	in.ErrorCode(ErrNoFunction, 0, "no function to return from, jumping to top level")
}

// jumpToTopLevel sends err to the innermost context that catches errors: a
// top-level context or a try().
func (in *Interp) jumpToTopLevel(err *RError) {
	in.returned = in.Nil
	for c := in.ctx; c != nil; c = c.next {
		if c.Kind == CtxTopLevel || c.Kind == CtxRestart {
			panic(&Jump{Target: c, Kind: CtxTopLevel, Err: err})
		}
	}
	panic(&Jump{Target: in.root, Kind: CtxTopLevel, Err: err})
}

// jumpToRoot unwinds every browser level back to the outermost loop
// without a message, or with a quit request.
func (in *Interp) jumpToRoot(q *QuitRequest) {
	in.returned = in.Nil
	panic(&Jump{Target: in.root, Kind: CtxTopLevel, Quit: q})
}

// catchTopLevel runs fn under the top-level context c and returns the
// jump that ended it, if any. The context stays pushed: the caller owns
// its lifetime.
func (in *Interp) catchTopLevel(c *Context, fn func()) (caught *Jump) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		j, ok := r.(*Jump)
		if !ok || j.Target != c {
			panic(r)
		}
		in.restoreContext(c)
		in.returned = in.Nil
		caught = j
	}()
	fn()
	return nil
}

// functionContext returns the innermost function context evaluating in
// env, or nil.
func (in *Interp) functionContext(env SEXP) *Context {
	for c := in.ctx; c != nil; c = c.next {
		if c.Kind&CtxFunction != 0 && c.CloEnv == env {
			return c
		}
	}
	return nil
}

// frames lists the function contexts from the outermost inwards.
func (in *Interp) frames() []*Context {
	var out []*Context
	for c := in.ctx; c != nil; c = c.next {
		if c.Kind&CtxFunction != 0 {
			out = append(out, c)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// sysFrame resolves the which argument of sys.call and sys.function
// relative to the frame evaluating in env. 0 means that frame itself;
// positive values count from the outermost frame, negative ones up from
// the current one. nil means the top level.
func (in *Interp) sysFrame(which int, env SEXP, call SEXP) *Context {
	frames := in.frames()
	cur := -1
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].CloEnv == env {
			cur = i
			break
		}
	}
	idx := which - 1
	if which <= 0 {
		idx = cur + which
	}
	if which == 0 && cur < 0 {
		return nil
	}
	if idx < 0 || idx >= len(frames) {
		in.ErrorCall(call, "not that many frames on the stack")
	}
	return frames[idx]
}

// parentFrame follows sys.parent n times from the frame evaluating in env.
func (in *Interp) parentFrame(env SEXP, n int) SEXP {
	for ; n > 0; n-- {
		c := in.functionContext(env)
		if c == nil {
			return in.GlobalEnv
		}
		env = c.SysParent
	}
	if env == in.Nil {
		return in.GlobalEnv
	}
	return env
}

// ContextDepth counts the contexts on the stack; the outermost top level
// counts as one.
func (in *Interp) ContextDepth() int {
	n := 0
	for c := in.ctx; c != nil; c = c.next {
		n++
	}
	return n
}

// CurrentContext is the innermost context.
func (in *Interp) CurrentContext() *Context { return in.ctx }
