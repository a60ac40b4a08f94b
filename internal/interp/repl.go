package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"erre/internal/trace"
)

// LineReader supplies input one line at a time. It returns io.EOF at the
// end of input and ErrLineCleared when the user discarded the line.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// ErrLineCleared reports an interrupted line; pending input is dropped.
var ErrLineCleared = errors.New("line cleared")

// batchReader reads lines from a stream without prompting.
type batchReader struct {
	r *bufio.Reader
}

// NewBatchReader reads input from r without showing prompts.
func NewBatchReader(r io.Reader) LineReader {
	return &batchReader{r: bufio.NewReader(r)}
}

func (b *batchReader) ReadLine(string) (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SetReader sets where the read-eval-print loop takes its input.
func (in *Interp) SetReader(r LineReader) { in.reader = r }

// SetErrorStyle sets how error and warning headers are rendered, for
// colour consoles. nil prints them plain.
func (in *Interp) SetErrorStyle(style func(string) string) { in.errStyle = style }

type replStatus int

const (
	replContinue replStatus = iota
	replEOF
	replBrowserDone
	replHalt
)

// replState is the pending input of one loop level.
type replState struct {
	buf     strings.Builder
	pending bool
}

// Repl reads, evaluates and prints forms in rho until the input ends or,
// at a browser level, a browser command ends the loop. Every iteration
// starts from the protection depth savestack.
func (in *Interp) Repl(rho SEXP, savestack, browselevel int) {
	if in.reader == nil {
		return
	}
	var st replState
	for {
		in.ResetPPStack(savestack)
		if in.replIteration(rho, browselevel, &st) != replContinue {
			return
		}
	}
}

func (in *Interp) prompt(browselevel int, cont bool) string {
	if cont {
		return in.optionString("continue", "+ ")
	}
	if browselevel > 0 {
		return fmt.Sprintf("Browse[%d]> ", browselevel)
	}
	return in.optionString("prompt", "> ")
}

func (in *Interp) replIteration(rho SEXP, browselevel int, st *replState) replStatus {
	line, err := in.reader.ReadLine(in.prompt(browselevel, st.pending))
	switch {
	case errors.Is(err, ErrLineCleared):
		st.buf.Reset()
		st.pending = false
		return replContinue
	case err != nil:
		return replEOF
	}
	if browselevel > 0 && !st.pending && strings.TrimSpace(line) == "" {
		in.SetDebug(rho, false)
		return replBrowserDone
	}
	st.buf.WriteString(line)
	st.buf.WriteByte('\n')
	exprs, perr := in.Parse("<console>", st.buf.String())
	if perr != nil {
		var pe *ParseError
		if errors.As(perr, &pe) && pe.Incomplete {
			st.pending = true
			return replContinue
		}
		st.buf.Reset()
		st.pending = false
		in.printError(perr.Error())
		return replContinue
	}
	st.buf.Reset()
	st.pending = false
	in.Protect(exprs)
	for i := range in.Length(exprs) {
		e := in.VectorElt(exprs, i)
		if browselevel > 0 && in.Length(exprs) == 1 {
			if done := in.browserCommand(e, rho); done {
				return replBrowserDone
			}
		}
		rerr := in.evalTopLevel(e, rho)
		if rerr != nil {
			if msg := rerr.Error(); msg != "" {
				in.printError(msg)
			}
		}
		in.flushWarnings()
		if rerr != nil && !in.interactive && browselevel == 0 {
			in.halted = true
			return replHalt
		}
	}
	return replContinue
}

// browserCommand handles the bare symbols n, c, cont and Q typed at a
// browser prompt. It reports whether the browser loop ends.
func (in *Interp) browserCommand(e, rho SEXP) bool {
	switch e {
	case in.sym.browserN:
		in.SetDebug(rho, true)
		return true
	case in.sym.browserC, in.sym.cont:
		in.SetDebug(rho, false)
		return true
	case in.sym.browserQ:
		in.SetDebug(rho, false)
		in.jumpToRoot(nil)
	}
	return false
}

// evalTopLevel evaluates one form under its own top-level context, prints
// the value when visible and binds .Last.value. An error stops at the
// context and is returned.
func (in *Interp) evalTopLevel(e, rho SEXP) *RError {
	span := trace.Begin(in.tracer, trace.ScopeToplevel, "toplevel", 0)
	c := in.BeginContext(CtxTopLevel, in.Nil, rho, in.Nil, in.Nil, in.Nil)
	saved := in.toplevel
	in.toplevel = c
	defer func() { in.toplevel = saved }()
	j := in.catchTopLevel(c, func() {
		in.Visible = true
		v := in.Protect(in.Eval(e, rho))
		in.SetSymValue(in.sym.lastValue, v)
		if in.Visible {
			in.PrintValue(v)
		}
	})
	in.ctx = c.next
	if j != nil && j.Err != nil {
		span.End(j.Err.Code.String())
		return j.Err
	}
	span.End("ok")
	return nil
}

// printError writes an error message to stderr, styling its header.
func (in *Interp) printError(msg string) {
	if in.errStyle != nil {
		if rest, ok := strings.CutPrefix(msg, "Error"); ok {
			msg = in.errStyle("Error") + rest
		}
	}
	fmt.Fprintln(in.stderr, msg)
}

// PrintError reports err on stderr the way the loop reports errors.
func (in *Interp) PrintError(err error) {
	if msg := err.Error(); msg != "" {
		in.printError(msg)
	}
}

// RunConsole drives the outermost loop in the global environment until
// the input ends or q() is called. The quit request is returned, or nil
// at end of input. In batch mode an error halts the loop with status 1.
func (in *Interp) RunConsole() *QuitRequest {
	in.halted = false
	for {
		done, req := in.runRoot(func() {
			in.Repl(in.GlobalEnv, in.PPStackTop(), 0)
		})
		if in.halted {
			return &QuitRequest{Save: "no", Status: 1, Halted: true}
		}
		if done {
			return req
		}
	}
}

// runRoot runs fn at the outermost level, catching jumps addressed to the
// root: Q from a browser restarts the loop, q() ends it.
func (in *Interp) runRoot(fn func()) (done bool, q *QuitRequest) {
	top := in.PPStackTop()
	j := in.catchTopLevel(in.root, fn)
	in.ctx = in.root
	in.toplevel = in.root
	in.ResetPPStack(top)
	in.browseLevel = 0
	if j == nil {
		return true, nil
	}
	if j.Quit != nil {
		return true, j.Quit
	}
	if j.Err != nil {
		if msg := j.Err.Error(); msg != "" {
			in.printError(msg)
		}
		in.flushWarnings()
	}
	return false, nil
}

// EvalString parses and evaluates text at top level in the global
// environment, printing visible values. It stops at the first error and
// returns it; q() comes back as the *QuitRequest.
func (in *Interp) EvalString(name, text string) error {
	exprs, err := in.Parse(name, text)
	if err != nil {
		return err
	}
	var rerr *RError
	_, q := in.runRoot(func() {
		in.Protect(exprs)
		for i := range in.Length(exprs) {
			rerr = in.evalTopLevel(in.VectorElt(exprs, i), in.GlobalEnv)
			in.flushWarnings()
			if rerr != nil {
				return
			}
		}
	})
	switch {
	case q != nil:
		return q
	case rerr != nil:
		return rerr
	}
	return nil
}
