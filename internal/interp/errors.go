package interp

import (
	"fmt"
	"strings"
)

// ErrCode identifies the class of an interpreter error.
type ErrCode int

// Stable error codes - do not change values.
const (
	ErrGeneric          ErrCode = 1001 // E1001: stop() and most builtin failures
	ErrUnbound          ErrCode = 1002 // E1002: object not found
	ErrMissingArg       ErrCode = 1003 // E1003: argument missing with no default
	ErrPromiseRecursion ErrCode = 1004 // E1004: promise already under evaluation
	ErrNotFunction      ErrCode = 1005 // E1005: attempt to apply non-function
	ErrArgMatch         ErrCode = 1006 // E1006: unused or ambiguous arguments
	ErrType             ErrCode = 1007 // E1007: invalid argument type
	ErrSubscript        ErrCode = 1008 // E1008: subscript out of bounds
	ErrNoLoop           ErrCode = 1009 // E1009: break/next outside a loop
	ErrNoFunction       ErrCode = 1010 // E1010: return outside a function
	ErrArity            ErrCode = 1011 // E1011: wrong number of arguments to a primitive

	ErrRecursionDepth      ErrCode = 1101 // E1101: expressions limit exceeded
	ErrHeapExhausted       ErrCode = 1102 // E1102: no free cons cells after collection
	ErrVectorHeapExhausted ErrCode = 1103 // E1103: vector arena budget exceeded
	ErrProtectOverflow     ErrCode = 1104 // E1104: protection stack full
	ErrInterrupted         ErrCode = 1105 // E1105: user break

	ErrProtectUnderflow ErrCode = 1201 // E1201: unprotect past the bottom
	ErrProtectNotFound  ErrCode = 1202 // E1202: unprotect_ptr of an unknown pointer
	ErrUseAfterFree     ErrCode = 1203 // E1203: access to a swept cell
	ErrCyclicList       ErrCode = 1204 // E1204: pairlist longer than the heap
	ErrInvalidHandle    ErrCode = 1205 // E1205: handle 0 or out of range
)

// String returns the code as "E1001".
func (c ErrCode) String() string {
	return fmt.Sprintf("E%d", int(c))
}

// Resource reports the exhaustion class: the limit is systemic, not a
// script bug.
func (c ErrCode) Resource() bool { return c >= 1100 && c < 1200 }

// Internal reports invariant violations inside the interpreter.
func (c ErrCode) Internal() bool { return c >= 1200 }

// RError is an R-level error travelling up the context stack. The call is
// deparsed when the error is raised, so the message stays valid after the
// cells it came from are collected.
type RError struct {
	Code    ErrCode
	Call    string // deparsed call, "" when raised without one
	Message string
}

// Error renders the message as the console prints it.
func (e *RError) Error() string {
	if e.Code == ErrInterrupted {
		return ""
	}
	if e.Call == "" {
		return "Error: " + e.Message
	}
	head := "Error in " + e.Call + " : "
	if len(head)+len(e.Message) > 77 || strings.Contains(e.Call, "\n") {
		return head + "\n  " + e.Message
	}
	return head + e.Message
}

type warning struct {
	call string
	msg  string
}

func (w warning) String() string {
	if w.call == "" {
		return w.msg
	}
	return "In " + w.call + " : " + w.msg
}

// Error raises an error with no call.
func (in *Interp) Error(format string, args ...any) {
	in.jumpToTopLevel(&RError{Code: ErrGeneric, Message: fmt.Sprintf(format, args...)})
}

// ErrorCall raises an error attributed to call.
func (in *Interp) ErrorCall(call SEXP, format string, args ...any) {
	in.ErrorCode(ErrGeneric, call, format, args...)
}

// ErrorCode raises an error with an explicit code.
func (in *Interp) ErrorCode(code ErrCode, call SEXP, format string, args ...any) {
	in.jumpToTopLevel(&RError{Code: code, Call: in.callText(call), Message: fmt.Sprintf(format, args...)})
}

// callText deparses call for error and warning headers. Only the first
// line is kept, as the console does for long calls.
func (in *Interp) callText(call SEXP) string {
	if call == 0 || call == in.Nil || in.Kind(call) != LangSXP {
		return ""
	}
	lines := in.Deparse(call, 60)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// Warning records a warning attributed to call; it is printed after the
// current top-level form completes.
func (in *Interp) Warning(call SEXP, format string, args ...any) {
	in.warnings = append(in.warnings, warning{call: in.callText(call), msg: fmt.Sprintf(format, args...)})
}

// maxWarnings bounds what one top-level form can accumulate.
const maxWarnings = 50

// flushWarnings prints collected warnings the way the console does.
func (in *Interp) flushWarnings() {
	ws := in.warnings
	in.warnings = nil
	if len(ws) > maxWarnings {
		ws = ws[:maxWarnings]
	}
	switch len(ws) {
	case 0:
		return
	case 1:
		fmt.Fprintf(in.stderr, "Warning message:\n%s\n", ws[0])
	default:
		fmt.Fprintln(in.stderr, "Warning messages:")
		for i, w := range ws {
			fmt.Fprintf(in.stderr, "%d: %s\n", i+1, w)
		}
	}
}

// Warnings returns the pending warning texts without clearing them.
func (in *Interp) Warnings() []string {
	out := make([]string, len(in.warnings))
	for i, w := range in.warnings {
		out[i] = w.String()
	}
	return out
}
