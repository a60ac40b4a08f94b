package interp

import (
	"fmt"

	"erre/internal/trace"
)

// SEXP is a handle into the cell arena. Handle 0 is never allocated.
type SEXP uint32

type cellFlags uint8

const (
	flagMark    cellFlags = 1 << iota // reached in the current collection
	flagSeen                          // promise under evaluation
	flagDebug                         // closure is debugged / environment is stepping
	flagMissing                       // frame binding filled from a default
)

// cell is the uniform arena slot. Pair-like kinds use car/cdr/tag:
//
//	ListSXP, LangSXP, DotSXP: value, next, name
//	CloSXP:  formals, body, environment
//	PromSXP: value (Unbound until forced), expression, environment
//	EnvSXP:  frame, enclosure, unused
//	SymSXP:  print name, base value, unused
//
// Vector kinds keep their payload in exactly one of the typed slices.
type cell struct {
	kind  Kind
	named uint8
	flags cellFlags
	prim  uint16
	attr  SEXP
	car   SEXP
	cdr   SEXP
	tag   SEXP
	ints  []int32      // LglSXP, IntSXP
	reals []float64    // RealSXP
	cplx  []complex128 // CplxSXP
	elts  []SEXP       // StrSXP (CharSXP handles), VecSXP, ExprSXP
	chars string       // CharSXP
}

// bytes is what the cell charges against the vector arena.
func (c *cell) bytes() int64 {
	switch c.kind {
	case LglSXP, IntSXP:
		return vecBytes(c.kind, len(c.ints))
	case RealSXP:
		return vecBytes(c.kind, len(c.reals))
	case CplxSXP:
		return vecBytes(c.kind, len(c.cplx))
	case StrSXP, VecSXP, ExprSXP:
		return vecBytes(c.kind, len(c.elts))
	case CharSXP:
		return charBytes(len(c.chars))
	}
	return 0
}

func charBytes(n int) int64 { return (int64(n) + 1 + 7) &^ 7 }

// initHeap builds the cons arena with every slot on the free list in
// ascending order.
func (in *Interp) initHeap(nsize int, vsize int64) {
	in.cells = make([]cell, nsize+1)
	in.cells[0].kind = freeSXP
	for i := 1; i <= nsize; i++ {
		in.cells[i].kind = freeSXP
		if i < nsize {
			in.cells[i].cdr = SEXP(i + 1) //nolint:gosec // nsize is bounded by config validation
		}
	}
	in.free = 1
	in.nfree = nsize
	in.vsize = vsize
}

// cell returns the slot behind s. With access checking on, handle 0 and
// swept cells raise instead of silently reading garbage.
func (in *Interp) cell(s SEXP) *cell {
	c := &in.cells[s]
	if in.checkAccess && (s == 0 || c.kind == freeSXP) {
		in.badHandle(s)
	}
	return c
}

func (in *Interp) badHandle(s SEXP) {
	if s == 0 {
		in.ErrorCode(ErrInvalidHandle, 0, "invalid handle 0")
	}
	in.ErrorCode(ErrUseAfterFree, 0, "use of freed cell %d", s)
}

// allocCell pops the free list, collecting once when it is empty.
func (in *Interp) allocCell(k Kind) SEXP {
	if in.free == 0 || in.torture {
		in.collect("cons", 0)
		if in.free == 0 {
			in.ErrorCode(ErrHeapExhausted, 0, "cons memory exhausted (limit reached?)")
		}
	}
	s := in.free
	c := &in.cells[s]
	in.free = c.cdr
	in.nfree--
	nilv := in.Nil
	*c = cell{kind: k, attr: nilv, car: nilv, cdr: nilv, tag: nilv}
	if in.heapTrace {
		trace.Point(in.tracer, trace.ScopeHeap, "alloc", fmt.Sprintf("%s #%d", k, s))
	}
	return s
}

// reserveVector charges n bytes to the vector arena, collecting first if
// the budget would be exceeded.
func (in *Interp) reserveVector(n int64) {
	if in.vused+n <= in.vsize {
		return
	}
	in.collect("vector", n)
	if in.vused+n > in.vsize {
		in.ErrorCode(ErrVectorHeapExhausted, 0, "cannot allocate vector of size %.1f Kb", float64(n)/1024)
	}
}

// AllocVector allocates a vector of kind k and length n. Every element
// starts as the kind's zero value: FALSE, 0, 0i, "" or NULL.
func (in *Interp) AllocVector(k Kind, n int) SEXP {
	if n < 0 {
		in.Error("negative length vectors are not allowed")
	}
	if !k.IsVector() {
		in.ErrorCode(ErrType, 0, "invalid type/length (%s/%d) in vector allocation", k, n)
	}
	bytes := vecBytes(k, n)
	in.reserveVector(bytes)
	s := in.allocCell(k)
	c := &in.cells[s]
	switch k {
	case LglSXP, IntSXP:
		c.ints = make([]int32, n)
	case RealSXP:
		c.reals = make([]float64, n)
	case CplxSXP:
		c.cplx = make([]complex128, n)
	case StrSXP:
		c.elts = make([]SEXP, n)
		for i := range c.elts {
			c.elts[i] = in.BlankString
		}
	case VecSXP, ExprSXP:
		c.elts = make([]SEXP, n)
		for i := range c.elts {
			c.elts[i] = in.Nil
		}
	}
	in.vused += bytes
	return s
}

// MkChar allocates a string element.
func (in *Interp) MkChar(s string) SEXP {
	bytes := charBytes(len(s))
	in.reserveVector(bytes)
	x := in.allocCell(CharSXP)
	in.cells[x].chars = s
	in.vused += bytes
	return x
}

// GC runs a full collection.
func (in *Interp) GC() { in.collect("explicit", 0) }

func (in *Interp) collect(reason string, need int64) {
	span := trace.Begin(in.tracer, trace.ScopeHeap, "gc", 0)
	before := in.nfree
	in.markRoots()
	freed := in.sweep()
	in.gcCount++
	span.WithExtra("reason", reason).
		WithExtra("need", fmt.Sprint(need)).
		WithExtra("freed", fmt.Sprint(freed)).
		End(fmt.Sprintf("free %d -> %d cells, %d bytes in use", before, in.nfree, in.vused))
	if in.gcInfo {
		total := len(in.cells) - 1
		fmt.Fprintf(in.stderr, "Garbage collection [nr. %d]...\n", in.gcCount)
		fmt.Fprintf(in.stderr, "%d cons cells free (%d%%)\n", in.nfree, 100*in.nfree/max(total, 1))
		vfree := in.vsize - in.vused
		fmt.Fprintf(in.stderr, "%d Kbytes of heap free (%d%%)\n", vfree/1024, 100*vfree/max(in.vsize, 1))
	}
}

func (in *Interp) markRoots() {
	for _, s := range in.permanent {
		in.mark(s)
	}
	for _, s := range in.symbols {
		in.mark(s)
	}
	for _, s := range in.ppstack {
		in.mark(s)
	}
	for c := in.ctx; c != nil; c = c.next {
		in.mark(c.Call)
		in.mark(c.CloEnv)
		in.mark(c.SysParent)
		in.mark(c.PromArgs)
		in.mark(c.ConExit)
		in.mark(c.CallFun)
	}
	in.mark(in.returned)
	in.mark(in.curCall)
}

// mark sets the mark bit on everything reachable from root. It keeps its
// own stack so long lists do not deepen the Go stack.
func (in *Interp) mark(root SEXP) {
	stack := append(in.markStack[:0], root)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s == 0 {
			continue
		}
		c := &in.cells[s]
		if c.flags&flagMark != 0 || c.kind == freeSXP {
			continue
		}
		c.flags |= flagMark
		stack = append(stack, c.attr)
		switch c.kind {
		case NilSXP, CharSXP, LglSXP, IntSXP, RealSXP, CplxSXP, SpecialSXP, BuiltinSXP:
		case StrSXP, VecSXP, ExprSXP:
			stack = append(stack, c.elts...)
		default:
			stack = append(stack, c.car, c.cdr, c.tag)
		}
	}
	in.markStack = stack[:0]
}

// sweep returns every unmarked cell to the free list and its payload to
// the vector budget, and clears the marks of the survivors.
func (in *Interp) sweep() int {
	freed := 0
	var free SEXP
	nfree := 0
	for i := len(in.cells) - 1; i >= 1; i-- {
		c := &in.cells[i]
		if c.flags&flagMark != 0 {
			c.flags &^= flagMark
			continue
		}
		if c.kind != freeSXP {
			in.vused -= c.bytes()
			freed++
			if in.heapTrace {
				trace.Point(in.tracer, trace.ScopeHeap, "free", fmt.Sprintf("%s #%d", c.kind, i))
			}
		}
		*c = cell{kind: freeSXP, cdr: free}
		free = SEXP(i) //nolint:gosec // bounded by the arena size
		nfree++
	}
	in.free = free
	in.nfree = nfree
	return freed
}

// HeapStats is what gc() reports.
type HeapStats struct {
	ConsFree, ConsTotal int
	VecFree, VecTotal   int64
	Collections         int
}

func (in *Interp) HeapStats() HeapStats {
	return HeapStats{
		ConsFree:    in.nfree,
		ConsTotal:   len(in.cells) - 1,
		VecFree:     in.vsize - in.vused,
		VecTotal:    in.vsize,
		Collections: in.gcCount,
	}
}

// SetGCInfo toggles the per-collection report and returns the old value.
func (in *Interp) SetGCInfo(on bool) bool {
	old := in.gcInfo
	in.gcInfo = on
	return old
}

// IsFree reports whether s has been swept. Used by tests and the image
// writer to assert reachability.
func (in *Interp) IsFree(s SEXP) bool {
	return s == 0 || int(s) >= len(in.cells) || in.cells[s].kind == freeSXP
}
