// Package ast is the parser's output: R expressions before they are turned
// into interpreter cells.
//
// R has almost no syntax of its own. Operators, control flow, braces and
// indexing are all calls whose function is a symbol, so the tree is made of
// a few leaf kinds plus Call and Function.
package ast

import "erre/internal/source"

// Expr is any parsed expression.
type Expr interface {
	Span() source.Span
	exprNode()
}

// Num is a double constant.
type Num struct {
	Value float64
	Sp    source.Span
}

// Int is an integer constant (1L).
type Int struct {
	Value int32
	Sp    source.Span
}

// Imag is an imaginary constant (2i).
type Imag struct {
	Value float64
	Sp    source.Span
}

// Str is a character constant.
type Str struct {
	Value string
	Sp    source.Span
}

// ConstKind enumerates reserved-word constants.
type ConstKind uint8

const (
	ConstTrue ConstKind = iota + 1
	ConstFalse
	ConstNull
	ConstNA
	ConstNAInteger
	ConstNAReal
	ConstNACharacter
	ConstInf
	ConstNaN
)

var constNames = [...]string{
	ConstTrue:        "TRUE",
	ConstFalse:       "FALSE",
	ConstNull:        "NULL",
	ConstNA:          "NA",
	ConstNAInteger:   "NA_integer_",
	ConstNAReal:      "NA_real_",
	ConstNACharacter: "NA_character_",
	ConstInf:         "Inf",
	ConstNaN:         "NaN",
}

func (k ConstKind) String() string {
	if int(k) < len(constNames) {
		return constNames[k]
	}
	return "?"
}

// Const is TRUE, NULL, NA_real_ and the like.
type Const struct {
	Kind ConstKind
	Sp   source.Span
}

// Sym is a name.
type Sym struct {
	Name string
	Sp   source.Span
}

// Arg is one call argument. Value is nil for an empty argument, as in
// x[1, ] or f(a = ).
type Arg struct {
	Name    string
	HasName bool
	Value   Expr
}

// Call applies Fn to Args. `if`, `for`, `{`, `<-`, `[` and every operator
// are calls too.
type Call struct {
	Fn   Expr
	Args []Arg
	Sp   source.Span
}

// Param is a formal argument; Default is nil when none is given.
type Param struct {
	Name    string
	Default Expr
}

// Function is a function(...) literal. Src keeps the original text for
// printing.
type Function struct {
	Params []Param
	Body   Expr
	Src    string
	Sp     source.Span
}

func (e *Num) Span() source.Span      { return e.Sp }
func (e *Int) Span() source.Span      { return e.Sp }
func (e *Imag) Span() source.Span     { return e.Sp }
func (e *Str) Span() source.Span      { return e.Sp }
func (e *Const) Span() source.Span    { return e.Sp }
func (e *Sym) Span() source.Span      { return e.Sp }
func (e *Call) Span() source.Span     { return e.Sp }
func (e *Function) Span() source.Span { return e.Sp }

func (*Num) exprNode()      {}
func (*Int) exprNode()      {}
func (*Imag) exprNode()     {}
func (*Str) exprNode()      {}
func (*Const) exprNode()    {}
func (*Sym) exprNode()      {}
func (*Call) exprNode()     {}
func (*Function) exprNode() {}

// NewCall builds a call to the named function with positional arguments.
func NewCall(sp source.Span, fn string, args ...Expr) *Call {
	c := &Call{Fn: &Sym{Name: fn, Sp: sp}, Sp: sp}
	for _, a := range args {
		c.Args = append(c.Args, Arg{Value: a})
	}
	return c
}

// FuncName returns the symbol name of c's function, or "".
func (c *Call) FuncName() string {
	if s, ok := c.Fn.(*Sym); ok {
		return s.Name
	}
	return ""
}
