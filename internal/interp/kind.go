package interp

// Kind is the type tag of a cell.
type Kind uint8

const (
	NilSXP Kind = iota
	SymSXP
	ListSXP
	CloSXP
	EnvSXP
	PromSXP
	LangSXP
	SpecialSXP
	BuiltinSXP
	CharSXP
	LglSXP
	IntSXP
	RealSXP
	CplxSXP
	StrSXP
	DotSXP
	VecSXP
	ExprSXP

	freeSXP Kind = 0xff // swept cell sitting on the free list
)

var kindNames = [...]string{
	NilSXP:     "NULL",
	SymSXP:     "symbol",
	ListSXP:    "pairlist",
	CloSXP:     "closure",
	EnvSXP:     "environment",
	PromSXP:    "promise",
	LangSXP:    "language",
	SpecialSXP: "special",
	BuiltinSXP: "builtin",
	CharSXP:    "char",
	LglSXP:     "logical",
	IntSXP:     "integer",
	RealSXP:    "double",
	CplxSXP:    "complex",
	StrSXP:     "character",
	DotSXP:     "...",
	VecSXP:     "list",
	ExprSXP:    "expression",
}

// String returns the name typeof() reports.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	if k == freeSXP {
		return "<free>"
	}
	return "<unknown>"
}

// KindByName maps a typeof() name back to its kind.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	if name == "numeric" {
		return RealSXP, true
	}
	return NilSXP, false
}

// IsVector reports kinds with a length-indexed payload.
func (k Kind) IsVector() bool {
	switch k {
	case LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP, VecSXP, ExprSXP:
		return true
	}
	return false
}

// IsAtomic reports the atomic vector kinds.
func (k Kind) IsAtomic() bool {
	switch k {
	case LglSXP, IntSXP, RealSXP, CplxSXP, StrSXP:
		return true
	}
	return false
}

// IsPairKind reports kinds whose cells use CAR/CDR/TAG as a list node.
func (k Kind) IsPairKind() bool {
	return k == ListSXP || k == LangSXP || k == DotSXP
}

// coercion rank for the logical < integer < double < complex < character
// order; lists rank above everything.
func (k Kind) rank() int {
	switch k {
	case NilSXP:
		return 0
	case LglSXP:
		return 1
	case IntSXP:
		return 2
	case RealSXP:
		return 3
	case CplxSXP:
		return 4
	case StrSXP:
		return 5
	case VecSXP, ListSXP:
		return 6
	case ExprSXP:
		return 7
	}
	return 6
}

// elemWidth is the byte cost of one payload element in the vector arena.
func (k Kind) elemWidth() int64 {
	switch k {
	case LglSXP, IntSXP:
		return 4
	case RealSXP:
		return 8
	case CplxSXP:
		return 16
	case StrSXP, VecSXP, ExprSXP:
		return 4
	}
	return 0
}

// vecBytes is the arena charge for a payload of n elements, rounded up to
// 8-byte alignment.
func vecBytes(k Kind, n int) int64 {
	b := k.elemWidth() * int64(n)
	return (b + 7) &^ 7
}
