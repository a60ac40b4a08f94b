package parser

import "erre/internal/token"

// Binary precedence, lowest first. Postfix forms ([, [[, (, $, @, ::) are
// handled in the same loop with the highest levels.
const (
	precHelp        = 1  // ?
	precEqAssign    = 2  // =          right
	precLeftAssign  = 3  // <- <<-     right
	precRightAssign = 4  // -> ->>
	precTilde       = 5  // ~
	precOr          = 6  // | ||
	precAnd         = 7  // & &&
	precNot         = 8  // unary !
	precCompare     = 9  // == != < > <= >=   non-associative
	precAdd         = 10 // + -
	precMul         = 11 // * /
	precSpecial     = 12 // %any% |>
	precColon       = 13 // :
	precUnary       = 14 // unary + -
	precPower       = 15 // ^          right
	precDollar      = 16 // $ @
	precIndex       = 17 // ( [ [[
	precNamespace   = 18 // ::
)

// binaryPrec returns the precedence of k as an infix operator and whether
// it is right associative; -1 means k is not infix.
func binaryPrec(k token.Kind) (int, bool) {
	switch k {
	case token.Question:
		return precHelp, false
	case token.EqAssign:
		return precEqAssign, true
	case token.LeftAssign, token.SuperAssign:
		return precLeftAssign, true
	case token.RightAssign, token.RightSuperAssign:
		return precRightAssign, false
	case token.Tilde:
		return precTilde, false
	case token.Pipe, token.OrOr:
		return precOr, false
	case token.Amp, token.AndAnd:
		return precAnd, false
	case token.EqEq, token.BangEq, token.Lt, token.Gt, token.LtEq, token.GtEq:
		return precCompare, false
	case token.Plus, token.Minus:
		return precAdd, false
	case token.Star, token.Slash:
		return precMul, false
	case token.Special, token.PipeGt:
		return precSpecial, false
	case token.Colon:
		return precColon, false
	case token.Caret:
		return precPower, true
	case token.Dollar, token.At:
		return precDollar, false
	case token.LParen, token.LBracket, token.LBB:
		return precIndex, false
	case token.ColonColon:
		return precNamespace, false
	}
	return -1, false
}

// prefixPrec returns the precedence at which a prefix operator parses its
// operand.
func prefixPrec(k token.Kind) (int, bool) {
	switch k {
	case token.Minus, token.Plus:
		return precUnary, true
	case token.Bang:
		return precNot, true
	case token.Tilde:
		return precTilde + 1, true
	case token.Question:
		return precHelp + 1, true
	}
	return 0, false
}

// opName maps an operator token to the function it calls.
func opName(tok token.Token) string {
	switch tok.Kind {
	case token.Caret:
		return "^" // ** is an alias
	case token.RightAssign:
		return "<-"
	case token.RightSuperAssign:
		return "<<-"
	}
	return tok.Text
}

func isCompare(k token.Kind) bool {
	p, _ := binaryPrec(k)
	return p == precCompare
}
