// Package token defines the lexical tokens of the R language.
package token

// Kind represents the category of a source token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF
	Newline
	Comment

	Ident     // x, .x, `odd name`
	NumLit    // 1, 1.5, 1e3, 0x1F
	IntLit    // 1L
	ImagLit   // 2i
	StringLit // "a", 'b', r"(raw)"

	// keywords
	KwIf
	KwElse
	KwFor
	KwIn
	KwWhile
	KwRepeat
	KwBreak
	KwNext
	KwFunction
	KwTrue
	KwFalse
	KwNull
	KwNA
	KwNAInteger
	KwNAReal
	KwNACharacter
	KwInf
	KwNaN

	// operators and punctuation
	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Caret      // ^ or **
	Special    // %any%
	Lt         // <
	Gt         // >
	LtEq       // <=
	GtEq       // >=
	EqEq       // ==
	BangEq     // !=
	Bang       // !
	Amp        // &
	AndAnd     // &&
	Pipe       // |
	OrOr       // ||
	PipeGt     // |>
	Tilde      // ~
	Question   // ?
	Colon      // :
	ColonColon // ::
	Dollar     // $
	At         // @
	LeftAssign // <-
	SuperAssign
	RightAssign      // ->
	RightSuperAssign // ->>
	EqAssign         // =
	Backslash        // \ (lambda)
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	LBB // [[
	RBracket
	Comma
	Semicolon
)

var kindNames = [...]string{
	Invalid:          "invalid",
	EOF:              "end of input",
	Newline:          "end of line",
	Comment:          "comment",
	Ident:            "symbol",
	NumLit:           "numeric constant",
	IntLit:           "numeric constant",
	ImagLit:          "numeric constant",
	StringLit:        "string constant",
	KwIf:             "'if'",
	KwElse:           "'else'",
	KwFor:            "'for'",
	KwIn:             "'in'",
	KwWhile:          "'while'",
	KwRepeat:         "'repeat'",
	KwBreak:          "'break'",
	KwNext:           "'next'",
	KwFunction:       "'function'",
	KwTrue:           "numeric constant",
	KwFalse:          "numeric constant",
	KwNull:           "NULL const",
	KwNA:             "numeric constant",
	KwNAInteger:      "numeric constant",
	KwNAReal:         "numeric constant",
	KwNACharacter:    "numeric constant",
	KwInf:            "numeric constant",
	KwNaN:            "numeric constant",
	Plus:             "'+'",
	Minus:            "'-'",
	Star:             "'*'",
	Slash:            "'/'",
	Caret:            "'^'",
	Special:          "SPECIAL",
	Lt:               "'<'",
	Gt:               "'>'",
	LtEq:             "'<='",
	GtEq:             "'>='",
	EqEq:             "'=='",
	BangEq:           "'!='",
	Bang:             "'!'",
	Amp:              "'&'",
	AndAnd:           "'&&'",
	Pipe:             "'|'",
	OrOr:             "'||'",
	PipeGt:           "'|>'",
	Tilde:            "'~'",
	Question:         "'?'",
	Colon:            "':'",
	ColonColon:       "'::'",
	Dollar:           "'$'",
	At:               "'@'",
	LeftAssign:       "assignment",
	SuperAssign:      "assignment",
	RightAssign:      "assignment",
	RightSuperAssign: "assignment",
	EqAssign:         "'='",
	Backslash:        "'\\\\'",
	LParen:           "'('",
	RParen:           "')'",
	LBrace:           "'{'",
	RBrace:           "'}'",
	LBracket:         "'['",
	LBB:              "'[['",
	RBracket:         "']'",
	Comma:            "','",
	Semicolon:        "';'",
}

// String returns the description used in "unexpected ..." messages.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsConstant reports whether k starts a literal constant.
func (k Kind) IsConstant() bool {
	switch k {
	case NumLit, IntLit, ImagLit, StringLit, KwTrue, KwFalse, KwNull, KwNA,
		KwNAInteger, KwNAReal, KwNACharacter, KwInf, KwNaN:
		return true
	}
	return false
}
