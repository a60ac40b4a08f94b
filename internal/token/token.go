package token

import "erre/internal/source"

// Token is one lexeme. Text is the exact source slice; Value holds the
// decoded payload of string constants and quoted identifiers.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string
	Value string
}

var keywords = map[string]Kind{
	"if":            KwIf,
	"else":          KwElse,
	"for":           KwFor,
	"in":            KwIn,
	"while":         KwWhile,
	"repeat":        KwRepeat,
	"break":         KwBreak,
	"next":          KwNext,
	"function":      KwFunction,
	"TRUE":          KwTrue,
	"FALSE":         KwFalse,
	"NULL":          KwNull,
	"NA":            KwNA,
	"NA_integer_":   KwNAInteger,
	"NA_real_":      KwNAReal,
	"NA_character_": KwNACharacter,
	"Inf":           KwInf,
	"NaN":           KwNaN,
}

// LookupKeyword maps a reserved word to its kind. Keywords are case
// sensitive: "True" is an ordinary symbol.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}
