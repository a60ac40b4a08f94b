// Package diag carries lexer and parser diagnostics.
package diag

import (
	"fmt"
	"sort"

	"erre/internal/source"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

type Code uint16

const (
	UnknownCode Code = 0

	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1004
	LexBadEscape          Code = 1006
	LexUnterminatedIdent  Code = 1007

	SynUnexpectedToken  Code = 2001
	SynUnexpectedEOF    Code = 2002
	SynUnclosedParen    Code = 2006
	SynUnclosedBrace    Code = 2007
	SynUnclosedBracket  Code = 2008
	SynExpectExpression Code = 2203
	SynBadAssignTarget  Code = 2210
	SynBadFormal        Code = 2211
)

var codeNames = map[Code]string{
	UnknownCode:           "UNKNOWN",
	LexUnknownChar:        "LexUnknownChar",
	LexUnterminatedString: "LexUnterminatedString",
	LexBadNumber:          "LexBadNumber",
	LexBadEscape:          "LexBadEscape",
	LexUnterminatedIdent:  "LexUnterminatedIdent",
	SynUnexpectedToken:    "SynUnexpectedToken",
	SynUnexpectedEOF:      "SynUnexpectedEOF",
	SynUnclosedParen:      "SynUnclosedParen",
	SynUnclosedBrace:      "SynUnclosedBrace",
	SynUnclosedBracket:    "SynUnclosedBracket",
	SynExpectExpression:   "SynExpectExpression",
	SynBadAssignTarget:    "SynBadAssignTarget",
	SynBadFormal:          "SynBadFormal",
}

// ID renders the code as "LEX1001" / "SYN2001".
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%04d", int(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%04d", int(c))
	}
	return fmt.Sprintf("E%04d", int(c))
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return c.ID()
}

// Incomplete reports whether the code means the input stopped too early.
// The console keeps reading continuation lines for these.
func (c Code) Incomplete() bool {
	switch c {
	case SynUnexpectedEOF, LexUnterminatedString, LexUnterminatedIdent,
		SynUnclosedParen, SynUnclosedBrace, SynUnclosedBracket:
		return true
	}
	return false
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
}

// Reporter receives diagnostics from the lexer and parser.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string)
}

// Bag collects diagnostics up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, min(max, 16)), max: max}
}

// Add stores d and reports false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Report(code Code, sev Severity, primary source.Span, msg string) {
	b.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary})
}

func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the internal slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// First returns the earliest error, if any.
func (b *Bag) First() (Diagnostic, bool) {
	b.Sort()
	for _, d := range b.items {
		if d.Severity >= SevError {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// Sort orders by file, start offset, then descending severity.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		return di.Severity > dj.Severity
	})
}

// Format renders d the way the console prints parse errors:
//
//	Error: unexpected symbol in "x y"
//	<file>:1:3
func Format(fs *source.FileSet, d Diagnostic, withPos bool) string {
	msg := "Error: " + d.Message
	if !withPos || fs == nil {
		return msg
	}
	f := fs.Get(d.Primary.File)
	if f.Flags&source.FileVirtual != 0 {
		return msg
	}
	pos := f.Position(d.Primary.Start)
	return fmt.Sprintf("%s:%s: %s", f.Path, pos, msg)
}
