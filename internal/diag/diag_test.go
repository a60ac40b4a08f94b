package diag

import (
	"strings"
	"testing"

	"erre/internal/source"
)

func TestBagLimitAndOrder(t *testing.T) {
	b := NewBag(2)
	b.Report(SynUnexpectedToken, SevError, source.Span{Start: 9, End: 10}, "late")
	b.Report(LexBadNumber, SevError, source.Span{Start: 1, End: 3}, "early")
	if b.Add(Diagnostic{Message: "dropped"}) {
		t.Fatalf("bag accepted an item past its limit")
	}
	d, ok := b.First()
	if !ok || d.Message != "early" {
		t.Fatalf("First = %+v, %v", d, ok)
	}
}

func TestCodeIDs(t *testing.T) {
	if got := LexBadNumber.ID(); got != "LEX1004" {
		t.Fatalf("ID = %q", got)
	}
	if got := SynUnexpectedEOF.String(); got != "SynUnexpectedEOF" {
		t.Fatalf("String = %q", got)
	}
	if !SynUnclosedBrace.Incomplete() || SynUnexpectedToken.Incomplete() {
		t.Fatalf("Incomplete classification is wrong")
	}
}

func TestFormatWithPosition(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("script.R", []byte("x <- 1\nx y\n"), 0)
	d := Diagnostic{Severity: SevError, Code: SynUnexpectedToken, Message: `unexpected symbol in "x y"`,
		Primary: source.Span{File: id, Start: 9, End: 10}}
	got := Format(fs, d, true)
	if !strings.HasPrefix(got, "script.R:2:3: Error: unexpected symbol") {
		t.Fatalf("Format = %q", got)
	}
	if Format(fs, d, false) != `Error: unexpected symbol in "x y"` {
		t.Fatalf("Format without position = %q", Format(fs, d, false))
	}
}
