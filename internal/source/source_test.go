package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPositionAndLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("<console>", []byte("x <- 1\nf(x,\n  y)\n"))
	f := fs.Get(id)

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{5, LineCol{1, 6}},
		{6, LineCol{1, 7}}, // the newline itself
		{7, LineCol{2, 1}},
		{14, LineCol{3, 3}},
	}
	for _, tc := range cases {
		if got := f.Position(tc.off); got != tc.want {
			t.Errorf("Position(%d) = %v, want %v", tc.off, got, tc.want)
		}
	}
	if got := f.Line(2); got != "f(x," {
		t.Fatalf("Line(2) = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("Line(4) = %q, want empty", got)
	}
	if got := f.Line(9); got != "" {
		t.Fatalf("Line(9) = %q, want empty", got)
	}
	start, end := fs.Resolve(Span{File: id, Start: 7, End: 11})
	if start != (LineCol{2, 1}) || end != (LineCol{2, 5}) {
		t.Fatalf("Resolve = %v %v", start, end)
	}
}

func TestLoadNormalises(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.R")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFx <- 1\r\ny <- 2\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "x <- 1\ny <- 2\n" {
		t.Fatalf("content not normalised: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if got, ok := fs.Lookup(path); !ok || got.ID != id {
		t.Fatalf("Lookup failed")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file Cover changed the span: %v", got)
	}
}
