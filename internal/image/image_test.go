package image

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"erre/internal/interp"
)

func newInterp(t *testing.T) (*interp.Interp, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	in := interp.New(interp.Options{NSize: 20000, Stdout: &out, Stderr: &out})
	if err := in.LoadBase(); err != nil {
		t.Fatalf("LoadBase: %v", err)
	}
	return in, &out
}

func eval(t *testing.T, in *interp.Interp, out *bytes.Buffer, src string) string {
	t.Helper()
	out.Reset()
	if err := in.EvalString("<test>", src); err != nil {
		t.Fatalf("eval %q: %v\noutput: %s", src, err, out.String())
	}
	return out.String()
}

func TestRoundTripRestoresGlobals(t *testing.T) {
	src, srcOut := newInterp(t)
	eval(t, src, srcOut, `
x <- c(a = 1.5, b = NA, c = 3)
s <- c("one", NA, "three")
l <- list(n = 1:3, f = TRUE)
make <- function() { count <- 0; function() { count <<- count + 1; count } }
counter <- make()
counter()
sq <- function(v) v^2
p <- sum
`)
	var buf bytes.Buffer
	if err := Save(&buf, src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst, out := newInterp(t)
	if err := Load(&buf, dst); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := []struct {
		expr string
		want string
	}{
		{"x", "  a   b   c \n1.5  NA 3.0 \n"},
		{"s", "[1] \"one\"   NA      \"three\"\n"},
		{"l$n", "[1] 1 2 3\n"},
		{"counter()", "[1] 2\n"},
		{"sq(3)", "[1] 9\n"},
		{"p(1, 2)", "[1] 3\n"},
		{"ls()", "[1] \"counter\" \"l\"       \"make\"    \"p\"       \"s\"       \"sq\"      \"x\"      \n"},
	}
	for _, tc := range cases {
		if got := eval(t, dst, out, tc.expr); got != tc.want {
			t.Errorf("%s:\n got %q\nwant %q", tc.expr, got, tc.want)
		}
	}
}

func TestSharedEnvironmentStaysShared(t *testing.T) {
	src, srcOut := newInterp(t)
	eval(t, src, srcOut, `
mk <- function() { v <- 0; list(get = function() v, set = function(x) v <<- x) }
acc <- mk()
`)
	var buf bytes.Buffer
	if err := Save(&buf, src); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var doc Document
	if err := msgpack.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.Envs) != 1 {
		t.Fatalf("environment table has %d entries, want 1", len(doc.Envs))
	}

	dst, out := newInterp(t)
	if err := Load(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatalf("Load: %v", err)
	}
	eval(t, dst, out, "acc$set(42)")
	if got := eval(t, dst, out, "acc$get()"); got != "[1] 42\n" {
		t.Fatalf("acc$get() = %q", got)
	}
}

func TestLoadRejectsForeignData(t *testing.T) {
	in, _ := newInterp(t)
	bad, _ := msgpack.Marshal(&Document{Magic: "NOTANIMG", Schema: schemaVersion})
	if err := Load(bytes.NewReader(bad), in); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("bad magic: %v", err)
	}
	old, _ := msgpack.Marshal(&Document{Magic: Magic, Schema: schemaVersion + 1})
	if err := Load(bytes.NewReader(old), in); !errors.Is(err, ErrBadSchema) {
		t.Fatalf("bad schema: %v", err)
	}
	dangling, _ := msgpack.Marshal(&Document{
		Magic:   Magic,
		Schema:  schemaVersion,
		Globals: []Binding{{Name: "e", Value: &Node{Kind: uint8(interp.EnvSXP), Env: 3}}},
	})
	if err := Load(bytes.NewReader(dangling), in); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("dangling env: %v", err)
	}
	unknown, _ := msgpack.Marshal(&Document{
		Magic:   Magic,
		Schema:  schemaVersion,
		Globals: []Binding{{Name: "f", Value: &Node{Kind: uint8(interp.BuiltinSXP), Name: "no.such.prim"}}},
	})
	if err := Load(bytes.NewReader(unknown), in); err == nil || !strings.Contains(err.Error(), "unknown primitive") {
		t.Fatalf("unknown primitive: %v", err)
	}
}

func TestSaveFileReplacesAtomically(t *testing.T) {
	in, out := newInterp(t)
	eval(t, in, out, "keep <- 1:3")
	path := filepath.Join(t.TempDir(), "ws", ".erre.image")
	if err := SaveFile(path, in); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	dst, dstOut := newInterp(t)
	ok, err := LoadFile(path, dst)
	if err != nil || !ok {
		t.Fatalf("LoadFile: ok=%v err=%v", ok, err)
	}
	if got := eval(t, dst, dstOut, "keep"); got != "[1] 1 2 3\n" {
		t.Fatalf("keep = %q", got)
	}
	ok, err = LoadFile(filepath.Join(t.TempDir(), "missing"), dst)
	if ok || err != nil {
		t.Fatalf("missing image: ok=%v err=%v", ok, err)
	}
}
