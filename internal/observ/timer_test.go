package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("base")
	tm.End(a, "212 forms")
	b := tm.Begin("repl")
	tm.End(b, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "base" || r.Phases[0].Note != "212 forms" {
		t.Fatalf("unexpected report: %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "base") || !strings.Contains(s, "# 212 forms") || !strings.Contains(s, "total") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer produced phases")
	}
}
