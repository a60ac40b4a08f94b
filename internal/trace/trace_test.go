package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeSession, false},
		{LevelError, ScopeSession, false},
		{LevelPhase, ScopeSession, true},
		{LevelPhase, ScopeToplevel, false},
		{LevelDetail, ScopeHeap, true},
		{LevelDetail, ScopeCall, false},
		{LevelDebug, ScopeCall, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamTracerWritesSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	span := Begin(tr, ScopeToplevel, "toplevel", 0)
	span.WithExtra("visible", "true").End("1 + 2")
	Begin(tr, ScopeCall, "f", span.ID()).End("")

	out := buf.String()
	if !strings.Contains(out, "→ toplevel") || !strings.Contains(out, "← toplevel (1 + 2) {visible=true}") {
		t.Fatalf("unexpected stream output:\n%s", out)
	}
	if strings.Contains(out, " f") {
		t.Fatalf("call scope should be filtered at detail level:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeCall, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("event %d = %q, want %q", i, snap[i].Name, want)
		}
	}
}

func TestNewRespectsMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeSession, "base", "")
	if Ring(tr) == nil || len(Ring(tr).Snapshot()) != 1 {
		t.Fatalf("ring sink did not receive the event")
	}
	if !strings.Contains(buf.String(), "base") {
		t.Fatalf("stream sink did not receive the event: %q", buf.String())
	}
	if off, _ := New(Config{Level: LevelOff}); off.Enabled() {
		t.Fatalf("LevelOff must produce a disabled tracer")
	}
}

func TestContextPropagation(t *testing.T) {
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != r {
		t.Fatalf("FromContext lost the tracer")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should yield Nop")
	}
	span := Begin(r, ScopeSession, "startup", 0)
	if CurrentSpan(WithSpan(ctx, span)) != span.ID() {
		t.Fatalf("span id not propagated")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
}
