package ui

import (
	"strings"
	"testing"
)

func TestProgressFollowsEvents(t *testing.T) {
	events := make(chan Event)
	m := NewProgressModel("erre run", []string{"a.R", "b.R"}, events).(*progressModel)

	steps := []struct {
		ev      Event
		percent float64
	}{
		{Event{File: "a.R", Status: StatusRunning}, 0.25},
		{Event{File: "a.R", Status: StatusRunning, Lines: 3}, 0.25},
		{Event{File: "b.R", Status: StatusRunning}, 0.5},
		{Event{File: "a.R", Status: StatusDone, Lines: 5}, 0.75},
		{Event{File: "zzz.R", Status: StatusDone}, 0.75},
		{Event{File: "b.R", Status: StatusFailed, Lines: 1, ExitStatus: 1}, 1},
	}
	for i, s := range steps {
		m.applyEvent(s.ev)
		if got := m.percent(); got != s.percent {
			t.Fatalf("step %d: percent %v, want %v", i, got, s.percent)
		}
	}

	m.done = true
	view := m.View()
	for _, want := range []string{"done: erre run (2/2)", "done a.R [5 lines]", "failed (1) b.R [1 lines]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.R", 20, "short.R"},
		{"a/very/long/path/script.R", 10, "a/very/..."},
		{"日本語のスクリプト.R", 9, "日本語..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
