package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"erre/internal/interp"
	"erre/internal/observ"
	"erre/internal/ui"
)

func TestReadColorMode(t *testing.T) {
	cases := map[string]colorMode{"": colorModeAuto, "AUTO": colorModeAuto, "on": colorModeOn, " off ": colorModeOff}
	for in, want := range cases {
		got, err := readColorMode(in)
		if err != nil || got != want {
			t.Errorf("readColorMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readColorMode("sometimes"); err == nil {
		t.Fatalf("expected error for bad mode")
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", GoVersion: "go1.25.1"}
	if err := renderVersionJSON(&buf, info, versionOptions{format: "json", showHash: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "erre" || payload.Version != "1.2.3" || payload.GitCommit != "unknown" || payload.BuildDate != "" {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Limits != nil {
		t.Fatalf("limits shown without --limits")
	}

	buf.Reset()
	info = collectVersionInfo()
	if err := renderVersionJSON(&buf, info, versionOptions{format: "json", limits: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	payload = versionPayload{}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Limits == nil || payload.Limits.NSize != info.Memory.NSize || payload.Limits.Expressions != info.Memory.Expressions {
		t.Fatalf("limits = %+v", payload.Limits)
	}
	if info.Memory.PPSize == 0 && payload.Limits.PPSize != interp.PPSizeFor(info.Memory.Expressions) {
		t.Fatalf("derived ppsize = %d", payload.Limits.PPSize)
	}
}

func TestPrintTimingsLabelsEachSession(t *testing.T) {
	timer := observ.NewTimer()
	timer.End(timer.Begin("base"), "")
	var buf bytes.Buffer
	printTimings(&buf, "a.R", timer)
	out := buf.String()
	if !strings.HasPrefix(out, "a.R:\ntimings:\n") || !strings.Contains(out, "base") {
		t.Fatalf("timings output %q", out)
	}
	buf.Reset()
	printTimings(&buf, "", nil)
	if buf.Len() != 0 {
		t.Fatalf("nil timer printed %q", buf.String())
	}
}

func TestCountingReaderReportsLines(t *testing.T) {
	events := make(chan ui.Event, 8)
	r := &countingReader{r: interp.NewBatchReader(strings.NewReader("1\n2\n3")), file: "x.R", sink: events}
	for {
		if _, err := r.ReadLine(""); err != nil {
			break
		}
	}
	close(events)
	var last ui.Event
	n := 0
	for ev := range events {
		last = ev
		n++
	}
	if n != 3 || last.Lines != 3 || last.File != "x.R" || last.Status != ui.StatusRunning {
		t.Fatalf("got %d events, last %+v", n, last)
	}

	quiet := &countingReader{r: interp.NewBatchReader(strings.NewReader("1\n")), file: "y.R"}
	if _, err := quiet.ReadLine(""); err != nil || quiet.lines != 1 {
		t.Fatalf("nil sink: lines %d, err %v", quiet.lines, err)
	}
}

func TestUseProgress(t *testing.T) {
	var buf bytes.Buffer
	cases := []struct {
		mode  colorMode
		files int
		want  bool
	}{
		{colorModeOn, 1, true},
		{colorModeOff, 5, false},
		{colorModeAuto, 5, false}, // not a terminal
	}
	for _, tc := range cases {
		if got := useProgress(tc.mode, tc.files, &buf); got != tc.want {
			t.Errorf("useProgress(%s, %d) = %v", tc.mode, tc.files, got)
		}
	}
}
