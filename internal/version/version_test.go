package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLongIncludesMetadata(t *testing.T) {
	prevNoColor := color.NoColor
	color.NoColor = true
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		color.NoColor = prevNoColor
		GitCommit, BuildDate = origCommit, origDate
	}()

	GitCommit = "abc123def456789"
	BuildDate = "2024-01-15T10:30:00Z"
	got := Long()
	want := "erre " + Version + " (commit abc123def456, built 2024-01-15T10:30:00Z)"
	if got != want {
		t.Fatalf("Long() = %q, want %q", got, want)
	}

	GitCommit, BuildDate = "", ""
	if got := Long(); got != "erre "+Version {
		t.Fatalf("Long() without metadata = %q", got)
	}
}

func TestBannerMentionsQuit(t *testing.T) {
	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prevNoColor }()

	if b := Banner(); !strings.HasPrefix(b, "erre version ") || !strings.Contains(b, "q()") {
		t.Fatalf("unexpected banner %q", b)
	}
}
