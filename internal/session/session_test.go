package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"erre/internal/config"
	"erre/internal/interp"
	"erre/internal/observ"
)

type run struct {
	status int
	stdout string
	stderr string
	timer  *observ.Timer
}

func start(t *testing.T, cfg config.Config, input string, mod func(*Options)) run {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := Options{
		Config: cfg,
		Reader: interp.NewBatchReader(strings.NewReader(input)),
		Stdout: &stdout,
		Stderr: &stderr,
		Timer:  observ.NewTimer(),
	}
	if mod != nil {
		mod(&opts)
	}
	status := New(opts).Start(context.Background())
	return run{status: status, stdout: stdout.String(), stderr: stderr.String(), timer: opts.Timer}
}

func testConfig(t *testing.T) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Memory.NSize = 20000
	cfg.Path = filepath.Join(dir, config.FileName)
	return cfg, dir
}

func writeProfile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
}

func TestStartupOrder(t *testing.T) {
	cfg, dir := testConfig(t)
	site := filepath.Join(dir, "site.R")
	writeProfile(t, site, `cat("site\n")`)
	cfg.Startup.SiteProfile = site
	writeProfile(t, filepath.Join(dir, ".errerc"), `
cat("user\n")
.First <- function() cat("first\n")
.Last <- function() cat("last\n")
`)
	r := start(t, cfg, "1 + 1\n", nil)
	if r.status != 0 {
		t.Fatalf("status = %d, stderr: %s", r.status, r.stderr)
	}
	want := "site\nuser\nfirst\n[1] 2\nlast\n"
	if r.stdout != want {
		t.Fatalf("stdout:\n got %q\nwant %q", r.stdout, want)
	}
	var names []string
	for _, p := range r.timer.Report().Phases {
		names = append(names, p.Name)
	}
	got := strings.Join(names, ",")
	if got != "base,options,image,site-profile,user-profile,.First,repl,.Last" {
		t.Fatalf("phases = %s", got)
	}
}

func TestNoInitSkipsUserProfile(t *testing.T) {
	cfg, dir := testConfig(t)
	writeProfile(t, filepath.Join(dir, ".errerc"), `cat("user\n")`)
	r := start(t, cfg, "", func(o *Options) { o.NoInit = true })
	if strings.Contains(r.stdout, "user") {
		t.Fatalf("user profile ran with NoInit: %q", r.stdout)
	}
}

func TestBatchErrorHalts(t *testing.T) {
	cfg, dir := testConfig(t)
	writeProfile(t, filepath.Join(dir, ".errerc"), `.Last <- function() cat("last\n")`)
	r := start(t, cfg, "cat(\"before\\n\")\nstop(\"boom\")\ncat(\"after\\n\")\n", nil)
	if r.status != 1 {
		t.Fatalf("status = %d", r.status)
	}
	if r.stdout != "before\n" {
		t.Fatalf("stdout = %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "boom") {
		t.Fatalf("stderr = %q", r.stderr)
	}
}

func TestInteractiveErrorContinues(t *testing.T) {
	cfg, _ := testConfig(t)
	r := start(t, cfg, "stop(\"boom\")\ncat(\"after\\n\")\n", func(o *Options) {
		o.Interactive = true
		o.Quiet = true
	})
	if r.status != 0 || !strings.Contains(r.stdout, "after") {
		t.Fatalf("status %d stdout %q", r.status, r.stdout)
	}
}

func TestQuitStatusAndLast(t *testing.T) {
	cfg, dir := testConfig(t)
	writeProfile(t, filepath.Join(dir, ".errerc"), `.Last <- function() cat("last\n")`)
	cases := []struct {
		input    string
		status   int
		wantLast bool
	}{
		{"q(status = 3)\n", 3, true},
		{"q(\"no\", 2, FALSE)\n", 2, false},
	}
	for _, tc := range cases {
		r := start(t, cfg, tc.input+"cat(\"unreached\\n\")\n", nil)
		if r.status != tc.status {
			t.Errorf("%q: status = %d", tc.input, r.status)
		}
		if strings.Contains(r.stdout, "unreached") {
			t.Errorf("%q: input after q() was evaluated", tc.input)
		}
		if got := strings.Contains(r.stdout, "last"); got != tc.wantLast {
			t.Errorf("%q: .Last ran = %v", tc.input, got)
		}
	}
}

func TestSaveAndRestoreImage(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Startup.Save = "yes"
	start(t, cfg, "kept <- c(10L, 20L)\n", nil)
	if _, err := os.Stat(filepath.Join(dir, ".erre.image")); err != nil {
		t.Fatalf("image not written: %v", err)
	}
	cfg.Startup.Save = "no"
	r := start(t, cfg, "kept\n", nil)
	if r.stdout != "[1] 10 20\n" {
		t.Fatalf("restored value printed %q, stderr %q", r.stdout, r.stderr)
	}
	r = start(t, cfg, "exists(\"kept\")\n", func(o *Options) { o.NoInit = true })
	if r.stdout != "[1] FALSE\n" {
		t.Fatalf("NoInit restored the image: %q", r.stdout)
	}
}

func TestSaveOverride(t *testing.T) {
	cfg, dir := testConfig(t)
	start(t, cfg, "a <- 1\n", func(o *Options) { o.Save = "yes" })
	if _, err := os.Stat(filepath.Join(dir, ".erre.image")); err != nil {
		t.Fatalf("--save did not write the image: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, ".erre.image")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cfg.Startup.Save = "yes"
	start(t, cfg, "q(\"no\")\n", nil)
	if _, err := os.Stat(filepath.Join(dir, ".erre.image")); err == nil {
		t.Fatalf("q(\"no\") still saved the image")
	}
}
