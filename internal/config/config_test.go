package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Fatalf("Find = %q", path)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
[memory]
nsize = 5000

[repl]
prompt = "R> "

[startup]
save = "yes"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Memory.NSize != 5000 {
		t.Errorf("nsize = %d", cfg.Memory.NSize)
	}
	if cfg.Memory.VSize != def.Memory.VSize || cfg.Memory.Expressions != def.Memory.Expressions {
		t.Errorf("unset memory keys lost their defaults: %+v", cfg.Memory)
	}
	if cfg.Repl.Prompt != "R> " || cfg.Repl.Continue != "+ " {
		t.Errorf("repl = %+v", cfg.Repl)
	}
	if cfg.Startup.Save != "yes" || cfg.Startup.Image != ".erre.image" {
		t.Errorf("startup = %+v", cfg.Startup)
	}
	if got := cfg.Rel(cfg.Startup.Image); got != filepath.Join(dir, ".erre.image") {
		t.Errorf("Rel = %q", got)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[memory]\nheap = 1\n", "unknown keys: memory.heap"},
		{"bad save", "[startup]\nsave = \"maybe\"\n", "[startup].save"},
		{"negative", "[memory]\nppsize = -1\n", "[memory].ppsize"},
		{"syntax", "[memory\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tc.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestResolveWithoutFileGivesDefaults(t *testing.T) {
	cfg, err := Resolve("", t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Path != "" || cfg.Memory != Default().Memory {
		t.Fatalf("Resolve = %+v", cfg)
	}
}
