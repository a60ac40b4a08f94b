// Package config reads erre.toml, the per-directory interpreter settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name searched for from the working directory upward.
const FileName = "erre.toml"

// Config is the decoded file merged over the defaults.
type Config struct {
	Memory  MemoryConfig  `toml:"memory"`
	Repl    ReplConfig    `toml:"repl"`
	Startup StartupConfig `toml:"startup"`

	// Path is the file the settings came from; empty for defaults.
	Path string `toml:"-"`
}

type MemoryConfig struct {
	NSize       int   `toml:"nsize"`
	VSize       int64 `toml:"vsize"`
	PPSize      int   `toml:"ppsize"`
	Expressions int   `toml:"expressions"`
}

type ReplConfig struct {
	Prompt   string `toml:"prompt"`
	Continue string `toml:"continue"`
	History  string `toml:"history"`
}

type StartupConfig struct {
	SiteProfile string `toml:"site_profile"`
	UserProfile string `toml:"user_profile"`
	Image       string `toml:"image"`
	Save        string `toml:"save"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Memory: MemoryConfig{
			NSize:       350000,
			VSize:       8 << 20,
			PPSize:      0, // derived from expressions
			Expressions: 5000,
		},
		Repl: ReplConfig{
			Prompt:   "> ",
			Continue: "+ ",
			History:  ".erre_history",
		},
		Startup: StartupConfig{
			UserProfile: ".errerc",
			Image:       ".erre.image",
			Save:        "no",
		},
	}
}

// Find looks for erre.toml in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults. Keys the file leaves out keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest erre.toml above
// dir, otherwise the defaults.
func Resolve(explicit, dir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Memory.NSize < 0:
		return errors.New("[memory].nsize must not be negative")
	case c.Memory.VSize < 0:
		return errors.New("[memory].vsize must not be negative")
	case c.Memory.PPSize < 0:
		return errors.New("[memory].ppsize must not be negative")
	case c.Memory.Expressions < 0:
		return errors.New("[memory].expressions must not be negative")
	case c.Memory.Expressions > 500000:
		return errors.New("[memory].expressions must be at most 500000")
	}
	switch c.Startup.Save {
	case "", "yes", "no":
	default:
		return fmt.Errorf("[startup].save must be \"yes\" or \"no\", got %q", c.Startup.Save)
	}
	return nil
}

// Rel resolves a configured path against the directory of the file it
// came from. Absolute and empty paths are returned unchanged.
func (c *Config) Rel(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}
