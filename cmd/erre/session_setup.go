package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"erre/internal/config"
	"erre/internal/observ"
	"erre/internal/session"
)

// sessionSetup is what every session-running command derives from the
// persistent flags.
type sessionSetup struct {
	opts    session.Options
	timings bool
	cleanup func()
}

// prepareSession resolves the configuration, applies flag overrides and
// starts tracing and profiling. The caller must run cleanup.
func prepareSession(cmd *cobra.Command) (*sessionSetup, error) {
	pf := cmd.Root().PersistentFlags()

	configPath, err := pf.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Resolve(configPath, wd)
	if err != nil {
		return nil, err
	}
	if err := applyMemoryFlags(cmd, &cfg); err != nil {
		return nil, err
	}

	save, err := saveOverride(cmd)
	if err != nil {
		return nil, err
	}
	noInit, err := pf.GetBool("no-init")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-init flag: %w", err)
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := pf.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	heapTrace, err := pf.GetBool("heap-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get heap-trace flag: %w", err)
	}
	colorFlag, err := pf.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(colorFlag)
	if err != nil {
		return nil, err
	}

	tracer, stopTrace, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		stopTrace()
		return nil, err
	}

	setup := &sessionSetup{
		opts: session.Options{
			Config:     cfg,
			NoInit:     noInit,
			Save:       save,
			Quiet:      quiet,
			Tracer:     tracer,
			ErrorStyle: applyColor(mode),
			HeapTrace:  heapTrace,
		},
		timings: timings,
		cleanup: func() {
			stopProf()
			stopTrace()
		},
	}
	if timings {
		setup.opts.Timer = observ.NewTimer()
	}
	return setup, nil
}

func applyMemoryFlags(cmd *cobra.Command, cfg *config.Config) error {
	pf := cmd.Root().PersistentFlags()
	ints := []struct {
		name string
		dst  *int
	}{
		{"nsize", &cfg.Memory.NSize},
		{"ppsize", &cfg.Memory.PPSize},
		{"expressions", &cfg.Memory.Expressions},
	}
	for _, f := range ints {
		if !pf.Changed(f.name) {
			continue
		}
		v, err := pf.GetInt(f.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	if pf.Changed("vsize") {
		v, err := pf.GetInt64("vsize")
		if err != nil {
			return fmt.Errorf("failed to get vsize flag: %w", err)
		}
		cfg.Memory.VSize = v
	}
	return cfg.Validate()
}

func saveOverride(cmd *cobra.Command) (string, error) {
	pf := cmd.Root().PersistentFlags()
	save, err := pf.GetBool("save")
	if err != nil {
		return "", fmt.Errorf("failed to get save flag: %w", err)
	}
	noSave, err := pf.GetBool("no-save")
	if err != nil {
		return "", fmt.Errorf("failed to get no-save flag: %w", err)
	}
	switch {
	case save && noSave:
		return "", errors.New("--save and --no-save are mutually exclusive")
	case save:
		return "yes", nil
	case noSave:
		return "no", nil
	}
	return "", nil
}
