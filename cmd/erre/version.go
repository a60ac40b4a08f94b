package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"erre/internal/config"
	"erre/internal/interp"
	"erre/internal/version"
)

type versionInfo struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Memory    config.MemoryConfig
}

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
	limits   bool
}

// versionPayload is the --format json document.
type versionPayload struct {
	Tool      string         `json:"tool"`
	Version   string         `json:"version"`
	GoVersion string         `json:"go_version"`
	GitCommit string         `json:"git_commit,omitempty"`
	BuildDate string         `json:"build_date,omitempty"`
	Limits    *versionLimits `json:"limits,omitempty"`
}

type versionLimits struct {
	NSize       int   `json:"nsize"`
	VSize       int64 `json:"vsize"`
	PPSize      int   `json:"ppsize"`
	Expressions int   `json:"expressions"`
}

var versionFlags versionOptions

func init() {
	f := versionCmd.Flags()
	f.BoolVar(&versionFlags.showHash, "hash", false, "include git commit hash")
	f.BoolVar(&versionFlags.showDate, "date", false, "include build timestamp")
	f.BoolVar(&versionFlags.limits, "limits", false, "show the default memory limits")
	f.Bool("full", false, "show all of the above")
	f.StringVar(&versionFlags.format, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show erre build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := versionFlags
		opts.format = strings.ToLower(opts.format)
		if full, _ := cmd.Flags().GetBool("full"); full {
			opts.showHash, opts.showDate, opts.limits = true, true, true
		}
		info := collectVersionInfo()
		switch opts.format {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), info, opts)
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), info, opts)
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	},
}

func collectVersionInfo() versionInfo {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	return versionInfo{
		Version:   v,
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		GoVersion: runtime.Version(),
		Memory:    config.Default().Memory,
	}
}

func renderVersionPretty(out io.Writer, info versionInfo, opts versionOptions) {
	if opts.showHash || opts.showDate {
		fmt.Fprintln(out, version.Long())
	} else {
		fmt.Fprintf(out, "erre %s\n", info.Version)
	}
	fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", orUnknown(info.GitCommit))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", orUnknown(info.BuildDate))
	}
	if opts.limits {
		m := effectiveLimits(info.Memory)
		fmt.Fprintf(out, "limits: %d cons cells, %d vector bytes, %d protected, depth %d\n",
			m.NSize, m.VSize, m.PPSize, m.Expressions)
	}
}

func renderVersionJSON(out io.Writer, info versionInfo, opts versionOptions) error {
	payload := versionPayload{
		Tool:      "erre",
		Version:   info.Version,
		GoVersion: info.GoVersion,
	}
	if opts.showHash {
		payload.GitCommit = orUnknown(info.GitCommit)
	}
	if opts.showDate {
		payload.BuildDate = orUnknown(info.BuildDate)
	}
	if opts.limits {
		m := effectiveLimits(info.Memory)
		payload.Limits = &versionLimits{NSize: m.NSize, VSize: m.VSize, PPSize: m.PPSize, Expressions: m.Expressions}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// effectiveLimits fills in the protection stack size an unset ppsize
// gets at startup.
func effectiveLimits(m config.MemoryConfig) config.MemoryConfig {
	if m.PPSize == 0 {
		m.PPSize = interp.PPSizeFor(m.Expressions)
	}
	return m
}
