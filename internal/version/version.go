// Package version holds build metadata for the erre binary.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Overridden at build time via -ldflags "-X erre/internal/version.Version=...".
var (
	Version   = "0.3.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	nameColor  = color.New(color.FgCyan, color.Bold)
	numColor   = color.New(color.FgYellow, color.Bold)
	extraColor = color.New(color.Faint)
)

// Banner returns the greeting printed when the console REPL starts.
func Banner() string {
	return fmt.Sprintf("%s version %s\nType 'q()' to quit.\n", nameColor.Sprint("erre"), numColor.Sprint(Version))
}

// Long returns version plus whatever build metadata is known.
func Long() string {
	var sb strings.Builder
	sb.WriteString("erre ")
	sb.WriteString(numColor.Sprint(Version))
	var extra []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		extra = append(extra, "commit "+commit)
	}
	if BuildDate != "" {
		extra = append(extra, "built "+BuildDate)
	}
	if len(extra) > 0 {
		sb.WriteString(" ")
		sb.WriteString(extraColor.Sprint("(" + strings.Join(extra, ", ") + ")"))
	}
	return sb.String()
}
