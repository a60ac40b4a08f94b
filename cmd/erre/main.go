package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"erre/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "erre",
	Short: "An interactive statistical language interpreter",
	Long: `erre evaluates R-style expressions at a console or from files.
Without a subcommand it starts the console.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRepl,
}

// main registers subcommands and persistent flags, then executes the root
// command. The process exit status is the session's status.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to erre.toml (default: search upward from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress the startup banner")
	pf.Bool("timings", false, "print startup and shutdown phase timings")

	pf.Int("nsize", 0, "cons cells (overrides [memory].nsize)")
	pf.Int64("vsize", 0, "vector heap bytes (overrides [memory].vsize)")
	pf.Int("ppsize", 0, "protection stack entries (overrides [memory].ppsize)")
	pf.Int("expressions", 0, "evaluation depth limit (overrides [memory].expressions)")
	pf.Bool("no-init", false, "skip the workspace image and the user profile")
	pf.Bool("save", false, "save the workspace image on exit")
	pf.Bool("no-save", false, "do not save the workspace image on exit")
	pf.Bool("heap-trace", false, "emit a trace event per cell allocation (needs --trace-level debug)")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd, err)
		os.Exit(1)
	}
	os.Exit(exitStatus)
}

// exitStatus is set by the command that ran a session.
var exitStatus int

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
