package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"erre/internal/interp"
	"erre/internal/observ"
	"erre/internal/session"
	"erre/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.R>...",
	Short: "Evaluate script files in batch mode",
	Long: `Evaluate each file in its own interpreter, stopping a file at its
first error. With several files and --jobs > 1 they run concurrently;
output is still printed file by file in argument order, after a live
progress view on terminals.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScripts,
}

func init() {
	runCmd.Flags().Int("jobs", 0, "max files evaluated in parallel (0=auto)")
	runCmd.Flags().String("progress", "auto", "show a live progress view for several files (auto|on|off)")
}

type scriptResult struct {
	path   string
	status int
	stdout bytes.Buffer
	stderr bytes.Buffer
	timer  *observ.Timer
	sink   progressSink
}

func runScripts(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	setup, err := prepareSession(cmd)
	if err != nil {
		return err
	}
	defer setup.cleanup()

	// a single file streams straight to the terminal
	if len(args) == 1 {
		r := &scriptResult{path: args[0]}
		if err := runScript(cmd, setup, r, os.Stdout, os.Stderr); err != nil {
			return err
		}
		exitStatus = r.status
		if setup.timings {
			printTimings(cmd.ErrOrStderr(), "", r.timer)
		}
		return nil
	}

	progressFlag, err := cmd.Flags().GetString("progress")
	if err != nil {
		return fmt.Errorf("failed to get progress flag: %w", err)
	}
	mode, err := readColorMode(progressFlag)
	if err != nil {
		return fmt.Errorf("invalid --progress value %q (expected auto|on|off)", progressFlag)
	}

	results := make([]*scriptResult, len(args))
	for i, path := range args {
		results[i] = &scriptResult{path: path}
	}
	work := func(sink progressSink) error {
		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(min(jobs, len(args)))
		for _, r := range results {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				r.sink = sink
				return runScript(cmd, setup, r, &r.stdout, &r.stderr)
			})
		}
		return g.Wait()
	}
	if useProgress(mode, len(args), cmd.ErrOrStderr()) {
		err = runWithProgress("erre run", args, work)
	} else {
		err = work(nil)
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		if _, err := io.Copy(cmd.OutOrStdout(), &r.stdout); err != nil {
			return err
		}
		if _, err := io.Copy(cmd.ErrOrStderr(), &r.stderr); err != nil {
			return err
		}
		if setup.timings {
			printTimings(cmd.ErrOrStderr(), r.path, r.timer)
		}
		if r.status != 0 && exitStatus == 0 {
			exitStatus = r.status
		}
	}
	return nil
}

// runScript evaluates one file in a fresh session. Scripts never save the
// workspace image.
func runScript(cmd *cobra.Command, setup *sessionSetup, r *scriptResult, stdout, stderr io.Writer) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("cannot open script: %w", err)
	}
	defer f.Close()

	opts := setup.opts
	opts.Interactive = false
	opts.Save = "no"
	reader := &countingReader{r: interp.NewBatchReader(f), file: r.path, sink: r.sink}
	opts.Reader = reader
	opts.Stdout = stdout
	opts.Stderr = stderr
	if setup.timings {
		r.timer = observ.NewTimer()
	}
	opts.Timer = r.timer
	r.sink.send(ui.Event{File: r.path, Status: ui.StatusRunning})
	r.status = session.New(opts).Start(cmd.Context())
	final := ui.StatusDone
	if r.status != 0 {
		final = ui.StatusFailed
	}
	r.sink.send(ui.Event{File: r.path, Status: final, Lines: reader.lines, ExitStatus: r.status})
	return nil
}
