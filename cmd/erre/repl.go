package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"erre/internal/console"
	"erre/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the console (the default command)",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

// runRepl starts one session reading the console when stdin and stdout
// are terminals and stdin as a batch script otherwise.
func runRepl(cmd *cobra.Command, args []string) error {
	setup, err := prepareSession(cmd)
	if err != nil {
		return err
	}
	defer setup.cleanup()

	opts := setup.opts
	opts.Interactive = isTerminal(os.Stdin) && isTerminal(os.Stdout)
	if opts.Interactive {
		rd, err := console.New(console.Options{
			HistoryFile: opts.Config.Rel(opts.Config.Repl.History),
		})
		if err != nil {
			return err
		}
		defer rd.Close()
		opts.Reader = rd
	}

	s := session.New(opts)
	stop := forwardInterrupts(s)
	defer stop()

	exitStatus = s.Start(cmd.Context())
	if setup.timings {
		printTimings(cmd.ErrOrStderr(), "", opts.Timer)
	}
	return nil
}

// forwardInterrupts turns SIGINT into a user break in the running
// evaluation. The console reader handles Ctrl-C itself while editing.
func forwardInterrupts(s *session.Session) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				s.Interp().Interrupt()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
