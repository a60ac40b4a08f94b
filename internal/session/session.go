// Package session runs an interpreter from startup to shutdown: base
// library, workspace image, profiles, the .First and .Last hooks, the
// read-eval-print loop and the final image save.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"erre/internal/config"
	"erre/internal/image"
	"erre/internal/interp"
	"erre/internal/observ"
	"erre/internal/trace"
	"erre/internal/version"
)

// Options configures one session.
type Options struct {
	Config config.Config

	// Interactive selects console behaviour: prompts, keep.source and
	// errors that return to the prompt instead of halting.
	Interactive bool
	// NoInit skips the workspace image and the user profile.
	NoInit bool
	// Save overrides [startup].save when set: "yes" or "no".
	Save  string
	Quiet bool

	// Reader supplies input. Nil means a batch reader over Stdin.
	Reader interp.LineReader
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Tracer     trace.Tracer
	Timer      *observ.Timer
	ErrorStyle func(string) string
	HeapTrace  bool
}

// Session owns one interpreter.
type Session struct {
	opts Options
	in   *interp.Interp
}

// New creates the interpreter sized by the configuration. Nothing is
// evaluated until Start.
func New(opts Options) *Session {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	mem := opts.Config.Memory
	in := interp.New(interp.Options{
		NSize:       mem.NSize,
		VSize:       mem.VSize,
		PPSize:      mem.PPSize,
		Expressions: mem.Expressions,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		Tracer:      opts.Tracer,
		HeapTrace:   opts.HeapTrace,
		Interactive: opts.Interactive,
	})
	in.SetErrorStyle(opts.ErrorStyle)
	return &Session{opts: opts, in: in}
}

// Interp exposes the interpreter, for signal handlers.
func (s *Session) Interp() *interp.Interp { return s.in }

// Start runs every phase in order and returns the exit status. An error
// in one phase is printed and the next phase still runs.
func (s *Session) Start(ctx context.Context) int {
	parent := trace.CurrentSpan(ctx)
	root := trace.Begin(s.opts.Tracer, trace.ScopeSession, "session", parent)
	defer root.End("")

	s.phase(root, "base", func() (string, error) {
		return "", s.in.LoadBase()
	})
	s.phase(root, "options", func() (string, error) {
		return "", s.applyOptions()
	})
	if !s.opts.NoInit && s.opts.Config.Startup.Image != "" {
		s.phase(root, "image", func() (string, error) {
			ok, err := image.LoadFile(s.opts.Config.Rel(s.opts.Config.Startup.Image), s.in)
			if ok {
				return "restored", err
			}
			return "none", err
		})
	}

	var quit *interp.QuitRequest
	profiles := []struct{ name, path string }{
		{"site-profile", s.opts.Config.Startup.SiteProfile},
	}
	if !s.opts.NoInit {
		profiles = append(profiles, struct{ name, path string }{"user-profile", s.opts.Config.Rel(s.opts.Config.Startup.UserProfile)})
	}
	for _, p := range profiles {
		if p.path == "" || quit != nil {
			continue
		}
		s.phase(root, p.name, func() (string, error) {
			q, err := s.source(p.path)
			quit = q
			return p.path, err
		})
	}
	if quit == nil {
		s.phase(root, ".First", func() (string, error) {
			q, err := s.hook(".First")
			quit = q
			return "", err
		})
	}

	if quit == nil {
		s.phase(root, "repl", func() (string, error) {
			quit = s.repl()
			if quit == nil {
				return "eof", nil
			}
			return quit.Error(), nil
		})
	}

	if quit == nil || quit.RunLast && !quit.Halted {
		s.phase(root, ".Last", func() (string, error) {
			_, err := s.hook(".Last")
			return "", err
		})
	}
	if s.shouldSave(quit) {
		s.phase(root, "save", func() (string, error) {
			path := s.opts.Config.Rel(s.opts.Config.Startup.Image)
			return path, image.SaveFile(path, s.in)
		})
	}
	if quit != nil {
		return quit.Status
	}
	return 0
}

// phase times fn as one startup step and prints its error.
func (s *Session) phase(parent *trace.Span, name string, fn func() (string, error)) {
	span := trace.Begin(s.opts.Tracer, trace.ScopeSession, name, parent.ID())
	idx := s.opts.Timer.Begin(name)
	note, err := fn()
	if err != nil {
		s.in.PrintError(err)
		if note == "" {
			note = "failed"
		}
	}
	s.opts.Timer.End(idx, note)
	span.End(note)
}

// applyOptions copies the console settings into options().
func (s *Session) applyOptions() error {
	repl := s.opts.Config.Repl
	in := s.in
	return in.Guard(func() {
		if repl.Prompt != "" {
			in.SetOption("prompt", in.MkString(repl.Prompt))
		}
		if repl.Continue != "" {
			in.SetOption("continue", in.MkString(repl.Continue))
		}
		in.SetOption("keep.source", in.ScalarBool(s.opts.Interactive))
	})
}

// source evaluates a profile file at top level. A missing file is
// skipped.
func (s *Session) source(path string) (*interp.QuitRequest, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read profile: %w", err)
	}
	return splitQuit(s.in.EvalString(path, string(text)))
}

// hook calls the global function name with no arguments if it exists.
func (s *Session) hook(name string) (*interp.QuitRequest, error) {
	sym, ok := s.in.Lookup(name)
	if !ok {
		return nil, nil
	}
	switch s.in.Kind(s.in.FindVar(sym, s.in.GlobalEnv)) {
	case interp.CloSXP, interp.BuiltinSXP, interp.SpecialSXP:
	default:
		return nil, nil
	}
	return splitQuit(s.in.EvalString("<"+name+">", "invisible("+name+"())"))
}

func splitQuit(err error) (*interp.QuitRequest, error) {
	var q *interp.QuitRequest
	if errors.As(err, &q) {
		return q, nil
	}
	return nil, err
}

func (s *Session) repl() *interp.QuitRequest {
	r := s.opts.Reader
	if r == nil {
		r = interp.NewBatchReader(s.opts.Stdin)
	}
	s.in.SetReader(r)
	if s.opts.Interactive && !s.opts.Quiet {
		fmt.Fprint(s.opts.Stdout, version.Banner())
	}
	return s.in.RunConsole()
}

// shouldSave resolves q(save=) against the flags and the config. "ask"
// prompts on a console and falls back to the default in batch runs.
func (s *Session) shouldSave(q *interp.QuitRequest) bool {
	if s.opts.Config.Startup.Image == "" || q != nil && q.Halted {
		return false
	}
	choice := "default"
	if q != nil {
		choice = q.Save
	}
	if choice == "ask" {
		if s.opts.Interactive && s.opts.Reader != nil {
			return s.ask()
		}
		choice = "default"
	}
	if choice == "default" {
		choice = s.opts.Save
		if choice == "" {
			choice = s.opts.Config.Startup.Save
		}
	}
	return choice == "yes"
}

func (s *Session) ask() bool {
	for {
		line, err := s.opts.Reader.ReadLine("Save workspace image? [y/n]: ")
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}
