// Package console reads interactive input with line editing and history.
package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"erre/internal/interp"
)

// Reader is a line-editing console implementing interp.LineReader.
type Reader struct {
	rl *readline.Instance
}

// Options configures the console.
type Options struct {
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
	Stderr      io.Writer
}

// New opens a console. Ctrl-C clears the current line and Ctrl-D ends
// input.
func New(opts Options) (*Reader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       opts.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "",
		HistorySearchFold: true,
		Stdin:             opts.Stdin,
		Stdout:            opts.Stdout,
		Stderr:            opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	return &Reader{rl: rl}, nil
}

// ReadLine shows prompt and reads one edited line.
func (r *Reader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", interp.ErrLineCleared
	case err != nil:
		return "", err
	}
	return line, nil
}

// Close restores the terminal and flushes history.
func (r *Reader) Close() error {
	return r.rl.Close()
}

var _ interp.LineReader = (*Reader)(nil)
