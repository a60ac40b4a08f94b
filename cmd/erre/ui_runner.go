package main

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"erre/internal/interp"
	"erre/internal/ui"
)

// progressSink forwards script state changes to the progress view. A nil
// sink drops them.
type progressSink chan<- ui.Event

func (s progressSink) send(ev ui.Event) {
	if s != nil {
		s <- ev
	}
}

// countingReader reports every line it hands to the interpreter.
type countingReader struct {
	r     interp.LineReader
	file  string
	sink  progressSink
	lines int
}

func (c *countingReader) ReadLine(prompt string) (string, error) {
	line, err := c.r.ReadLine(prompt)
	if err == nil {
		c.lines++
		c.sink.send(ui.Event{File: c.file, Status: ui.StatusRunning, Lines: c.lines})
	}
	return line, err
}

// runWithProgress runs work while a Bubble Tea view on stderr follows the
// events it sends. The channel is closed when work returns, which ends the
// view.
func runWithProgress(title string, files []string, work func(progressSink) error) error {
	events := make(chan ui.Event, 256)
	var (
		wg      sync.WaitGroup
		workErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		workErr = work(events)
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so work is never blocked on a dead view
		for range events {
		}
	}
	wg.Wait()
	if uiErr != nil {
		return uiErr
	}
	return workErr
}

// useProgress decides whether erre run draws the progress view.
func useProgress(mode colorMode, files int, stderr io.Writer) bool {
	switch mode {
	case colorModeOn:
		return true
	case colorModeOff:
		return false
	}
	f, ok := stderr.(*os.File)
	return ok && files > 1 && isTerminal(f)
}
