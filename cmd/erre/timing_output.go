package main

import (
	"fmt"
	"io"

	"erre/internal/observ"
)

// printTimings writes the phase table of one session, headed by label
// when several sessions report.
func printTimings(out io.Writer, label string, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if label != "" {
		fmt.Fprintf(out, "%s:\n", label)
	}
	fmt.Fprint(out, timer.Summary())
}
