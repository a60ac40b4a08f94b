package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type colorMode string

const (
	colorModeAuto colorMode = "auto"
	colorModeOn   colorMode = "on"
	colorModeOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorModeAuto, nil
	case "on":
		return colorModeOn, nil
	case "off":
		return colorModeOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func shouldColor(mode colorMode) bool {
	switch mode {
	case colorModeOn:
		return true
	case colorModeOff:
		return false
	default:
		return isTerminal(os.Stderr)
	}
}

var errorColor = color.New(color.FgRed, color.Bold)

// applyColor sets the process-wide colour switch and returns the style
// for error headers, or nil when colour is off.
func applyColor(mode colorMode) func(string) string {
	on := shouldColor(mode)
	color.NoColor = !on
	if !on {
		return nil
	}
	return func(s string) string { return errorColor.Sprint(s) }
}

// reportError prints a command failure that never reached a session.
func reportError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errorColor.Sprint("erre:"), err)
}
