package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// SetColorMode applies a ui.color setting: auto, always or never.
func SetColorMode(mode string) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		SetColorForcing(true, false)
	case "never":
		SetColorForcing(false, true)
	default:
		SetColorForcing(false, false)
	}
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

// OK reports success on w; failures and hints always go to stderr.
func OK(w io.Writer, msg string) { fmt.Fprintln(w, C(fgGreen, symCheck+" "+msg)) }
func Fail(msg string)            { fmt.Fprintln(os.Stderr, C(fgRed, symCross+" "+msg)) }
func Hint(msg string)            { fmt.Fprintln(os.Stderr, C(fgGray, msg)) }

// Dim renders s faint, for secondary columns like list indexes.
func Dim(s string) string { return C(dim, s) }
