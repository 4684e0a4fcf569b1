package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// fdWriter is implemented by *os.File and anything else backed by a descriptor.
type fdWriter interface {
	Fd() uintptr
}

// IsTTY reports whether w is attached to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return IsTTY(os.Stdout)
}

// IsStdinTTY reports whether stdin is a terminal.
func IsStdinTTY() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NoColor honors the NO_COLOR convention.
func NoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}
