package format

import (
	"os"

	"golang.org/x/term"
)

var (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Green   = "\033[32m"
	Magenta = "\033[35m"
	Red     = "\033[31m"
)

func init() {
	_, noColor := os.LookupEnv("NO_COLOR")
	SetColor(!noColor && IsTerminal(os.Stdout))
}

// SetColor switches ANSI escapes on or off for everything in this package.
func SetColor(on bool) {
	if !on {
		Reset, Bold, Dim = "", "", ""
		Yellow, Cyan, Green, Magenta, Red = "", "", "", "", ""
		return
	}
	Reset, Bold, Dim = "\033[0m", "\033[1m", "\033[2m"
	Yellow, Cyan, Green, Magenta, Red = "\033[33m", "\033[36m", "\033[32m", "\033[35m", "\033[31m"
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TermWidth returns the terminal width, defaulting to 80.
func TermWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
