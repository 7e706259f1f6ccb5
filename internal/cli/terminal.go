package cli

import (
	"os"
	"strings"

	isatty "github.com/mattn/go-isatty"
)

// ansiCapableTermSubstrings lists the TERM substrings recognized as
// ANSI-capable.
var ansiCapableTermSubstrings = []string{
	"xterm", "screen", "tmux", "vt100", "vt102", "vt220", "vt320", "linux", "color", "ansi",
}

// SupportsANSI reports whether standard output is a TTY whose TERM value
// indicates ANSI capability: any of a fixed set of substrings, excluding
// "dumb" and a missing TERM.
func SupportsANSI() bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}
	for _, substr := range ansiCapableTermSubstrings {
		if strings.Contains(term, substr) {
			return true
		}
	}
	return false
}
