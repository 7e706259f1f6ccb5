package cli

import (
	"fmt"

	"github.com/fatih/color"
)

// StatusLinePrinter redraws a single line of console output in place when
// the output stream is an ANSI-capable terminal, and falls back to
// newline-terminated lines otherwise. No prompting adapter is needed since
// interactive overwrite confirmation reads directly from standard input
// (see Prompter).
type StatusLinePrinter struct {
	// ansiCapable is cached at construction; it does not change mid-run.
	ansiCapable bool
	// nonEmpty tracks whether the line currently holds content, so Clear
	// and BreakIfNonEmpty know whether a redraw is needed.
	nonEmpty bool
}

// NewStatusLinePrinter constructs a printer, probing terminal capability
// once up front.
func NewStatusLinePrinter() *StatusLinePrinter {
	return &StatusLinePrinter{ansiCapable: SupportsANSI()}
}

// Print implements dedup.StatusPrinter. On an ANSI-capable terminal it
// redraws the current line with a carriage return and erase-to-end-of-line;
// otherwise it prints message as a plain newline-terminated line.
func (p *StatusLinePrinter) Print(message string) {
	if !p.ansiCapable {
		fmt.Fprintln(color.Output, message)
		return
	}
	fmt.Fprintf(color.Output, "\r\x1b[K%s", message)
	p.nonEmpty = true
}

// Clear wipes any existing status line content.
func (p *StatusLinePrinter) Clear() {
	if !p.ansiCapable || !p.nonEmpty {
		return
	}
	fmt.Fprint(color.Output, "\r\x1b[K")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline if the status line currently holds
// content, so that subsequent plain output doesn't overwrite it.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(color.Output)
		p.nonEmpty = false
	}
}
