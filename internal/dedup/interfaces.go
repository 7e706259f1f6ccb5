package dedup

// StatusPrinter is the collaborator interface C3/C5 use to render transient,
// redrawn progress updates. Its concrete implementation (internal/cli)
// handles terminal capability detection and carriage-return redraws; tests
// and non-interactive callers can supply a no-op implementation.
type StatusPrinter interface {
	// Print redraws the status line with message.
	Print(message string)
	// Clear wipes any existing status line content.
	Clear()
}

// noopStatus discards every update; used where a StatusPrinter is optional
// and unset.
type noopStatus struct{}

func (noopStatus) Print(string) {}
func (noopStatus) Clear()       {}
