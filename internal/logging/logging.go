// Package logging configures the standard library logger used for cpdd's
// per-entry warnings and verbose tracing.
package logging

import (
	"log"
	"os"
)

func init() {
	// Warnings and verbose tracing go to standard error so they never
	// interleave with the redrawn status line or statistics report, both of
	// which write to standard output.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
}

// SetVerbose adjusts the logger's flags for higher verbosity tiers, adding
// timestamps once -vv or higher is requested.
func SetVerbose(level int) {
	if level >= 2 {
		log.SetFlags(log.Ltime)
	} else {
		log.SetFlags(0)
	}
}
