// Package dedup implements cpdd's content-aware copy engine: a reference
// index over one or more reference trees, a three-stage (size, digest, byte)
// match decision, and a per-file dispatcher that links to a matched
// reference entry or falls back to a plain copy.
package dedup

import "fmt"

// LinkMode controls how a matched reference entry is attached to the
// destination.
type LinkMode int

const (
	// LinkModeUnset is the zero value; Options.Normalize resolves it to
	// LinkModeHard when reference directories are present, or LinkModeNone
	// otherwise.
	LinkModeUnset LinkMode = iota
	// LinkModeNone disables linking; every file is copied.
	LinkModeNone
	// LinkModeHard creates hard links to matched reference entries.
	LinkModeHard
	// LinkModeSymbolic creates symbolic links to matched reference entries.
	LinkModeSymbolic
)

func (m LinkMode) String() string {
	switch m {
	case LinkModeNone:
		return "none"
	case LinkModeHard:
		return "hard"
	case LinkModeSymbolic:
		return "symbolic"
	default:
		return "unset"
	}
}

// Preserve identifies which source attributes are copied onto the
// destination after a plain copy.
type Preserve struct {
	Mode       bool
	Ownership  bool
	Timestamps bool
}

// Any reports whether at least one attribute is selected for preservation.
func (p Preserve) Any() bool {
	return p.Mode || p.Ownership || p.Timestamps
}

// ParsePreserveList parses a comma-separated preserve attribute list, as
// accepted by --preserve[=LIST]. Recognized tokens are "mode", "ownership",
// "timestamps", and "all" (a synonym for all three). An empty list is
// equivalent to "all", matching -p's behavior.
func ParsePreserveList(list string) (Preserve, error) {
	if list == "" {
		return Preserve{Mode: true, Ownership: true, Timestamps: true}, nil
	}

	var p Preserve
	start := 0
	for i := 0; i <= len(list); i++ {
		if i < len(list) && list[i] != ',' {
			continue
		}
		token := list[start:i]
		start = i + 1
		switch token {
		case "mode":
			p.Mode = true
		case "ownership":
			p.Ownership = true
		case "timestamps":
			p.Timestamps = true
		case "all":
			p.Mode, p.Ownership, p.Timestamps = true, true, true
		default:
			return Preserve{}, fmt.Errorf("invalid preserve attribute %q (valid: mode, ownership, timestamps, all)", token)
		}
	}
	return p, nil
}

// Prompter is consulted by the dispatcher (C5) before overwriting an
// existing destination entry when Options.Interactive is set.
type Prompter interface {
	// Confirm asks the user whether dest should be overwritten and reports
	// their answer.
	Confirm(dest string) (bool, error)
}

// Options configures every component of the dedup engine.
type Options struct {
	// Sources is the ordered list of source paths (files or directories).
	Sources []string
	// Destination is the target path (file or directory).
	Destination string
	// RefDirs is the ordered list of reference roots. May be empty, in which
	// case the run degrades to a plain copy.
	RefDirs []string
	// LinkMode selects hard-link, symbolic-link, or no linking.
	LinkMode LinkMode
	// Recursive enables descent into source directories.
	Recursive bool
	// NoClobber skips existing destination entries outright. Mutually
	// exclusive with Interactive.
	NoClobber bool
	// Interactive prompts before overwriting an existing destination entry.
	Interactive bool
	// Preserve selects which source attributes to carry onto copies.
	Preserve Preserve
	// Verbose is the observability level, 0-3.
	Verbose int
	// ShowStats requests a statistics report once the run completes.
	ShowStats bool
	// HumanReadable formats byte counts with SI-style suffixes.
	HumanReadable bool
	// Prompter services interactive overwrite confirmations. If nil while
	// Interactive is set, confirmations default to "no".
	Prompter Prompter
}

// Normalize resolves LinkModeUnset to a concrete mode and validates
// mutually-exclusive flag combinations.
func (o *Options) Normalize() error {
	if o.NoClobber && o.Interactive {
		return fmt.Errorf("--no-clobber and --interactive are mutually exclusive")
	}
	if o.LinkMode == LinkModeUnset {
		if len(o.RefDirs) > 0 {
			o.LinkMode = LinkModeHard
		} else {
			o.LinkMode = LinkModeNone
		}
	}
	if o.LinkMode != LinkModeNone && len(o.RefDirs) == 0 {
		return fmt.Errorf("link mode %s requires at least one --reference directory", o.LinkMode)
	}
	if len(o.Sources) == 0 {
		return fmt.Errorf("at least one source path is required")
	}
	if o.Destination == "" {
		return fmt.Errorf("a destination path is required")
	}
	return nil
}
