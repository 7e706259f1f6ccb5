package dedup

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/ldebyl/cpdd/internal/cli"
	"github.com/ldebyl/cpdd/internal/fsutil"
)

// copyBufferSize is the chunk size used when streaming a plain copy.
const copyBufferSize = 64 * 1024

// Dispatcher is the file action dispatcher (C5): given a source file and an
// optional matched reference entry, it decides whether to overwrite, link,
// or copy, preserves requested attributes, and updates statistics.
type Dispatcher struct {
	Options    *Options
	Stats      *Stats
	Status     StatusPrinter
	Incomplete *IncompleteRegistry
}

// NewDispatcher constructs a dispatcher. status and incomplete may be nil,
// in which case status updates and signal-driven cleanup are simply
// skipped.
func NewDispatcher(opts *Options, stats *Stats, status StatusPrinter, incomplete *IncompleteRegistry) *Dispatcher {
	if status == nil {
		status = noopStatus{}
	}
	return &Dispatcher{Options: opts, Stats: stats, Status: status, Incomplete: incomplete}
}

// PlaceFile decides whether to skip, link, or copy src into dest, preserving
// requested attributes and updating statistics along the way.
func (d *Dispatcher) PlaceFile(src, dest string, matched *RefEntry) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat source %s", src)
	}
	if !srcInfo.Mode().IsRegular() {
		return nil
	}

	proceed, err := d.shouldOverwrite(dest)
	if err != nil {
		return err
	}
	if !proceed {
		d.Stats.AddSkipped()
		if d.Options.Verbose >= 1 {
			log.Printf("skipped (exists): %s", dest)
		}
		d.reportStatus()
		return nil
	}

	if matched != nil && d.Options.LinkMode != LinkModeNone {
		if linked, err := d.tryLink(src, dest, matched, srcInfo); err != nil {
			return err
		} else if linked {
			return nil
		}
		// Fall through to a plain copy (e.g. cross-device hard link).
	}

	return d.copyFile(src, dest, srcInfo)
}

// reportStatus redraws the live status line with the current running
// totals, when the caller asked to see statistics.
func (d *Dispatcher) reportStatus() {
	if d.Options.ShowStats {
		d.Status.Print(d.Stats.StatusLine(d.Options.HumanReadable))
	}
}

// shouldOverwrite applies the overwrite policy for an existing destination.
func (d *Dispatcher) shouldOverwrite(dest string) (bool, error) {
	if _, err := os.Lstat(dest); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Wrapf(err, "unable to stat destination %s", dest)
	}

	if d.Options.NoClobber {
		return false, nil
	}

	if d.Options.Interactive {
		if d.Options.Prompter == nil {
			return false, nil
		}
		return d.Options.Prompter.Confirm(dest)
	}

	return true, nil
}

// tryLink attempts to place a hard or symbolic link to matched.Path at dest,
// falling back to a plain copy (reported via the bool return being false)
// when the link operation fails.
func (d *Dispatcher) tryLink(src, dest string, matched *RefEntry, srcInfo os.FileInfo) (bool, error) {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "unable to remove existing destination %s", dest)
	}

	switch d.Options.LinkMode {
	case LinkModeHard:
		if err := os.Link(matched.Path, dest); err != nil {
			if d.Options.Verbose >= 2 {
				reason := err.Error()
				if fsutil.IsCrossDeviceError(err) {
					reason = "cross-device link"
				}
				cli.Warning(fmt.Sprintf("hard link %s -> %s failed (%s), falling back to copy", dest, matched.Path, reason))
			}
			return false, nil
		}
		d.Stats.AddHardLinked(uint64(srcInfo.Size()))
		if d.Options.Verbose >= 1 {
			log.Printf("hard linked: %s -> %s", dest, matched.Path)
		}
		d.reportStatus()
		return true, nil
	case LinkModeSymbolic:
		if err := os.Symlink(matched.Path, dest); err != nil {
			if d.Options.Verbose >= 2 {
				cli.Warning(fmt.Sprintf("symlink %s -> %s failed (%v), falling back to copy", dest, matched.Path, err))
			}
			return false, nil
		}
		d.Stats.AddSymlinked(uint64(srcInfo.Size()))
		if d.Options.Verbose >= 1 {
			log.Printf("soft linked: %s -> %s", dest, matched.Path)
		}
		d.reportStatus()
		return true, nil
	default:
		return false, nil
	}
}

// copyFile streams src into dest, aborting and unlinking dest on a short
// write, then applies any requested attribute preservation.
func (d *Dispatcher) copyFile(src, dest string, srcInfo os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "unable to open source %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "unable to create destination %s", dest)
	}

	if d.Incomplete != nil {
		d.Incomplete.RegisterIncomplete(dest)
		defer d.Incomplete.UnregisterIncomplete()
	}

	buffer := make([]byte, copyBufferSize)
	written, err := io.CopyBuffer(out, in, buffer)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil || written != srcInfo.Size() {
		os.Remove(dest)
		if err == nil {
			err = errors.New("short write copying file")
		}
		return errors.Wrapf(err, "unable to copy %s to %s", src, dest)
	}

	if d.Options.Preserve.Any() {
		if err := fsutil.Preserve(src, dest, fsutil.PreserveAttrs{
			Mode:       d.Options.Preserve.Mode,
			Ownership:  d.Options.Preserve.Ownership,
			Timestamps: d.Options.Preserve.Timestamps,
		}); err != nil {
			cli.Warning(fmt.Sprintf("unable to preserve attributes on %s: %v", dest, err))
		}
	}

	d.Stats.AddCopied(uint64(written))
	if d.Options.Verbose >= 1 {
		log.Printf("copied: %s -> %s", src, dest)
	}
	d.reportStatus()
	return nil
}
