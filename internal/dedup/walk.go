package dedup

import (
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ldebyl/cpdd/internal/cli"
	"github.com/ldebyl/cpdd/internal/fsutil"
)

// Walker is the tree walker (C6): it recursively descends one or more
// source trees, mirrors directories into the destination tree, and feeds
// each regular file to the dispatcher after consulting the match engine.
type Walker struct {
	Options    *Options
	Engine     *Engine
	Dispatcher *Dispatcher
	// failed records whether any per-entry error occurred; Failed reports
	// it, since individual failures are only warnings and never make Run
	// return an error.
	failed bool
}

// NewWalker constructs a tree walker.
func NewWalker(opts *Options, engine *Engine, dispatcher *Dispatcher) *Walker {
	return &Walker{Options: opts, Engine: engine, Dispatcher: dispatcher}
}

// Run performs the full copy operation: it resolves destination
// disposition, then walks each source in argument order. It returns an
// error only for fatal setup failures; per-entry failures are logged as
// warnings, do not produce a non-nil return here, and are reported in
// aggregate via Failed().
func (w *Walker) Run() error {
	destIsDir, err := w.prepareDestination()
	if err != nil {
		return err
	}

	for _, src := range w.Options.Sources {
		dest := w.Options.Destination
		if destIsDir {
			dest = filepath.Join(w.Options.Destination, filepath.Base(filepath.Clean(src)))
		}
		w.processSource(src, dest)
	}
	return nil
}

// Failed reports whether any per-entry error occurred during Run, for the
// caller to derive the process exit code from.
func (w *Walker) Failed() bool {
	return w.failed
}

// prepareDestination resolves the fatal-setup cases: a pre-existing
// destination directory causes sources to be placed beneath it by basename;
// a non-existent destination is created as a directory only when multiple
// sources are given; a destination that is a regular file with multiple
// sources is a fatal error.
func (w *Walker) prepareDestination() (destIsDir bool, err error) {
	info, statErr := os.Stat(w.Options.Destination)
	multipleSources := len(w.Options.Sources) > 1

	if statErr == nil {
		if info.IsDir() {
			return true, nil
		}
		if multipleSources {
			return false, errors.Errorf("destination %s is a regular file but multiple sources were given", w.Options.Destination)
		}
		return false, nil
	}
	if !os.IsNotExist(statErr) {
		return false, errors.Wrapf(statErr, "unable to stat destination %s", w.Options.Destination)
	}

	if multipleSources {
		if err := os.MkdirAll(w.Options.Destination, 0o755); err != nil {
			return false, errors.Wrapf(err, "unable to create destination directory %s", w.Options.Destination)
		}
		return true, nil
	}
	return false, nil
}

// processSource handles a single top-level source argument.
func (w *Walker) processSource(src, dest string) {
	info, err := os.Lstat(src)
	if err != nil {
		w.warn(errors.Wrapf(err, "unable to stat source %s", src))
		return
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		if w.Options.Verbose >= 1 {
			log.Printf("skipping symbolic link in source tree: %s", src)
		}
	case info.IsDir():
		w.walkDirectory(src, dest, info)
	case info.Mode().IsRegular():
		if err := w.ensureParent(dest); err != nil {
			w.warn(err)
			return
		}
		w.placeFile(src, dest)
	default:
		if w.Options.Verbose >= 1 {
			log.Printf("skipping unsupported entry kind: %s", src)
		}
	}
}

// walkDirectory mirrors a single directory (and, if recursive, its
// contents) into dest.
func (w *Walker) walkDirectory(src, dest string, info os.FileInfo) {
	if !w.Options.Recursive {
		if w.Options.Verbose >= 1 {
			log.Printf("skipping directory (recursive not set): %s", src)
		}
		return
	}

	if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
		w.warn(errors.Wrapf(err, "unable to create directory %s", dest))
		return
	}
	if w.Options.Preserve.Any() {
		if err := fsutil.Preserve(src, dest, fsutil.PreserveAttrs{
			Mode:       w.Options.Preserve.Mode,
			Ownership:  w.Options.Preserve.Ownership,
			Timestamps: w.Options.Preserve.Timestamps,
		}); err != nil {
			cli.Warning(errors.Wrapf(err, "unable to preserve attributes on %s", dest).Error())
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		w.warn(errors.Wrapf(err, "unable to read directory %s", src))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		childSrc := filepath.Join(src, name)
		childDest := filepath.Join(dest, name)

		entryInfo, err := entry.Info()
		if err != nil {
			w.warn(errors.Wrapf(err, "unable to stat %s", childSrc))
			continue
		}

		switch {
		case entryInfo.Mode()&os.ModeSymlink != 0:
			if w.Options.Verbose >= 1 {
				log.Printf("skipping symbolic link in source tree: %s", childSrc)
			}
		case entry.IsDir():
			w.walkDirectory(childSrc, childDest, entryInfo)
		case entryInfo.Mode().IsRegular():
			w.placeFile(childSrc, childDest)
		default:
			if w.Options.Verbose >= 1 {
				log.Printf("skipping unsupported entry kind: %s", childSrc)
			}
		}
	}
}

// placeFile consults the match engine and delegates to the dispatcher.
func (w *Walker) placeFile(src, dest string) {
	var matched *RefEntry
	if w.Engine != nil {
		m, err := w.Engine.FindMatch(src)
		if err != nil {
			w.warn(errors.Wrapf(err, "unable to match %s against reference", src))
		}
		matched = m
	}
	if err := w.Dispatcher.PlaceFile(src, dest, matched); err != nil {
		w.warn(err)
	}
}

// ensureParent creates the parent directory of dest if necessary.
func (w *Walker) ensureParent(dest string) error {
	parent := filepath.Dir(dest)
	if parent == "." || parent == string(filepath.Separator) {
		return nil
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create parent directory %s", parent)
	}
	return nil
}

// warn logs a per-entry failure and records that the run should exit
// non-zero.
func (w *Walker) warn(err error) {
	w.failed = true
	cli.Warning(err.Error())
}
