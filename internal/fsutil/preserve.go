package fsutil

import (
	"os"

	"github.com/pkg/errors"
)

// PreserveAttrs selects which attributes Preserve carries from source to
// destination.
type PreserveAttrs struct {
	Mode       bool
	Ownership  bool
	Timestamps bool
}

// Preserve copies the selected attributes of src onto dest. Preservation
// failures are the caller's responsibility to treat as warnings rather than
// fatal errors.
func Preserve(src, dest string, attrs PreserveAttrs) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", src)
	}

	if attrs.Mode {
		if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, "unable to preserve mode on %s", dest)
		}
	}

	if attrs.Ownership {
		if err := preserveOwnership(info, dest); err != nil {
			return err
		}
	}

	if attrs.Timestamps {
		modTime := info.ModTime()
		if err := os.Chtimes(dest, modTime, modTime); err != nil {
			return errors.Wrapf(err, "unable to preserve timestamps on %s", dest)
		}
	}

	return nil
}
