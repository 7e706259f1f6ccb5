//go:build !windows

package fsutil

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// preserveOwnership applies src's owning uid/gid to dest, extracted from the
// platform Stat_t.
func preserveOwnership(info os.FileInfo, dest string) error {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.New("unable to extract ownership from file info")
	}
	if err := os.Chown(dest, int(stat.Uid), int(stat.Gid)); err != nil {
		return errors.Wrapf(err, "unable to preserve ownership on %s", dest)
	}
	return nil
}
