//go:build !windows

package fsutil

import (
	"os"
	"syscall"
)

// IsCrossDeviceError reports whether err is the platform's "invalid
// cross-device link" failure, as returned by Link/Symlink/Rename when the
// source and destination span different filesystems.
func IsCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	errno, ok := linkErr.Err.(syscall.Errno)
	return ok && errno == syscall.EXDEV
}
