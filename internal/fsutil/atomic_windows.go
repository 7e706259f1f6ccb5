package fsutil

import (
	"os"
	"syscall"
)

// errorNotSameDevice is the error code returned by Windows link/move
// operations when attempting to cross devices.
const errorNotSameDevice = 0x11

// IsCrossDeviceError reports whether err is the platform's "not same
// device" failure.
func IsCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	errno, ok := linkErr.Err.(syscall.Errno)
	return ok && errno == errorNotSameDevice
}
