package fsutil

import "os"

// preserveOwnership is a no-op on Windows: there is no POSIX uid/gid to
// propagate, and ACL-level ownership preservation is out of scope here.
func preserveOwnership(info os.FileInfo, dest string) error {
	return nil
}
