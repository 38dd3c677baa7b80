//go:build linux
// +build linux

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

// birthtime uses statx(2) which reports the creation time on file systems that record it (ext4,
// btrfs, xfs, tmpfs on recent kernels). ok is false when the kernel did not return STATX_BTIME.
func birthtime(path string) (time.Time, bool, error) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false, err
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true, nil
}
