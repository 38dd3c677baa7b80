//go:build darwin
// +build darwin

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

func birthtime(path string) (time.Time, bool, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true, nil
}
