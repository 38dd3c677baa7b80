//go:build !linux && !darwin
// +build !linux,!darwin

package filesystem

import "time"

func birthtime(path string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
