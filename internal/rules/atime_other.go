//go:build !linux

package rules

import (
	"os"
	"time"
)

// accessTime approximates last access with the modification time on
// platforms where atime is not portably available.
func accessTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
