//go:build linux

package rules

import (
	"os"
	"syscall"
	"time"
)

// accessTime returns the file's last-access time.
func accessTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec), nil
	}
	return info.ModTime(), nil
}
