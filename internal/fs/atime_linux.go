//go:build linux

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// accessTime returns the last access time recorded in info, falling back to
// the modification time when the platform stat data is unavailable.
func accessTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(stat.Atim.Sec), int64(stat.Atim.Nsec)) // int32 on 32-bit platforms
}
