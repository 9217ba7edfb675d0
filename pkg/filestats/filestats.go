// Package filestats computes the creation/modification timestamp indicator
// for a file. "Created" is the inode change time (ctime) reported by stat;
// it falls back to the modification time when stat exposes no ctime or
// reports it as zero.
package filestats

import (
	"fmt"
	"os"
	"syscall"
)

// Data is the file_stats indicator: unix-second timestamps.
type Data struct {
	Created  int64 `json:"created"`
	Modified int64 `json:"modified"`
}

// Compute stats path and returns its timestamp indicator.
func Compute(path string) (*Data, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	modified := info.ModTime().Unix()
	created := modified

	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		//nolint:unconvert // Ctim.Sec is platform-width (int32 on some arches).
		if ctime := int64(sys.Ctim.Sec); ctime != 0 {
			created = ctime
		}
	}

	return &Data{Created: created, Modified: modified}, nil
}
