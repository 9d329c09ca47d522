package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskUsageBytes returns the total size in bytes of the given paths, used to report
// how much space the corpus cache and vocabulary artifacts take.
// Each path may be a file or a directory (recursively summed); a path inside a
// directory already passed is counted once. Missing paths contribute 0.
func DiskUsageBytes(paths ...string) (int64, error) {
	var (
		total int64
		dirs  []string
	)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return 0, err
		}
		if within(abs, dirs) {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
			continue
		}
		n, err := dirSize(abs)
		if err != nil {
			return 0, err
		}
		total += n
		dirs = append(dirs, abs)
	}
	return total, nil
}

func within(path string, dirs []string) bool {
	for _, d := range dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
