package slice

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/dendrascience/dendra-zip/util"
)

var slicePattern = regexp.MustCompile(`\.slice_\d{4,}\.(gz|zst|lz4)$`)

// IsSliceFile reports whether name follows the slice naming pattern.
func IsSliceFile(name string) bool {
	return slicePattern.MatchString(name)
}

// ListSlices returns the slice files directly inside dir, sorted by name.
func ListSlices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("%w: read %s: %w", util.ErrIO, dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsSliceFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}

// DeleteSlices removes every slice file directly inside dir. The outcome's
// original size is the number of bytes removed. Files that fail to delete
// are reported together as a partial failure.
func DeleteSlices(dir string, opts util.CodecOptions) util.Outcome {
	log := opts.Log()
	paths, err := ListSlices(dir)
	if err != nil {
		return util.Failed(err)
	}

	var removed int64
	var failed []string
	for _, p := range paths {
		size, _ := util.FileSize(p)
		if err := os.Remove(p); err != nil {
			log.Warn("slice delete failed", "path", p, "error", err)
			failed = append(failed, filepath.Base(p))
			continue
		}
		removed += size
	}
	if len(failed) > 0 {
		return util.Failf(util.ErrPartialFailure, "could not delete %d of %d slices: %v", len(failed), len(paths), failed).WithSizes(removed, 0)
	}
	log.Info("slices deleted", "dir", dir, "count", len(paths), "bytes", removed)
	return util.Succeeded(removed, 0)
}
