package slice

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dendrascience/dendra-zip/util"
)

// VerifyManifest decodes every slice listed in the manifest at manifestPath
// and compares its size and digest with the manifest, returning one problem
// line per bad slice. Nothing is written.
func VerifyManifest(manifestPath string, opts util.DecodecOptions) (util.Outcome, []string) {
	mf, err := ReadManifest(manifestPath)
	if err != nil {
		return util.Failed(err), nil
	}
	paths, err := mf.slicePaths(filepath.Dir(manifestPath))
	if err != nil {
		return util.Failed(err), nil
	}

	var problems []string
	var total, consumed int64
	for i, name := range mf.SliceFiles {
		p := paths[i]
		if info, err := os.Stat(p); err == nil {
			consumed += info.Size()
		}
		data, err := decodeSlice(p, opts.Chunk())
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		total += int64(len(data))
		if len(mf.Slices) == 0 {
			continue
		}
		rec := mf.Slices[i]
		switch {
		case int64(len(data)) != rec.OriginalSize:
			problems = append(problems, fmt.Sprintf("%s: size mismatch: got %d, want %d", name, len(data), rec.OriginalSize))
		case rec.Digest != "" && util.DigestBytes(data) != rec.Digest:
			problems = append(problems, fmt.Sprintf("%s: digest mismatch", name))
		}
	}
	if len(problems) == 0 && total != mf.OriginalSize {
		problems = append(problems, fmt.Sprintf("slices hold %d bytes, manifest says %d", total, mf.OriginalSize))
	}
	if len(problems) > 0 {
		opts.Log().Warn("manifest verification failed", "manifest", manifestPath, "problems", len(problems))
		return util.Failf(util.ErrFormat, "%d problems in %s", len(problems), filepath.Base(manifestPath)).WithSizes(total, consumed), problems
	}
	return util.Succeeded(total, consumed), nil
}
