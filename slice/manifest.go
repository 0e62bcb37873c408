package slice

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/dendrascience/dendra-zip/version"
	"github.com/google/uuid"
)

// ManifestVersion is the manifest format version written by Split.
const ManifestVersion = "1.0"

// ManifestSuffix names the sidecar written next to the original file.
const ManifestSuffix = ".manifest.json"

// Manifest describes how a file was cut into slices. SliceFiles is the
// reconstruction order.
type Manifest struct {
	ID                string    `json:"id"`
	Version           string    `json:"version"`
	Tool              string    `json:"tool,omitempty"`
	Filename          string    `json:"filename"`
	OriginalSize      int64     `json:"original_size"`
	SliceSize         int64     `json:"slice_size"`
	TotalSlices       int       `json:"total_slices"`
	CompressionLevel  int       `json:"compression_level"`
	CompressionMethod string    `json:"compression_method"`
	Created           time.Time `json:"created"`
	SliceFiles        []string  `json:"slice_files"`
	Slices            []Info    `json:"slices"`
	CompressedSize    int64     `json:"compressed_size"`
	Ratio             float64   `json:"compression_ratio"`
}

// Info describes one slice file.
type Info struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Offset         int64  `json:"offset"`
	OriginalSize   int64  `json:"original_size"`
	CompressedSize int64  `json:"compressed_size"`
	Digest         string `json:"blake3"`
}

// SliceCount returns the number of slices a file of size bytes is cut into.
// An empty file yields zero slices.
func SliceCount(size, sliceSize int64) int {
	if size <= 0 || sliceSize <= 0 {
		return 0
	}
	return int((size + sliceSize - 1) / sliceSize)
}

// SliceName returns the file name of slice index of original.
func SliceName(original string, index int, m Method) string {
	return fmt.Sprintf("%s.slice_%04d.%s", filepath.Base(original), index, m.Ext())
}

// ManifestPath returns the sidecar path for original.
func ManifestPath(original string) string {
	return original + ManifestSuffix
}

func newManifest(original string, size, sliceSize int64, level int, m Method) *Manifest {
	count := SliceCount(size, sliceSize)
	mf := &Manifest{
		ID:                uuid.New().String(),
		Version:           ManifestVersion,
		Tool:              version.Package + " " + version.GetVersion(),
		Filename:          filepath.Base(original),
		OriginalSize:      size,
		SliceSize:         sliceSize,
		TotalSlices:       count,
		CompressionLevel:  level,
		CompressionMethod: m.String(),
		Created:           time.Now().UTC(),
		SliceFiles:        make([]string, count),
		Slices:            make([]Info, count),
	}
	for i := range count {
		offset := int64(i) * sliceSize
		mf.SliceFiles[i] = SliceName(original, i, m)
		mf.Slices[i] = Info{
			Index:        i,
			Name:         mf.SliceFiles[i],
			Offset:       offset,
			OriginalSize: min(sliceSize, size-offset),
		}
	}
	return mf
}

// Save writes the manifest as JSON. A path that does not end in
// ".manifest.json" is treated as a directory and the manifest is written
// inside it under the original's file name.
func (m *Manifest) Save(path string) error {
	if !strings.HasSuffix(path, ManifestSuffix) {
		path = filepath.Join(path, m.Filename+ManifestSuffix)
	}
	return util.WriteJSONFile(path, m)
}

// Validate checks the manifest's internal consistency.
func (m *Manifest) Validate() error {
	if m.SliceSize <= 0 && m.OriginalSize > 0 {
		return fmt.Errorf("%w: manifest slice size %d", util.ErrFormat, m.SliceSize)
	}
	if want := SliceCount(m.OriginalSize, m.SliceSize); m.TotalSlices != want {
		return fmt.Errorf("%w: manifest lists %d slices, size implies %d", util.ErrFormat, m.TotalSlices, want)
	}
	if len(m.SliceFiles) != m.TotalSlices {
		return fmt.Errorf("%w: manifest has %d slice files for %d slices", util.ErrFormat, len(m.SliceFiles), m.TotalSlices)
	}
	if len(m.Slices) != 0 && len(m.Slices) != m.TotalSlices {
		return fmt.Errorf("%w: manifest has %d slice records for %d slices", util.ErrFormat, len(m.Slices), m.TotalSlices)
	}
	return nil
}

// slicePaths resolves the slice files against dir. Every name must be a
// plain file name; anything reaching outside dir is rejected.
func (m *Manifest) slicePaths(dir string) ([]string, error) {
	paths := make([]string, len(m.SliceFiles))
	for i, name := range m.SliceFiles {
		if strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("%w: slice name %q is not a plain file name", util.ErrFormat, name)
		}
		p, err := util.JoinLocal(dir, name)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
		paths[i] = p
	}
	return paths, nil
}

// ReadManifest loads and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := util.ReadJSONFile(path, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
