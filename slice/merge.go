package slice

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dendrascience/dendra-zip/util"
	"golang.org/x/sync/errgroup"
)

// checkFunc validates decoded slice i before it is written.
type checkFunc func(i int, data []byte) error

// Merge decompresses slicePaths and concatenates them into output in list
// order. Every slice must exist before output is created. Decoding may run
// in parallel; writing is always sequential. Any failure removes output.
func Merge(slicePaths []string, output string, opts util.DecodecOptions) util.Outcome {
	return merge(slicePaths, output, opts, nil)
}

// MergeManifest rebuilds the original file described by the manifest at
// manifestPath. Slice files are resolved next to the manifest. With
// opts.VerifyChecksum each slice's size and digest are checked against the
// manifest before anything is written.
func MergeManifest(manifestPath, output string, opts util.DecodecOptions) util.Outcome {
	if manifestPath == "" || output == "" {
		return util.Failf(util.ErrInvalidParameter, "empty manifest or output path")
	}
	mf, err := ReadManifest(manifestPath)
	if err != nil {
		return util.Failed(err)
	}

	if mf.TotalSlices == 0 {
		if err := util.EnsureDir(filepath.Dir(output)); err != nil {
			return util.Failed(err)
		}
		if err := os.WriteFile(output, nil, 0o644); err != nil {
			return util.Failed(fmt.Errorf("%w: create %s: %w", util.ErrIO, output, err))
		}
		return util.Succeeded(0, 0)
	}

	paths, err := mf.slicePaths(filepath.Dir(manifestPath))
	if err != nil {
		return util.Failed(err)
	}

	var check checkFunc
	if opts.VerifyChecksum && len(mf.Slices) == mf.TotalSlices {
		check = func(i int, data []byte) error {
			rec := mf.Slices[i]
			if int64(len(data)) != rec.OriginalSize {
				return fmt.Errorf("%w: slice %d decoded to %d bytes, manifest says %d", util.ErrFormat, i, len(data), rec.OriginalSize)
			}
			if rec.Digest != "" && util.DigestBytes(data) != rec.Digest {
				return fmt.Errorf("%w: slice %d digest mismatch", util.ErrFormat, i)
			}
			return nil
		}
	}

	o := merge(paths, output, opts, check)
	if o.Success && o.OriginalSize != mf.OriginalSize {
		os.Remove(output)
		return util.Failf(util.ErrFormat, "merged %d bytes, manifest says %d", o.OriginalSize, mf.OriginalSize)
	}
	return o
}

func merge(slicePaths []string, output string, opts util.DecodecOptions, check checkFunc) util.Outcome {
	if len(slicePaths) == 0 {
		return util.Failf(util.ErrInvalidParameter, "no slices to merge")
	}
	if output == "" {
		return util.Failf(util.ErrInvalidParameter, "empty output path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	log := opts.Log()

	var consumed int64
	for _, p := range slicePaths {
		info, err := util.StatRegular(p)
		if err != nil {
			return util.Failed(fmt.Errorf("slice %s: %w", p, err))
		}
		consumed += info.Size()
	}

	decoded := make([][]byte, len(slicePaths))
	decodeOne := func(i int) error {
		data, err := decodeSlice(slicePaths[i], opts.Chunk())
		if err == nil && check != nil {
			err = check(i, data)
		}
		if err != nil {
			return err
		}
		decoded[i] = data
		return nil
	}

	if workers := opts.WorkerCount(); workers <= 1 || len(slicePaths) == 1 {
		for i := range slicePaths {
			if err := decodeOne(i); err != nil {
				log.Warn("merge aborted", "slice", slicePaths[i], "error", err)
				return util.Failed(err)
			}
		}
	} else {
		var (
			g        errgroup.Group
			mu       sync.Mutex
			failures []string
			cause    error
		)
		g.SetLimit(workers)
		for i := range slicePaths {
			g.Go(func() error {
				if err := decodeOne(i); err != nil {
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(slicePaths[i]), err))
					if cause == nil {
						cause = err
					}
					mu.Unlock()
				}
				return nil
			})
		}
		g.Wait()
		if len(failures) > 0 {
			log.Warn("merge aborted", "failed", len(failures), "total", len(slicePaths))
			return util.Failed(fmt.Errorf("%w: %d of %d slices failed: %s: %w", util.ErrPartialFailure,
				len(failures), len(slicePaths), strings.Join(failures, "; "), cause))
		}
	}

	if err := util.EnsureDir(filepath.Dir(output)); err != nil {
		return util.Failed(err)
	}
	written, err := writeOrdered(output, decoded)
	if err != nil {
		os.Remove(output)
		log.Warn("merge write failed", "output", output, "error", err)
		return util.Failed(err)
	}

	log.Info("slices merged", "output", output, "slices", len(slicePaths), "bytes", written)
	return util.Succeeded(written, consumed)
}

func writeOrdered(output string, parts [][]byte) (int64, error) {
	f, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", util.ErrIO, output, err)
	}
	defer f.Close()

	var written int64
	for i, p := range parts {
		n, err := f.Write(p)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("%w: write slice %d to %s: %w", util.ErrIO, i, output, err)
		}
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("%w: close %s: %w", util.ErrIO, output, err)
	}
	return written, nil
}

// decodeSlice inflates one slice file into memory, detecting its codec from
// the leading magic bytes.
func decodeSlice(path string, chunk int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", util.ErrIO, path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.Peek(4)
	if err != nil && len(header) < 2 {
		return nil, fmt.Errorf("%w: %s: too short for a slice header", util.ErrFormat, path)
	}
	m, err := DetectMethod(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dec, err := m.newDecoder(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: open %s stream: %w", util.ErrFormat, path, m, err)
	}
	defer dec.Close()

	var buf bytes.Buffer
	if _, err := util.CopyChunked(&buf, dec, chunk); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %s: truncated %s stream", util.ErrFormat, path, m)
		}
		return nil, fmt.Errorf("%w: %s: decode %s: %w", util.ErrFormat, path, m, err)
	}
	return buf.Bytes(), nil
}
