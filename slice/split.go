package slice

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dendrascience/dendra-zip/util"
	"golang.org/x/sync/errgroup"
)

// Options configures Split.
type Options struct {
	util.CodecOptions

	Method Method

	// OutputDir receives the slices and the manifest. Empty selects the
	// directory of the input file.
	OutputDir string
}

// DefaultOptions returns gzip slicing with the default codec options.
func DefaultOptions() Options {
	return Options{CodecOptions: util.DefaultCodecOptions(), Method: MethodGzip}
}

// Split cuts input into sliceSize pieces and compresses each into its own
// file named <input>.slice_NNNN.<ext>, then writes <input>.manifest.json.
//
// In sequential mode the first failing slice aborts the split. In parallel
// mode at most opts.WorkerCount() slices run at once and every scheduled
// slice finishes before the aggregate failure is reported.
func Split(input string, sliceSize int64, opts Options) (util.Outcome, *Manifest) {
	if input == "" {
		return util.Failf(util.ErrInvalidParameter, "empty input path"), nil
	}
	if sliceSize <= 0 {
		return util.Failf(util.ErrInvalidParameter, "slice size must be positive, got %d", sliceSize), nil
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err), nil
	}
	log := opts.Log()

	info, err := util.StatRegular(input)
	if err != nil {
		return util.Failed(err), nil
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	if err := util.EnsureDir(outDir); err != nil {
		return util.Failed(err), nil
	}

	mf := newManifest(input, info.Size(), sliceSize, opts.Level, opts.Method)
	task := func(i int) (int64, error) {
		return compressSlice(input, filepath.Join(outDir, mf.SliceFiles[i]), &mf.Slices[i], opts)
	}

	var compressed atomic.Int64
	if workers := opts.WorkerCount(); workers <= 1 || mf.TotalSlices <= 1 {
		for i := range mf.TotalSlices {
			n, err := task(i)
			if err != nil {
				log.Warn("slice failed", "input", input, "slice", i, "error", err)
				return util.Failed(err).WithSizes(info.Size(), compressed.Load()), nil
			}
			compressed.Add(n)
		}
	} else {
		var (
			g        errgroup.Group
			mu       sync.Mutex
			failures []string
			cause    error
		)
		g.SetLimit(workers)
		for i := range mf.TotalSlices {
			g.Go(func() error {
				n, err := task(i)
				if err != nil {
					// Recorded rather than returned; siblings keep running.
					mu.Lock()
					failures = append(failures, fmt.Sprintf("slice %d: %v", i, err))
					if cause == nil {
						cause = err
					}
					mu.Unlock()
					return nil
				}
				compressed.Add(n)
				return nil
			})
		}
		g.Wait()
		if len(failures) > 0 {
			err := fmt.Errorf("%w: %d of %d slices failed: %s: %w", util.ErrPartialFailure,
				len(failures), mf.TotalSlices, strings.Join(failures, "; "), cause)
			log.Warn("split failed", "input", input, "failed", len(failures), "total", mf.TotalSlices)
			return util.Failed(err).WithSizes(info.Size(), compressed.Load()), nil
		}
	}

	mf.CompressedSize = compressed.Load()
	if mf.OriginalSize > 0 {
		mf.Ratio = float64(mf.CompressedSize) / float64(mf.OriginalSize)
	}
	manifestPath := filepath.Join(outDir, filepath.Base(ManifestPath(input)))
	if err := mf.Save(manifestPath); err != nil {
		return util.Failed(err).WithSizes(info.Size(), mf.CompressedSize), nil
	}

	log.Info("file split", "input", input, "slices", mf.TotalSlices, "method", mf.CompressionMethod, "manifest", manifestPath)
	return util.Succeeded(mf.OriginalSize, mf.CompressedSize), mf
}

// compressSlice reads slice rec of input and writes it compressed to dest,
// filling in the record's compressed size and digest.
func compressSlice(input, dest string, rec *Info, opts Options) (int64, error) {
	src, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", util.ErrIO, input, err)
	}
	defer src.Close()

	if _, err := src.Seek(rec.Offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek %s to %d: %w", util.ErrIO, input, rec.Offset, err)
	}
	buf := make([]byte, rec.OriginalSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return 0, fmt.Errorf("%w: read slice %d of %s: %w", util.ErrIO, rec.Index, input, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", util.ErrIO, dest, err)
	}
	defer out.Close()

	enc, err := opts.Method.newEncoder(out, opts.Level)
	if err != nil {
		return 0, fmt.Errorf("%w: %s encoder: %w", util.ErrInvalidParameter, opts.Method, err)
	}
	if _, err := util.CopyChunked(enc, bytes.NewReader(buf), opts.Chunk()); err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("%w: finish %s: %w", util.ErrIO, dest, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("%w: close %s: %w", util.ErrIO, dest, err)
	}

	size, err := util.FileSize(dest)
	if err != nil {
		return 0, err
	}
	rec.CompressedSize = size
	rec.Digest = util.DigestBytes(buf)
	return size, nil
}
