package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/gzip"
)

// GzipExt is the suffix CompressFile appends to its output.
const GzipExt = ".gz"

// deflateHandle owns the destination file and the gzip encoder on top of it.
type deflateHandle struct {
	file   *os.File
	zw     *gzip.Writer
	closed bool
}

func openDeflate(path string, level int) (*deflateHandle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", util.ErrIO, path, err)
	}
	zw, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: compression level %d: %w", util.ErrInvalidParameter, level, err)
	}
	return &deflateHandle{file: f, zw: zw}, nil
}

func (h *deflateHandle) Write(p []byte) (int, error) { return h.zw.Write(p) }

// Close flushes the gzip trailer and closes the file. Safe to call twice.
func (h *deflateHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	zerr := h.zw.Close()
	ferr := h.file.Close()
	if zerr != nil {
		return fmt.Errorf("%w: finish gzip stream: %w", util.ErrIO, zerr)
	}
	if ferr != nil {
		return fmt.Errorf("%w: close %s: %w", util.ErrIO, h.file.Name(), ferr)
	}
	return nil
}

// inflateHandle owns the source file and the gzip decoder reading it.
type inflateHandle struct {
	file   *os.File
	zr     *gzip.Reader
	closed bool
}

func openInflate(path string) (*inflateHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", util.ErrIO, path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %s: %s: %w", util.ErrFormat, path, Classify(err), err)
	}
	return &inflateHandle{file: f, zr: zr}, nil
}

func (h *inflateHandle) Read(p []byte) (int, error) { return h.zr.Read(p) }

func (h *inflateHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.zr.Close()
	return h.file.Close()
}

// CompressFile gzip-compresses input into outputDir/<base>.gz, reading in
// opts.ChunkSize pieces. An empty outputDir selects the input's directory.
// Partial output is left in place when a failure occurs after creation.
func CompressFile(input, outputDir string, opts util.CodecOptions) util.Outcome {
	if input == "" {
		return util.Failf(util.ErrInvalidParameter, "empty input path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	log := opts.Log()

	if _, err := util.StatRegular(input); err != nil {
		return util.Failed(err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	if err := util.EnsureDir(outputDir); err != nil {
		return util.Failed(err)
	}
	output := filepath.Join(outputDir, filepath.Base(input)+GzipExt)
	if opts.CreateBackup {
		util.BackupExisting(output, log)
	}

	src, err := os.Open(input)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: open %s: %w", util.ErrIO, input, err))
	}
	defer src.Close()

	dst, err := openDeflate(output, opts.Level)
	if err != nil {
		return util.Failed(err)
	}
	defer dst.Close()

	read, err := util.CopyChunked(dst, src, opts.Chunk())
	if err != nil {
		if !errors.Is(err, util.ErrIO) {
			err = fmt.Errorf("%w: read %s: %w", util.ErrIO, input, err)
		}
		log.Warn("compression aborted", "input", input, "error", err)
		return util.Failed(err).WithSizes(read, 0)
	}
	if err := dst.Close(); err != nil {
		return util.Failed(err).WithSizes(read, 0)
	}

	produced, err := util.FileSize(output)
	if err != nil {
		return util.Failed(err).WithSizes(read, 0)
	}
	log.Info("compressed file", "input", input, "output", output, "bytes_in", read, "bytes_out", produced)
	return util.Succeeded(read, produced)
}

// DecompressFile inflates a gzip file into outputDir, naming the result after
// the input minus its final extension: "a.txt.gz" becomes "a.txt" and
// "a.txt.gz.bak" becomes "a.txt.gz". The outcome reports the produced size as
// original and the consumed input size as compressed.
func DecompressFile(input, outputDir string, opts util.DecodecOptions) util.Outcome {
	if input == "" {
		return util.Failf(util.ErrInvalidParameter, "empty input path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	log := opts.Log()

	info, err := util.StatRegular(input)
	if err != nil {
		return util.Failed(err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	if err := util.EnsureDir(outputDir); err != nil {
		return util.Failed(err)
	}
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return util.Failf(util.ErrInvalidParameter, "cannot derive output name from %s", input)
	}
	output := filepath.Join(outputDir, name)
	if util.PathsOverlap(output, input) {
		return util.Failf(util.ErrInvalidParameter, "output %s would overwrite input", output)
	}

	src, err := openInflate(input)
	if err != nil {
		return util.Failed(err)
	}
	defer src.Close()

	dst, err := os.Create(output)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: create %s: %w", util.ErrIO, output, err))
	}
	defer dst.Close()

	written, err := util.CopyChunked(dst, src, opts.Chunk())
	if err != nil {
		if !errors.Is(err, util.ErrIO) {
			err = fmt.Errorf("%w: read failed: %s: %w", util.ErrFormat, Classify(err), err)
		}
		log.Warn("decompression aborted", "input", input, "error", err)
		return util.Failed(err).WithSizes(written, info.Size())
	}
	if err := dst.Close(); err != nil {
		return util.Failed(fmt.Errorf("%w: close %s: %w", util.ErrIO, output, err))
	}

	log.Info("decompressed file", "input", input, "output", output, "bytes_in", info.Size(), "bytes_out", written)
	return util.Succeeded(written, info.Size())
}
