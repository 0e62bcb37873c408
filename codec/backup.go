package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dendrascience/dendra-zip/util"
)

// CreateBackup copies original to backup, gzip-compressing it when compress
// is set. Missing parent directories of backup are created and an existing
// backup is overwritten.
func CreateBackup(original, backup string, compress bool, opts util.CodecOptions) util.Outcome {
	if original == "" || backup == "" {
		return util.Failf(util.ErrInvalidParameter, "empty original or backup path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	if util.PathsOverlap(original, backup) || util.SameFile(original, backup) {
		return util.Failf(util.ErrInvalidParameter, "backup %s would overwrite original %s", backup, original)
	}
	if _, err := util.StatRegular(original); err != nil {
		return util.Failed(err)
	}
	if err := util.EnsureDir(filepath.Dir(backup)); err != nil {
		return util.Failed(err)
	}

	src, err := os.Open(original)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: open %s: %w", util.ErrIO, original, err))
	}
	defer src.Close()

	var dst io.WriteCloser
	if compress {
		dst, err = openDeflate(backup, opts.Level)
	} else {
		dst, err = createPlain(backup)
	}
	if err != nil {
		return util.Failed(err)
	}
	defer dst.Close()

	read, err := util.CopyChunked(dst, src, opts.Chunk())
	if err != nil {
		if !errors.Is(err, util.ErrIO) {
			err = fmt.Errorf("%w: read %s: %w", util.ErrIO, original, err)
		}
		return util.Failed(err).WithSizes(read, 0)
	}
	if err := dst.Close(); err != nil {
		return util.Failed(err).WithSizes(read, 0)
	}

	produced, err := util.FileSize(backup)
	if err != nil {
		return util.Failed(err)
	}
	opts.Log().Info("backup created", "original", original, "backup", backup, "compressed", compress)
	return util.Succeeded(read, produced)
}

// RestoreBackup copies backup over original, inflating it first when
// decompress is set.
func RestoreBackup(backup, original string, decompress bool, opts util.DecodecOptions) util.Outcome {
	if original == "" || backup == "" {
		return util.Failf(util.ErrInvalidParameter, "empty original or backup path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	if util.PathsOverlap(original, backup) || util.SameFile(original, backup) {
		return util.Failf(util.ErrInvalidParameter, "restoring %s onto itself", backup)
	}
	info, err := util.StatRegular(backup)
	if err != nil {
		return util.Failed(err)
	}
	if err := util.EnsureDir(filepath.Dir(original)); err != nil {
		return util.Failed(err)
	}

	var src io.ReadCloser
	if decompress {
		src, err = openInflate(backup)
	} else {
		src, err = openPlain(backup)
	}
	if err != nil {
		return util.Failed(err)
	}
	defer src.Close()

	dst, err := createPlain(original)
	if err != nil {
		return util.Failed(err)
	}
	defer dst.Close()

	written, err := util.CopyChunked(dst, src, opts.Chunk())
	if err != nil {
		if !errors.Is(err, util.ErrIO) {
			err = fmt.Errorf("%w: read failed: %s: %w", util.ErrFormat, Classify(err), err)
		}
		return util.Failed(err).WithSizes(written, info.Size())
	}
	if err := dst.Close(); err != nil {
		return util.Failed(err)
	}
	opts.Log().Info("backup restored", "backup", backup, "original", original, "decompressed", decompress)
	return util.Succeeded(written, info.Size())
}

func createPlain(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", util.ErrIO, path, err)
	}
	return f, nil
}

func openPlain(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", util.ErrIO, path, err)
	}
	return f, nil
}
