package archive

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/zip"
)

// TempSuffix names the rebuild target next to the archive being rewritten.
const TempSuffix = ".tmp"

// RemoveEntry deletes the entry named exactly name by copying every other
// entry, still compressed and with its method, flags and timestamp intact,
// into archive.tmp and renaming that over the original.
//
// A failed copy leaves the temp file behind for inspection; a panic during
// the rebuild removes it.
func RemoveEntry(archivePath, name string, opts util.CodecOptions) (out util.Outcome) {
	if archivePath == "" || name == "" {
		return util.Failf(util.ErrInvalidParameter, "empty archive path or entry name")
	}
	log := opts.Log()

	if _, err := util.StatRegular(archivePath); err != nil {
		return util.Failed(err)
	}
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: open archive %s: %w", util.ErrFormat, archivePath, err))
	}
	readerOpen := true
	closeReader := func() error {
		if !readerOpen {
			return nil
		}
		readerOpen = false
		return zr.Close()
	}
	defer closeReader()

	if !slices.ContainsFunc(zr.File, func(f *zip.File) bool { return f.Name == name }) {
		return util.Failf(util.ErrNotFound, "entry %s in %s", name, archivePath)
	}

	tmpPath := archivePath + TempSuffix
	defer func() {
		if r := recover(); r != nil {
			os.Remove(tmpPath)
			out = util.Failf(util.ErrIO, "rebuild of %s aborted: %v", archivePath, r)
		}
	}()

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: create %s: %w", util.ErrIO, tmpPath, err))
	}
	zw := zip.NewWriter(tmp)
	writerOpen := true
	closeWriter := func() error {
		if !writerOpen {
			return nil
		}
		writerOpen = false
		return errors.Join(zw.Close(), tmp.Close())
	}
	defer closeWriter()

	var kept int64
	for _, f := range zr.File {
		if f.Name == name {
			continue
		}
		if err := zw.Copy(f); err != nil {
			log.Warn("rebuild copy failed", "archive", archivePath, "entry", f.Name, "temp", tmpPath, "error", err)
			return util.Failed(fmt.Errorf("%w: copy entry %s: %w", util.ErrIO, f.Name, err))
		}
		kept += int64(f.UncompressedSize64)
	}
	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return util.Failed(fmt.Errorf("%w: archive comment: %w", util.ErrFormat, err))
		}
	}

	if err := closeWriter(); err != nil {
		return util.Failed(fmt.Errorf("%w: finish %s: %w", util.ErrIO, tmpPath, err))
	}
	if err := closeReader(); err != nil {
		return util.Failed(fmt.Errorf("%w: close %s: %w", util.ErrIO, archivePath, err))
	}
	if err := util.ReplaceFile(tmpPath, archivePath); err != nil {
		return util.Failed(err)
	}

	size, err := util.FileSize(archivePath)
	if err != nil {
		return util.Failed(err)
	}
	log.Info("entry removed", "archive", archivePath, "entry", name, "remaining", len(zr.File)-1)
	return util.Succeeded(kept, size)
}
