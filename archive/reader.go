package archive

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/zip"
	yzip "github.com/yeka/zip"
)

// sourceEntry is a readable entry from either archive engine.
type sourceEntry struct {
	info EntryInfo
	open func() (io.ReadCloser, error)
}

// archiveSource is an archive open for reading.
type archiveSource struct {
	entries []sourceEntry
	close   func() error
}

func (s *archiveSource) Close() error { return s.close() }

// openSource opens path for reading. Without a password the plain engine is
// used and encrypted entries refuse to open; with one, the AES-aware engine
// unlocks them.
func openSource(path, password string) (*archiveSource, error) {
	if _, err := util.StatRegular(path); err != nil {
		return nil, err
	}
	if password != "" {
		return openSealedSource(path, password)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", util.ErrFormat, path, err)
	}
	src := &archiveSource{close: zr.Close}
	for _, f := range zr.File {
		info := EntryInfo{
			Name:             f.Name,
			UncompressedSize: f.UncompressedSize64,
			CompressedSize:   f.CompressedSize64,
			Modified:         entryModified(f.Modified, f.Flags&flagEncrypted != 0),
			IsDir:            strings.HasSuffix(f.Name, "/"),
			Encrypted:        f.Flags&flagEncrypted != 0,
			CRC32:            f.CRC32,
			Method:           f.Method,
		}
		open := f.Open
		if info.Encrypted {
			name := f.Name
			open = func() (io.ReadCloser, error) {
				return nil, fmt.Errorf("%w: entry %s is encrypted: password required", util.ErrFormat, name)
			}
		}
		src.entries = append(src.entries, sourceEntry{info: info, open: open})
	}
	return src, nil
}

func openSealedSource(path, password string) (*archiveSource, error) {
	zr, err := yzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", util.ErrFormat, path, err)
	}
	src := &archiveSource{close: zr.Close}
	for _, f := range zr.File {
		if f.IsEncrypted() {
			f.SetPassword(password)
		}
		info := EntryInfo{
			Name:             f.Name,
			UncompressedSize: f.UncompressedSize64,
			CompressedSize:   f.CompressedSize64,
			Modified:         entryModified(f.ModTime(), f.IsEncrypted()),
			IsDir:            strings.HasSuffix(f.Name, "/"),
			Encrypted:        f.IsEncrypted(),
			CRC32:            f.CRC32,
			Method:           f.Method,
		}
		src.entries = append(src.entries, sourceEntry{info: info, open: f.Open})
	}
	return src, nil
}

// entryTarget resolves an entry name under destDir, rejecting names that
// would escape it.
func entryTarget(destDir, name string) (string, error) {
	return util.JoinLocal(destDir, name)
}

// Extract writes every entry of archivePath under destDir, recreating the
// directory structure recorded in entry names. Names ending in "/" only
// create directories. Any failing entry aborts the whole extraction.
func Extract(archivePath, destDir string, opts util.DecodecOptions) util.Outcome {
	if archivePath == "" || destDir == "" {
		return util.Failf(util.ErrInvalidParameter, "empty archive or destination path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	log := opts.Log()

	src, err := openSource(archivePath, opts.Password)
	if err != nil {
		return util.Failed(err)
	}
	defer src.Close()

	if err := util.EnsureDir(destDir); err != nil {
		return util.Failed(err)
	}

	var total, consumed int64
	for _, e := range src.entries {
		target, err := entryTarget(destDir, e.info.Name)
		if err != nil {
			return util.Failed(err).WithSizes(total, consumed)
		}
		if e.info.IsDir {
			if err := util.EnsureDir(target); err != nil {
				return util.Failed(err).WithSizes(total, consumed)
			}
			continue
		}
		n, err := extractEntry(e, target, opts)
		total += n
		consumed += int64(e.info.CompressedSize)
		if err != nil {
			log.Warn("extraction aborted", "archive", archivePath, "entry", e.info.Name, "error", err)
			return util.Failed(fmt.Errorf("entry %s: %w", e.info.Name, err)).WithSizes(total, consumed)
		}
		log.Debug("entry extracted", "entry", e.info.Name, "bytes", n)
	}

	log.Info("archive extracted", "archive", archivePath, "dest", destDir, "entries", len(src.entries), "bytes", total)
	return util.Succeeded(total, consumed)
}

func extractEntry(e sourceEntry, target string, opts util.DecodecOptions) (int64, error) {
	if err := util.EnsureDir(filepath.Dir(target)); err != nil {
		return 0, err
	}
	rc, err := e.open()
	if err != nil {
		if errors.Is(err, util.ErrFormat) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: open entry: %w", util.ErrFormat, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", util.ErrIO, target, err)
	}
	defer out.Close()

	h := crc32.NewIEEE()
	n, err := util.CopyChunked(io.MultiWriter(out, h), rc, opts.Chunk())
	if err != nil {
		if errors.Is(err, util.ErrIO) {
			return n, err
		}
		return n, fmt.Errorf("%w: read failed: %w", util.ErrFormat, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("%w: close %s: %w", util.ErrIO, target, err)
	}
	// AE-2 encrypted entries record a zero CRC.
	if opts.VerifyChecksum && e.info.CRC32 != 0 && h.Sum32() != e.info.CRC32 {
		return n, fmt.Errorf("%w: checksum mismatch: got %08x, want %08x", util.ErrFormat, h.Sum32(), e.info.CRC32)
	}
	return n, nil
}

// List returns the entries of archivePath without extracting content.
func List(archivePath string, opts util.DecodecOptions) (util.Outcome, []EntryInfo) {
	if archivePath == "" {
		return util.Failf(util.ErrInvalidParameter, "empty archive path"), nil
	}
	src, err := openSource(archivePath, "")
	if err != nil {
		return util.Failed(err), nil
	}
	defer src.Close()

	entries := make([]EntryInfo, 0, len(src.entries))
	var original, compressed int64
	for _, e := range src.entries {
		entries = append(entries, e.info)
		original += int64(e.info.UncompressedSize)
		compressed += int64(e.info.CompressedSize)
	}
	opts.Log().Debug("archive listed", "archive", archivePath, "entries", len(entries))
	return util.Succeeded(original, compressed), entries
}

// Contains reports whether archivePath holds an entry named exactly name.
// A missing entry is a successful false, not a failure.
func Contains(archivePath, name string, opts util.DecodecOptions) (util.Outcome, bool) {
	if archivePath == "" || name == "" {
		return util.Failf(util.ErrInvalidParameter, "empty archive path or entry name"), false
	}
	src, err := openSource(archivePath, "")
	if err != nil {
		return util.Failed(err), false
	}
	defer src.Close()

	found := slices.ContainsFunc(src.entries, func(e sourceEntry) bool { return e.info.Name == name })
	opts.Log().Debug("archive lookup", "archive", archivePath, "entry", name, "found", found)
	return util.Succeeded(0, 0), found
}

// Size returns the on-disk size of archivePath.
func Size(archivePath string) (util.Outcome, int64) {
	if archivePath == "" {
		return util.Failf(util.ErrInvalidParameter, "empty archive path"), 0
	}
	info, err := util.StatRegular(archivePath)
	if err != nil {
		return util.Failed(err), 0
	}
	return util.Succeeded(0, info.Size()), info.Size()
}

// Verify reads every entry of archivePath and checks its CRC-32, returning
// one problem line per bad entry. The outcome fails with ErrFormat when any
// problem was found.
func Verify(archivePath string, opts util.DecodecOptions) (util.Outcome, []string) {
	src, err := openSource(archivePath, opts.Password)
	if err != nil {
		return util.Failed(err), nil
	}
	defer src.Close()

	var problems []string
	var total, consumed int64
	for _, e := range src.entries {
		if e.info.IsDir {
			continue
		}
		if _, err := entryTarget(".", e.info.Name); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		n, err := checkEntry(e, opts.Chunk())
		total += n
		consumed += int64(e.info.CompressedSize)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", e.info.Name, err))
		}
	}
	if len(problems) > 0 {
		return util.Failf(util.ErrFormat, "%d of %d entries failed verification", len(problems), len(src.entries)).WithSizes(total, consumed), problems
	}
	return util.Succeeded(total, consumed), nil
}

func checkEntry(e sourceEntry, chunk int) (int64, error) {
	rc, err := e.open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	h := crc32.NewIEEE()
	n, err := util.CopyChunked(h, rc, chunk)
	if err != nil {
		return n, err
	}
	if e.info.CRC32 != 0 && h.Sum32() != e.info.CRC32 {
		return n, fmt.Errorf("checksum mismatch: got %08x, want %08x", h.Sum32(), e.info.CRC32)
	}
	if uint64(n) != e.info.UncompressedSize {
		return n, fmt.Errorf("size mismatch: got %d, want %d", n, e.info.UncompressedSize)
	}
	return n, nil
}
