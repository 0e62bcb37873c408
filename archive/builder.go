package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	yzip "github.com/yeka/zip"
)

// Ext is appended to archive paths that carry no extension.
const Ext = ".zip"

// sourceFile is one regular file queued for the archive.
type sourceFile struct {
	path string
	name string
}

// entrySink is an archive open for writing.
type entrySink interface {
	create(f sourceFile, info fs.FileInfo) (io.Writer, error)
	Close() error
}

// plainSink writes ordinary DEFLATE entries.
type plainSink struct {
	file   *os.File
	zw     *zip.Writer
	level  int
	closed bool
}

func newPlainSink(file *os.File, level int) *plainSink {
	zw := zip.NewWriter(file)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	return &plainSink{file: file, zw: zw, level: level}
}

func (s *plainSink) create(f sourceFile, info fs.FileInfo) (io.Writer, error) {
	fh := &zip.FileHeader{
		Name:     f.name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	if info != nil {
		fh.Modified = info.ModTime()
		fh.SetMode(info.Mode())
	}
	if s.level == 0 {
		fh.Method = zip.Store
	}
	return s.zw.CreateHeader(fh)
}

func (s *plainSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	zerr := s.zw.Close()
	ferr := s.file.Close()
	return errors.Join(zerr, ferr)
}

// sealedSink writes AES-256 encrypted entries. The encrypting engine records
// no per-entry timestamp and always deflates at its default level.
type sealedSink struct {
	file     *os.File
	zw       *yzip.Writer
	password string
	closed   bool
}

func (s *sealedSink) create(f sourceFile, _ fs.FileInfo) (io.Writer, error) {
	return s.zw.Encrypt(f.name, s.password, yzip.AES256Encryption)
}

func (s *sealedSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	zerr := s.zw.Close()
	ferr := s.file.Close()
	return errors.Join(zerr, ferr)
}

// ArchivePath returns path with the .zip extension forced when it has none.
func ArchivePath(path string) string {
	if filepath.Ext(path) == "" {
		return path + Ext
	}
	return path
}

// collectSources lists the regular files under source with slash-separated
// names relative to it. A file source yields itself under its base name.
// Directories, symlinks and the skip path are left out.
func collectSources(source, skip string) ([]sourceFile, error) {
	info, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", util.ErrIO, source, err)
	}
	if !info.IsDir() {
		return []sourceFile{{path: source, name: filepath.Base(source)}}, nil
	}

	skipAbs, _ := filepath.Abs(skip)
	var files []sourceFile
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == skipAbs {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{path: path, name: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", util.ErrIO, source, err)
	}
	return files, nil
}

// Create builds a zip archive from a file or directory tree. Entries are
// regular files only, named by their slash-separated path relative to source,
// compressed with DEFLATE at opts.Level (stored for level 0). With
// opts.Password every entry is AES-256 encrypted.
//
// The first failing entry aborts the build with ErrPartialFailure; whatever
// was written is still flushed, so a partial archive may remain on disk.
func Create(source, archivePath string, opts util.CodecOptions) util.Outcome {
	if source == "" || archivePath == "" {
		return util.Failf(util.ErrInvalidParameter, "empty source or archive path")
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err)
	}
	log := opts.Log()
	archivePath = ArchivePath(archivePath)

	files, err := collectSources(source, archivePath)
	if err != nil {
		return util.Failed(err)
	}
	if err := util.EnsureDir(filepath.Dir(archivePath)); err != nil {
		return util.Failed(err)
	}
	if opts.CreateBackup {
		util.BackupExisting(archivePath, log)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: create %s: %w", util.ErrIO, archivePath, err))
	}
	var sink entrySink
	if opts.Password != "" {
		sink = &sealedSink{file: file, zw: yzip.NewWriter(file), password: opts.Password}
	} else {
		sink = newPlainSink(file, opts.Level)
	}
	defer sink.Close()

	var total int64
	for _, f := range files {
		n, err := addEntry(sink, f, opts.Chunk())
		total += n
		if err != nil {
			log.Warn("archive entry failed", "archive", archivePath, "entry", f.name, "error", err)
			return util.Failed(fmt.Errorf("%w: entry %s: %w", util.ErrPartialFailure, f.name, err)).WithSizes(total, 0)
		}
		log.Debug("archive entry added", "entry", f.name, "bytes", n)
	}
	if err := sink.Close(); err != nil {
		return util.Failed(fmt.Errorf("%w: finish %s: %w", util.ErrIO, archivePath, err)).WithSizes(total, 0)
	}

	size, err := util.FileSize(archivePath)
	if err != nil {
		return util.Failed(err)
	}
	log.Info("archive created", "archive", archivePath, "entries", len(files), "bytes_in", total, "bytes_out", size)
	return util.Succeeded(total, size)
}

func addEntry(sink entrySink, f sourceFile, chunk int) (int64, error) {
	src, err := os.Open(f.path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", util.ErrIO, f.path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		// Modification time falls back to now.
		info = nil
	}
	w, err := sink.create(f, info)
	if err != nil {
		return 0, fmt.Errorf("%w: open entry: %w", util.ErrIO, err)
	}
	n, err := util.CopyChunked(w, src, chunk)
	if err != nil && !errors.Is(err, util.ErrIO) {
		err = fmt.Errorf("%w: read %s: %w", util.ErrIO, f.path, err)
	}
	return n, err
}
