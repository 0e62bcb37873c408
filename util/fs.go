package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// StatRegular stats path and requires a regular file. Missing files map to
// ErrNotFound, directories to ErrExpectedFile.
func StatRegular(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParameter, path, ErrExpectedFile)
	}
	return info, nil
}

// EnsureDir creates dir and any missing parents. An empty dir is a no-op and
// an existing non-directory maps to ErrExpectedDirectory.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s: %w", ErrInvalidParameter, dir, ErrExpectedDirectory)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %w", ErrIO, dir, err)
	}
	return nil
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	return info.Size(), nil
}

// ReplaceFile atomically moves src over dst.
func ReplaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIO, dst, err)
	}
	return nil
}

// WriteJSONFile writes any value as indented JSON to the specified file path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return nil
}

// ReadJSONFile decodes the JSON document at path into v.
func ReadJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrFormat, path, err)
	}
	return nil
}

// PathsOverlap reports whether one path equals or contains the other.
func PathsOverlap(path1, path2 string) bool {
	abs1, err1 := filepath.Abs(path1)
	abs2, err2 := filepath.Abs(path2)
	if err1 != nil || err2 != nil {
		abs1, abs2 = filepath.Clean(path1), filepath.Clean(path2)
	}
	if abs1 == abs2 {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(abs1, abs2+sep) || strings.HasPrefix(abs2, abs1+sep)
}

// JoinLocal joins a slash-separated name recorded inside an archive or
// manifest onto dir. Names that are empty, absolute or escape dir map to
// ErrFormat.
func JoinLocal(dir, name string) (string, error) {
	local := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if local == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: unsafe entry name %q", ErrFormat, name)
	}
	return filepath.Join(dir, local), nil
}

// SameFile reports whether both paths exist and name the same file, through
// symlinks or hard links.
func SameFile(path1, path2 string) bool {
	info1, err := os.Stat(path1)
	if err != nil {
		return false
	}
	info2, err := os.Stat(path2)
	if err != nil {
		return false
	}
	return os.SameFile(info1, info2)
}

// CopyChunked copies src to dst in reads of at most chunk bytes, returning the
// number of bytes written. A read error is wrapped as ErrIO unless the reader
// already returned a classified error, a short or failed write as ErrIO with
// "write failed".
//
// It never delegates to WriterTo/ReaderFrom, so every read is at most chunk
// bytes.
func CopyChunked(dst io.Writer, src io.Reader, chunk int) (int64, error) {
	buf := make([]byte, chunkOrDefault(chunk))
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr == nil && w != n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, fmt.Errorf("%w: write failed: %w", ErrIO, werr)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
