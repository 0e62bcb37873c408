package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dendrascience/dendra-zip/util"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCompressDecompressFile(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		chunkSize int
	}{
		{name: "small text", data: []byte("hello world\n")},
		{name: "empty file", data: []byte{}},
		{name: "multi chunk", data: bytes.Repeat([]byte("abcdefghij"), 10000), chunkSize: 4096},
		{name: "exact chunk", data: bytes.Repeat([]byte{'z'}, util.DefaultChunkSize)},
		{name: "binary", data: []byte{0x00, 0xff, 0x10, 0x20, 0x00, 0x00, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "input.txt")
			writeFile(t, input, tt.data)

			opts := util.DefaultCodecOptions()
			opts.ChunkSize = tt.chunkSize
			out := CompressFile(input, filepath.Join(dir, "gz"), opts)
			if !out.Success {
				t.Fatalf("CompressFile failed: %s", out.Message)
			}
			if out.OriginalSize != int64(len(tt.data)) {
				t.Errorf("OriginalSize = %d, want %d", out.OriginalSize, len(tt.data))
			}
			gzPath := filepath.Join(dir, "gz", "input.txt.gz")
			size, err := util.FileSize(gzPath)
			if err != nil {
				t.Fatalf("compressed output missing: %v", err)
			}
			if size != out.CompressedSize {
				t.Errorf("CompressedSize = %d, file size %d", out.CompressedSize, size)
			}

			restoreDir := filepath.Join(dir, "restored")
			back := DecompressFile(gzPath, restoreDir, util.DefaultDecodecOptions())
			if !back.Success {
				t.Fatalf("DecompressFile failed: %s", back.Message)
			}
			got, err := os.ReadFile(filepath.Join(restoreDir, "input.txt"))
			if err != nil {
				t.Fatalf("read restored: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
			if back.OriginalSize != int64(len(tt.data)) || back.CompressedSize != size {
				t.Errorf("decompress sizes = %d/%d, want %d/%d", back.OriginalSize, back.CompressedSize, len(tt.data), size)
			}
		})
	}
}

func TestCompressFileDefaultsToInputDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.bin")
	writeFile(t, input, []byte(strings.Repeat("data", 100)))

	if out := CompressFile(input, "", util.DefaultCodecOptions()); !out.Success {
		t.Fatalf("CompressFile failed: %s", out.Message)
	}
	if !util.Exists(input + GzipExt) {
		t.Error("output not written beside input")
	}
}

func TestCompressFileBackup(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	writeFile(t, input, []byte("new content"))
	writeFile(t, input+GzipExt, []byte("stale"))

	opts := util.DefaultCodecOptions()
	opts.CreateBackup = true
	if out := CompressFile(input, dir, opts); !out.Success {
		t.Fatalf("CompressFile failed: %s", out.Message)
	}
	stale, err := os.ReadFile(input + GzipExt + util.BackupSuffix)
	if err != nil || string(stale) != "stale" {
		t.Errorf("backup = %q, %v", stale, err)
	}
}

func TestCompressFileErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	writeFile(t, input, []byte("x"))

	tests := []struct {
		name    string
		input   string
		opts    util.CodecOptions
		wantErr error
	}{
		{name: "empty path", input: "", opts: util.DefaultCodecOptions(), wantErr: util.ErrInvalidParameter},
		{name: "missing input", input: filepath.Join(dir, "missing"), opts: util.DefaultCodecOptions(), wantErr: util.ErrNotFound},
		{name: "directory input", input: dir, opts: util.DefaultCodecOptions(), wantErr: util.ErrInvalidParameter},
		{name: "bad level", input: input, opts: util.CodecOptions{Level: 42}, wantErr: util.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := CompressFile(tt.input, dir, tt.opts)
			if out.Success {
				t.Fatal("expected failure")
			}
			if out.Message == "" {
				t.Error("failure without message")
			}
			if !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("error = %v, want %v", out.Err, tt.wantErr)
			}
		})
	}
}

func TestDecompressFileErrors(t *testing.T) {
	dir := t.TempDir()
	notGzip := filepath.Join(dir, "plain.gz")
	writeFile(t, notGzip, []byte("this is not gzip data at all"))

	input := filepath.Join(dir, "good.txt")
	writeFile(t, input, bytes.Repeat([]byte("payload "), 4096))
	if out := CompressFile(input, dir, util.DefaultCodecOptions()); !out.Success {
		t.Fatalf("CompressFile failed: %s", out.Message)
	}
	full, _ := os.ReadFile(input + GzipExt)
	truncated := filepath.Join(dir, "truncated.txt.gz")
	writeFile(t, truncated, full[:len(full)/2])

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "not gzip", input: notGzip, wantErr: util.ErrFormat},
		{name: "truncated", input: truncated, wantErr: util.ErrFormat},
		{name: "missing", input: filepath.Join(dir, "missing.gz"), wantErr: util.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DecompressFile(tt.input, filepath.Join(dir, "out"), util.DefaultDecodecOptions())
			if out.Success {
				t.Fatal("expected failure")
			}
			if !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("error = %v, want %v", out.Err, tt.wantErr)
			}
		})
	}
}

func TestDecompressFileStripsFinalExtension(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.txt")
	writeFile(t, input, []byte("nested"))
	if out := CompressFile(input, dir, util.DefaultCodecOptions()); !out.Success {
		t.Fatalf("CompressFile failed: %s", out.Message)
	}
	renamed := filepath.Join(dir, "a.txt.gz.bak")
	if err := os.Rename(input+GzipExt, renamed); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if out := DecompressFile(renamed, outDir, util.DefaultDecodecOptions()); !out.Success {
		t.Fatalf("DecompressFile failed: %s", out.Message)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "a.txt.gz"))
	if err != nil || string(got) != "nested" {
		t.Errorf("output = %q, %v", got, err)
	}
}
