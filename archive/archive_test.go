package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/zip"
)

// makeTree writes files (slash-separated names) under root.
func makeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

func entryNames(t *testing.T, archivePath string) []string {
	t.Helper()
	o, entries := List(archivePath, util.DefaultDecodecOptions())
	if !o.Success {
		t.Fatalf("List failed: %s", o.Message)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

var sampleTree = map[string]string{
	"a.txt":        "alpha alpha alpha alpha",
	"b.json":       `{"key": "value", "n": 42}`,
	"nested/c.dat": strings.Repeat("nested content ", 200),
}

func TestCreateExtractRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		password string
	}{
		{name: "default level", level: util.LevelDefault},
		{name: "stored", level: 0},
		{name: "best", level: util.LevelBest},
		{name: "encrypted", level: util.LevelDefault, password: "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "src")
			makeTree(t, src, sampleTree)
			archivePath := filepath.Join(dir, "out", "bundle.zip")

			opts := util.DefaultCodecOptions()
			opts.Level = tt.level
			opts.Password = tt.password
			o := Create(src, archivePath, opts)
			if !o.Success {
				t.Fatalf("Create failed: %s", o.Message)
			}
			var want int64
			for _, c := range sampleTree {
				want += int64(len(c))
			}
			if o.OriginalSize != want {
				t.Errorf("OriginalSize = %d, want %d", o.OriginalSize, want)
			}

			names := entryNames(t, archivePath)
			if got := strings.Join(names, ","); got != "a.txt,b.json,nested/c.dat" {
				t.Errorf("entries = %s", got)
			}

			dopts := util.DefaultDecodecOptions()
			dopts.Password = tt.password
			dest := filepath.Join(dir, "extracted")
			if x := Extract(archivePath, dest, dopts); !x.Success {
				t.Fatalf("Extract failed: %s", x.Message)
			}
			for name, content := range sampleTree {
				got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
				if err != nil {
					t.Errorf("missing %s: %v", name, err)
					continue
				}
				if string(got) != content {
					t.Errorf("%s content mismatch", name)
				}
			}
		})
	}
}

func TestCreateForcesExtensionAndSkipsSelf(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"one.txt": "1", "two.txt": "2"})

	o := Create(dir, filepath.Join(dir, "self"), util.DefaultCodecOptions())
	if !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}
	archivePath := filepath.Join(dir, "self.zip")
	if !util.Exists(archivePath) {
		t.Fatal("archive extension not forced")
	}
	if got := strings.Join(entryNames(t, archivePath), ","); got != "one.txt,two.txt" {
		t.Errorf("entries = %s", got)
	}
}

func TestCreateSingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "solo.log")
	makeTree(t, dir, map[string]string{"solo.log": "only me"})

	archivePath := filepath.Join(dir, "solo.zip")
	if o := Create(file, archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}
	if got := strings.Join(entryNames(t, archivePath), ","); got != "solo.log" {
		t.Errorf("entries = %s", got)
	}
}

func TestCreateErrors(t *testing.T) {
	dir := t.TempDir()
	if o := Create(filepath.Join(dir, "nope"), filepath.Join(dir, "a.zip"), util.DefaultCodecOptions()); !errors.Is(o.Err, util.ErrNotFound) {
		t.Errorf("missing source error = %v", o.Err)
	}
	if o := Create("", "a.zip", util.DefaultCodecOptions()); !errors.Is(o.Err, util.ErrInvalidParameter) {
		t.Errorf("empty source error = %v", o.Err)
	}
}

func TestExtractIntoFileDestination(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, filepath.Join(dir, "src"), sampleTree)
	archivePath := filepath.Join(dir, "a.zip")
	if o := Create(filepath.Join(dir, "src"), archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}
	dest := filepath.Join(dir, "occupied")
	os.WriteFile(dest, []byte("a file, not a directory"), 0644)

	o := Extract(archivePath, dest, util.DefaultDecodecOptions())
	if o.Success {
		t.Fatal("extracted into a regular file")
	}
	if !errors.Is(o.Err, util.ErrExpectedDirectory) {
		t.Errorf("error = %v, want ErrExpectedDirectory", o.Err)
	}
}

func TestListIsStable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	makeTree(t, src, sampleTree)
	archivePath := filepath.Join(dir, "a.zip")
	if o := Create(src, archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}

	_, first := List(archivePath, util.DefaultDecodecOptions())
	_, second := List(archivePath, util.DefaultDecodecOptions())
	if len(first) != len(second) || len(first) != len(sampleTree) {
		t.Fatalf("list lengths %d/%d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].UncompressedSize != uint64(len(sampleTree[first[i].Name])) {
			t.Errorf("%s size = %d", first[i].Name, first[i].UncompressedSize)
		}
		if first[i].Modified == "" || first[i].IsDir || first[i].Encrypted {
			t.Errorf("unexpected entry metadata %+v", first[i])
		}
	}
}

func TestContainsAndRemove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	makeTree(t, src, sampleTree)
	archivePath := filepath.Join(dir, "a.zip")
	if o := Create(src, archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}
	dopts := util.DefaultDecodecOptions()

	for name := range sampleTree {
		if o, ok := Contains(archivePath, name, dopts); !o.Success || !ok {
			t.Errorf("Contains(%s) = %v, %s", name, ok, o.Message)
		}
	}
	if o, ok := Contains(archivePath, "absent.txt", dopts); !o.Success || ok {
		t.Errorf("Contains(absent) = %v, success %v", ok, o.Success)
	}

	before := rawEntries(t, archivePath)

	o := RemoveEntry(archivePath, "nested/c.dat", util.DefaultCodecOptions())
	if !o.Success {
		t.Fatalf("RemoveEntry failed: %s", o.Message)
	}
	if util.Exists(archivePath + TempSuffix) {
		t.Error("temp archive left behind")
	}
	if _, ok := Contains(archivePath, "nested/c.dat", dopts); ok {
		t.Error("removed entry still present")
	}

	after := rawEntries(t, archivePath)
	if len(after) != len(before)-1 {
		t.Fatalf("entries after removal = %d, want %d", len(after), len(before)-1)
	}
	for name, raw := range after {
		prev, ok := before[name]
		if !ok {
			t.Errorf("unexpected entry %s", name)
			continue
		}
		if !bytes.Equal(raw.data, prev.data) || raw.method != prev.method || !raw.modified.Equal(prev.modified) {
			t.Errorf("entry %s changed during rebuild", name)
		}
	}
}

type rawEntry struct {
	data     []byte
	method   uint16
	modified time.Time
}

// rawEntries returns every entry's still-compressed bytes and header fields.
func rawEntries(t *testing.T, archivePath string) map[string]rawEntry {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer zr.Close()
	out := map[string]rawEntry{}
	for _, f := range zr.File {
		rc, err := f.OpenRaw()
		if err != nil {
			t.Fatalf("open raw %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read raw %s: %v", f.Name, err)
		}
		out[f.Name] = rawEntry{data: data, method: f.Method, modified: f.Modified}
	}
	return out
}

func TestRemoveEntryErrors(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, filepath.Join(dir, "src"), map[string]string{"x.txt": "x"})
	archivePath := filepath.Join(dir, "a.zip")
	if o := Create(filepath.Join(dir, "src"), archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}

	if o := RemoveEntry(archivePath, "missing.txt", util.DefaultCodecOptions()); !errors.Is(o.Err, util.ErrNotFound) {
		t.Errorf("missing entry error = %v", o.Err)
	}
	if util.Exists(archivePath + TempSuffix) {
		t.Error("temp file created for missing entry")
	}
	if o := RemoveEntry(filepath.Join(dir, "none.zip"), "x.txt", util.DefaultCodecOptions()); !errors.Is(o.Err, util.ErrNotFound) {
		t.Errorf("missing archive error = %v", o.Err)
	}
}

func TestExtractDirectoryEntriesAndZipSlip(t *testing.T) {
	dir := t.TempDir()

	build := func(name string, entries []string) string {
		p := filepath.Join(dir, name)
		f, err := os.Create(p)
		if err != nil {
			t.Fatal(err)
		}
		zw := zip.NewWriter(f)
		for _, e := range entries {
			w, err := zw.Create(e)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(e, "/") {
				w.Write([]byte("content of " + e))
			}
		}
		zw.Close()
		f.Close()
		return p
	}

	good := build("dirs.zip", []string{"empty/", "deep/er/file.txt"})
	dest := filepath.Join(dir, "out")
	if o := Extract(good, dest, util.DefaultDecodecOptions()); !o.Success {
		t.Fatalf("Extract failed: %s", o.Message)
	}
	if info, err := os.Stat(filepath.Join(dest, "empty")); err != nil || !info.IsDir() {
		t.Errorf("directory entry not created: %v", err)
	}
	if !util.Exists(filepath.Join(dest, "deep", "er", "file.txt")) {
		t.Error("nested file not extracted")
	}

	evil := build("evil.zip", []string{"../escape.txt"})
	o := Extract(evil, filepath.Join(dir, "evil-out"), util.DefaultDecodecOptions())
	if o.Success || !errors.Is(o.Err, util.ErrFormat) {
		t.Errorf("zip slip outcome = %+v", o)
	}
	if util.Exists(filepath.Join(dir, "escape.txt")) {
		t.Error("entry escaped destination")
	}
}

func TestEncryptedNeedsPassword(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, filepath.Join(dir, "src"), map[string]string{"secret.txt": "classified"})
	archivePath := filepath.Join(dir, "sealed.zip")
	opts := util.DefaultCodecOptions()
	opts.Password = "pw"
	if o := Create(filepath.Join(dir, "src"), archivePath, opts); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}

	_, entries := List(archivePath, util.DefaultDecodecOptions())
	if len(entries) != 1 || !entries[0].Encrypted {
		t.Fatalf("entries = %+v, want one encrypted", entries)
	}
	if entries[0].Modified != "" {
		t.Errorf("encrypted entry modified = %q, want empty", entries[0].Modified)
	}
	o := Extract(archivePath, filepath.Join(dir, "out"), util.DefaultDecodecOptions())
	if o.Success || !strings.Contains(o.Message, "password required") {
		t.Errorf("extract without password = %+v", o)
	}
}

func TestSizeAndVerify(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, filepath.Join(dir, "src"), sampleTree)
	archivePath := filepath.Join(dir, "a.zip")
	if o := Create(filepath.Join(dir, "src"), archivePath, util.DefaultCodecOptions()); !o.Success {
		t.Fatalf("Create failed: %s", o.Message)
	}

	o, size := Size(archivePath)
	info, _ := os.Stat(archivePath)
	if !o.Success || size != info.Size() {
		t.Errorf("Size = %d (%s), want %d", size, o.Message, info.Size())
	}
	if o, _ := Size(filepath.Join(dir, "missing.zip")); !errors.Is(o.Err, util.ErrNotFound) {
		t.Errorf("Size(missing) error = %v", o.Err)
	}

	if o, problems := Verify(archivePath, util.DefaultDecodecOptions()); !o.Success || len(problems) != 0 {
		t.Errorf("Verify = %s, %v", o.Message, problems)
	}
}
