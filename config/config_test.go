package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dendrascience/dendra-zip/slice"
	"github.com/dendrascience/dendra-zip/util"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	opts := cfg.CodecOptions()
	if opts.Level != util.LevelDefault || opts.ChunkSize != util.DefaultChunkSize {
		t.Errorf("codec options = %+v", opts)
	}
	if !cfg.DecodecOptions().VerifyChecksum {
		t.Error("checksum verification off by default")
	}
	if cfg.SliceMethod() != slice.MethodGzip {
		t.Errorf("slice method = %v", cfg.SliceMethod())
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr error
	}{
		{
			name: "overrides merge over defaults",
			content: `
compression:
  level: 9
  backup: true
slice:
  method: zstd
  size: 4MiB
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Compression.Level != 9 || !cfg.Compression.Backup {
					t.Errorf("compression = %+v", cfg.Compression)
				}
				if cfg.Compression.ChunkSize != util.DefaultChunkSize {
					t.Errorf("chunk size default lost: %d", cfg.Compression.ChunkSize)
				}
				if cfg.SliceMethod() != slice.MethodZstd || cfg.Slice.Size != "4MiB" {
					t.Errorf("slice = %+v", cfg.Slice)
				}
			},
		},
		{
			name: "permissive decode",
			content: `
decompression:
  allow_truncated: true
  workers: 2
`,
			check: func(t *testing.T, cfg *Config) {
				d := cfg.DecodecOptions()
				if !d.AllowTruncated || d.Workers != 2 || !d.VerifyChecksum {
					t.Errorf("decodec options = %+v", d)
				}
			},
		},
		{
			name:    "level out of range",
			content: "compression:\n  level: 12\n",
			wantErr: util.ErrInvalidParameter,
		},
		{
			name:    "unknown method",
			content: "slice:\n  method: rar\n",
			wantErr: util.ErrInvalidParameter,
		},
		{
			name:    "malformed yaml",
			content: "compression: [unclosed\n",
			wantErr: util.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dzip.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFile(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load()
	if err != nil || cfg.Compression.Level != util.LevelDefault {
		t.Fatalf("Load without env = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "dzip.yaml")
	os.WriteFile(path, []byte("compression:\n  level: 1\n"), 0644)
	t.Setenv(EnvVar, path)
	cfg, err = Load()
	if err != nil || cfg.Compression.Level != 1 {
		t.Fatalf("Load with env = %+v, %v", cfg, err)
	}

	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "65536", want: 65536},
		{in: "64KiB", want: 64 * 1024},
		{in: "4MiB", want: 4 << 20},
		{in: "1 MB", want: 1_000_000},
		{in: "0", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
