// Package config provides configuration loading for dzip.
//
// Defaults may be overridden by a single YAML file specified by:
//   - DZIP_CONFIG environment variable, or
//   - --config flag passed to the command
//
// Without either, the built-in defaults apply. Command-line flags always win
// over file values.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dendrascience/dendra-zip/slice"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "DZIP_CONFIG"

// Config is the dzip configuration.
type Config struct {
	// Compression configures compress-side defaults.
	Compression CompressionConfig `yaml:"compression"`

	// Decompression configures extract/merge defaults.
	Decompression DecompressionConfig `yaml:"decompression"`

	// Slice configures split defaults.
	Slice SliceConfig `yaml:"slice"`
}

// CompressionConfig configures compress-side defaults.
type CompressionConfig struct {
	// Level is -1 (codec default) or 0-9.
	Level int `yaml:"level"`

	// ChunkSize is the number of bytes moved per read.
	// Default: 16384
	ChunkSize int `yaml:"chunk_size"`

	Parallel bool `yaml:"parallel"`

	// Workers bounds concurrent slice tasks. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Backup moves an existing output to <output>.bak before overwriting.
	Backup bool `yaml:"backup"`
}

// DecompressionConfig configures extract/merge defaults.
type DecompressionConfig struct {
	ChunkSize      int  `yaml:"chunk_size"`
	Parallel       bool `yaml:"parallel"`
	Workers        int  `yaml:"workers"`
	VerifyChecksum bool `yaml:"verify_checksum"`

	// AllowTruncated accepts in-memory streams that end without an end marker.
	AllowTruncated bool `yaml:"allow_truncated"`
}

// SliceConfig configures split defaults.
type SliceConfig struct {
	// Size is the slice size in bytes, or a humanized size such as "4MiB".
	Size string `yaml:"size"`

	// Method is gzip, zstd or lz4.
	Method string `yaml:"method"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compression: CompressionConfig{
			Level:     util.LevelDefault,
			ChunkSize: util.DefaultChunkSize,
			Parallel:  true,
		},
		Decompression: DecompressionConfig{
			ChunkSize:      util.DefaultChunkSize,
			Parallel:       true,
			VerifyChecksum: true,
		},
		Slice: SliceConfig{
			Size:   "1MiB",
			Method: slice.MethodGzip.String(),
		},
	}
}

// Load reads the file named by DZIP_CONFIG, or returns the defaults when the
// variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, layered over the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: config file %s", util.ErrNotFound, path)
		}
		return fmt.Errorf("%w: read config %s: %w", util.ErrIO, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse config %s: %w", util.ErrFormat, path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.CodecOptions().Validate(); err != nil {
		return err
	}
	if err := c.DecodecOptions().Validate(); err != nil {
		return err
	}
	if _, err := slice.ParseMethod(strings.ToLower(c.Slice.Method)); err != nil {
		return err
	}
	if _, err := c.SliceSize(); err != nil {
		return err
	}
	return nil
}

// CodecOptions converts the compression section into codec options.
func (c *Config) CodecOptions() util.CodecOptions {
	return util.CodecOptions{
		Level:        c.Compression.Level,
		ChunkSize:    c.Compression.ChunkSize,
		Parallel:     c.Compression.Parallel,
		Workers:      c.Compression.Workers,
		CreateBackup: c.Compression.Backup,
	}
}

// DecodecOptions converts the decompression section into decode options.
func (c *Config) DecodecOptions() util.DecodecOptions {
	return util.DecodecOptions{
		ChunkSize:      c.Decompression.ChunkSize,
		Parallel:       c.Decompression.Parallel,
		Workers:        c.Decompression.Workers,
		VerifyChecksum: c.Decompression.VerifyChecksum,
		AllowTruncated: c.Decompression.AllowTruncated,
	}
}

// SliceMethod returns the configured slice method.
func (c *Config) SliceMethod() slice.Method {
	m, _ := slice.ParseMethod(strings.ToLower(c.Slice.Method))
	return m
}

// SliceSize parses the configured slice size.
func (c *Config) SliceSize() (int64, error) {
	return ParseSize(c.Slice.Size)
}

// ParseSize parses a byte count such as "65536", "64KiB" or "4 MB".
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %w", util.ErrInvalidParameter, s, err)
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: size %q out of range", util.ErrInvalidParameter, s)
	}
	return int64(n), nil
}
