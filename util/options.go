package util

import (
	"fmt"
	"log/slog"
	"runtime"
)

const (
	// DefaultChunkSize is the read granularity of every streaming operation.
	DefaultChunkSize = 16 * 1024

	// LevelDefault selects the codec's own default compression level.
	LevelDefault = -1
	LevelFastest = 1
	LevelBest    = 9
)

// CodecOptions configures compression-side operations.
type CodecOptions struct {
	Level        int
	ChunkSize    int
	Parallel     bool
	Workers      int
	CreateBackup bool
	Password     string

	// Logger receives progress and warnings. Nil discards.
	Logger *slog.Logger
}

// DecodecOptions configures decompression-side operations.
type DecodecOptions struct {
	ChunkSize      int
	Parallel       bool
	Workers        int
	Password       string
	VerifyChecksum bool

	// AllowTruncated accepts an in-memory decode whose input runs out before
	// the compressed stream signals its end, returning what was produced.
	// The output length is then unchecked.
	AllowTruncated bool

	Logger *slog.Logger
}

// DefaultCodecOptions returns the options used when a caller has no opinion.
func DefaultCodecOptions() CodecOptions {
	return CodecOptions{
		Level:     LevelDefault,
		ChunkSize: DefaultChunkSize,
		Parallel:  true,
	}
}

// DefaultDecodecOptions returns the decompression defaults.
func DefaultDecodecOptions() DecodecOptions {
	return DecodecOptions{
		ChunkSize:      DefaultChunkSize,
		Parallel:       true,
		VerifyChecksum: true,
	}
}

// Validate reports a parameter error for out-of-range settings.
func (o CodecOptions) Validate() error {
	if o.Level < LevelDefault || o.Level > LevelBest {
		return fmt.Errorf("%w: compression level %d outside [%d, %d]", ErrInvalidParameter, o.Level, LevelDefault, LevelBest)
	}
	if o.ChunkSize < 0 {
		return fmt.Errorf("%w: negative chunk size %d", ErrInvalidParameter, o.ChunkSize)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidParameter, o.Workers)
	}
	return nil
}

// Chunk returns the effective chunk size.
func (o CodecOptions) Chunk() int { return chunkOrDefault(o.ChunkSize) }

// Log returns the configured logger or a discarding one.
func (o CodecOptions) Log() *slog.Logger { return loggerOrDiscard(o.Logger) }

// WorkerCount returns the bound on concurrent slice tasks.
func (o CodecOptions) WorkerCount() int { return workersOrDefault(o.Parallel, o.Workers) }

func (o DecodecOptions) Validate() error {
	if o.ChunkSize < 0 {
		return fmt.Errorf("%w: negative chunk size %d", ErrInvalidParameter, o.ChunkSize)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidParameter, o.Workers)
	}
	return nil
}

func (o DecodecOptions) Chunk() int { return chunkOrDefault(o.ChunkSize) }

func (o DecodecOptions) Log() *slog.Logger { return loggerOrDiscard(o.Logger) }

func (o DecodecOptions) WorkerCount() int { return workersOrDefault(o.Parallel, o.Workers) }

func chunkOrDefault(n int) int {
	if n <= 0 {
		return DefaultChunkSize
	}
	return n
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

func workersOrDefault(parallel bool, n int) int {
	if !parallel {
		return 1
	}
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
