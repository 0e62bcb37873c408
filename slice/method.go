package slice

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Method identifies the codec a slice file is compressed with. Every method
// is self-describing on disk, so Merge detects it from the file's magic
// bytes rather than trusting the extension.
type Method uint8

const (
	// MethodGzip is the default: DEFLATE in a gzip frame.
	MethodGzip Method = iota
	MethodZstd
	MethodLZ4
)

// String returns the manifest name of a method.
func (m Method) String() string {
	switch m {
	case MethodGzip:
		return "gzip"
	case MethodZstd:
		return "zstd"
	case MethodLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// Ext returns the slice file extension for a method, without the dot.
func (m Method) Ext() string {
	switch m {
	case MethodZstd:
		return "zst"
	case MethodLZ4:
		return "lz4"
	default:
		return "gz"
	}
}

// ParseMethod parses a method from its manifest name. The empty string
// selects gzip.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "gzip", "gz":
		return MethodGzip, nil
	case "zstd", "zst":
		return MethodZstd, nil
	case "lz4":
		return MethodLZ4, nil
	default:
		return 0, fmt.Errorf("%w: unknown slice method %q", util.ErrInvalidParameter, name)
	}
}

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DetectMethod identifies a slice codec from the first bytes of its file.
func DetectMethod(header []byte) (Method, error) {
	switch {
	case bytes.HasPrefix(header, magicGzip):
		return MethodGzip, nil
	case bytes.HasPrefix(header, magicZstd):
		return MethodZstd, nil
	case bytes.HasPrefix(header, magicLZ4):
		return MethodLZ4, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized slice header % x", util.ErrFormat, header[:min(len(header), 4)])
	}
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// newEncoder wraps w in the method's streaming compressor at level.
func (m Method) newEncoder(w io.Writer, level int) (io.WriteCloser, error) {
	switch m {
	case MethodGzip:
		return gzip.NewWriterLevel(w, level)
	case MethodZstd:
		zl := zstd.SpeedDefault
		if level > 0 {
			zl = zstd.EncoderLevelFromZstd(level)
		}
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zl))
	case MethodLZ4:
		zw := lz4.NewWriter(w)
		cl := lz4.Fast
		if level > 0 {
			cl = lz4Levels[min(level, len(lz4Levels))-1]
		}
		if err := zw.Apply(lz4.CompressionLevelOption(cl)); err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: unknown slice method %d", util.ErrInvalidParameter, m)
	}
}

// newDecoder wraps r in the method's streaming decompressor.
func (m Method) newDecoder(r io.Reader) (io.ReadCloser, error) {
	switch m {
	case MethodGzip:
		return gzip.NewReader(r)
	case MethodZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case MethodLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: unknown slice method %d", util.ErrInvalidParameter, m)
	}
}
