package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dendrascience/dendra-zip/util"
	"github.com/klauspost/compress/zlib"
)

// Bytes is the set of in-memory inputs accepted by the buffer codec.
type Bytes interface {
	~[]byte | ~string
}

// minDecodeBuffer is the smallest initial decode buffer when no size hint is given.
const minDecodeBuffer = 1024

// CompressBound returns an upper bound on the zlib-compressed size of n bytes.
func CompressBound(n int) int {
	return n + n>>12 + n>>14 + n>>25 + 13
}

// CompressBuffer zlib-compresses data in one shot. The output starts with a
// buffer of CompressBound capacity and is clipped to the produced length.
func CompressBuffer[B Bytes](data B, opts util.CodecOptions) (util.Outcome, []byte) {
	if len(data) == 0 {
		return util.Failf(util.ErrInvalidParameter, "empty input"), nil
	}
	if err := opts.Validate(); err != nil {
		return util.Failed(err), nil
	}

	bound := CompressBound(len(data))
	buf := bytes.NewBuffer(make([]byte, 0, bound))
	zw, err := zlib.NewWriterLevel(buf, opts.Level)
	if err != nil {
		return util.Failed(fmt.Errorf("%w: compression level %d: %w", util.ErrInvalidParameter, opts.Level, err)), nil
	}
	if _, err := zw.Write([]byte(data)); err != nil {
		return util.Failed(fmt.Errorf("%w: %s: %w", util.ErrFormat, Classify(err), err)), nil
	}
	if err := zw.Close(); err != nil {
		return util.Failed(fmt.Errorf("%w: %s: %w", util.ErrFormat, Classify(err), err)), nil
	}

	out := buf.Bytes()
	if len(out) > bound {
		opts.Log().Warn("compressed output exceeded bound", "bound", bound, "size", len(out))
	}
	out = out[:len(out):len(out)]
	return util.Succeeded(int64(len(data)), int64(len(out))), out
}

// DecompressBuffer inflates a zlib stream held in memory. expectedSize, when
// positive, sizes the initial buffer; otherwise the buffer starts at four
// times the input (at least 1 KiB). A full buffer doubles.
//
// Input that runs out before the stream signals its end is a failure. With
// opts.AllowTruncated it is accepted instead, unless a hint was given and the
// produced size misses it.
func DecompressBuffer[B Bytes](data B, expectedSize int, opts util.DecodecOptions) (util.Outcome, []byte) {
	if len(data) == 0 {
		return util.Failf(util.ErrInvalidParameter, "empty input"), nil
	}
	if expectedSize < 0 {
		return util.Failf(util.ErrInvalidParameter, "negative expected size %d", expectedSize), nil
	}
	log := opts.Log()

	size := expectedSize
	if size == 0 {
		size = max(4*len(data), minDecodeBuffer)
	}

	zr, err := zlib.NewReader(bytes.NewReader([]byte(data)))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return util.Failed(fmt.Errorf("%w: %s: %w", util.ErrFormat, Classify(err), err)), nil
	}
	defer zr.Close()

	out := make([]byte, size)
	total, resizes := 0, 0
	ended := false
	for !ended {
		if total == len(out) {
			if len(out) > math.MaxInt/2 {
				err := fmt.Errorf("%w: %s: %w", util.ErrFormat, StatusMemError, errBufferLimit)
				return util.Failed(err).WithSizes(int64(total), int64(len(data))), nil
			}
			grown := make([]byte, 2*len(out))
			copy(grown, out[:total])
			out = grown
			resizes++
			log.Debug("decode buffer grown", "size", len(out), "resizes", resizes)
		}

		n, rerr := zr.Read(out[total:])
		total += n
		switch {
		case rerr == nil:
		case rerr == io.EOF:
			ended = true
		case errors.Is(rerr, io.ErrUnexpectedEOF):
			if !opts.AllowTruncated || (expectedSize > 0 && total != expectedSize) {
				err := fmt.Errorf("%w: %s: stream truncated after %d bytes: %w", util.ErrFormat, StatusBufError, total, rerr)
				return util.Failed(err).WithSizes(int64(total), int64(len(data))), nil
			}
			log.Warn("input exhausted before stream end", "produced", total)
			ended = true
		default:
			err := fmt.Errorf("%w: %s: %w", util.ErrFormat, Classify(rerr), rerr)
			return util.Failed(err).WithSizes(int64(total), int64(len(data))), nil
		}
	}

	if resizes > 0 {
		log.Info("decode buffer resized", "resizes", resizes, "final", len(out))
	}
	out = out[:total:total]
	return util.Succeeded(int64(total), int64(len(data))), out
}
