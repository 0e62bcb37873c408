package codec

import (
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Status is the codec condition behind a failure, in the vocabulary of the
// classic inflate/deflate return codes.
type Status int

const (
	StatusOK Status = iota
	StatusStreamEnd
	StatusStreamError
	StatusDataError
	StatusMemError
	StatusBufError
	StatusVersionError
	StatusUnknown
)

var statusText = map[Status]string{
	StatusOK:           "ok",
	StatusStreamEnd:    "stream end",
	StatusStreamError:  "stream state error",
	StatusDataError:    "data error",
	StatusMemError:     "memory error",
	StatusBufError:     "buffer error",
	StatusVersionError: "version error",
	StatusUnknown:      "unknown error",
}

func (s Status) String() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return statusText[StatusUnknown]
}

// errBufferLimit reports that the decode buffer cannot grow any further.
var errBufferLimit = errors.New("decode buffer cannot grow")

// Classify maps an error returned by the flate, zlib or gzip engines onto a Status.
func Classify(err error) Status {
	var (
		corrupt  flate.CorruptInputError
		internal flate.InternalError
	)
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, io.EOF):
		return StatusStreamEnd
	case errors.As(err, &corrupt),
		errors.Is(err, zlib.ErrChecksum),
		errors.Is(err, zlib.ErrHeader),
		errors.Is(err, zlib.ErrDictionary),
		errors.Is(err, gzip.ErrChecksum),
		errors.Is(err, gzip.ErrHeader):
		return StatusDataError
	case errors.As(err, &internal):
		return StatusStreamError
	case errors.Is(err, errBufferLimit):
		return StatusMemError
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrShortBuffer),
		errors.Is(err, io.ErrShortWrite):
		return StatusBufError
	default:
		return StatusUnknown
	}
}
