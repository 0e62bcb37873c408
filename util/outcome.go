package util

import (
	"errors"
	"fmt"
)

// Outcome is the uniform result of every codec, archive and slice operation.
// Success is true iff Message is empty. Sizes are in bytes; Ratio is
// CompressedSize/OriginalSize, or 0 when OriginalSize is 0.
type Outcome struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Ratio          float64 `json:"compression_ratio"`

	// Err is the wrapped cause of a failure, nil on success.
	Err error `json:"-"`
}

// Succeeded builds a successful Outcome. For decompression the caller passes
// the produced size as original and the consumed size as compressed.
func Succeeded(original, compressed int64) Outcome {
	o := Outcome{
		Success:        true,
		OriginalSize:   original,
		CompressedSize: compressed,
	}
	if original > 0 {
		o.Ratio = float64(compressed) / float64(original)
	}
	return o
}

// Failed builds a failed Outcome from err. A nil err is treated as a
// programming mistake and reported as an unknown failure.
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Outcome{Message: err.Error(), Err: err}
}

// Failf wraps kind with a formatted message and returns a failed Outcome.
func Failf(kind error, format string, args ...any) Outcome {
	return Failed(fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}

// WithSizes returns a copy of a failed outcome carrying the partial counts
// reached before the failure.
func (o Outcome) WithSizes(original, compressed int64) Outcome {
	o.OriginalSize = original
	o.CompressedSize = compressed
	if original > 0 {
		o.Ratio = float64(compressed) / float64(original)
	}
	return o
}

// Error returns the outcome's cause, nil on success.
func (o Outcome) Error() error {
	if o.Success {
		return nil
	}
	if o.Err != nil {
		return o.Err
	}
	return errors.New(o.Message)
}

func (o Outcome) String() string {
	if !o.Success {
		return "failed: " + o.Message
	}
	return fmt.Sprintf("ok: %d -> %d bytes (ratio %.3f)", o.OriginalSize, o.CompressedSize, o.Ratio)
}
