package util

import (
	"errors"
	"testing"
)

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name       string
		original   int64
		compressed int64
		wantRatio  float64
	}{
		{name: "half", original: 1000, compressed: 500, wantRatio: 0.5},
		{name: "expansion", original: 10, compressed: 30, wantRatio: 3},
		{name: "zero original", original: 0, compressed: 20, wantRatio: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Succeeded(tt.original, tt.compressed)
			if !o.Success || o.Message != "" || o.Err != nil {
				t.Errorf("Succeeded produced failure state: %+v", o)
			}
			if o.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", o.Ratio, tt.wantRatio)
			}
			if o.Error() != nil {
				t.Errorf("Error() = %v, want nil", o.Error())
			}
		})
	}
}

func TestFailed(t *testing.T) {
	o := Failf(ErrNotFound, "file %s", "a.txt")
	if o.Success {
		t.Fatal("Failf returned success")
	}
	if o.Message != "not found: file a.txt" {
		t.Errorf("Message = %q", o.Message)
	}
	if !errors.Is(o.Error(), ErrNotFound) {
		t.Errorf("Error() = %v, want ErrNotFound", o.Error())
	}

	if o := Failed(nil); o.Success || o.Message == "" {
		t.Errorf("Failed(nil) = %+v, want non-empty failure", o)
	}

	partial := Failed(ErrIO).WithSizes(100, 40)
	if partial.Success || partial.OriginalSize != 100 || partial.Ratio != 0.4 {
		t.Errorf("WithSizes = %+v", partial)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    CodecOptions
		wantErr bool
	}{
		{name: "defaults", opts: DefaultCodecOptions()},
		{name: "store", opts: CodecOptions{Level: 0}},
		{name: "best", opts: CodecOptions{Level: 9}},
		{name: "level too high", opts: CodecOptions{Level: 10}, wantErr: true},
		{name: "level too low", opts: CodecOptions{Level: -2}, wantErr: true},
		{name: "negative chunk", opts: CodecOptions{ChunkSize: -1}, wantErr: true},
		{name: "negative workers", opts: CodecOptions{Workers: -3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Validate() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o CodecOptions
	if o.Chunk() != DefaultChunkSize {
		t.Errorf("Chunk() = %d, want %d", o.Chunk(), DefaultChunkSize)
	}
	if o.Log() == nil {
		t.Error("Log() returned nil")
	}
	if o.WorkerCount() != 1 {
		t.Errorf("sequential WorkerCount() = %d, want 1", o.WorkerCount())
	}
	o.Parallel, o.Workers = true, 3
	if o.WorkerCount() != 3 {
		t.Errorf("WorkerCount() = %d, want 3", o.WorkerCount())
	}
}
