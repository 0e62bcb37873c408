package util

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/zeebo/blake3"
)

// FileDigest calculates the BLAKE3 digest of the file at path.
// It returns the digest as a hexadecimal string.
func FileDigest(path string) (string, error) {
	if _, err := StatRegular(path); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer file.Close()
	return Digest(file)
}

// Digest calculates the BLAKE3 digest of data from an io.Reader.
func Digest(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: hash: %w", ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes returns the hex BLAKE3 digest of b.
func DigestBytes(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DigestResult is one file's digest from DigestFiles.
type DigestResult struct {
	Path   string
	Digest string
	Err    error
}

func digestWorker(paths <-chan string, results chan<- DigestResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for p := range paths {
		d, err := FileDigest(p)
		results <- DigestResult{Path: p, Digest: d, Err: err}
	}
}

// DigestFiles hashes every path concurrently and returns results keyed by
// path. Per-file failures are reported in the result, not as a call error.
func DigestFiles(paths []string) map[string]DigestResult {
	workers := min(runtime.NumCPU(), max(len(paths), 1))
	pathChan := make(chan string, workers)
	resultChan := make(chan DigestResult, workers)
	var wg sync.WaitGroup

	wg.Add(workers)
	for range workers {
		go digestWorker(pathChan, resultChan, &wg)
	}

	go func() {
		defer close(pathChan)
		for _, p := range paths {
			pathChan <- p
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	out := make(map[string]DigestResult, len(paths))
	for r := range resultChan {
		out[r.Path] = r
	}
	return out
}
