// Package util provides the shared building blocks of dzip.
//
// Outcomes:
//   - Outcome is the uniform result of every codec, archive and slice
//     operation: success flag, message, byte counts and ratio
//   - Failed and Failf wrap the sentinel errors in errors.go so callers can
//     test the failure kind with errors.Is
//
// Options:
//   - CodecOptions and DecodecOptions carry level, chunk size, parallelism,
//     password and logger settings with validated defaults
//
// Files:
//   - Chunked copying, atomic replacement, JSON sidecar files and
//     best-effort .bak backups
//   - Path guards: JoinLocal keeps archive and manifest names inside their
//     directory, PathsOverlap and SameFile keep a copy off its source
//   - BLAKE3 digests of files and buffers, hashed concurrently for trees
package util
