// Package codec compresses and decompresses single payloads.
//
// Files are streamed through gzip in fixed-size chunks (CompressFile,
// DecompressFile) so memory stays bounded regardless of input size. In-memory
// payloads use one-shot zlib (CompressBuffer) and a growable decode buffer
// that doubles whenever the decoder fills it (DecompressBuffer).
//
// Codec failures are reported through util.Outcome with a message drawn from
// the Status table:
//   - "data error": corrupt or mis-checksummed input
//   - "buffer error": input ended before the stream did
//   - "memory error": the decode buffer could not grow
//   - "stream state error": the decoder reached an impossible state
//
// CreateBackup and RestoreBackup copy a file aside, optionally through gzip.
package codec
