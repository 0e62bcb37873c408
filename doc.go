// Package main provides the dzip command-line interface.
//
// dzip compresses single files into gzip streams, builds, lists, extracts and
// edits zip archives (optionally AES-256 encrypted), and splits large files
// into independently compressed slices described by a JSON manifest.
//
// The main binary supports multiple subcommands:
//   - compress, decompress: single-file gzip streams
//   - zip, unzip, list, exists, remove: zip archives
//   - split, merge, slices: sliced compression
//   - info, verify: archive statistics and integrity checks
//   - backup, restore, seed: file backups and sample data
package main
