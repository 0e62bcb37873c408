// Package slice cuts large files into independently compressed pieces and
// joins them back together.
//
// Split reads fixed-size ranges of a file and compresses each into its own
// <name>.slice_NNNN.<ext> file, optionally on a bounded pool of workers,
// then records the slice set in a <name>.manifest.json sidecar. Merge takes
// an explicit ordered list of slice files; MergeManifest reads the list
// from a manifest and verifies every slice's size and BLAKE3 digest.
//
// Slices can be gzip (default), zstd or lz4. Merge identifies the codec
// from each file's magic bytes, so plain .gz files produced elsewhere merge
// just as well.
package slice
