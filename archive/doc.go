// Package archive builds, reads and rewrites zip archives.
//
// Create walks a file or directory and stores every regular file as a
// DEFLATE entry named by its slash-separated relative path. Extract, List,
// Contains, Size and Verify read an existing archive. RemoveEntry rewrites
// the archive without one entry, since zip has no in-place delete.
//
// Password-protected archives are written with AES-256 entries and opened
// with the same password on extraction.
package archive
