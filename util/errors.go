package util

import "errors"

// Sentinel errors for the dendra-zip operations.
// Every failed Outcome carries an error wrapping exactly one of these kinds, so
// callers can branch with errors.Is() without parsing messages.
var (
	// Caller errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// Missing inputs, archive entries or slices
	ErrNotFound = errors.New("not found")

	// Open, create, read, write, rename or remove failures
	ErrIO = errors.New("i/o failure")

	// Malformed compressed stream or archive content
	ErrFormat = errors.New("format error")

	// Some entries or slices failed while others succeeded
	ErrPartialFailure = errors.New("partial failure")

	// File and directory errors
	ErrExpectedFile      = errors.New("expected file, got directory")
	ErrExpectedDirectory = errors.New("expected directory but got file")
)
