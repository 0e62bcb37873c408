// Package cmd provides the command-line interface implementation for dzip.
//
// This package contains all the subcommand implementations for the dzip CLI tool.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: global flags, configuration loading and logging setup
//   - compress, decompress, backup, restore: single-file gzip streams
//   - zip, unzip, list, exists, remove: zip archives
//   - split, merge, slices: sliced compression with manifests
//   - info, verify, seed: statistics, integrity checks and sample data
//
// Each command is implemented with its own constructor function that returns
// a *cobra.Command. Commands translate flags into codec options, call the
// codec, archive or slice packages and print the resulting outcome.
package cmd
