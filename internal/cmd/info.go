package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dendrascience/dendra-zip/archive"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// archiveStats summarizes the entries of one archive.
type archiveStats struct {
	Path             string  `json:"path"`
	Files            int     `json:"files"`
	Directories      int     `json:"directories"`
	Encrypted        int     `json:"encrypted"`
	UncompressedSize uint64  `json:"uncompressed_size"`
	CompressedSize   uint64  `json:"compressed_size"`
	FileSize         int64   `json:"file_size"`
	Ratio            float64 `json:"ratio"`
}

// treeStats summarizes a directory tree on disk.
type treeStats struct {
	Path    string            `json:"path"`
	Files   int               `json:"files"`
	Bytes   int64             `json:"bytes"`
	Digests map[string]string `json:"digests,omitempty"`
}

// NewInfoCmd creates the info subcommand. It reports entry statistics for an
// archive, or file counts for a directory tree.
func NewInfoCmd() *cobra.Command {
	var (
		showProgress bool
		digests      bool
	)

	cmd := &cobra.Command{
		Use:   "info PATH",
		Short: "Show statistics for an archive or a directory tree",
		Long: `Show entry counts and sizes for a zip archive.

When PATH is a directory, recursively count its regular files and total
bytes instead. With --digest every file's BLAKE3 digest is listed as well,
which is useful for comparing a tree before zipping and after unzipping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", util.ErrNotFound, args[0])
			}
			if info.IsDir() {
				stats, err := countTree(cmd, args[0], showProgress, digests)
				if err != nil {
					return err
				}
				return printTreeStats(cmd, rt, stats)
			}
			stats, err := describeArchive(cmd, rt, args[0])
			if err != nil {
				return err
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Archive: %s\n", stats.Path)
			fmt.Fprintf(w, "  Files: %d\n", stats.Files)
			fmt.Fprintf(w, "  Directories: %d\n", stats.Directories)
			fmt.Fprintf(w, "  Encrypted: %d\n", stats.Encrypted)
			fmt.Fprintf(w, "  Uncompressed: %s\n", humanize.IBytes(stats.UncompressedSize))
			fmt.Fprintf(w, "  Compressed: %s (ratio %.3f)\n", humanize.IBytes(stats.CompressedSize), stats.Ratio)
			fmt.Fprintf(w, "  On disk: %s\n", humanize.IBytes(uint64(stats.FileSize)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress every 10,000 files when counting a tree")
	cmd.Flags().BoolVar(&digests, "digest", false, "List BLAKE3 digests when counting a tree")

	return cmd
}

func describeArchive(cmd *cobra.Command, rt *runtime, path string) (archiveStats, error) {
	o, entries := archive.List(path, rt.decodecOptions(cmd))
	if !o.Success {
		return archiveStats{}, o.Error()
	}
	o, size := archive.Size(path)
	if !o.Success {
		return archiveStats{}, o.Error()
	}

	stats := archiveStats{Path: path, FileSize: size}
	for _, e := range entries {
		if e.IsDir {
			stats.Directories++
			continue
		}
		stats.Files++
		if e.Encrypted {
			stats.Encrypted++
		}
		stats.UncompressedSize += e.UncompressedSize
		stats.CompressedSize += e.CompressedSize
	}
	if stats.UncompressedSize > 0 {
		stats.Ratio = float64(stats.CompressedSize) / float64(stats.UncompressedSize)
	}
	return stats, nil
}

func countTree(cmd *cobra.Command, root string, showProgress, digests bool) (treeStats, error) {
	stats := treeStats{Path: root}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += info.Size()
		if digests {
			paths = append(paths, path)
		}
		if showProgress && stats.Files%10000 == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Progress: %d files counted\n", stats.Files)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("%w: counting files in %s: %w", util.ErrIO, root, err)
	}

	if digests {
		stats.Digests = make(map[string]string, len(paths))
		for path, res := range util.DigestFiles(paths) {
			if res.Err != nil {
				return stats, res.Err
			}
			rel, _ := filepath.Rel(root, path)
			stats.Digests[filepath.ToSlash(rel)] = res.Digest
		}
	}
	return stats, nil
}

func printTreeStats(cmd *cobra.Command, rt *runtime, stats treeStats) error {
	if rt.json {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Total files: %d\n", stats.Files)
	fmt.Fprintf(w, "Total size: %s\n", humanize.IBytes(uint64(stats.Bytes)))
	names := make([]string, 0, len(stats.Digests))
	for name := range stats.Digests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s  %s\n", stats.Digests[name], name)
	}
	return nil
}
