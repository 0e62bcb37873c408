package cmd

import (
	"github.com/dendrascience/dendra-zip/codec"
	"github.com/spf13/cobra"
)

// NewCompressCmd creates the compress subcommand, which gzips one file.
func NewCompressCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "compress FILE",
		Short: "Gzip a single file",
		Long: `Compress FILE into <output-dir>/<name>.gz, reading it in fixed-size chunks.

Without --output the compressed file is written beside the input. With
--backup an existing output is first renamed to <output>.bak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := codec.CompressFile(args[0], outputDir, rt.codecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), args[0], o)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the .gz file")
	cmd.Flags().IntP("level", "l", -1, "Compression level, -1 for default or 0-9")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")
	cmd.Flags().Bool("backup", false, "Rename an existing output to .bak first")

	return cmd
}

// NewDecompressCmd creates the decompress subcommand.
func NewDecompressCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "decompress FILE.gz",
		Short: "Restore a gzipped file",
		Long: `Decompress FILE.gz into <output-dir>/<name without its final extension>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := codec.DecompressFile(args[0], outputDir, rt.decodecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), args[0], o)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the restored file")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")

	return cmd
}
