package cmd

import (
	"fmt"
	"strings"

	"github.com/dendrascience/dendra-zip/config"
	"github.com/dendrascience/dendra-zip/slice"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewSplitCmd creates the split subcommand.
func NewSplitCmd() *cobra.Command {
	var (
		size      string
		method    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "split FILE",
		Short: "Cut a file into independently compressed slices",
		Long: `Split FILE into slices of --size bytes, compress each into
<name>.slice_NNNN.<ext>, and record the set in <name>.manifest.json.

Sizes accept humanized values such as 64KiB or 4MB. Slices are compressed
in parallel unless --sequential is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			opts := slice.Options{CodecOptions: rt.codecOptions(cmd), Method: rt.cfg.SliceMethod(), OutputDir: outputDir}

			sliceSize, err := rt.cfg.SliceSize()
			if cmd.Flags().Changed("size") {
				sliceSize, err = config.ParseSize(size)
			}
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("method") {
				if opts.Method, err = slice.ParseMethod(strings.ToLower(method)); err != nil {
					return err
				}
			}

			o, mf := slice.Split(args[0], sliceSize, opts)
			if !o.Success {
				return o.Error()
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), mf)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s slices of %s\n", args[0], mf.TotalSlices, mf.CompressionMethod, humanize.IBytes(uint64(sliceSize)))
			return rt.report(cmd.OutOrStdout(), "total", o)
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", "", "Slice size, e.g. 1MiB (default from config)")
	cmd.Flags().StringVarP(&method, "method", "m", "gzip", "Slice codec: gzip, zstd or lz4")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for slices and manifest")
	cmd.Flags().IntP("level", "l", -1, "Compression level, -1 for default or 0-9")
	cmd.Flags().IntP("workers", "j", 0, "Concurrent slices, 0 for one per CPU")
	cmd.Flags().Bool("sequential", false, "Compress one slice at a time")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")

	return cmd
}

// NewMergeCmd creates the merge subcommand.
func NewMergeCmd() *cobra.Command {
	var (
		output   string
		manifest string
	)

	cmd := &cobra.Command{
		Use:   "merge -o OUTPUT (SLICE... | --manifest FILE)",
		Short: "Reassemble slices into the original file",
		Long: `Decompress the given slices and concatenate them into OUTPUT in argument
order. With --manifest the slice list is read from a manifest instead and
each slice's size and digest is checked before anything is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			opts := rt.decodecOptions(cmd)

			var o util.Outcome
			switch {
			case manifest != "" && len(args) > 0:
				return fmt.Errorf("%w: pass slices or --manifest, not both", util.ErrInvalidParameter)
			case manifest != "":
				o = slice.MergeManifest(manifest, output, opts)
			default:
				o = slice.Merge(args, output, opts)
			}
			return rt.report(cmd.OutOrStdout(), output, o)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the reassembled file (required)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "Read the slice list from a .manifest.json file")
	cmd.Flags().IntP("workers", "j", 0, "Concurrent decoders, 0 for one per CPU")
	cmd.Flags().Bool("sequential", false, "Decode one slice at a time")
	cmd.Flags().Bool("verify", true, "Check slice digests against the manifest")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")

	cmd.MarkFlagRequired("output")

	return cmd
}

// NewSlicesCmd creates the slices command group for slice housekeeping.
func NewSlicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slices",
		Short: "List or delete slice files in a directory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list DIR",
		Short: "List slice files in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			names, err := slice.ListSlices(args[0])
			if err != nil {
				return err
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clean DIR",
		Short: "Delete every slice file in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := slice.DeleteSlices(args[0], rt.codecOptions(cmd))
			if !o.Success {
				return o.Error()
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %s of slices\n", args[0], humanize.IBytes(uint64(o.OriginalSize)))
			return nil
		},
	})

	return cmd
}
