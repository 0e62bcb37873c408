package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dendrascience/dendra-zip/archive"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewZipCmd creates the zip subcommand.
func NewZipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zip SOURCE ARCHIVE",
		Short: "Build a zip archive from a file or directory tree",
		Long: `Add SOURCE, a single file or every regular file beneath a directory, to
ARCHIVE. ".zip" is appended when ARCHIVE has no extension. With --password
every entry is AES-256 encrypted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := archive.Create(args[0], args[1], rt.codecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), archive.ArchivePath(args[1]), o)
		},
	}

	cmd.Flags().IntP("level", "l", -1, "Deflate level, -1 for default or 0-9 (0 stores)")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")
	cmd.Flags().StringP("password", "p", "", "Encrypt entries with AES-256")

	return cmd
}

// NewUnzipCmd creates the unzip subcommand.
func NewUnzipCmd() *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "unzip ARCHIVE",
		Short: "Extract every entry of a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := archive.Extract(args[0], destDir, rt.decodecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), args[0], o)
		},
	}

	cmd.Flags().StringVarP(&destDir, "output", "o", ".", "Destination directory")
	cmd.Flags().StringP("password", "p", "", "Password for encrypted entries")
	cmd.Flags().Bool("verify", true, "Check each entry's CRC-32 while extracting")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")

	return cmd
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List the entries of a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o, entries := archive.List(args[0], rt.decodecOptions(cmd))
			if !o.Success {
				return o.Error()
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SIZE\tPACKED\tMODIFIED\tFLAGS\tNAME")
			for _, e := range entries {
				flags := "-"
				if e.Encrypted {
					flags = "enc"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					humanize.IBytes(e.UncompressedSize), humanize.IBytes(e.CompressedSize), e.Modified, flags, e.Name)
			}
			return tw.Flush()
		},
	}
}

// NewExistsCmd creates the exists subcommand. It exits non-zero when the
// entry is absent.
func NewExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists ARCHIVE NAME",
		Short: "Check whether an archive contains an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o, found := archive.Contains(args[0], args[1], rt.decodecOptions(cmd))
			if !o.Success {
				return o.Error()
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), map[string]any{"name": args[1], "exists": found})
			}
			if !found {
				return fmt.Errorf("%s: no entry named %q", args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: found %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewRemoveCmd creates the remove subcommand.
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ARCHIVE NAME",
		Short: "Remove one entry by rebuilding the archive",
		Long: `Copy every entry except NAME into ARCHIVE.tmp without recompressing, then
rename the copy over ARCHIVE.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := archive.RemoveEntry(args[0], args[1], rt.codecOptions(cmd))
			if !o.Success {
				return o.Error()
			}
			if rt.json {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %s\n", args[0], args[1])
			return nil
		},
	}
}
