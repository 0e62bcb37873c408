package cmd

import (
	"github.com/dendrascience/dendra-zip/codec"
	"github.com/spf13/cobra"
)

// NewBackupCmd creates the backup subcommand.
func NewBackupCmd() *cobra.Command {
	var compress bool

	cmd := &cobra.Command{
		Use:   "backup ORIGINAL BACKUP",
		Short: "Copy a file to a backup location, optionally gzipped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := codec.CreateBackup(args[0], args[1], compress, rt.codecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), args[1], o)
		},
	}

	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "Gzip the backup copy")
	cmd.Flags().IntP("level", "l", -1, "Compression level when --compress is set")

	return cmd
}

// NewRestoreCmd creates the restore subcommand.
func NewRestoreCmd() *cobra.Command {
	var decompress bool

	cmd := &cobra.Command{
		Use:   "restore BACKUP ORIGINAL",
		Short: "Restore a file from a backup",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			o := codec.RestoreBackup(args[0], args[1], decompress, rt.decodecOptions(cmd))
			return rt.report(cmd.OutOrStdout(), args[1], o)
		},
	}

	cmd.Flags().BoolVarP(&decompress, "decompress", "z", false, "The backup is gzipped")

	return cmd
}
