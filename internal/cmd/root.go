package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dendrascience/dendra-zip/config"
	"github.com/dendrascience/dendra-zip/version"
	"github.com/spf13/cobra"
)

const (
	groupCompression = "compression"
	groupArchives    = "archives"
	groupSlices      = "slices"
	groupUtilities   = "utilities"
)

// NewRootCmd creates and returns the root cobra command for the dzip CLI.
// It sets up all subcommands, command groups, and the global flags.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		jsonOut    bool
	)

	rootCmd := &cobra.Command{
		Use:   "dzip",
		Short: "dzip - gzip streams, zip archives and sliced compression for large files",
		Long: `dzip compresses files and buffers, builds and edits zip archives, and splits
large files into independently compressed slices that can be merged back.

Use subcommands to perform different operations:
  - compress/decompress: single-file gzip streams
  - zip/unzip/list/exists/remove: zip archives, optionally AES-256 encrypted
  - split/merge/slices: sliced compression with a JSON manifest
  - info/verify: archive statistics and integrity checks
  - backup/restore: plain or compressed file backups

Defaults come from the YAML file named by --config or DZIP_CONFIG.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.LoadFile(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			cmd.SetContext(withRuntime(cmd.Context(), &runtime{cfg: cfg, logger: logger, json: jsonOut}))
			logger.Info("configuration loaded", "config", configSource(configPath))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("Path to YAML config file (default $%s)", config.EnvVar))
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupCompression,
		Title: "Compression",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchives,
		Title: "Archives",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupSlices,
		Title: "Slices",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	for _, c := range []*cobra.Command{NewCompressCmd(), NewDecompressCmd(), NewBackupCmd(), NewRestoreCmd()} {
		c.GroupID = groupCompression
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewZipCmd(), NewUnzipCmd(), NewListCmd(), NewExistsCmd(), NewRemoveCmd()} {
		c.GroupID = groupArchives
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewSplitCmd(), NewMergeCmd(), NewSlicesCmd()} {
		c.GroupID = groupSlices
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewInfoCmd(), NewVerifyCmd(), NewSeedCmd(), NewVersionCmd()} {
		c.GroupID = groupUtilities
		rootCmd.AddCommand(c)
	}

	return rootCmd
}

func configSource(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(config.EnvVar); p != "" {
		return p
	}
	return "defaults"
}
