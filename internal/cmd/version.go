package cmd

import (
	"github.com/dendrascience/dendra-zip/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runtimeFor(cmd).json {
				return printJSON(cmd.OutOrStdout(), version.GetInfo())
			}
			version.PrintVersion(cmd.OutOrStdout(), "dzip")
			return nil
		},
	}
}
