package cmd

import (
	"fmt"
	"strings"

	"github.com/dendrascience/dendra-zip/archive"
	"github.com/dendrascience/dendra-zip/slice"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/spf13/cobra"
)

// verifyReport is the JSON form of a verify run.
type verifyReport struct {
	Path     string       `json:"path"`
	Outcome  util.Outcome `json:"outcome"`
	Problems []string     `json:"problems,omitempty"`
}

// NewVerifyCmd creates the verify subcommand for archives and slice manifests.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify ARCHIVE|MANIFEST...",
		Short: "Check archives or slice sets for corruption",
		Long: `Verify zip archives and slice manifests without extracting anything.

For an archive every entry is decompressed and its CRC-32 and size are
compared with the central directory. For a .manifest.json file every slice
is decoded and its size and BLAKE3 digest are compared with the manifest.
The command exits non-zero when any problem is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			opts := rt.decodecOptions(cmd)
			w := cmd.OutOrStdout()

			var reports []verifyReport
			var failed int
			for _, path := range args {
				var (
					o        util.Outcome
					problems []string
				)
				if strings.HasSuffix(path, slice.ManifestSuffix) {
					o, problems = slice.VerifyManifest(path, opts)
				} else {
					o, problems = archive.Verify(path, opts)
				}
				if !o.Success {
					failed++
				}
				reports = append(reports, verifyReport{Path: path, Outcome: o, Problems: problems})
				rt.logger.Info("verified", "path", path, "ok", o.Success, "problems", len(problems))
			}

			if rt.json {
				if err := printJSON(w, reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					if r.Outcome.Success {
						fmt.Fprintf(w, "%s: ok\n", r.Path)
						continue
					}
					fmt.Fprintf(w, "%s: %s\n", r.Path, r.Outcome.Message)
					for _, p := range r.Problems {
						fmt.Fprintf(w, "  - %s\n", p)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d inputs failed verification", util.ErrFormat, failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "Password for encrypted archive entries")
	cmd.Flags().Int("chunk", 0, "Bytes per read (default from config)")

	return cmd
}
