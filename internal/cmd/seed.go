package cmd

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/dendrascience/dendra-zip/config"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates the seed subcommand, which generates sample data for
// exercising zip, split and merge.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		blobSize   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample files for archiving and slicing",
		Long: `Generate sample data under --output.

Creates --count small files in a YYYY/MM/DD directory structure, each holding
a JSON record with a UUID drawn from a small pool so the tree compresses well.
With --blob an additional single file of that size is written to
<output>/blob.ndjson for split and merge experiments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFor(cmd)
			var size int64
			if blobSize != "" {
				var err error
				if size, err = config.ParseSize(blobSize); err != nil {
					return err
				}
			}
			files, err := seedTree(outputPath, fileCount, rt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d files in %s\n", files, outputPath)
			if size > 0 {
				blob := filepath.Join(outputPath, "blob.ndjson")
				if err := seedBlob(blob, size); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", blob, humanize.IBytes(uint64(size)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 1000, "Number of small files to generate")
	cmd.Flags().StringVar(&blobSize, "blob", "", "Also write one large file of this size, e.g. 64MiB")

	cmd.MarkFlagRequired("output")

	return cmd
}

func seedRecord(id string, at time.Time, seq int) string {
	return fmt.Sprintf(`{"id":%q,"seq":%d,"time":%q,"value":%.4f}`+"\n", id, seq, at.Format(time.RFC3339), rand.Float64()*100)
}

func seedTree(outputPath string, fileCount int, rt *runtime) (int, error) {
	if err := util.EnsureDir(outputPath); err != nil {
		return 0, err
	}

	pool := make([]string, 50)
	for i := range pool {
		pool[i] = uuid.New().String()
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created := 0
	for created < fileCount {
		at := base.Add(time.Duration(rand.Int64N(int64(365 * 24 * time.Hour))))
		dir := filepath.Join(outputPath, at.Format("2006"), at.Format("01"), at.Format("02"))
		if err := util.EnsureDir(dir); err != nil {
			return created, err
		}
		name := filepath.Join(dir, fmt.Sprintf("%08x.json", rand.Uint32()))
		if util.Exists(name) {
			continue
		}
		if err := os.WriteFile(name, []byte(seedRecord(pool[rand.IntN(len(pool))], at, created)), 0644); err != nil {
			return created, fmt.Errorf("%w: write %s: %w", util.ErrIO, name, err)
		}
		created++
		if created%1000 == 0 {
			rt.logger.Info("seeding", "created", created, "total", fileCount)
		}
	}
	return created, nil
}

func seedBlob(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", util.ErrIO, path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	id := uuid.New().String()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var written int64
	for seq := 0; written < size; seq++ {
		line := seedRecord(id, at.Add(time.Duration(seq)*time.Second), seq)
		if rem := size - written; int64(len(line)) > rem {
			line = line[:rem]
		}
		n, err := w.WriteString(line)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("%w: write %s: %w", util.ErrIO, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %w", util.ErrIO, path, err)
	}
	return f.Close()
}
