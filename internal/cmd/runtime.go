package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dendrascience/dendra-zip/config"
	"github.com/dendrascience/dendra-zip/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// runtime is the per-invocation state built by the root command.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	json   bool
}

type runtimeKey struct{}

func withRuntime(ctx context.Context, rt *runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// runtimeFor returns the invocation state, falling back to the built-in
// defaults when the root pre-run did not execute.
func runtimeFor(cmd *cobra.Command) *runtime {
	if ctx := cmd.Context(); ctx != nil {
		if rt, ok := ctx.Value(runtimeKey{}).(*runtime); ok {
			return rt
		}
	}
	return &runtime{cfg: config.Default(), logger: slog.New(slog.DiscardHandler)}
}

// codecOptions returns the configured compression options with any flags the
// user set explicitly layered on top.
func (rt *runtime) codecOptions(cmd *cobra.Command) util.CodecOptions {
	opts := rt.cfg.CodecOptions()
	opts.Logger = rt.logger
	flags := cmd.Flags()
	if flags.Changed("level") {
		opts.Level, _ = flags.GetInt("level")
	}
	if flags.Changed("chunk") {
		opts.ChunkSize, _ = flags.GetInt("chunk")
	}
	if flags.Changed("workers") {
		opts.Workers, _ = flags.GetInt("workers")
		opts.Parallel = opts.Workers != 1
	}
	if flags.Changed("sequential") {
		seq, _ := flags.GetBool("sequential")
		opts.Parallel = !seq
	}
	if flags.Changed("backup") {
		opts.CreateBackup, _ = flags.GetBool("backup")
	}
	if flags.Changed("password") {
		opts.Password, _ = flags.GetString("password")
	}
	return opts
}

func (rt *runtime) decodecOptions(cmd *cobra.Command) util.DecodecOptions {
	opts := rt.cfg.DecodecOptions()
	opts.Logger = rt.logger
	flags := cmd.Flags()
	if flags.Changed("chunk") {
		opts.ChunkSize, _ = flags.GetInt("chunk")
	}
	if flags.Changed("workers") {
		opts.Workers, _ = flags.GetInt("workers")
		opts.Parallel = opts.Workers != 1
	}
	if flags.Changed("sequential") {
		seq, _ := flags.GetBool("sequential")
		opts.Parallel = !seq
	}
	if flags.Changed("verify") {
		opts.VerifyChecksum, _ = flags.GetBool("verify")
	}
	if flags.Changed("password") {
		opts.Password, _ = flags.GetString("password")
	}
	return opts
}

// report prints an outcome and returns its error so the command exits
// non-zero on failure.
func (rt *runtime) report(w io.Writer, label string, o util.Outcome) error {
	if rt.json {
		if err := printJSON(w, o); err != nil {
			return err
		}
		return o.Error()
	}
	if !o.Success {
		return o.Error()
	}
	fmt.Fprintf(w, "%s: %s -> %s (ratio %.3f)\n", label,
		humanize.IBytes(uint64(o.OriginalSize)), humanize.IBytes(uint64(o.CompressedSize)), o.Ratio)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
