package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blockfold/internal/audit"
	"blockfold/internal/pipeline"
)

// DedupeOptions holds dedupe subcommand flags.
type DedupeOptions struct {
	ConfigFile   string
	Inputs       []string
	InputS3      s3Flags
	OutputPath   string
	OutputS3     s3Flags
	ProgressAddr string
}

// NewDedupeCmd creates the dedupe command.
func NewDedupeCmd() *cobra.Command {
	opts := &DedupeOptions{}

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Consolidate one or more blocklists into a pruned, sorted blocklist",
		Long: `Read one or more Adblock-Plus blocklists, build a label-reversed
domain tree, prune every rule already covered by a shorter rule sharing
its suffix, and write the surviving rules back out in sorted order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file path")
	cmd.Flags().StringArrayVar(&opts.Inputs, "input", nil, "input blocklist file (repeatable)")
	cmd.Flags().StringVar(&opts.OutputPath, "output", "-", "output path, or - for stdout")
	cmd.Flags().StringVar(&opts.ProgressAddr, "progress-addr", "", "bind address for the live progress websocket (disabled if empty)")
	opts.InputS3.register(cmd, "s3-input")
	opts.OutputS3.register(cmd, "s3-output")

	return cmd
}

func runDedupe(ctx context.Context, opts *DedupeOptions) error {
	cfg, err := loadConfigOrDefault(opts.ConfigFile)
	if err != nil {
		return err
	}
	defer audit.Close()

	srcs, err := buildSources(ctx, opts.Inputs, opts.InputS3, cfg.S3)
	if err != nil {
		return err
	}

	out, err := openOutputSink(ctx, opts.OutputPath, opts.OutputS3, cfg.S3)
	if err != nil {
		return fmt.Errorf("cmd: open output: %w", err)
	}

	reporter := maybeStartProgress(opts.ProgressAddr)

	if err := pipeline.Dedupe(ctx, srcs, cfg.Limits, out, reporter); err != nil {
		out.Close()
		return fmt.Errorf("dedupe failed: %w", err)
	}

	return out.Close()
}
