package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blockfold/internal/audit"
	"blockfold/internal/pipeline"
)

// DiffOptions holds diff subcommand flags.
type DiffOptions struct {
	ConfigFile   string
	InputsA      []string
	InputsB      []string
	OutputPath   string
	OutputS3     s3Flags
	ProgressAddr string
}

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	opts := &DiffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two blocklists and report additions, removals, and overlaps",
		Long: `Consolidate both sides independently, then merge the two sorted
domain sets with a two-pointer sweep: a rule unique to one side is an
addition, a rule unique to the other is a removal, and a rule on one
side whose suffix already covers a rule on the other side is reported
as the dominating winner with the dominated entry marked as pruned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file path")
	cmd.Flags().StringArrayVar(&opts.InputsA, "a", nil, "side A input blocklist file (repeatable)")
	cmd.Flags().StringArrayVar(&opts.InputsB, "b", nil, "side B input blocklist file (repeatable)")
	cmd.Flags().StringVar(&opts.OutputPath, "output", "-", "output path, or - for stdout")
	cmd.Flags().StringVar(&opts.ProgressAddr, "progress-addr", "", "bind address for the live progress websocket (disabled if empty)")
	opts.OutputS3.register(cmd, "s3-output")

	return cmd
}

func runDiff(ctx context.Context, opts *DiffOptions) error {
	cfg, err := loadConfigOrDefault(opts.ConfigFile)
	if err != nil {
		return err
	}
	defer audit.Close()

	srcsA, err := buildSources(ctx, opts.InputsA, s3Flags{}, cfg.S3)
	if err != nil {
		return fmt.Errorf("side A: %w", err)
	}
	srcsB, err := buildSources(ctx, opts.InputsB, s3Flags{}, cfg.S3)
	if err != nil {
		return fmt.Errorf("side B: %w", err)
	}

	out, err := openOutputSink(ctx, opts.OutputPath, opts.OutputS3, cfg.S3)
	if err != nil {
		return fmt.Errorf("cmd: open output: %w", err)
	}

	reporter := maybeStartProgress(opts.ProgressAddr)

	if err := pipeline.Diff(ctx, srcsA, srcsB, cfg.Limits, out, reporter); err != nil {
		out.Close()
		return fmt.Errorf("diff failed: %w", err)
	}

	return out.Close()
}
