package main

import (
	"fmt"
	"os"

	"blockfold/cmd"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "blockfold",
		Short: "Blocklist deduplication and diffing tool",
		Long: `blockfold consolidates Adblock-Plus blocklists by pruning any rule
already covered by a shorter rule sharing its domain suffix, and
compares two blocklists rule by rule, suffix aware.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./blockfold.yaml)")

	rootCmd.AddCommand(
		cmd.NewDedupeCmd(),
		cmd.NewDiffCmd(),
		cmd.NewCheckCmd(),
		cmd.NewVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
