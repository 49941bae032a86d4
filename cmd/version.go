package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the blockfold release version, set at build time in a real
// release pipeline; kept as a plain var here the way DNShield's cmd
// package does for its own version string.
var Version = "0.1.0"

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blockfold v%s\n", Version)
		},
	}
}
