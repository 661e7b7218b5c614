// File: main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "scratchcard"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Promotional scratch card",
		Long: `Scratchcard hosts a promotional scratch card: a covered prize that is
revealed by scratching, with a one-time win once more than a set share
of the cover is gone.

Settings come from SCRATCH_* environment variables; flags override them.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd(), playCmd(), simulateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	return cmd
}
