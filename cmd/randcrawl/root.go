package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for randcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randcrawl",
		Short: "Unsupervised crawler for randomly generated hosts",
		Long: `randcrawl discovers hosts by generating candidate domain names, checks them
for reachability and recursively follows same-host links up to a bounded depth.

Every fetched page produces a finding (contact addresses, top keywords,
discovered sub-paths) appended to a dated run directory. Failures are
appended to the run's error log. Most generated hosts do not exist, so a
high failure rate is expected.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging (every task state transition)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSummaryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
