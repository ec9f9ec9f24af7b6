// Package cmd defines and implements the CLI commands for the sitemark executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemark",
		Short: "A polite headless scraper that converts pages to Markdown.",
		Long: `sitemark fetches rendered HTML for a fixed list of paths on one
host using headless Chrome, honoring robots.txt and a minimum delay
between fetches, converts each page to Markdown, and writes one .md
file per path.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
