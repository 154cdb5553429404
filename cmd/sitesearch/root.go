package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitesearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Crawl a website and search its pages",
		Long: `sitesearch crawls every reachable page of a single website, builds a
searchable index of the pages' text, and answers keyword queries against it.

Queries match documents containing all terms by default (--any for at least
one), suggest a corrected spelling for misspelled words, and can jump straight
to the best match.

Settings are read from .sitesearch.yaml (see 'sitesearch init'); command-line
flags override the file. Remote teaser summaries are enabled when the
OPENAI_API_KEY environment variable (or a .env file) provides a key.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sitesearch.yaml in current or home directory)")
	cmd.PersistentFlags().String("index-dir", "",
		"Directory holding the index (default: XDG data directory)")
	cmd.PersistentFlags().StringP("backend", "b", "",
		"Index backend: memory, sqlite or bleve (default: sqlite)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewSuggestCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewHistoryCmd())
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
