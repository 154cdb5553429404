package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nao1215/sitesearch/internal/model"
	"github.com/nao1215/sitesearch/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the index",
		Long: `Search prints the indexed pages that contain the query terms, in the order
they were crawled. By default a page must contain every term; --any matches
pages containing at least one.

Terms are matched case-insensitively with punctuation removed. When the first
term looks misspelled, a "Did you mean" suggestion is printed as well.

Examples:
  sitesearch search gopher biology
  sitesearch search --any kangaroo wombat
  sitesearch search --lucky installation guide
  sitesearch search --json gopher`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().BoolP("any", "a", false, "Match pages containing any term instead of all terms")
	cmd.Flags().BoolP("lucky", "l", false, "Print only the URL of the best match")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd, cfg)

	anyTerm, err := cmd.Flags().GetBool("any")
	if err != nil {
		return err
	}
	lucky, err := cmd.Flags().GetBool("lucky")
	if err != nil {
		return err
	}
	mode := model.ModeAll
	if anyTerm {
		mode = model.ModeAny
	}

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := search.NewEngine(store)
	query := strings.Join(args, " ")
	ctx := cmd.Context()

	if lucky {
		target, ok, err := engine.BestMatch(ctx, query, mode)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		}
	}

	result, err := engine.Query(ctx, query, mode)
	if err != nil {
		return err
	}
	_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteResults(result)
	return err
}

// NewSuggestCmd creates the suggest command.
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <query...>",
		Short: "Suggest a spelling correction for a query",
		Long: `Suggest looks up the first term of the query in the index vocabulary and
prints the closest known word when the term itself is unknown.

Examples:
  sitesearch suggest biolgy
  sitesearch suggest --json kangaro`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSuggestCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// suggestOutput is the JSON form of a suggestion.
type suggestOutput struct {
	Query      string `json:"query"`
	Suggestion string `json:"suggestion,omitempty"`
}

// runSuggestCmd executes the suggest command.
func runSuggestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd, cfg)

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	query := strings.Join(args, " ")
	suggestion, ok, err := search.NewEngine(store).Suggest(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestOutput{Query: query, Suggestion: suggestion})
	}
	if !ok {
		fmt.Fprintln(out, "No suggestion.")
		return nil
	}
	fmt.Fprintf(out, "Did you mean: %s?\n", suggestion)
	return nil
}
