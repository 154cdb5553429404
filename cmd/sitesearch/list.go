package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/sitesearch/internal/index"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the indexed documents",
		Long: `List prints every document in the index in crawl order.

Examples:
  sitesearch list
  sitesearch list -v          # include teasers
  sitesearch list --markdown`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
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

	docs, err := store.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteDocuments(docs)
	return err
}

// sessionLister is implemented by backends that record crawl sessions.
type sessionLister interface {
	Sessions(ctx context.Context) ([]index.SessionInfo, error)
}

// errNoSessionHistory is returned by history for backends without a
// session log.
var errNoSessionHistory = errors.New("crawl history is only recorded by the sqlite backend")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the crawl session that built the index",
		Long: `History prints the committed crawl sessions recorded in the index: the
session ID, when it was committed and how many documents it added.
Only the sqlite backend records sessions.

Examples:
  sitesearch history
  sitesearch history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
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

	lister, ok := store.(sessionLister)
	if !ok {
		return errNoSessionHistory
	}
	sessions, err := lister.Sessions(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		if sessions == nil {
			sessions = []index.SessionInfo{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No crawl sessions recorded.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-25s  %s\n", "SESSION", "COMMITTED", "DOCUMENTS")
	for _, s := range sessions {
		fmt.Fprintf(out, "%-36s  %-25s  %d\n", s.ID, s.CommittedAt.Format(time.RFC3339), s.Documents)
	}
	return nil
}
