package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/sitesearch/internal/search"
	"github.com/nao1215/sitesearch/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over HTTP",
		Long: `Serve starts a JSON HTTP API over an existing index.

Endpoints:
  GET /search?q=...&mode=all|any   matching pages with an optional suggestion
  GET /search?q=...&lucky=1        302 redirect to the best match
  GET /suggest?q=...               spelling suggestion for the first term
  GET /healthz                     status and number of indexed documents

Examples:
  sitesearch serve
  sitesearch serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "", "Listen address (default :8080)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := newFlagReader(cmd)
	flags.String("listen", &cfg.ListenAddress)
	if flags.err != nil {
		return flags.err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cmd, cfg)

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(search.NewEngine(store),
		server.WithAddress(cfg.ListenAddress),
		server.WithLogger(logger),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s index from %s on %s\n", cfg.Backend, cfg.IndexDir, srv.Addr())
	return srv.Run(ctx)
}
