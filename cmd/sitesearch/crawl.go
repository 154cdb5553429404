package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/crawler"
	"github.com/nao1215/sitesearch/internal/extract"
	"github.com/nao1215/sitesearch/internal/index"
	"github.com/nao1215/sitesearch/internal/log"
	"github.com/nao1215/sitesearch/internal/summary"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl a website and build its search index",
		Long: `Crawl fetches the start URL and every page reachable from it by links on
the same origin (scheme, host and port), extracts each HTML page's title and
visible text, and stores the pages in a search index.

If an index already exists it is reused; pass --force to rebuild it.
Pages that fail to load or are not HTML are skipped without stopping the crawl.
Interrupting the crawl (Ctrl-C) commits the pages indexed so far.

Examples:
  # Crawl a site into the default sqlite index
  sitesearch crawl https://example.com/

  # Rebuild the index, at most 500 pages, 4 concurrent fetches
  sitesearch crawl --force --max-pages 500 --workers 4 https://example.com/

  # Be polite: 500ms between requests, obey robots.txt
  sitesearch crawl --delay 500ms --robots https://example.com/

  # Write a Markdown crawl report
  sitesearch crawl --markdown -o report.md https://example.com/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().BoolP("force", "f", false, "Rebuild the index if it already exists")
	cmd.Flags().IntP("max-pages", "p", 0, "Maximum number of pages to fetch (0 = unbounded)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of pages fetched concurrently")
	cmd.Flags().DurationP("delay", "d", 0, "Minimum delay between requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().Bool("robots", false, "Obey the site's robots.txt")
	cmd.Flags().Bool("depth-first", false, "Visit pages depth-first instead of breadth-first")
	cmd.Flags().StringSlice("ignore", nil, "Glob patterns of URL paths to skip (repeatable)")
	cmd.Flags().StringSlice("follow", nil, "Only crawl URL paths matching these glob patterns (repeatable)")
	cmd.Flags().Int("teaser-length", config.DefaultTeaserLength, "Maximum length of fallback teasers")
	cmd.Flags().Bool("no-summarizer", false, "Never call the remote summarizer")

	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCrawl(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)

	reportPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput(cmd, reportPath)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Best effort close of report file

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, out)
}

// buildCrawlConfig layers crawl flags over the shared configuration.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := newFlagReader(cmd)
	flags.Bool("force", &cfg.Force)
	flags.Int("max-pages", &cfg.MaxPages)
	flags.Int("workers", &cfg.Workers)
	flags.Duration("delay", &cfg.CrawlDelay)
	flags.Duration("timeout", &cfg.Timeout)
	flags.Bool("robots", &cfg.RespectRobots)
	flags.Bool("depth-first", &cfg.DepthFirst)
	flags.StringSlice("ignore", &cfg.IgnorePatterns)
	flags.StringSlice("follow", &cfg.FollowPatterns)
	flags.Int("teaser-length", &cfg.TeaserLength)
	if flags.err != nil {
		return nil, flags.err
	}

	noSummarizer, err := cmd.Flags().GetBool("no-summarizer")
	if err != nil {
		return nil, err
	}
	if noSummarizer {
		cfg.SummarizerEnabled = false
	}

	if len(args) > 0 {
		cfg.StartURL = args[0]
	}
	return cfg, nil
}

// runCrawl crawls cfg.StartURL into a fresh index and writes the crawl
// report to out. An existing index is left untouched unless cfg.Force.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	backend, err := index.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	store, err := index.Create(backend, cfg.IndexDir, index.CreateOptions{
		Force:     cfg.Force,
		SessionID: sessionID,
	})
	if errors.Is(err, index.ErrIndexExists) {
		fmt.Fprintf(out, "Index already built in %s (use --force to rebuild)\n", cfg.IndexDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close index", "error", err)
		}
	}()

	fetcher := newFetcher(cfg)
	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	opts := []crawler.SessionOption{
		crawler.WithSessionID(sessionID),
		crawler.WithLogger(logger),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithTraversal(cfg.Traversal()),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithFollowPatterns(cfg.FollowPatterns),
	}
	if cfg.RespectRobots {
		policy, err := fetcher.FetchRobots(ctx, cfg.StartURL)
		if err != nil {
			logger.Warn("robots.txt unavailable, crawling without it", "error", err)
		}
		opts = append(opts, crawler.WithRobots(policy))
	}

	logger.Debug("crawl configured",
		"start_url", cfg.StartURL,
		"backend", backend,
		"index_dir", cfg.IndexDir,
		"workers", cfg.Workers,
		"max_pages", cfg.MaxPages,
		"summarizer", cfg.UseSummarizer(),
		"headers", log.SanitizeHeaders(cfg.Headers),
	)

	session := crawler.NewSession(fetcher, extractor, store, opts...)
	stats, err := session.Run(ctx, cfg.StartURL)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	if _, err := newReportWriter(cfg, out).WriteCrawl(stats); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newFetcher builds the HTTP fetcher described by cfg.
func newFetcher(cfg *config.Config) *crawler.HTTPFetcher {
	opts := []crawler.FetchOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(cfg.Headers),
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, crawler.WithMaxBodySize(cfg.MaxBodySize))
	}
	if cfg.CrawlDelay > 0 {
		opts = append(opts, crawler.WithRateLimit(cfg.CrawlDelay))
	}
	return crawler.NewHTTPFetcher(&http.Client{Timeout: cfg.Timeout}, opts...)
}

// newExtractor builds the content extractor. The remote summarizer is
// used only when enabled and an API key is available; otherwise teasers
// are truncated page text.
func newExtractor(cfg *config.Config, logger *slog.Logger) (*extract.Extractor, error) {
	opts := []extract.Option{
		extract.WithTeaserLength(cfg.TeaserLength),
		extract.WithInputLimit(cfg.SummaryInputLimit),
		extract.WithLogger(logger),
	}

	if cfg.UseSummarizer() {
		s, err := summary.NewOpenAISummarizer(cfg.OpenAIAPIKey,
			summary.WithModel(cfg.OpenAIModel),
			summary.WithBaseURL(cfg.OpenAIBaseURL),
			summary.WithRequestTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to configure summarizer: %w", err)
		}
		logger.Debug("remote summarizer enabled", "model", s.Model())
		opts = append(opts, extract.WithSummarizer(s))
	}

	return extract.NewExtractor(opts...), nil
}
