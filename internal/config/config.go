package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/sitesearch/internal/crawler"
	"github.com/nao1215/sitesearch/internal/extract"
	"github.com/nao1215/sitesearch/internal/index"
	"github.com/nao1215/sitesearch/internal/summary"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitesearch"

	// DefaultBackend stores the index in a single SQLite file.
	DefaultBackend = string(index.BackendSQLite)

	// DefaultTimeout bounds each HTTP request made by the crawler.
	DefaultTimeout = crawler.DefaultTimeout

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = crawler.DefaultMaxBodySize

	// DefaultUserAgent identifies sitesearch in HTTP requests.
	DefaultUserAgent = crawler.DefaultUserAgent

	// DefaultWorkers fetches one page at a time.
	DefaultWorkers = 1

	// DefaultTeaserLength is the rune limit of fallback teasers.
	DefaultTeaserLength = extract.DefaultTeaserLength

	// DefaultSummaryInputLimit is the rune limit of text sent to the summarizer.
	DefaultSummaryInputLimit = extract.DefaultInputLimit

	// DefaultOpenAIModel is the chat model used for teasers.
	DefaultOpenAIModel = summary.DefaultModel

	// DefaultListenAddress is where `sitesearch serve` listens.
	DefaultListenAddress = ":8080"

	// EnvOpenAIAPIKey names the environment variable holding the API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds all configuration options for sitesearch.
// It is populated from defaults, the config file and CLI flags, then passed
// to the components that need it rather than kept in global state.
type Config struct {
	// StartURL is the page the crawl begins at. Its origin bounds the crawl.
	StartURL string

	// IndexDir is the directory holding the persisted index.
	// Defaults to the XDG data directory.
	IndexDir string

	// Backend selects the index store: memory, sqlite or bleve.
	Backend string

	// Force removes an existing index before crawling.
	Force bool

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxPages caps the number of fetch attempts. 0 means unbounded.
	MaxPages int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// CrawlDelay is the minimum spacing between requests.
	CrawlDelay time.Duration

	// Workers is the number of pages fetched concurrently.
	Workers int

	// DepthFirst switches the frontier from breadth-first to depth-first.
	DepthFirst bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Headers are extra request headers, such as a session cookie for
	// sites that require login.
	Headers map[string]string

	// IgnorePatterns are glob patterns of URL paths that are never crawled.
	IgnorePatterns []string

	// FollowPatterns, when set, restrict crawling to matching URL paths.
	FollowPatterns []string

	// RespectRobots enables the robots.txt gate.
	RespectRobots bool

	// TeaserLength is the rune limit of fallback teasers.
	TeaserLength int

	// SummaryInputLimit caps how much page text is sent to the summarizer.
	SummaryInputLimit int

	// SummarizerEnabled allows remote summaries when an API key is present.
	SummarizerEnabled bool

	// OpenAIModel is the chat completion model used for teasers.
	OpenAIModel string

	// OpenAIBaseURL overrides the API endpoint, e.g. for a compatible proxy.
	OpenAIBaseURL string

	// OpenAIAPIKey is read from the OPENAI_API_KEY environment variable.
	// It is never loaded from the config file.
	OpenAIAPIKey string

	// ListenAddress is the address of the HTTP front end.
	ListenAddress string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .sitesearch.yaml is looked up in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		IndexDir:          DefaultIndexDir(),
		Backend:           DefaultBackend,
		Timeout:           DefaultTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		Workers:           DefaultWorkers,
		UserAgent:         DefaultUserAgent,
		TeaserLength:      DefaultTeaserLength,
		SummaryInputLimit: DefaultSummaryInputLimit,
		SummarizerEnabled: true,
		OpenAIModel:       DefaultOpenAIModel,
		ListenAddress:     DefaultListenAddress,
	}
}

// XDGDataDir returns the XDG data directory for sitesearch.
// On Linux: ~/.local/share/sitesearch
// On macOS: ~/Library/Application Support/sitesearch
// On Windows: %LOCALAPPDATA%\sitesearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitesearch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultIndexDir returns the directory the index is stored in when none
// is configured.
func DefaultIndexDir() string {
	return filepath.Join(XDGDataDir(), "index")
}

// UseSummarizer reports whether remote summaries should be requested.
func (c *Config) UseSummarizer() bool {
	return c.SummarizerEnabled && c.OpenAIAPIKey != ""
}

// Traversal returns the configured frontier order.
func (c *Config) Traversal() crawler.Traversal {
	if c.DepthFirst {
		return crawler.DepthFirst
	}
	return crawler.BreadthFirst
}

// Validate checks the settings shared by every command.
// It returns the first problem found, because fixing one often makes
// the others irrelevant.
func (c *Config) Validate() error {
	if _, err := index.ParseBackend(c.Backend); err != nil {
		return ErrUnknownBackend
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.TeaserLength <= 0 {
		return ErrInvalidTeaserLength
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ValidateCrawl checks the settings needed to run a crawl.
func (c *Config) ValidateCrawl() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if _, err := crawler.NormalizeURL(c.StartURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStartURL, err)
	}
	return c.Validate()
}
