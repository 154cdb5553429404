package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitesearch/internal/crawler"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Backend is sqlite", func(t *testing.T) {
		t.Parallel()
		if cfg.Backend != "sqlite" {
			t.Errorf("expected Backend to be 'sqlite', got '%s'", cfg.Backend)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxPages is unbounded", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 0 {
			t.Errorf("expected MaxPages to be 0, got %d", cfg.MaxPages)
		}
	})

	t.Run("default Workers is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 1 {
			t.Errorf("expected Workers to be 1, got %d", cfg.Workers)
		}
	})

	t.Run("default teaser settings", func(t *testing.T) {
		t.Parallel()
		if cfg.TeaserLength != 300 {
			t.Errorf("expected TeaserLength to be 300, got %d", cfg.TeaserLength)
		}
		if cfg.SummaryInputLimit != 4000 {
			t.Errorf("expected SummaryInputLimit to be 4000, got %d", cfg.SummaryInputLimit)
		}
		if cfg.OpenAIModel != "gpt-4o-mini" {
			t.Errorf("expected OpenAIModel to be gpt-4o-mini, got %q", cfg.OpenAIModel)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("default IndexDir is under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.IndexDir, XDGDataDir()) {
			t.Errorf("expected IndexDir under %q, got %q", XDGDataDir(), cfg.IndexDir)
		}
	})

	t.Run("default ListenAddress is :8080", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != ":8080" {
			t.Errorf("expected ListenAddress to be :8080, got %q", cfg.ListenAddress)
		}
	})

	t.Run("robots are ignored by default", func(t *testing.T) {
		t.Parallel()
		if cfg.RespectRobots {
			t.Error("expected RespectRobots to be false")
		}
	})
}

// TestConfigValidate tests validation of shared settings.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", modify: func(*Config) {}, wantErr: nil},
		{name: "bleve backend is valid", modify: func(c *Config) { c.Backend = "bleve" }, wantErr: nil},
		{name: "backend is case-insensitive", modify: func(c *Config) { c.Backend = "Memory" }, wantErr: nil},
		{name: "unknown backend", modify: func(c *Config) { c.Backend = "postgres" }, wantErr: ErrUnknownBackend},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative max pages", modify: func(c *Config) { c.MaxPages = -1 }, wantErr: ErrInvalidMaxPages},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "zero teaser length", modify: func(c *Config) { c.TeaserLength = 0 }, wantErr: ErrInvalidTeaserLength},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "negative crawl delay", modify: func(c *Config) { c.CrawlDelay = -time.Second }, wantErr: ErrInvalidCrawlDelay},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCrawl(t *testing.T) {
	t.Parallel()

	t.Run("missing start URL", func(t *testing.T) {
		t.Parallel()

		if err := NewConfig().ValidateCrawl(); !errors.Is(err, ErrNoStartURL) {
			t.Errorf("expected ErrNoStartURL, got %v", err)
		}
	})

	t.Run("start URL checked before shared settings", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Workers = 0
		if err := cfg.ValidateCrawl(); !errors.Is(err, ErrNoStartURL) {
			t.Errorf("expected ErrNoStartURL, got %v", err)
		}
	})

	t.Run("start URL must be absolute http(s)", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"example.com", "/docs", "ftp://example.com/", "https://"} {
			cfg := NewConfig()
			cfg.StartURL = raw
			if err := cfg.ValidateCrawl(); !errors.Is(err, ErrInvalidStartURL) {
				t.Errorf("ValidateCrawl(%q) = %v, want ErrInvalidStartURL", raw, err)
			}
		}
	})

	t.Run("valid crawl config", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.StartURL = "https://example.com/"
		if err := cfg.ValidateCrawl(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("shared settings still validated", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.StartURL = "https://example.com/"
		cfg.Timeout = -time.Second
		if err := cfg.ValidateCrawl(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})
}

func TestConfigHelpers(t *testing.T) {
	t.Parallel()

	t.Run("summarizer needs a key", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if cfg.UseSummarizer() {
			t.Error("summarizer should be off without an API key")
		}
		cfg.OpenAIAPIKey = "sk-test"
		if !cfg.UseSummarizer() {
			t.Error("summarizer should be on with an API key")
		}
		cfg.SummarizerEnabled = false
		if cfg.UseSummarizer() {
			t.Error("summarizer should be off when disabled")
		}
	})

	t.Run("traversal", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if cfg.Traversal() != crawler.BreadthFirst {
			t.Errorf("expected breadth-first, got %v", cfg.Traversal())
		}
		cfg.DepthFirst = true
		if cfg.Traversal() != crawler.DepthFirst {
			t.Errorf("expected depth-first, got %v", cfg.Traversal())
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.sitesearch.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `startUrl: https://docs.example.com/
backend: bleve
maxPages: 200
workers: 4
crawlDelay: 250ms
respectRobots: true
headers:
  Cookie: "session=xyz"
ignorePatterns:
  - "/admin/*"
followPatterns:
  - "/docs/*"
teaserLength: 160
summarizer:
  enabled: false
  model: gpt-4o
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.StartURL != "https://docs.example.com/" {
			t.Errorf("unexpected startUrl %q", cf.StartURL)
		}
		if cf.CrawlDelay != 250*time.Millisecond {
			t.Errorf("expected crawlDelay 250ms, got %v", cf.CrawlDelay)
		}
		if cf.Summarizer.Enabled == nil || *cf.Summarizer.Enabled {
			t.Error("expected summarizer.enabled to be false")
		}
		if cf.Headers["Cookie"] != "session=xyz" {
			t.Error("expected Cookie header")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)

		if cfg.Backend != DefaultBackend || cfg.Workers != DefaultWorkers || !cfg.SummarizerEnabled {
			t.Errorf("defaults changed: %+v", cfg)
		}
	})

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		disabled := false
		cf := &File{
			StartURL:       "https://example.com/",
			Backend:        "memory",
			MaxPages:       10,
			Workers:        3,
			DepthFirst:     true,
			RespectRobots:  true,
			IgnorePatterns: []string{"/private/*"},
			TeaserLength:   120,
			Summarizer:     SummarizerFile{Enabled: &disabled, Model: "gpt-4o", BaseURL: "http://localhost:4000/v1"},
			ListenAddress:  "127.0.0.1:9000",
		}
		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.StartURL != "https://example.com/" || cfg.Backend != "memory" {
			t.Errorf("unexpected start/backend: %q %q", cfg.StartURL, cfg.Backend)
		}
		if cfg.MaxPages != 10 || cfg.Workers != 3 || cfg.TeaserLength != 120 {
			t.Errorf("unexpected numbers: %+v", cfg)
		}
		if !cfg.DepthFirst || !cfg.RespectRobots {
			t.Error("expected boolean switches to be set")
		}
		if cfg.SummarizerEnabled || cfg.OpenAIModel != "gpt-4o" || cfg.OpenAIBaseURL != "http://localhost:4000/v1" {
			t.Errorf("unexpected summarizer settings: %+v", cfg)
		}
		if cfg.ListenAddress != "127.0.0.1:9000" {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
	})

	t.Run("headers are merged", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Headers = map[string]string{"Accept-Language": "en", "Cookie": "a=1"}
		(&File{Headers: map[string]string{"Cookie": "b=2"}}).Apply(cfg)

		if cfg.Headers["Accept-Language"] != "en" || cfg.Headers["Cookie"] != "b=2" {
			t.Errorf("unexpected headers %v", cfg.Headers)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("backend: sqlite\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("reads key from .env file", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "")
		if err := os.Unsetenv(EnvOpenAIAPIKey); err != nil {
			t.Fatal(err)
		}

		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-from-dotenv\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := NewConfig()
		if err := LoadEnv(cfg, envPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OpenAIAPIKey != "sk-from-dotenv" {
			t.Errorf("expected key from .env, got %q", cfg.OpenAIAPIKey)
		}
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "sk-from-env")

		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=sk-from-dotenv\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := NewConfig()
		if err := LoadEnv(cfg, envPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OpenAIAPIKey != "sk-from-env" {
			t.Errorf("expected key from environment, got %q", cfg.OpenAIAPIKey)
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "sk-from-env")

		cfg := NewConfig()
		if err := LoadEnv(cfg, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OpenAIAPIKey != "sk-from-env" {
			t.Errorf("unexpected key %q", cfg.OpenAIAPIKey)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if dir == "" || filepath.Base(dir) != AppName {
				t.Errorf("unexpected %s dir %q", name, dir)
			}
		})
	}
}
