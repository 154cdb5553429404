package config

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sitesearch.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .sitesearch.yaml configuration file.
// Zero values mean "not set" and leave the corresponding default alone.
type File struct {
	StartURL       string            `yaml:"startUrl,omitempty"`
	IndexDir       string            `yaml:"indexDir,omitempty"`
	Backend        string            `yaml:"backend,omitempty"`
	MaxPages       int               `yaml:"maxPages,omitempty"`
	Workers        int               `yaml:"workers,omitempty"`
	CrawlDelay     time.Duration     `yaml:"crawlDelay,omitempty"`
	Timeout        time.Duration     `yaml:"timeout,omitempty"`
	DepthFirst     bool              `yaml:"depthFirst,omitempty"`
	RespectRobots  bool              `yaml:"respectRobots,omitempty"`
	UserAgent      string            `yaml:"userAgent,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	IgnorePatterns []string          `yaml:"ignorePatterns,omitempty"`
	FollowPatterns []string          `yaml:"followPatterns,omitempty"`
	TeaserLength   int               `yaml:"teaserLength,omitempty"`
	Summarizer     SummarizerFile    `yaml:"summarizer,omitempty"`
	ListenAddress  string            `yaml:"listenAddress,omitempty"`
}

// SummarizerFile configures the remote summarizer. The API key is
// deliberately absent: it is read from the environment only.
type SummarizerFile struct {
	// Enabled set to false disables remote summaries even when a key exists.
	Enabled *bool  `yaml:"enabled,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
// Headers are merged; pattern lists replace the existing ones.
func (cf *File) Apply(cfg *Config) {
	if cf.StartURL != "" {
		cfg.StartURL = cf.StartURL
	}
	if cf.IndexDir != "" {
		cfg.IndexDir = cf.IndexDir
	}
	if cf.Backend != "" {
		cfg.Backend = cf.Backend
	}
	if cf.MaxPages != 0 {
		cfg.MaxPages = cf.MaxPages
	}
	if cf.Workers != 0 {
		cfg.Workers = cf.Workers
	}
	if cf.CrawlDelay != 0 {
		cfg.CrawlDelay = cf.CrawlDelay
	}
	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.DepthFirst {
		cfg.DepthFirst = true
	}
	if cf.RespectRobots {
		cfg.RespectRobots = true
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if len(cf.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(cf.Headers))
		}
		maps.Copy(cfg.Headers, cf.Headers)
	}
	if len(cf.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = cf.IgnorePatterns
	}
	if len(cf.FollowPatterns) > 0 {
		cfg.FollowPatterns = cf.FollowPatterns
	}
	if cf.TeaserLength != 0 {
		cfg.TeaserLength = cf.TeaserLength
	}
	if cf.Summarizer.Enabled != nil {
		cfg.SummarizerEnabled = *cf.Summarizer.Enabled
	}
	if cf.Summarizer.Model != "" {
		cfg.OpenAIModel = cf.Summarizer.Model
	}
	if cf.Summarizer.BaseURL != "" {
		cfg.OpenAIBaseURL = cf.Summarizer.BaseURL
	}
	if cf.ListenAddress != "" {
		cfg.ListenAddress = cf.ListenAddress
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .sitesearch.yaml in the current directory
// 3. Look for .sitesearch.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
