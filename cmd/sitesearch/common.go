package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/index"
	"github.com/nao1215/sitesearch/internal/log"
	"github.com/nao1215/sitesearch/internal/report"
	"github.com/spf13/cobra"
)

// loadConfig builds the configuration for cmd. Precedence, lowest first:
// defaults, the config file, the environment, then flags set on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := newFlagReader(cmd)

	flags.String("config", &cfg.ConfigFilePath)
	if flags.err != nil {
		return nil, flags.err
	}

	// An explicitly named config file must exist; the default locations
	// are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := config.LoadEnv(cfg, config.DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.DefaultEnvFile, err)
	}

	flags.Bool("verbose", &cfg.Verbose)
	flags.String("index-dir", &cfg.IndexDir)
	flags.String("backend", &cfg.Backend)
	flags.Bool("json", &cfg.JSONReport)
	flags.Bool("markdown", &cfg.MarkdownReport)
	if flags.err != nil {
		return nil, flags.err
	}

	return cfg, nil
}

// flagReader copies flags the user actually set into config fields, so
// values from the config file are not clobbered by flag defaults.
// The first error is kept and later calls become no-ops.
type flagReader struct {
	cmd *cobra.Command
	err error
}

func newFlagReader(cmd *cobra.Command) *flagReader {
	return &flagReader{cmd: cmd}
}

func (r *flagReader) changed(name string) bool {
	return r.err == nil && r.cmd.Flags().Lookup(name) != nil && r.cmd.Flags().Changed(name)
}

func (r *flagReader) String(name string, dst *string) {
	if !r.changed(name) {
		return
	}
	v, err := r.cmd.Flags().GetString(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) Bool(name string, dst *bool) {
	if !r.changed(name) {
		return
	}
	v, err := r.cmd.Flags().GetBool(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) Int(name string, dst *int) {
	if !r.changed(name) {
		return
	}
	v, err := r.cmd.Flags().GetInt(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) Duration(name string, dst *time.Duration) {
	if !r.changed(name) {
		return
	}
	v, err := r.cmd.Flags().GetDuration(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func (r *flagReader) StringSlice(name string, dst *[]string) {
	if !r.changed(name) {
		return
	}
	v, err := r.cmd.Flags().GetStringSlice(name)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

// setupLogger creates the secure logger used by every command and makes
// it the slog default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)
	return logger
}

// newReportWriter returns the writer for the configured output format.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// openOutput returns the destination for a report: path when set,
// otherwise the command's stdout. The returned close function is never nil.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// openIndex opens the committed index described by cfg for reading.
func openIndex(cfg *config.Config) (index.Store, error) {
	backend, err := index.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	store, err := index.Open(backend, cfg.IndexDir)
	if errors.Is(err, index.ErrIndexNotFound) {
		return nil, fmt.Errorf("no %s index in %s: run 'sitesearch crawl' first: %w", backend, cfg.IndexDir, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return store, nil
}
