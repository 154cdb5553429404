// Package log provides slog-based logging that masks secrets before they
// reach the output.
//
// The crawler sends custom request headers that may carry cookies or
// bearer tokens, and the summarizer is configured with an OpenAI API key.
// SecureHandler wraps any slog.Handler and replaces such values with
// MaskValue, whether they are recognized by attribute key (cookie,
// authorization, api_key, ...) or by the shape of the value itself
// (bearer tokens, JWTs, sk- keys).
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("summarizer configured",
//	    "model", "gpt-4o-mini",
//	    "api_key", key, // logged as ***REDACTED***
//	)
//
// Verbose loggers emit Debug and above; otherwise only warnings and errors
// are written, so per-page crawl progress stays quiet by default.
package log
