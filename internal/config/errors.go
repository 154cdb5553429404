package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and Config.ValidateCrawl so
// that callers can use errors.Is while still printing a readable message.
var (
	// ErrNoStartURL is returned when a crawl is requested without a start URL.
	ErrNoStartURL = errors.New("no start URL specified: pass it as an argument or set startUrl in the config file")

	// ErrInvalidStartURL is returned when the start URL is not an absolute
	// http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Zero means unbounded.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTeaserLength is returned when the teaser length is not positive.
	ErrInvalidTeaserLength = errors.New("invalid teaser length: must be positive")

	// ErrUnknownBackend is returned when the index backend is not one of
	// memory, sqlite or bleve.
	ErrUnknownBackend = errors.New("unknown index backend: must be memory, sqlite or bleve")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
