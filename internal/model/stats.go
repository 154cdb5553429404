package model

import "time"

// CrawlStats summarizes one crawl session.
type CrawlStats struct {
	// SessionID identifies the crawl session.
	SessionID string `json:"session_id"`

	// StartURL is the normalized URL the crawl started from.
	StartURL string `json:"start_url"`

	// Visited is the number of URLs for which a fetch was attempted.
	Visited int `json:"visited"`

	// Indexed is the number of documents added to the index.
	Indexed int `json:"indexed"`

	// SkippedNonHTML counts fetched pages whose content type was not HTML.
	SkippedNonHTML int `json:"skipped_non_html"`

	// Failed counts transport failures and non-2xx responses.
	Failed int `json:"failed"`

	// OffOrigin counts discovered links dropped by the origin guard.
	OffOrigin int `json:"off_origin"`

	// Disallowed counts URLs skipped because of robots.txt or URL patterns.
	Disallowed int `json:"disallowed"`

	// VisitedURLs lists visited URLs in the order they were claimed.
	VisitedURLs []string `json:"visited_urls"`

	// StartedAt is when the session began crawling.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time from start to commit.
	Duration time.Duration `json:"duration"`

	// Cancelled is true when the crawl stopped before the frontier drained.
	Cancelled bool `json:"cancelled,omitempty"`
}
