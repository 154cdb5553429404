package model

import (
	"fmt"
	"strings"
)

// Document is the searchable record derived from one crawled HTML page.
// A Document is created once, when its page is first fetched and classified
// as HTML, and is never modified afterwards.
type Document struct {
	// URL is the normalized page address. It is the unique key of the document.
	URL string `json:"url"`

	// Title is the page's <title>, or the URL when the page declares none.
	Title string `json:"title"`

	// Teaser is a short summary shown in result listings.
	Teaser string `json:"teaser"`

	// Body is the visible text of the page. Durable backends may not
	// return it from searches.
	Body string `json:"body,omitempty"`
}

// Hit returns the listing view of the document.
func (d Document) Hit() Hit {
	return Hit{
		URL:    d.URL,
		Title:  d.Title,
		Teaser: d.Teaser,
	}
}

// Hit is one entry of a search result listing.
type Hit struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Teaser string `json:"teaser"`
}

// SearchMode selects how the terms of a multi-term query are combined.
type SearchMode int

const (
	// ModeAll matches documents that contain every query term.
	ModeAll SearchMode = iota
	// ModeAny matches documents that contain at least one query term.
	ModeAny
)

// String returns the mode name used on the command line and in URLs.
func (m SearchMode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeAny:
		return "any"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m SearchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseSearchMode parses a mode name. The empty string selects ModeAll.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "and":
		return ModeAll, nil
	case "any", "or":
		return ModeAny, nil
	default:
		return ModeAll, fmt.Errorf("unknown search mode %q (want all or any)", s)
	}
}

// SearchResult is the answer to one query.
type SearchResult struct {
	// Query is the raw query text as entered.
	Query string `json:"query"`

	// Mode is the evaluation mode used.
	Mode SearchMode `json:"mode"`

	// Suggestion is a corrected spelling of the first query term, if any.
	Suggestion string `json:"suggestion,omitempty"`

	// Hits are the matching documents in store order.
	Hits []Hit `json:"results"`
}
