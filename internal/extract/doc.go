// Package extract turns fetched HTML into a searchable document.
//
// Parse derives the title, the visible body text and the outgoing links of
// a page. An Extractor combines that with teaser generation: the body is
// HTML-escaped, capped and handed to the configured summarizers, and when
// none of them produces a teaser the escaped body is truncated instead.
//
// Extraction never fails on malformed markup. A page without a title is
// titled by its URL, and a page without visible text gets NoBodySentinel as
// its body.
package extract
