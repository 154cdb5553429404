// Package report renders crawl summaries, search results and document
// listings.
//
// Three formats are provided:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for scripts and other tools
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// Writers implement the Writer interface and can be combined with
// MultiWriter to emit several formats at once.
package report
