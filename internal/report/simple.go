package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitesearch/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// Plain ASCII formatting is used so output can be piped to files or
// other tools without escape sequences.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCrawl outputs the crawl summary in human-readable format.
func (w *SimpleWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "CRAWL SUMMARY")

	fmt.Fprintf(&sb, "Start URL:      %s\n", stats.StartURL)
	fmt.Fprintf(&sb, "Session:        %s\n", stats.SessionID)
	if !stats.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Started:        %s\n", stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "Duration:       %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Status:         %s\n", crawlStatus(stats))
	sb.WriteString("\n")

	writeSection(&sb, "PAGES")
	fmt.Fprintf(&sb, "  VISITED:      %d\n", stats.Visited)
	fmt.Fprintf(&sb, "  INDEXED:      %d\n", stats.Indexed)
	fmt.Fprintf(&sb, "  NON-HTML:     %d\n", stats.SkippedNonHTML)
	fmt.Fprintf(&sb, "  FAILED:       %d\n", stats.Failed)
	fmt.Fprintf(&sb, "  OFF-ORIGIN:   %d\n", stats.OffOrigin)
	fmt.Fprintf(&sb, "  DISALLOWED:   %d\n", stats.Disallowed)
	sb.WriteString("\n")

	if w.verbose && (len(stats.VisitedURLs) > 0 || w.showEmpty) {
		writeSection(&sb, "VISITED URLS")
		if len(stats.VisitedURLs) == 0 {
			sb.WriteString("  No URLs visited\n")
		}
		for _, u := range stats.VisitedURLs {
			fmt.Fprintf(&sb, "  [+] %s\n", u)
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteResults outputs the search result in human-readable format.
func (w *SimpleWriter) WriteResults(result *model.SearchResult) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Query: %s (%s)\n", result.Query, result.Mode)
	if result.Suggestion != "" {
		fmt.Fprintf(&sb, "Did you mean: %s?\n", result.Suggestion)
	}
	sb.WriteString("\n")

	if len(result.Hits) == 0 {
		sb.WriteString("No results found.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%d result(s)\n\n", len(result.Hits))
	for i, hit := range result.Hits {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, hit.Title)
		fmt.Fprintf(&sb, "   %s\n", hit.URL)
		if w.verbose && hit.Teaser != "" {
			fmt.Fprintf(&sb, "   %s\n", hit.Teaser)
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteDocuments outputs the document listing in human-readable format.
func (w *SimpleWriter) WriteDocuments(docs []model.Document) (int, error) {
	var sb strings.Builder

	writeSection(&sb, fmt.Sprintf("INDEXED DOCUMENTS (%d)", len(docs)))
	if len(docs) == 0 {
		sb.WriteString("  No documents indexed\n")
	}
	for _, d := range docs {
		fmt.Fprintf(&sb, "  * %s\n", d.Title)
		fmt.Fprintf(&sb, "    URL: %s\n", d.URL)
		if w.verbose && d.Teaser != "" {
			fmt.Fprintf(&sb, "    Teaser: %s\n", d.Teaser)
		}
	}

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a report header framed by '=' rules.
func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSection writes a section header framed by '-' rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
