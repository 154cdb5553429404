package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitesearch/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// crawlJSON adds derived fields to the crawl summary.
type crawlJSON struct {
	*model.CrawlStats

	// DurationText is the human-readable form of Duration.
	DurationText string `json:"duration_text"`
}

// WriteCrawl outputs the crawl summary in JSON format.
func (w *JSONWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	return w.writeJSON(crawlJSON{
		CrawlStats:   stats,
		DurationText: stats.Duration.String(),
	})
}

// WriteResults outputs the search result in JSON format.
// An empty hit list is rendered as [] rather than null.
func (w *JSONWriter) WriteResults(result *model.SearchResult) (int, error) {
	out := *result
	if out.Hits == nil {
		out.Hits = []model.Hit{}
	}
	return w.writeJSON(out)
}

// WriteDocuments outputs the document listing in JSON format.
// Bodies are left out to keep listings small.
func (w *JSONWriter) WriteDocuments(docs []model.Document) (int, error) {
	hits := make([]model.Hit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, d.Hit())
	}
	return w.writeJSON(struct {
		Count     int         `json:"count"`
		Documents []model.Hit `json:"documents"`
	}{
		Count:     len(hits),
		Documents: hits,
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
