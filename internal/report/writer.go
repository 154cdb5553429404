package report

import (
	"io"

	"github.com/nao1215/sitesearch/internal/model"
)

// Writer defines the interface for report output.
// Implementations render crawl and search results in various formats.
type Writer interface {
	// WriteCrawl outputs the summary of one crawl session.
	// Returns the number of bytes written and any error encountered.
	WriteCrawl(stats *model.CrawlStats) (int, error)

	// WriteResults outputs the answer to one query.
	WriteResults(result *model.SearchResult) (int, error)

	// WriteDocuments outputs a listing of indexed documents.
	WriteDocuments(docs []model.Document) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCrawl outputs the crawl summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteCrawl(stats) })
}

// WriteResults outputs the search result to all configured Writers.
func (m *MultiWriter) WriteResults(result *model.SearchResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteResults(result) })
}

// WriteDocuments outputs the document listing to all configured Writers.
func (m *MultiWriter) WriteDocuments(docs []model.Document) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDocuments(docs) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// crawlStatus returns a short description of how a crawl ended.
func crawlStatus(stats *model.CrawlStats) string {
	if stats.Cancelled {
		return "Cancelled (partial index committed)"
	}
	return "Complete"
}
