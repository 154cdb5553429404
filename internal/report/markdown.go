package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitesearch/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Summary")
	md.PlainText("")

	started := "-"
	if !stats.StartedAt.IsZero() {
		started = stats.StartedAt.Format("2006-01-02 15:04:05 MST")
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + stats.StartURL + "`"},
			{"Session", "`" + stats.SessionID + "`"},
			{"Started", started},
			{"Duration", stats.Duration.Round(time.Millisecond).String()},
			{"Status", w.statusText(stats)},
		},
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Visited", strconv.Itoa(stats.Visited)},
			{"Indexed", strconv.Itoa(stats.Indexed)},
			{"Skipped (not HTML)", strconv.Itoa(stats.SkippedNonHTML)},
			{"Failed", strconv.Itoa(stats.Failed)},
			{"Off-origin links", strconv.Itoa(stats.OffOrigin)},
			{"Disallowed", strconv.Itoa(stats.Disallowed)},
		},
	})
	md.PlainText("")

	if stats.Visited > 0 {
		w.writePieChart(md, stats)
	}
	w.writeAlert(md, stats)

	if len(stats.VisitedURLs) > 0 {
		md.H2("Visited URLs")
		md.PlainText("")
		md.BulletList(stats.VisitedURLs...)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// statusText returns the status cell of the summary table.
func (w *MarkdownWriter) statusText(stats *model.CrawlStats) string {
	if stats.Cancelled {
		return "⚠️ " + crawlStatus(stats)
	}
	return "✅ " + crawlStatus(stats)
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats *model.CrawlStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if stats.Indexed > 0 {
		chart.LabelAndIntValue("Indexed", uint64(stats.Indexed))
	}
	if stats.SkippedNonHTML > 0 {
		chart.LabelAndIntValue("Not HTML", uint64(stats.SkippedNonHTML))
	}
	if stats.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failed))
	}
	// Duplicates and index errors account for the rest.
	if other := stats.Visited - stats.Indexed - stats.SkippedNonHTML - stats.Failed; other > 0 {
		chart.LabelAndIntValue("Other", uint64(other))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the overall crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, stats *model.CrawlStats) {
	switch {
	case stats.Cancelled:
		md.Warningf("Crawl was cancelled after %d page(s). The partial index was committed.", stats.Visited)
	case stats.Indexed == 0:
		md.Cautionf("No documents were indexed from %s.", stats.StartURL)
	case stats.Failed > 0:
		md.Importantf("%d page(s) could not be fetched.", stats.Failed)
	default:
		md.Tip("All fetched HTML pages were indexed.")
	}
	md.PlainText("")
}

// WriteResults outputs the search result in Markdown format.
func (w *MarkdownWriter) WriteResults(result *model.SearchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")
	md.PlainTextf("Query: `%s` (%s)", result.Query, result.Mode)
	md.PlainText("")

	if result.Suggestion != "" {
		md.Note(fmt.Sprintf("Did you mean **%s**?", result.Suggestion))
		md.PlainText("")
	}

	if len(result.Hits) == 0 {
		md.PlainText("No results found.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(result.Hits))
	for i, hit := range result.Hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			link(hit.Title, hit.URL),
			cell(hit.Teaser),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Page", "Teaser"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteDocuments outputs the document listing in Markdown format.
func (w *MarkdownWriter) WriteDocuments(docs []model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Indexed Documents")
	md.PlainText("")

	if len(docs) == 0 {
		md.PlainText("No documents indexed.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{cell(d.Title), "`" + d.URL + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainTextf("%d document(s)", len(docs))

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitesearch](https://github.com/nao1215/sitesearch)*")
}

// cell makes text safe for a single table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func link(title, url string) string {
	return "[" + strings.ReplaceAll(cell(title), "]", `\]`) + "](" + url + ")"
}
