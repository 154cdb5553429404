package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nao1215/sitesearch/internal/model"
	"github.com/nao1215/sitesearch/internal/summary"
)

const (
	// DefaultTeaserLength is the fallback teaser size in characters.
	DefaultTeaserLength = 300

	// DefaultInputLimit caps the text sent to a summarizer, in characters.
	DefaultInputLimit = 4000
)

// Extractor builds documents from fetched pages.
// It is safe for concurrent use when its summarizers are.
type Extractor struct {
	summarizers  summary.Chain
	teaserLength int
	inputLimit   int
	logger       *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSummarizer appends a summarizer to try before truncation.
// Summarizers are tried in the order they were added.
func WithSummarizer(s summary.Summarizer) Option {
	return func(e *Extractor) {
		if s != nil {
			e.summarizers = append(e.summarizers, s)
		}
	}
}

// WithTeaserLength sets the truncation fallback size.
func WithTeaserLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.teaserLength = n
		}
	}
}

// WithInputLimit sets how many characters of the body a summarizer sees.
func WithInputLimit(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.inputLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor. Without summarizers every teaser is a
// truncation of the body.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		teaserLength: DefaultTeaserLength,
		inputLimit:   DefaultInputLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses content fetched from docURL and returns its document and
// outgoing links. baseURL is the address the content was finally served
// from and is used to resolve relative links; it defaults to docURL.
func (e *Extractor) Extract(ctx context.Context, docURL, baseURL string, content []byte) (*model.Document, []string, error) {
	if baseURL == "" {
		baseURL = docURL
	}

	page, err := Parse(baseURL, content)
	if err != nil {
		return nil, nil, err
	}

	title := page.Title
	if title == "" {
		title = docURL
	}

	doc := &model.Document{
		URL:    docURL,
		Title:  title,
		Teaser: e.Teaser(ctx, page.Body, title),
		Body:   page.Body,
	}
	return doc, page.Links, nil
}

// Teaser summarizes body. Text is cut before it is escaped, so a cut never
// splits an entity and neither the summarizers nor the fallback ever see
// live markup. When no summarizer succeeds the body is truncated to the
// teaser length.
func (e *Extractor) Teaser(ctx context.Context, body, title string) string {
	if len(e.summarizers) > 0 {
		input := escapeText(capText(body, e.inputLimit))
		teaser, err := e.summarizers.Summarize(ctx, input, title)
		if err == nil {
			return teaser
		}
		e.logger.Debug("summarizer failed, truncating body", "title", title, "error", err)
	}

	return escapeText(summary.Truncate(body, e.teaserLength))
}

// textEscaper neutralizes markup in text content. Quotes only matter inside
// attributes and are left alone.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// capText keeps the first limit characters of s.
func capText(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
