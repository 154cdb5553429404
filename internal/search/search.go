// Package search answers keyword queries against a committed index.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/sitesearch/internal/index"
	"github.com/nao1215/sitesearch/internal/model"
)

// Reader is the read side of an index.Store.
type Reader interface {
	Search(ctx context.Context, q index.Query) ([]model.Document, error)
	Correct(ctx context.Context, term string) (string, bool, error)
	Count(ctx context.Context) (int, error)
}

// Engine evaluates queries. It only reads the store and is safe for
// concurrent use when the store is.
type Engine struct {
	store Reader
}

// NewEngine creates an Engine over a committed store.
func NewEngine(store Reader) *Engine {
	return &Engine{store: store}
}

// Search returns the hits for text in store order. A blank query returns no
// hits and no error.
func (e *Engine) Search(ctx context.Context, text string, mode model.SearchMode) ([]model.Hit, error) {
	q := index.ParseQuery(text, mode)
	if q.Empty() {
		return []model.Hit{}, nil
	}

	docs, err := e.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]model.Hit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, doc.Hit())
	}
	return hits, nil
}

// Suggest runs the corrector on the first term of text. A suggestion is
// only returned when it differs from that term.
func (e *Engine) Suggest(ctx context.Context, text string) (string, bool, error) {
	terms := index.Terms(text)
	if len(terms) == 0 {
		return "", false, nil
	}

	suggestion, ok, err := e.store.Correct(ctx, terms[0])
	if err != nil {
		return "", false, fmt.Errorf("suggest failed: %w", err)
	}
	if !ok || suggestion == terms[0] {
		return "", false, nil
	}
	return suggestion, true, nil
}

// BestMatch returns the URL of the first hit for text.
func (e *Engine) BestMatch(ctx context.Context, text string, mode model.SearchMode) (string, bool, error) {
	hits, err := e.Search(ctx, text, mode)
	if err != nil {
		return "", false, err
	}
	if len(hits) == 0 {
		return "", false, nil
	}
	return hits[0].URL, true, nil
}

// Query runs Search and Suggest together, which is what result listings
// show.
func (e *Engine) Query(ctx context.Context, text string, mode model.SearchMode) (*model.SearchResult, error) {
	hits, err := e.Search(ctx, text, mode)
	if err != nil {
		return nil, err
	}
	suggestion, _, err := e.Suggest(ctx, text)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Query:      strings.TrimSpace(text),
		Mode:       mode,
		Suggestion: suggestion,
		Hits:       hits,
	}, nil
}

// Count returns the number of indexed documents.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.store.Count(ctx)
}
