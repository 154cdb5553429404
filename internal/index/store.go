package index

import (
	"context"
	"errors"
	"strings"

	"github.com/nao1215/sitesearch/internal/model"
)

var (
	// ErrSealed is returned by Add once the store has been committed.
	ErrSealed = errors.New("index is sealed")

	// ErrDuplicateURL is returned by Add when a document with the same URL
	// was already added. The store keeps the first document.
	ErrDuplicateURL = errors.New("document already indexed")

	// ErrIndexExists is returned by Create when an index is already present
	// and a rebuild was not forced.
	ErrIndexExists = errors.New("index already exists")

	// ErrIndexNotFound is returned by Open when no index is present.
	ErrIndexNotFound = errors.New("index not found")

	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown index backend")
)

// Store holds one searchable record per crawled document.
//
// Add is only valid before Commit; documents become visible to Search,
// Contains and Correct only after Commit. Implementations are safe for
// concurrent use.
type Store interface {
	// Add queues a document. A second document with the same URL is
	// rejected with ErrDuplicateURL.
	Add(ctx context.Context, doc model.Document) error

	// Commit publishes all added documents and seals the store.
	// Committing a sealed store is a no-op.
	Commit(ctx context.Context) error

	// Search returns the committed documents matching q in store order.
	Search(ctx context.Context, q Query) ([]model.Document, error)

	// Contains reports whether term is in the committed vocabulary.
	Contains(ctx context.Context, term string) (bool, error)

	// Correct returns the closest vocabulary term to term, if term is not
	// itself in the vocabulary and a close enough entry exists.
	Correct(ctx context.Context, term string) (string, bool, error)

	// Count returns the number of committed documents.
	Count(ctx context.Context) (int, error)

	// All returns every committed document in store order.
	All(ctx context.Context) ([]model.Document, error)

	// Close releases the resources held by the store.
	Close() error
}

// Query is a parsed search request.
type Query struct {
	// Terms are the distinct normalized query terms in input order.
	Terms []string

	// Mode selects AND or OR evaluation.
	Mode model.SearchMode
}

// ParseQuery splits text into normalized terms exactly as document bodies
// are split. Text that yields no terms but is not blank is kept as a single
// lowercased term, which matches nothing.
func ParseQuery(text string, mode model.SearchMode) Query {
	terms := UniqueTerms(text)
	if len(terms) == 0 {
		if raw := strings.ToLower(strings.TrimSpace(text)); raw != "" {
			terms = []string{raw}
		}
	}
	return Query{Terms: terms, Mode: mode}
}

// Empty reports whether the query has no terms.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// required returns how many distinct query terms a document must contain.
func (q Query) required() int {
	if q.Mode == model.ModeAny {
		return 1
	}
	return len(q.Terms)
}
