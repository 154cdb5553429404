package index

import (
	"context"
	"sync"

	"github.com/nao1215/sitesearch/internal/model"
)

// MemoryStore is an in-memory inverted index.
// Nothing is persisted; the store lives as long as the process.
type MemoryStore struct {
	mu sync.RWMutex

	// pending holds documents added since the store was created.
	pending []model.Document

	// seen tracks URLs of pending and committed documents.
	seen map[string]struct{}

	// docs holds committed documents in insertion order.
	docs []model.Document

	// postings maps a term to the positions in docs that contain it.
	// Positions are ascending.
	postings map[string][]int

	sealed bool
}

// NewMemoryStore creates an empty, writable MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen:     make(map[string]struct{}),
		postings: make(map[string][]int),
	}
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	if _, ok := s.seen[doc.URL]; ok {
		return ErrDuplicateURL
	}
	s.seen[doc.URL] = struct{}{}
	s.pending = append(s.pending, doc)
	return nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return nil
	}
	for _, doc := range s.pending {
		pos := len(s.docs)
		s.docs = append(s.docs, doc)
		for _, term := range UniqueTerms(doc.Body) {
			s.postings[term] = append(s.postings[term], pos)
		}
	}
	s.pending = nil
	s.sealed = true
	return nil
}

// Search implements Store.
func (s *MemoryStore) Search(_ context.Context, q Query) ([]model.Document, error) {
	if q.Empty() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]int, len(s.docs))
	for _, term := range q.Terms {
		for _, pos := range s.postings[term] {
			hits[pos]++
		}
	}

	need := q.required()
	var results []model.Document
	for pos, n := range hits {
		if n >= need {
			results = append(results, s.docs[pos])
		}
	}
	return results, nil
}

// Contains implements Store.
func (s *MemoryStore) Contains(_ context.Context, term string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.postings[NormalizeTerm(term)]
	return ok, nil
}

// Correct implements Store.
func (s *MemoryStore) Correct(_ context.Context, term string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vocab := make(map[string]int, len(s.postings))
	for t, positions := range s.postings {
		vocab[t] = len(positions)
	}
	suggestion, ok := Closest(NormalizeTerm(term), vocab)
	return suggestion, ok, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// All implements Store.
func (s *MemoryStore) All(_ context.Context) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

// Close implements Store. A MemoryStore holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}
