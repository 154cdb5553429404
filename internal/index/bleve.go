package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/nao1215/sitesearch/internal/model"
)

const (
	// bleveDirName is the bleve index directory inside the index directory.
	bleveDirName = "bleve"

	// bleveCommittedKey is the internal key Commit writes; an index without
	// it was left by a crawl that did not finish.
	bleveCommittedKey = "sitesearch_committed"

	// termsAnalyzer splits pre-normalized terms on whitespace only, so
	// bleve sees exactly the terms produced by Terms.
	termsAnalyzer = "sitesearch_terms"

	fieldURL     = "url"
	fieldTitle   = "title"
	fieldTeaser  = "teaser"
	fieldContent = "content"
	fieldSeq     = "seq"
)

// BleveStore keeps documents in a bleve full-text index.
type BleveStore struct {
	idx  bleve.Index
	path string

	mu      sync.Mutex
	batch   *bleve.Batch
	seen    map[string]struct{}
	next    int
	sealed  bool
	pending int
}

func bleveExists(dir string) bool {
	path := filepath.Join(dir, bleveDirName)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	idx, err := bleve.Open(path)
	if err != nil {
		return false
	}
	defer idx.Close()
	return bleveCommitted(idx)
}

// bleveCommitted reports whether Commit ran on idx.
func bleveCommitted(idx bleve.Index) bool {
	v, err := idx.GetInternal([]byte(bleveCommittedKey))
	return err == nil && len(v) > 0
}

// newBleveMapping builds the document mapping: url is an exact keyword,
// title is full text, teaser is stored only and content is indexed only.
func newBleveMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(termsAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}

	urlField := bleve.NewKeywordFieldMapping()
	urlField.Store = true

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true

	teaserField := bleve.NewTextFieldMapping()
	teaserField.Store = true
	teaserField.Index = false

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = termsAnalyzer
	contentField.Store = false
	contentField.IncludeInAll = false

	seqField := bleve.NewNumericFieldMapping()
	seqField.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldURL, urlField)
	doc.AddFieldMappingsAt(fieldTitle, titleField)
	doc.AddFieldMappingsAt(fieldTeaser, teaserField)
	doc.AddFieldMappingsAt(fieldContent, contentField)
	doc.AddFieldMappingsAt(fieldSeq, seqField)

	im.DefaultMapping = doc
	return im, nil
}

// CreateBleve creates a fresh, writable BleveStore in dir.
func CreateBleve(dir string, opts CreateOptions) (*BleveStore, error) {
	path := filepath.Join(dir, bleveDirName)

	if _, err := os.Stat(path); err == nil {
		if bleveExists(dir) && !opts.Force {
			return nil, fmt.Errorf("%w: %s", ErrIndexExists, path)
		}
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to remove old index: %w", err)
		}
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	im, err := newBleveMapping()
	if err != nil {
		return nil, err
	}

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &BleveStore{
		idx:   idx,
		path:  path,
		batch: idx.NewBatch(),
		seen:  make(map[string]struct{}),
	}, nil
}

// OpenBleve opens the committed BleveStore in dir for reading.
func OpenBleve(dir string) (*BleveStore, error) {
	path := filepath.Join(dir, bleveDirName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}

	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bleve index: %w", err)
	}
	if !bleveCommitted(idx) {
		_ = idx.Close()
		return nil, fmt.Errorf("%w: no committed crawl in %s", ErrIndexNotFound, path)
	}
	return &BleveStore{idx: idx, path: path, sealed: true}, nil
}

// Add implements Store.
func (s *BleveStore) Add(_ context.Context, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	if _, ok := s.seen[doc.URL]; ok {
		return ErrDuplicateURL
	}

	err := s.batch.Index(doc.URL, map[string]interface{}{
		fieldURL:     doc.URL,
		fieldTitle:   doc.Title,
		fieldTeaser:  doc.Teaser,
		fieldContent: strings.Join(Terms(doc.Body), " "),
		fieldSeq:     float64(s.next),
	})
	if err != nil {
		return fmt.Errorf("failed to queue document: %w", err)
	}
	s.seen[doc.URL] = struct{}{}
	s.next++
	s.pending++
	return nil
}

// Commit implements Store.
func (s *BleveStore) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return nil
	}
	if s.pending > 0 {
		if err := s.idx.Batch(s.batch); err != nil {
			return fmt.Errorf("failed to commit index: %w", err)
		}
	}
	stamp := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := s.idx.SetInternal([]byte(bleveCommittedKey), stamp); err != nil {
		return fmt.Errorf("failed to mark index committed: %w", err)
	}
	s.batch = nil
	s.sealed = true
	return nil
}

// isSealed reports whether documents are visible to readers.
func (s *BleveStore) isSealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealed
}

// Search implements Store.
func (s *BleveStore) Search(ctx context.Context, q Query) ([]model.Document, error) {
	if q.Empty() || !s.isSealed() {
		return nil, nil
	}

	terms := make([]query.Query, 0, len(q.Terms))
	for _, term := range q.Terms {
		tq := bleve.NewTermQuery(term)
		tq.SetField(fieldContent)
		terms = append(terms, tq)
	}

	var bq query.Query
	if q.Mode == model.ModeAny {
		bq = bleve.NewDisjunctionQuery(terms...)
	} else {
		bq = bleve.NewConjunctionQuery(terms...)
	}
	return s.find(ctx, bq)
}

// find runs bq and returns every match in insertion order.
func (s *BleveStore) find(ctx context.Context, bq query.Query) ([]model.Document, error) {
	total, err := s.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bq, int(total), 0, false)
	req.Fields = []string{fieldURL, fieldTitle, fieldTeaser}
	req.SortBy([]string{fieldSeq})

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	docs := make([]model.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, model.Document{
			URL:    stringField(hit.Fields, fieldURL, hit.ID),
			Title:  stringField(hit.Fields, fieldTitle, ""),
			Teaser: stringField(hit.Fields, fieldTeaser, ""),
		})
	}
	return docs, nil
}

func stringField(fields map[string]interface{}, name, fallback string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return fallback
}

// Contains implements Store.
func (s *BleveStore) Contains(ctx context.Context, term string) (bool, error) {
	vocab, err := s.vocabulary(ctx)
	if err != nil {
		return false, err
	}
	_, ok := vocab[NormalizeTerm(term)]
	return ok, nil
}

// Correct implements Store.
func (s *BleveStore) Correct(ctx context.Context, term string) (string, bool, error) {
	vocab, err := s.vocabulary(ctx)
	if err != nil {
		return "", false, err
	}
	suggestion, ok := Closest(NormalizeTerm(term), vocab)
	return suggestion, ok, nil
}

// vocabulary walks the content field dictionary.
func (s *BleveStore) vocabulary(_ context.Context) (map[string]int, error) {
	vocab := make(map[string]int)
	if !s.isSealed() {
		return vocab, nil
	}

	dict, err := s.idx.FieldDict(fieldContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	defer func() { _ = dict.Close() }()

	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read vocabulary: %w", err)
		}
		if entry == nil {
			break
		}
		vocab[entry.Term] = int(entry.Count)
	}
	return vocab, nil
}

// Count implements Store.
func (s *BleveStore) Count(_ context.Context) (int, error) {
	if !s.isSealed() {
		return 0, nil
	}
	n, err := s.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(n), nil
}

// All implements Store. Bodies are not stored, so Body is empty.
func (s *BleveStore) All(ctx context.Context) ([]model.Document, error) {
	if !s.isSealed() {
		return nil, nil
	}
	return s.find(ctx, bleve.NewMatchAllQuery())
}

// Close implements Store.
func (s *BleveStore) Close() error {
	return s.idx.Close()
}

// Path returns the bleve index directory.
func (s *BleveStore) Path() string {
	return s.path
}
