// Package index stores crawled documents and answers term queries.
//
// A Store is written by exactly one crawl session and becomes searchable
// only after Commit. Three backends implement Store:
//
//   - MemoryStore: a map-based inverted index, used by tests and one-shot runs
//   - SQLiteStore: documents and postings tables in a single SQLite file
//   - BleveStore: a bleve full-text index on disk
//
// All backends share the same term normalization (Terms, NormalizeTerm) and
// the same spelling corrector (Closest), so a query behaves identically no
// matter which backend holds the documents.
//
// # Usage
//
//	store, err := index.Create(index.BackendSQLite, dir, index.CreateOptions{})
//	_ = store.Add(ctx, doc)
//	_ = store.Commit(ctx)
//	docs, err := store.Search(ctx, index.ParseQuery("biology", model.ModeAll))
package index
