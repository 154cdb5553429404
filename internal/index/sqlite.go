package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitesearch/internal/model"
)

// sqliteFileName is the database file created inside the index directory.
const sqliteFileName = "sitesearch.db"

// SQLiteStore keeps documents and their postings in a single SQLite file.
//
// A writable store holds one transaction open for the whole crawl session;
// Commit commits it, which is what makes the documents visible to readers
// of the same file. Until then Search and friends report an empty index.
type SQLiteStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// sessionID is recorded in the sessions table on Commit.
	sessionID string

	mu sync.Mutex

	// tx is the crawl session's writer. It is nil once committed and for
	// stores opened read-only.
	tx *sql.Tx

	// insertDoc and insertPosting are prepared on tx.
	insertDoc     *sql.Stmt
	insertPosting *sql.Stmt

	// added counts documents inserted through tx.
	added int
}

// sqliteSchema creates the tables on a fresh database.
const sqliteSchema = `
	-- One row per crawled HTML page
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		teaser TEXT NOT NULL,
		content TEXT NOT NULL,
		indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Inverted index: one row per distinct (term, document) pair
	CREATE TABLE IF NOT EXISTS postings (
		term TEXT NOT NULL,
		doc_id INTEGER NOT NULL REFERENCES documents(id),
		PRIMARY KEY (term, doc_id)
	) WITHOUT ROWID;

	CREATE INDEX IF NOT EXISTS idx_postings_doc ON postings(doc_id);

	-- Crawl sessions that wrote this index
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		committed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		documents INTEGER NOT NULL
	);
	`

// sqliteExists reports whether dir holds an index database with at least
// one committed crawl session. A database left behind by a crawl that never
// committed does not count.
func sqliteExists(dir string) bool {
	dbPath := filepath.Join(dir, sqliteFileName)
	if _, err := os.Stat(dbPath); err != nil {
		return false
	}
	s, err := openSQLite(dbPath, "rw")
	if err != nil {
		return false
	}
	defer s.db.Close()
	return s.committed(context.Background())
}

// committed reports whether the sessions table has a row. A missing table
// means the schema was never written.
func (s *SQLiteStore) committed(ctx context.Context) bool {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// CreateSQLite creates a fresh, writable SQLiteStore in dir.
// A committed database is returned as ErrIndexExists unless opts.Force is
// set, in which case it is removed first. An uncommitted one is always
// replaced.
func CreateSQLite(dir string, opts CreateOptions) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, sqliteFileName)

	if _, err := os.Stat(dbPath); err == nil {
		if sqliteExists(dir) && !opts.Force {
			return nil, fmt.Errorf("%w: %s", ErrIndexExists, dbPath)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove old index: %w", err)
			}
		}
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	s, err := openSQLite(dbPath, "rwc")
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := s.db.ExecContext(context.Background(), sqliteSchema); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	// The writer transaction must outlive any request context, otherwise
	// database/sql rolls it back when that context is cancelled.
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to begin index transaction: %w", err)
	}
	s.tx = tx

	s.insertDoc, err = tx.Prepare(`
	INSERT INTO documents (url, title, teaser, content)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(url) DO NOTHING
	`)
	if err != nil {
		_ = tx.Rollback()
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to prepare document insert: %w", err)
	}

	s.insertPosting, err = tx.Prepare(`INSERT OR IGNORE INTO postings (term, doc_id) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to prepare posting insert: %w", err)
	}

	s.sessionID = opts.SessionID
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}

	return s, nil
}

// OpenSQLite opens the committed SQLiteStore in dir for reading.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, sqliteFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dbPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check index path: %w", err)
	}
	// mode=rw refuses to create a new file; the WAL journal needs write
	// access to its shared-memory file even for readers.
	s, err := openSQLite(dbPath, "rw")
	if err != nil {
		return nil, err
	}
	if !s.committed(context.Background()) {
		_ = s.db.Close()
		return nil, fmt.Errorf("%w: no committed crawl in %s", ErrIndexNotFound, dbPath)
	}
	return s, nil
}

// openSQLite opens the database file with the given access mode.
func openSQLite(dbPath, mode string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	// SQLite only supports one writer; a single connection also keeps the
	// session transaction and its prepared statements on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Add implements Store.
func (s *SQLiteStore) Add(ctx context.Context, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return ErrSealed
	}

	result, err := s.insertDoc.ExecContext(ctx, doc.URL, doc.Title, doc.Teaser, doc.Body)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	if n == 0 {
		return ErrDuplicateURL
	}
	docID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for _, term := range UniqueTerms(doc.Body) {
		if _, err := s.insertPosting.ExecContext(ctx, term, docID); err != nil {
			return fmt.Errorf("failed to insert posting %q: %w", term, err)
		}
	}
	s.added++
	return nil
}

// Commit implements Store.
func (s *SQLiteStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}

	if _, err := s.tx.ExecContext(ctx,
		`INSERT INTO sessions (id, documents) VALUES (?, ?)`,
		s.sessionID, s.added,
	); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	_ = s.insertDoc.Close()
	_ = s.insertPosting.Close()
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	s.tx = nil
	return nil
}

// writing reports whether the session transaction is still open.
// Callers must hold s.mu.
func (s *SQLiteStore) writing() bool {
	return s.tx != nil
}

// Search implements Store.
func (s *SQLiteStore) Search(ctx context.Context, q Query) ([]model.Document, error) {
	if q.Empty() {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing() {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Terms)), ",")
	query := `
	SELECT d.url, d.title, d.teaser, d.content
	FROM documents d
	JOIN (
		SELECT doc_id FROM postings
		WHERE term IN (` + placeholders + `)
		GROUP BY doc_id
		HAVING COUNT(DISTINCT term) >= ?
	) m ON m.doc_id = d.id
	ORDER BY d.id
	`

	args := make([]interface{}, 0, len(q.Terms)+1)
	for _, term := range q.Terms {
		args = append(args, term)
	}
	args = append(args, q.required())

	return s.queryDocuments(ctx, query, args...)
}

// queryDocuments runs a query returning (url, title, teaser, content) rows.
func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.URL, &doc.Title, &doc.Teaser, &doc.Body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Contains implements Store.
func (s *SQLiteStore) Contains(ctx context.Context, term string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing() {
		return false, nil
	}

	var found bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM postings WHERE term = ?)`,
		NormalizeTerm(term),
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to look up term: %w", err)
	}
	return found, nil
}

// Correct implements Store.
func (s *SQLiteStore) Correct(ctx context.Context, term string) (string, bool, error) {
	vocab, err := s.vocabulary(ctx)
	if err != nil {
		return "", false, err
	}
	suggestion, ok := Closest(NormalizeTerm(term), vocab)
	return suggestion, ok, nil
}

// vocabulary loads every term with its document frequency.
func (s *SQLiteStore) vocabulary(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vocab := make(map[string]int)
	if s.writing() {
		return vocab, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT term, COUNT(*) FROM postings GROUP BY term`)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var term string
		var freq int
		if err := rows.Scan(&term, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		vocab[term] = freq
	}
	return vocab, rows.Err()
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing() {
		return 0, nil
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// All implements Store.
func (s *SQLiteStore) All(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing() {
		return nil, nil
	}
	return s.queryDocuments(ctx, `SELECT url, title, teaser, content FROM documents ORDER BY id`)
}

// SessionInfo describes one committed crawl session.
type SessionInfo struct {
	ID          string    `json:"id"`
	CommittedAt time.Time `json:"committed_at"`
	Documents   int       `json:"documents"`
}

// Sessions returns the committed crawl sessions, newest first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing() {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, committed_at, documents FROM sessions ORDER BY committed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var committedAt string
		if err := rows.Scan(&info.ID, &committedAt, &info.Documents); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.CommittedAt = parseTimestamp(committedAt)
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// Close implements Store. An uncommitted session is rolled back.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tx != nil {
		_ = s.insertDoc.Close()
		_ = s.insertPosting.Close()
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp parses a SQLite timestamp, returning the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
