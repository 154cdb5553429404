package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitesearch/internal/model"
)

// ErrSessionStarted is returned by Run on a session that already ran.
var ErrSessionStarted = errors.New("crawl session already started")

// State is the lifecycle state of a Session.
type State int

const (
	// NotStarted is the state of a new session.
	NotStarted State = iota
	// Crawling is the state while Run is working through the frontier.
	Crawling
	// Sealed is the state after the index was committed.
	Sealed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Crawling:
		return "crawling"
	case Sealed:
		return "sealed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store receives the documents of a crawl. index.Store satisfies it.
type Store interface {
	Add(ctx context.Context, doc model.Document) error
	Commit(ctx context.Context) error
}

// Extractor turns a fetched HTML page into a document and its links.
// *extract.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, docURL, baseURL string, content []byte) (*model.Document, []string, error)
}

// Session is one crawl of one origin. It owns its visited set, frontier and
// the write side of its store; separate sessions share nothing.
type Session struct {
	fetcher   Fetcher
	extractor Extractor
	store     Store
	logger    *slog.Logger

	id        string
	maxPages  int
	workers   int
	traversal Traversal
	filter    PathFilter
	robots    *RobotsPolicy

	visited *VisitedSet

	// mu guards state and stats, which Stats and State read concurrently
	// with Run.
	mu    sync.Mutex
	state State
	stats model.CrawlStats

	// Owned by the Run goroutine.
	frontier  *Frontier
	start     string
	evaluated map[string]struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMaxPages caps the number of fetch attempts. Zero means no cap.
func WithMaxPages(n int) SessionOption {
	return func(s *Session) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// WithWorkers sets how many pages are fetched and extracted concurrently.
// Values below one are treated as one.
func WithWorkers(n int) SessionOption {
	return func(s *Session) {
		s.workers = max(n, 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIgnorePatterns skips URLs whose path matches any of the glob
// patterns, e.g. "/admin/*" or "*.pdf".
func WithIgnorePatterns(patterns []string) SessionOption {
	return func(s *Session) {
		s.filter.Ignore = patterns
	}
}

// WithFollowPatterns only crawls URLs whose path matches one of the glob
// patterns. The start URL is always crawled.
func WithFollowPatterns(patterns []string) SessionOption {
	return func(s *Session) {
		s.filter.Follow = patterns
	}
}

// WithTraversal sets the frontier order.
func WithTraversal(t Traversal) SessionOption {
	return func(s *Session) {
		s.traversal = t
	}
}

// WithRobots skips URLs the policy disallows. A nil policy allows all.
func WithRobots(policy *RobotsPolicy) SessionOption {
	return func(s *Session) {
		s.robots = policy
	}
}

// WithSessionID sets the session identifier instead of a random UUID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates a crawl session writing to store.
func NewSession(fetcher Fetcher, extractor Extractor, store Store, opts ...SessionOption) *Session {
	s := &Session{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		logger:    slog.Default(),
		id:        uuid.NewString(),
		workers:   1,
		traversal: BreadthFirst,
		visited:   NewVisitedSet(),
		evaluated: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frontier = NewFrontier(s.traversal)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the crawl counters.
func (s *Session) Stats() model.CrawlStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Visited = s.visited.Len()
	stats.VisitedURLs = s.visited.URLs()
	return stats
}

// Visited reports whether a fetch was attempted for the normalized URL.
func (s *Session) Visited(u string) bool {
	return s.visited.Contains(u)
}

// pageResult is the outcome of fetching and extracting one URL.
type pageResult struct {
	url string
	// finalURL is the normalized URL the content was served from. It is
	// empty when no redirect was followed.
	finalURL string
	doc      *model.Document
	links   []string
	notHTML bool
	err     error
}

// Run crawls from startURL until the frontier is empty, the page cap is
// reached or ctx is cancelled, then commits the store.
//
// Page-level failures are counted, not returned. Run returns an error only
// for an invalid start URL, a second call, or a failed commit.
func (s *Session) Run(ctx context.Context, startURL string) (*model.CrawlStats, error) {
	start, err := NormalizeURL(startURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != NotStarted {
		s.mu.Unlock()
		return nil, ErrSessionStarted
	}
	s.state = Crawling
	s.stats = model.CrawlStats{
		SessionID: s.id,
		StartURL:  start,
		StartedAt: time.Now(),
	}
	s.mu.Unlock()

	s.start = start
	s.evaluated[start] = struct{}{}
	if s.robots.Allowed(start) {
		s.frontier.Push(start)
	} else {
		s.count(func(st *model.CrawlStats) { st.Disallowed++ })
		s.logger.Warn("robots.txt disallows the start URL", "url", start)
	}

	s.logger.Info("crawl started",
		"crawl_id", s.id,
		"url", start,
		"workers", s.workers,
		"traversal", s.traversal.String(),
	)

	cancelled := s.crawl(ctx)

	// The partial index of a cancelled crawl is still committed.
	commitErr := s.store.Commit(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.state = Sealed
	s.stats.Cancelled = cancelled
	s.stats.Duration = time.Since(s.stats.StartedAt)
	s.mu.Unlock()

	stats := s.Stats()
	s.logger.Info("crawl finished",
		"crawl_id", s.id,
		"visited", stats.Visited,
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	if commitErr != nil {
		return &stats, fmt.Errorf("failed to commit index: %w", commitErr)
	}
	return &stats, nil
}

// crawl works through the frontier in batches of up to s.workers URLs.
// It reports whether it stopped because ctx was cancelled.
func (s *Session) crawl(ctx context.Context) bool {
	for s.frontier.Len() > 0 {
		if ctx.Err() != nil {
			return true
		}

		batch := s.claim()
		if len(batch) == 0 {
			break
		}

		results := make([]pageResult, len(batch))
		if len(batch) == 1 {
			results[0] = s.process(ctx, batch[0])
		} else {
			var g errgroup.Group
			g.SetLimit(s.workers)
			for i, u := range batch {
				g.Go(func() error {
					results[i] = s.process(ctx, u)
					return nil
				})
			}
			_ = g.Wait()
		}

		// Results are merged in claim order, so the frontier order does not
		// depend on which worker finished first.
		for _, r := range results {
			s.merge(ctx, r)
		}
	}
	return ctx.Err() != nil
}

// claim pops up to s.workers URLs and marks them visited. It stops early
// when the page cap is reached.
func (s *Session) claim() []string {
	batch := make([]string, 0, s.workers)
	for len(batch) < s.workers {
		if s.maxPages > 0 && s.visited.Len() >= s.maxPages {
			break
		}
		u, ok := s.frontier.Pop()
		if !ok {
			break
		}
		if !s.visited.MarkIfNew(u) {
			continue
		}
		batch = append(batch, u)
	}
	return batch
}

// process fetches and extracts one URL. It runs on worker goroutines and
// must not touch the frontier or the store.
func (s *Session) process(ctx context.Context, u string) pageResult {
	res, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		return pageResult{url: u, err: err}
	}

	body, err := res.HTML()
	if err != nil {
		return pageResult{url: u, notHTML: true}
	}

	base := res.FinalURL
	if base == "" {
		base = u
	}
	var final string
	if n, err := NormalizeURL(base); err == nil && n != u {
		final = n
	}
	doc, links, err := s.extractor.Extract(ctx, u, base, body)
	if err != nil {
		return pageResult{url: u, err: fmt.Errorf("failed to extract %s: %w", u, err)}
	}
	return pageResult{url: u, finalURL: final, doc: doc, links: links}
}

// merge records one page outcome, indexes its document and enqueues its
// admissible links.
func (s *Session) merge(ctx context.Context, r pageResult) {
	switch {
	case r.err != nil:
		s.count(func(st *model.CrawlStats) { st.Failed++ })
		s.logger.Debug("page skipped", "url", r.url, "error", r.err)
		return
	case r.notHTML:
		s.count(func(st *model.CrawlStats) { st.SkippedNonHTML++ })
		s.logger.Debug("non-HTML page skipped", "url", r.url)
		return
	}

	// A redirect target counts as visited. If it was already claimed, its
	// own fetch indexes it.
	if r.finalURL != "" {
		s.evaluated[r.finalURL] = struct{}{}
		if !s.visited.MarkIfNew(r.finalURL) {
			s.logger.Debug("redirect target already visited", "url", r.url, "target", r.finalURL)
			return
		}
	}

	if err := s.store.Add(context.WithoutCancel(ctx), *r.doc); err != nil {
		s.count(func(st *model.CrawlStats) { st.Failed++ })
		s.logger.Warn("failed to index page", "url", r.url, "error", err)
		return
	}
	s.count(func(st *model.CrawlStats) { st.Indexed++ })
	s.logger.Info("indexed page", "url", r.url, "title", r.doc.Title, "links", len(r.links))

	admitted := make([]string, 0, len(r.links))
	for _, link := range r.links {
		if u, ok := s.admit(link); ok {
			admitted = append(admitted, u)
		}
	}
	s.frontier.PushAll(admitted)
}

// admit normalizes a discovered link and decides whether it may enter the
// frontier. Each distinct normalized URL is evaluated once.
func (s *Session) admit(link string) (string, bool) {
	u, err := NormalizeURL(link)
	if err != nil {
		return "", false
	}
	if _, done := s.evaluated[u]; done {
		return "", false
	}
	s.evaluated[u] = struct{}{}

	if !IsSameOrigin(u, s.start) {
		s.count(func(st *model.CrawlStats) { st.OffOrigin++ })
		return "", false
	}
	if s.visited.Contains(u) {
		return "", false
	}
	if !s.filter.Allows(u) || !s.robots.Allowed(u) {
		s.count(func(st *model.CrawlStats) { st.Disallowed++ })
		return "", false
	}
	return u, true
}

// count applies fn to the stats under the lock.
func (s *Session) count(fn func(*model.CrawlStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}
