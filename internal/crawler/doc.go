// Package crawler walks the pages of a single web origin and feeds them to
// an index.
//
// # Components
//
//   - NormalizeURL and IsSameOrigin canonicalize URLs and keep the crawl on
//     the start URL's origin.
//   - HTTPFetcher retrieves one URL and classifies the response as HTML or
//     not. Politeness delays and robots.txt are handled here.
//   - Frontier holds discovered URLs in breadth-first or depth-first order.
//   - VisitedSet records every URL a fetch was attempted for. Its
//     check-and-mark is atomic, so a URL is fetched at most once even with
//     several workers.
//   - Session drives one crawl from a start URL until the frontier is empty,
//     then commits the index.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(nil, crawler.WithRateLimit(time.Second))
//	session := crawler.NewSession(fetcher, extractor, store, crawler.WithMaxPages(500))
//	stats, err := session.Run(ctx, "https://example.com/")
//
// # Failure handling
//
// Nothing that happens to a single page stops a crawl. Transport errors,
// non-2xx responses and non-HTML content are counted in the returned
// CrawlStats and the page is skipped. Cancelling the context stops the crawl
// early; documents indexed so far are still committed.
package crawler
