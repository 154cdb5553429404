package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request timeout of a fetcher created
	// without an HTTP client.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the number of body bytes read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies the crawler to servers.
	DefaultUserAgent = "sitesearch/1.0 (+https://github.com/nao1215/sitesearch)"

	// maxRedirects matches the limit of http.Client's default policy.
	maxRedirects = 10
)

var (
	// ErrStatus is returned for responses outside the 2xx range.
	// The error message carries the status code.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrNotHTML is returned by FetchResult.HTML for non-HTML content.
	ErrNotHTML = errors.New("content is not HTML")

	// ErrOffOriginRedirect is returned when a server redirects to another
	// origin.
	ErrOffOriginRedirect = errors.New("redirect leaves the crawl origin")
)

// FetchResult is one classified HTTP response.
type FetchResult struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL the content was served from after redirects.
	FinalURL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the raw Content-Type header.
	ContentType string

	// IsHTML reports whether the content type is an HTML media type.
	IsHTML bool

	// Body is the UTF-8 decoded body. It is only read for HTML responses.
	Body []byte
}

// HTML returns the body of an HTML response, or ErrNotHTML.
func (r *FetchResult) HTML() ([]byte, error) {
	if !r.IsHTML {
		return nil, fmt.Errorf("%w: %q", ErrNotHTML, r.ContentType)
	}
	return r.Body, nil
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*FetchResult, error)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	limiter     *rate.Limiter
}

// FetchOption configures an HTTPFetcher.
type FetchOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetchOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds request headers. User-Agent set here overrides
// WithUserAgent.
func WithHeaders(headers map[string]string) FetchOption {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize limits how many body bytes are read. Larger bodies are
// truncated.
func WithMaxBodySize(size int64) FetchOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithRateLimit spaces requests at least delay apart. Zero disables the
// limit.
func WithRateLimit(delay time.Duration) FetchOption {
	return func(f *HTTPFetcher) {
		if delay > 0 {
			f.limiter = rate.NewLimiter(rate.Every(delay), 1)
		} else {
			f.limiter = nil
		}
	}
}

// NewHTTPFetcher creates a fetcher. The client is copied, and its redirect
// policy replaced so that redirects never leave the origin of the URL being
// fetched. A nil client uses DefaultTimeout.
func NewHTTPFetcher(client *http.Client, opts ...FetchOption) *HTTPFetcher {
	c := &http.Client{Timeout: DefaultTimeout}
	if client != nil {
		clone := *client
		c = &clone
	}
	c.CheckRedirect = sameOriginRedirects

	f := &HTTPFetcher{
		client:      c,
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// sameOriginRedirects is an http.Client CheckRedirect policy.
func sameOriginRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !IsSameOrigin(req.URL.String(), via[0].URL.String()) {
		return fmt.Errorf("%w: %s", ErrOffOriginRedirect, req.URL)
	}
	return nil
}

// wait blocks until the rate limiter admits one request.
func (f *HTTPFetcher) wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	return f.limiter.Wait(ctx)
}

// newRequest builds a GET request with the configured headers.
func (f *HTTPFetcher) newRequest(ctx context.Context, target, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Fetch implements Fetcher. Transport failures and non-2xx statuses are
// returned as errors; non-HTML responses are not errors and have IsHTML
// false and no body.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	req, err := f.newRequest(ctx, pageURL, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	result := &FetchResult{
		URL:         pageURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, fmt.Errorf("%w: %d for %s", ErrStatus, resp.StatusCode, pageURL)
	}

	result.IsHTML = IsHTMLContentType(result.ContentType)
	if !result.IsHTML {
		return result, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}
	result.Body = decodeUTF8(raw, result.ContentType)
	return result, nil
}

// decodeUTF8 converts body to UTF-8 using the declared charset, a <meta>
// declaration or content sniffing. The raw bytes are returned when the
// encoding is unknown.
func decodeUTF8(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

// IsHTMLContentType reports whether a Content-Type header declares HTML.
// Parameters such as charset are ignored.
func IsHTMLContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
