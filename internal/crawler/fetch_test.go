package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsHTMLContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML;charset=UTF-8", true},
		{"application/xhtml+xml", true},
		{"text/plain", false},
		{"application/json", false},
		{"application/pdf", false},
		{"", false},
		{"text/html;;", true},
	}

	for _, tt := range tests {
		if got := IsHTMLContentType(tt.contentType); got != tt.want {
			t.Errorf("IsHTMLContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	t.Run("fetches HTML with headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body>Hello</body></html>`))
		}))
		defer server.Close()

		f := NewHTTPFetcher(server.Client(),
			WithUserAgent("test-agent"),
			WithHeaders(map[string]string{"X-Test": "yes"}),
		)
		res, err := f.Fetch(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !res.IsHTML || res.StatusCode != http.StatusOK {
			t.Errorf("Fetch() = %+v, want HTML 200", res)
		}
		body, err := res.HTML()
		if err != nil || !strings.Contains(string(body), "Hello") {
			t.Errorf("HTML() = %q, %v", body, err)
		}
		h := <-headers
		if h.Get("User-Agent") != "test-agent" || h.Get("X-Test") != "yes" {
			t.Errorf("headers = %v", h)
		}
	})

	t.Run("non-HTML is not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer server.Close()

		res, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/doc.pdf")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if res.IsHTML || len(res.Body) != 0 {
			t.Errorf("Fetch() = %+v, want non-HTML without body", res)
		}
		if _, err := res.HTML(); !errors.Is(err, ErrNotHTML) {
			t.Errorf("HTML() error = %v, want ErrNotHTML", err)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		res, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/missing")
		if !errors.Is(err, ErrStatus) {
			t.Fatalf("Fetch() error = %v, want ErrStatus", err)
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("error %q lacks the status code", err)
		}
		if res == nil || res.StatusCode != http.StatusNotFound {
			t.Errorf("Fetch() result = %+v", res)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		if _, err := NewHTTPFetcher(nil).Fetch(context.Background(), addr+"/"); err == nil {
			t.Error("expected error for closed server")
		}
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>caf\xe9</p>"))
		}))
		defer server.Close()

		res, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !strings.Contains(string(res.Body), "café") {
			t.Errorf("Body = %q, want decoded café", res.Body)
		}
	})

	t.Run("limits body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
		}))
		defer server.Close()

		res, err := NewHTTPFetcher(server.Client(), WithMaxBodySize(100)).Fetch(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(res.Body) != 100 {
			t.Errorf("len(Body) = %d, want 100", len(res.Body))
		}
	})

	t.Run("follows same-origin redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>new</p>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		res, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/old")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if res.URL != server.URL+"/old" || res.FinalURL != server.URL+"/new/" {
			t.Errorf("URL = %q, FinalURL = %q", res.URL, res.FinalURL)
		}
	})

	t.Run("refuses off-origin redirects", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		other := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
		}))
		defer other.Close()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, other.URL+"/", http.StatusFound)
		}))
		defer server.Close()

		_, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL+"/")
		if !errors.Is(err, ErrOffOriginRedirect) {
			t.Errorf("Fetch() error = %v, want ErrOffOriginRedirect", err)
		}
		if n := hits.Load(); n != 0 {
			t.Errorf("off-origin server was hit %d times", n)
		}
	})

	t.Run("rate limit spaces requests", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer server.Close()

		f := NewHTTPFetcher(server.Client(), WithRateLimit(100*time.Millisecond))
		start := time.Now()
		for range 3 {
			if _, err := f.Fetch(context.Background(), server.URL+"/"); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
			t.Errorf("3 requests took %v, want at least 150ms", elapsed)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewHTTPFetcher(server.Client()).Fetch(ctx, server.URL+"/"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
