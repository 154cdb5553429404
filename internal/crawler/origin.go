package crawler

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for URLs that cannot be crawled: unparsable,
// relative, or not http(s).
var ErrInvalidURL = errors.New("invalid crawl URL")

// defaultPorts maps a scheme to the port it implies.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// NormalizeURL returns the canonical form of an absolute http(s) URL.
//
// The fragment is dropped, scheme and host are lowercased, the scheme's
// default port is removed and an empty path becomes "/". The query is kept
// as is.
func NormalizeURL(raw string) (string, error) {
	u, err := parseCrawlURL(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// parseCrawlURL parses raw and applies the normalization of NormalizeURL.
func parseCrawlURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if _, ok := defaultPorts[u.Scheme]; !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); port != "" && port == defaultPorts[u.Scheme] {
		host := u.Hostname()
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		u.Host = host
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u, nil
}

// originOf returns scheme://host:port with the port always explicit.
func originOf(u *url.URL) string {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = defaultPorts[u.Scheme]
	}
	return u.Scheme + "://" + net.JoinHostPort(host, port)
}

// IsSameOrigin reports whether candidate shares scheme, host and port with
// start. Unparsable or non-http(s) URLs are never same-origin.
func IsSameOrigin(candidate, start string) bool {
	c, err := parseCrawlURL(candidate)
	if err != nil {
		return false
	}
	s, err := parseCrawlURL(start)
	if err != nil {
		return false
	}
	return originOf(c) == originOf(s)
}
