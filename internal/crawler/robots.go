package crawler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy answers whether robots.txt allows a URL for one user agent.
// A nil *RobotsPolicy allows everything.
type RobotsPolicy struct {
	group *robotstxt.Group
}

// ParseRobots builds a policy from robots.txt content.
func ParseRobots(content []byte, userAgent string) (*RobotsPolicy, error) {
	data, err := robotstxt.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}
	return &RobotsPolicy{group: data.FindGroup(userAgent)}, nil
}

// Allowed reports whether rawURL may be fetched.
func (p *RobotsPolicy) Allowed(rawURL string) bool {
	if p == nil || p.group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return p.group.Test(path)
}

// FetchRobots retrieves /robots.txt of startURL's origin with the fetcher's
// client, headers and rate limit. Missing files (4xx) allow everything and
// server errors (5xx) disallow everything.
func (f *HTTPFetcher) FetchRobots(ctx context.Context, startURL string) (*RobotsPolicy, error) {
	u, err := parseCrawlURL(startURL)
	if err != nil {
		return nil, err
	}
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	req, err := f.newRequest(ctx, robotsURL, "text/plain,*/*;q=0.1")
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", robotsURL, err)
	}
	return &RobotsPolicy{group: data.FindGroup(f.userAgent)}, nil
}
