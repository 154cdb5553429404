package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFilter restricts which same-origin URLs are crawled using glob
// patterns on the URL path.
//
// A URL whose path matches any ignore pattern is skipped. When follow
// patterns are set, the path must also match at least one of them.
type PathFilter struct {
	// Ignore patterns, e.g. "/admin/*" or "*.pdf".
	Ignore []string

	// Follow patterns. Empty means every path not ignored is followed.
	Follow []string
}

// Allows reports whether targetURL passes the filter. Unparsable URLs never
// pass.
func (f PathFilter) Allows(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.Ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.Follow) == 0 {
		return true
	}
	for _, pattern := range f.Follow {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
//
//   - "/admin/*" matches "/admin" and everything below it
//   - "*.pdf" matches a .pdf file at any depth
//   - otherwise filepath.Match rules apply, where * stays within one segment
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Patterns without a slash are tried against the last segment only.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
