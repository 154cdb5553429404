package crawler

import "testing"

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"admin prefix match", "/admin/*", "/admin/dashboard", true},
		{"admin prefix exact", "/admin/*", "/admin", true},
		{"admin prefix no match", "/admin/*", "/user/profile", false},
		{"admin prefix partial no match", "/admin/*", "/administrator", false},
		{"nested admin", "/admin/*", "/admin/users/edit", true},

		{"pdf extension", "*.pdf", "/docs/file.pdf", true},
		{"pdf extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"pdf extension no match", "*.pdf", "/docs/file.txt", false},

		{"exact match", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},

		{"single character wildcard", "/api/v?/users", "/api/v1/users", true},
		{"single character wildcard no match", "/api/v?/users", "/api/v10/users", false},

		{"root path", "/", "/", true},
		{"root no match prefix", "/admin/*", "/", false},
		{"file name glob", "draft-*", "/posts/draft-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestPathFilter(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()
		if !(PathFilter{}).Allows("http://example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("ignore patterns block matching URLs", func(t *testing.T) {
		t.Parallel()
		f := PathFilter{Ignore: []string{"/admin/*", "*.pdf"}}
		if f.Allows("http://example.com/admin/users") {
			t.Error("expected /admin/users to be ignored")
		}
		if f.Allows("http://example.com/docs/a.pdf") {
			t.Error("expected a.pdf to be ignored")
		}
		if !f.Allows("http://example.com/docs/a.html") {
			t.Error("expected a.html to be allowed")
		}
	})

	t.Run("follow patterns restrict to matching URLs", func(t *testing.T) {
		t.Parallel()
		f := PathFilter{Follow: []string{"/blog/*"}}
		if !f.Allows("http://example.com/blog/post") {
			t.Error("expected /blog/post to be followed")
		}
		if f.Allows("http://example.com/shop") {
			t.Error("expected /shop to be skipped")
		}
	})

	t.Run("ignore takes precedence over follow", func(t *testing.T) {
		t.Parallel()
		f := PathFilter{Ignore: []string{"/blog/private/*"}, Follow: []string{"/blog/*"}}
		if f.Allows("http://example.com/blog/private/x") {
			t.Error("expected ignore to win")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()
		f := PathFilter{Follow: []string{"/"}}
		if !f.Allows("http://example.com") {
			t.Error("expected empty path to match /")
		}
	})

	t.Run("invalid URL is rejected", func(t *testing.T) {
		t.Parallel()
		if (PathFilter{}).Allows("http://[::1") {
			t.Error("expected invalid URL to be rejected")
		}
	})
}
