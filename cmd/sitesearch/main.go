// Package main provides the entry point for the sitesearch CLI.
//
// sitesearch crawls one website, indexes its pages and answers keyword
// queries against that index.
//
// Usage:
//
//	sitesearch crawl https://example.com/
//	sitesearch search gopher biology
//	sitesearch serve --listen :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
