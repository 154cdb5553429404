package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NoBodySentinel is the body of a page that has no visible text.
const NoBodySentinel = "No body found on this web page."

// hiddenElements never contribute visible text.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
}

// Page is the parsed content of one HTML document.
type Page struct {
	// Title is the trimmed <title> text, empty when the page has none.
	Title string

	// Body is the visible text with whitespace collapsed, or NoBodySentinel.
	Body string

	// Links are the absolute targets of <a href> elements in document
	// order. Duplicates are kept; filtering is left to the crawler.
	Links []string
}

// Parse reads an HTML document. Relative links are resolved against the
// document's <base href> when present, otherwise against baseURL.
func Parse(baseURL string, content []byte) (*Page, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(u)
		}
	}

	page := &Page{
		Title: collapseSpace(doc.Find("title").First().Text()),
		Body:  visibleText(doc.Find("body")),
		Links: make([]string, 0),
	}
	if page.Body == "" {
		page.Body = NoBodySentinel
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link := resolveURL(base, href); link != "" {
			page.Links = append(page.Links, link)
		}
	})

	return page, nil
}

// visibleText concatenates the text nodes under sel, skipping hidden
// elements and comments.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if hiddenElements[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapseSpace(b.String())
}

// collapseSpace trims s and joins its whitespace-separated fields with a
// single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves href against base. Links that cannot lead to another
// page (script, mail, phone and data links, bare fragments) return "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
