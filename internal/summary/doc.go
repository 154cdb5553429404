// Package summary produces short teasers for crawled pages.
//
// A Summarizer turns page text into a teaser. Two implementations are
// provided: OpenAISummarizer asks a chat completion model for an HTML-light
// summary, and Truncator cuts the text to a fixed number of characters.
// Chain tries summarizers in order, so a remote summarizer can be backed by
// the deterministic Truncator:
//
//	remote, err := summary.NewOpenAISummarizer(apiKey)
//	...
//	s := summary.Chain{remote, summary.Truncator{Limit: 300}}
//	teaser, err := s.Summarize(ctx, text, title)
package summary
