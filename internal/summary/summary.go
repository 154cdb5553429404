package summary

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated teasers.
const Ellipsis = "..."

var (
	// ErrEmptySummary is returned when a summarizer produced no text.
	ErrEmptySummary = errors.New("empty summary")

	// ErrNoAPIKey is returned when a remote summarizer has no credentials.
	ErrNoAPIKey = errors.New("summarizer API key is not set")
)

// Summarizer condenses text into a short teaser.
// title gives the summarizer context and may be empty.
type Summarizer interface {
	Summarize(ctx context.Context, text, title string) (string, error)
}

// Truncate cuts text to at most limit characters and appends Ellipsis when
// anything was cut. Text within the limit, or a non-positive limit, returns
// text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + Ellipsis
}

// Truncator is the local Summarizer. It never calls out and is
// deterministic: the same text always yields the same teaser.
type Truncator struct {
	// Limit is the maximum number of characters kept before Ellipsis.
	Limit int
}

// Summarize implements Summarizer.
func (t Truncator) Summarize(_ context.Context, text, _ string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySummary
	}
	return Truncate(text, t.Limit), nil
}

// Chain is a Summarizer that returns the first non-empty teaser produced by
// its members, tried in order.
type Chain []Summarizer

// Summarize implements Summarizer. When every member fails the errors are
// joined; an empty chain returns ErrEmptySummary.
func (c Chain) Summarize(ctx context.Context, text, title string) (string, error) {
	var errs []error
	for _, s := range c {
		teaser, err := s.Summarize(ctx, text, title)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(teaser) == "" {
			errs = append(errs, ErrEmptySummary)
			continue
		}
		return teaser, nil
	}
	if len(errs) == 0 {
		return "", ErrEmptySummary
	}
	return "", errors.Join(errs...)
}
