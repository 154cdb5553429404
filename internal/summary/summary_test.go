package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "short text unchanged", text: "hello", limit: 10, want: "hello"},
		{name: "exact length unchanged", text: "hello", limit: 5, want: "hello"},
		{name: "long text truncated", text: "hello world", limit: 5, want: "hello..."},
		{name: "counts characters not bytes", text: "日本語のテキスト", limit: 3, want: "日本語..."},
		{name: "zero limit unchanged", text: "hello", limit: 0, want: "hello"},
		{name: "empty text", text: "", limit: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.text, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTruncatorIsDeterministic(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 200)
	tr := Truncator{Limit: 300}

	first, err := tr.Summarize(context.Background(), text, "title")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	second, _ := tr.Summarize(context.Background(), text, "other title")
	if first != second {
		t.Error("Truncator returned different teasers for the same text")
	}
	if n := utf8.RuneCountInString(first); n > 300+len(Ellipsis) {
		t.Errorf("teaser length = %d, want <= %d", n, 300+len(Ellipsis))
	}
	if !strings.HasSuffix(first, Ellipsis) {
		t.Errorf("teaser %q lacks ellipsis", first)
	}

	if _, err := tr.Summarize(context.Background(), "  ", ""); !errors.Is(err, ErrEmptySummary) {
		t.Errorf("Summarize(blank) error = %v, want ErrEmptySummary", err)
	}
}

// fakeSummarizer returns a fixed teaser or error.
type fakeSummarizer struct {
	teaser string
	err    error
	calls  int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.teaser, f.err
}

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("first success wins", func(t *testing.T) {
		t.Parallel()
		first := &fakeSummarizer{teaser: "remote"}
		second := &fakeSummarizer{teaser: "local"}
		got, err := Chain{first, second}.Summarize(context.Background(), "text", "title")
		if err != nil || got != "remote" {
			t.Errorf("Summarize() = %q, %v, want remote", got, err)
		}
		if second.calls != 0 {
			t.Error("second summarizer should not be called")
		}
	})

	t.Run("falls back on error", func(t *testing.T) {
		t.Parallel()
		failing := &fakeSummarizer{err: errors.New("unreachable")}
		got, err := Chain{failing, Truncator{Limit: 4}}.Summarize(context.Background(), "abcdefgh", "")
		if err != nil || got != "abcd..." {
			t.Errorf("Summarize() = %q, %v, want abcd...", got, err)
		}
	})

	t.Run("falls back on empty teaser", func(t *testing.T) {
		t.Parallel()
		empty := &fakeSummarizer{teaser: "  "}
		got, _ := Chain{empty, &fakeSummarizer{teaser: "local"}}.Summarize(context.Background(), "x", "")
		if got != "local" {
			t.Errorf("Summarize() = %q, want local", got)
		}
	})

	t.Run("all fail", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := Chain{&fakeSummarizer{err: boom}, &fakeSummarizer{}}.Summarize(context.Background(), "x", "")
		if !errors.Is(err, boom) || !errors.Is(err, ErrEmptySummary) {
			t.Errorf("Summarize() error = %v, want both failures joined", err)
		}
	})

	t.Run("empty chain", func(t *testing.T) {
		t.Parallel()
		if _, err := (Chain{}).Summarize(context.Background(), "x", ""); !errors.Is(err, ErrEmptySummary) {
			t.Errorf("Summarize() error = %v, want ErrEmptySummary", err)
		}
	})
}
