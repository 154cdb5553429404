package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/net/html"
)

const (
	// DefaultModel is the chat completion model used for teasers.
	DefaultModel = openai.GPT4oMini

	// DefaultRequestTimeout bounds a single summarization request.
	DefaultRequestTimeout = 30 * time.Second
)

const systemPrompt = `You are an assistant that creates concise teaser summaries from webpage content for a search engine.
Highlight important text using HTML, not markdown, by surrounding it with <b> tags, like this: <b>important text</b>.`

// OpenAISummarizer asks an OpenAI-compatible chat completion API for a
// teaser.
type OpenAISummarizer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// openAISettings collects option values before the client is built.
type openAISettings struct {
	model      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// OpenAIOption configures an OpenAISummarizer.
type OpenAIOption func(*openAISettings)

// WithModel sets the chat completion model.
func WithModel(model string) OpenAIOption {
	return func(s *openAISettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint, for
// example "http://localhost:11434/v1".
func WithBaseURL(baseURL string) OpenAIOption {
	return func(s *openAISettings) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(s *openAISettings) {
		s.httpClient = client
	}
}

// WithRequestTimeout bounds each Summarize call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) OpenAIOption {
	return func(s *openAISettings) {
		s.timeout = d
	}
}

// NewOpenAISummarizer creates a summarizer authenticated with apiKey.
// An empty apiKey returns ErrNoAPIKey.
func NewOpenAISummarizer(apiKey string, opts ...OpenAIOption) (*OpenAISummarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}

	settings := openAISettings{
		model:   DefaultModel,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := openai.DefaultConfig(apiKey)
	if settings.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(settings.baseURL, "/")
	}
	if settings.httpClient != nil {
		cfg.HTTPClient = settings.httpClient
	}

	return &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		model:   settings.model,
		timeout: settings.timeout,
	}, nil
}

// Model returns the configured model name.
func (s *OpenAISummarizer) Model() string {
	return s.model
}

// Summarize implements Summarizer. The caller is expected to pass text that
// is already sanitized and capped; the reply is reduced to inline emphasis
// markup before it is returned.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text, title string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Summarize the content for the page called %s: %s", title, text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptySummary
	}

	teaser := SanitizeSummary(resp.Choices[0].Message.Content)
	if teaser == "" {
		return "", ErrEmptySummary
	}
	return teaser, nil
}

// inlineTags are the only elements kept in a summary. Attributes are
// always dropped.
var inlineTags = map[string]bool{
	"b":      true,
	"strong": true,
	"em":     true,
	"i":      true,
}

// rawTextTags are dropped together with their content.
var rawTextTags = map[string]bool{
	"script": true,
	"style":  true,
}

// SanitizeSummary reduces s to text plus bare inline emphasis tags.
// Text is re-escaped, so the result is safe to embed in an HTML page.
func SanitizeSummary(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := ""

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or malformed input: keep what was read so far.
			break
		}

		switch tt {
		case html.TextToken:
			if skip == "" {
				b.WriteString(html.EscapeString(string(z.Text())))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skip != "" {
				continue
			}
			if rawTextTags[tag] && tt == html.StartTagToken {
				skip = tag
				continue
			}
			if inlineTags[tag] && tt == html.StartTagToken {
				b.WriteString("<" + tag + ">")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skip != "" {
				if tag == skip {
					skip = ""
				}
				continue
			}
			if inlineTags[tag] {
				b.WriteString("</" + tag + ">")
			}
		}
	}

	return strings.TrimSpace(b.String())
}
