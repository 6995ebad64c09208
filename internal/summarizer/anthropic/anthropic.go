// Package anthropic summarizes activity logs with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Defaults for unset Options fields.
const (
	DefaultModel      = "claude-3-5-haiku-latest"
	DefaultMaxTokens  = 300
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
)

// ErrEmptyResponse is returned when the model replies without text.
var ErrEmptyResponse = errors.New("anthropic: response contained no text")

const promptTemplate = `You are a productivity assistant. Summarize this activity log in 2-3 sentences,
highlighting mood, energy level, time mentions, and activity type.

Activity Log:
%s

Summary:`

// Options configures the summarizer.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
}

// Summarizer implements domain.Summarizer on top of the official SDK client.
type Summarizer struct {
	client anthropic.Client
	opts   Options
}

// New creates a summarizer. Each request is bounded by opts.Timeout and retried
// up to opts.MaxRetries times by the SDK.
func New(opts Options) (*Summarizer, error) {
	if opts.APIKey == "" {
		return nil, errors.New("anthropic: missing API key")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Summarizer{client: anthropic.NewClient(clientOpts...), opts: opts}, nil
}

// Summarize asks the model for a 2-3 sentence summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("anthropic: nothing to summarize")
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.opts.Model),
		MaxTokens: s.opts.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(promptTemplate, text))),
		},
	}
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(parts, "\n"), nil
}
