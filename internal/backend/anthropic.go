package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter talks to the Anthropic Messages API.
type AnthropicAdapter struct {
	cfg    Config
	client *anthropic.Client
}

// NewAnthropicAdapter creates an Anthropic adapter.
func NewAnthropicAdapter(cfg Config) *AnthropicAdapter {
	cfg.Type = Anthropic

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicAdapter{cfg: cfg, client: &client}
}

func (a *AnthropicAdapter) ID() ID { return Anthropic }

func (a *AnthropicAdapter) IsConfigured() bool { return a.cfg.APIKey != "" }

func anthropicModel(priority string) string {
	if priority == PrioritySpeed {
		return "claude-3-5-haiku-latest"
	}
	return "claude-sonnet-4-5"
}

func (a *AnthropicAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, p Params) (Result, error) {
	if !a.IsConfigured() {
		return Result{}, &NotConfiguredError{Provider: Anthropic}
	}

	system, user := turns(systemPrompt, userPrompt)
	model := a.cfg.model(p.Priority, anthropicModel)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(p.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(p.Temperature),
		TopP:        anthropic.Float(p.TopP),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if p.TopK > 0 {
		params.TopK = anthropic.Int(int64(p.TopK))
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		te := &TransportError{Provider: Anthropic, Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.StatusCode
		}
		return Result{}, te
	}

	var content strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(b.Text)
		}
	}

	return Result{
		Content:  content.String(),
		Usage:    newUsage(msg.Usage.InputTokens, msg.Usage.OutputTokens),
		Provider: Anthropic,
		Model:    model,
	}, nil
}
