package backend

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// chatAdapter drives any OpenAI-compatible chat completions endpoint.
// It backs both the OpenAI and Perplexity adapters.
type chatAdapter struct {
	id      ID
	cfg     Config
	client  *openai.Client
	modelFn func(priority string) string
}

func newChatAdapter(id ID, cfg Config, defaultBaseURL string, modelFn func(string) string) *chatAdapter {
	cfg.Type = id

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return &chatAdapter{id: id, cfg: cfg, client: &client, modelFn: modelFn}
}

func (a *chatAdapter) ID() ID { return a.id }

func (a *chatAdapter) IsConfigured() bool { return a.cfg.APIKey != "" }

func (a *chatAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, p Params) (Result, error) {
	if !a.IsConfigured() {
		return Result{}, &NotConfiguredError{Provider: a.id}
	}

	system, user := turns(systemPrompt, userPrompt)
	model := a.cfg.model(p.Priority, a.modelFn)

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	// top_k has no equivalent on chat completions and is dropped.
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(p.Temperature),
		TopP:        openai.Float(p.TopP),
		MaxTokens:   openai.Int(int64(p.MaxOutputTokens)),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		te := &TransportError{Provider: a.id, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			te.StatusCode = apiErr.StatusCode
		}
		return Result{}, te
	}
	if len(resp.Choices) == 0 {
		return Result{}, &TransportError{Provider: a.id, Err: errors.New("response contained no choices")}
	}

	return Result{
		Content:  resp.Choices[0].Message.Content,
		Usage:    newUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Provider: a.id,
		Model:    model,
	}, nil
}

// OpenAIAdapter talks to the OpenAI chat completions API.
type OpenAIAdapter struct {
	*chatAdapter
}

func openAIModel(priority string) string {
	if priority == PrioritySpeed {
		return "gpt-4o-mini"
	}
	return "gpt-4o"
}

// NewOpenAIAdapter creates an OpenAI adapter.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	return &OpenAIAdapter{newChatAdapter(OpenAI, cfg, "", openAIModel)}
}

// PerplexityAdapter talks to Perplexity's OpenAI-compatible API.
type PerplexityAdapter struct {
	*chatAdapter
}

// PerplexityBaseURL is the default Perplexity endpoint.
const PerplexityBaseURL = "https://api.perplexity.ai"

func perplexityModel(string) string { return "sonar-pro" }

// NewPerplexityAdapter creates a Perplexity adapter.
func NewPerplexityAdapter(cfg Config) *PerplexityAdapter {
	return &PerplexityAdapter{newChatAdapter(Perplexity, cfg, PerplexityBaseURL, perplexityModel)}
}
