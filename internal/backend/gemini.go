package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GeminiAdapter talks to the Gemini API through the genai SDK.
type GeminiAdapter struct {
	cfg Config

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiAdapter creates a Gemini adapter. The SDK client is built on first use.
func NewGeminiAdapter(cfg Config) *GeminiAdapter {
	cfg.Type = Gemini
	return &GeminiAdapter{cfg: cfg}
}

func (a *GeminiAdapter) ID() ID { return Gemini }

func (a *GeminiAdapter) IsConfigured() bool { return a.cfg.APIKey != "" }

func geminiModel(priority string) string {
	if priority == PrioritySpeed {
		return "gemini-2.5-flash"
	}
	return "gemini-2.5-pro"
}

func (a *GeminiAdapter) getClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  a.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if a.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: a.cfg.BaseURL}
	}
	if a.cfg.HTTPClient != nil {
		cc.HTTPClient = a.cfg.HTTPClient
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	a.client = client
	return client, nil
}

// Generate sends system and user prompt as one text turn.
func (a *GeminiAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, p Params) (Result, error) {
	if !a.IsConfigured() {
		return Result{}, &NotConfiguredError{Provider: Gemini}
	}

	client, err := a.getClient(ctx)
	if err != nil {
		return Result{}, err
	}

	text := systemPrompt
	if userPrompt != "" {
		text = systemPrompt + "\n\n" + userPrompt
	}

	model := a.cfg.model(p.Priority, geminiModel)
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.Temperature)),
		TopP:            genai.Ptr(float32(p.TopP)),
		MaxOutputTokens: int32(p.MaxOutputTokens),
	}
	if p.TopK > 0 {
		gc.TopK = genai.Ptr(float32(p.TopK))
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(text), gc)
	if err != nil {
		return Result{}, &TransportError{Provider: Gemini, Err: err}
	}

	if err := checkGeminiResponse(resp); err != nil {
		return Result{}, &TransportError{Provider: Gemini, Err: err}
	}

	res := Result{
		Content:  resp.Text(),
		Provider: Gemini,
		Model:    model,
	}
	if resp.UsageMetadata != nil {
		res.Usage = newUsage(int64(resp.UsageMetadata.PromptTokenCount), int64(resp.UsageMetadata.CandidatesTokenCount))
	}
	return res, nil
}

// checkGeminiResponse rejects responses without usable candidate text, such
// as blocked prompts.
func checkGeminiResponse(resp *genai.GenerateContentResponse) error {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("no candidates: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return errors.New("no candidates in response")
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		reason := ""
		if c != nil {
			reason = string(c.FinishReason)
		}
		return fmt.Errorf("candidate has no content (finish reason %q)", reason)
	}
	return nil
}
