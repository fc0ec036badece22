package backend

import (
	"context"
	"fmt"
)

// Backend defines the interface that all backend adapters must implement.
type Backend interface {
	// Generate performs one inference call and returns the normalized result.
	Generate(ctx context.Context, systemPrompt, userPrompt string, p Params) (Result, error)

	// IsConfigured reports whether credentials are present.
	IsConfigured() bool

	// ID returns the backend identifier.
	ID() ID
}

// New creates a new backend based on the provided configuration.
func New(cfg Config) (Backend, error) {
	switch cfg.Type {
	case Gemini:
		return NewGeminiAdapter(cfg), nil
	case Anthropic:
		return NewAnthropicAdapter(cfg), nil
	case OpenAI:
		return NewOpenAIAdapter(cfg), nil
	case Perplexity:
		return NewPerplexityAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

// NewSet builds one adapter per config, keyed by ID.
func NewSet(cfgs []Config) (map[ID]Backend, error) {
	set := make(map[ID]Backend, len(cfgs))
	for _, cfg := range cfgs {
		b, err := New(cfg)
		if err != nil {
			return nil, err
		}
		set[cfg.Type] = b
	}
	return set, nil
}
