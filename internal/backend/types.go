package backend

import (
	"fmt"
	"net/http"
)

// ID identifies an inference backend.
type ID string

const (
	Gemini     ID = "gemini"
	Anthropic  ID = "anthropic"
	OpenAI     ID = "openai"
	Perplexity ID = "perplexity"
)

// Default is the provider every router fallback lands on.
const Default = Gemini

// All lists the known backends in their canonical order.
var All = []ID{Gemini, Anthropic, OpenAI, Perplexity}

// Priority values understood by model selection.
const (
	PrioritySpeed    = "speed"
	PriorityBalanced = "balanced"
	PriorityQuality  = "quality"
)

// Params carries the sampling parameters for one generate call.
// Values are forwarded to the backend as-is; unsupported ones are ignored.
type Params struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
	Priority        string // "speed", "balanced" or "quality"
}

// Usage is the token accounting reported for one generate call.
type Usage struct {
	PromptTokens   int
	ResponseTokens int
	TotalTokens    int
}

func newUsage(prompt, response int64) Usage {
	return Usage{
		PromptTokens:   int(prompt),
		ResponseTokens: int(response),
		TotalTokens:    int(prompt + response),
	}
}

// Result is the normalized response of a generate call.
type Result struct {
	Content  string
	Usage    Usage
	Provider ID
	Model    string
}

// Config defines the configuration for a backend.
type Config struct {
	Type       ID
	APIKey     string
	BaseURL    string            // Optional endpoint override
	Models     map[string]string // Priority -> model override
	HTTPClient *http.Client      // Optional, used by tests
}

// model returns the model for the given priority, honoring overrides.
func (c Config) model(priority string, fallback func(string) string) string {
	if m, ok := c.Models[priority]; ok && m != "" {
		return m
	}
	return fallback(priority)
}

// TransportError is returned when a backend call fails at the network or HTTP level.
type TransportError struct {
	Provider   ID
	StatusCode int // 0 when unknown
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotConfiguredError is returned by Generate when the backend has no credentials.
type NotConfiguredError struct {
	Provider ID
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s: no API key configured", e.Provider)
}

// turns maps the (system, user) pair onto the turns sent to chat-style APIs.
// An empty user prompt means the whole prompt travels as the single user turn.
func turns(systemPrompt, userPrompt string) (system, user string) {
	if userPrompt == "" {
		return "", systemPrompt
	}
	return systemPrompt, userPrompt
}
