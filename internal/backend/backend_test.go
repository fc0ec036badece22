package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// recorder is an httptest handler that captures request bodies and replies with a canned response.
type recorder struct {
	mu     sync.Mutex
	calls  int
	paths  []string
	bodies []map[string]any
	status int
	reply  string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, _ := io.ReadAll(req.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	r.mu.Lock()
	r.calls++
	r.paths = append(r.paths, req.URL.Path)
	r.bodies = append(r.bodies, body)
	status := r.status
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, r.reply)
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

const chatReply = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}],
"usage":{"prompt_tokens":11,"completion_tokens":7,"total_tokens":99}}`

func TestNewFactory(t *testing.T) {
	tests := []struct {
		typ     ID
		wantErr bool
	}{
		{Gemini, false},
		{Anthropic, false},
		{OpenAI, false},
		{Perplexity, false},
		{"mystery", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			b, err := New(Config{Type: tt.typ, APIKey: "k"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown backend type")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if b.ID() != tt.typ {
				t.Errorf("ID() = %q, want %q", b.ID(), tt.typ)
			}
			if !b.IsConfigured() {
				t.Error("expected adapter with API key to be configured")
			}
		})
	}
}

func TestIsConfiguredWithoutKey(t *testing.T) {
	for _, id := range All {
		b, err := New(Config{Type: id})
		if err != nil {
			t.Fatalf("New(%s) error: %v", id, err)
		}
		if b.IsConfigured() {
			t.Errorf("%s: expected not configured without API key", id)
		}
		_, err = b.Generate(context.Background(), "sys", "", Params{})
		var nc *NotConfiguredError
		if !errors.As(err, &nc) {
			t.Errorf("%s: expected NotConfiguredError, got %v", id, err)
		}
	}
}

func TestOpenAIGenerate(t *testing.T) {
	rec := &recorder{reply: chatReply}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewOpenAIAdapter(Config{APIKey: "k", BaseURL: srv.URL})
	res, err := a.Generate(context.Background(), "the whole prompt", "", Params{
		Temperature:     0.4,
		TopK:            40,
		TopP:            0.9,
		MaxOutputTokens: 2048,
		Priority:        PrioritySpeed,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if res.Content != "hello" {
		t.Errorf("Content = %q, want %q", res.Content, "hello")
	}
	if res.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini for speed priority", res.Model)
	}
	// Total is always recomputed as prompt + response.
	if res.Usage != (Usage{PromptTokens: 11, ResponseTokens: 7, TotalTokens: 18}) {
		t.Errorf("Usage = %+v", res.Usage)
	}
	if res.Provider != OpenAI {
		t.Errorf("Provider = %q", res.Provider)
	}

	if rec.callCount() != 1 {
		t.Fatalf("expected 1 request, got %d", rec.callCount())
	}
	body := rec.bodies[0]
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single user turn, got %d messages", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "the whole prompt" {
		t.Errorf("unexpected message: %v", first)
	}
	if body["temperature"] != 0.4 {
		t.Errorf("temperature = %v, want 0.4", body["temperature"])
	}
	if body["max_tokens"] != float64(2048) {
		t.Errorf("max_tokens = %v, want 2048", body["max_tokens"])
	}
}

func TestOpenAIGenerateWithSystemAndUser(t *testing.T) {
	rec := &recorder{reply: chatReply}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewOpenAIAdapter(Config{APIKey: "k", BaseURL: srv.URL, Models: map[string]string{PriorityQuality: "gpt-custom"}})
	res, err := a.Generate(context.Background(), "sys", "user", Params{Priority: PriorityQuality, MaxOutputTokens: 10})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Model != "gpt-custom" {
		t.Errorf("Model = %q, want override gpt-custom", res.Model)
	}
	msgs, _ := rec.bodies[0]["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user turns, got %d", len(msgs))
	}
}

func TestOpenAIGenerateHTTPError(t *testing.T) {
	rec := &recorder{status: http.StatusTooManyRequests, reply: `{"error":{"message":"slow down","type":"rate_limit"}}`}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewOpenAIAdapter(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := a.Generate(context.Background(), "p", "", Params{MaxOutputTokens: 10})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", te.StatusCode)
	}
	if rec.callCount() != 1 {
		t.Errorf("expected exactly 1 request (no SDK retries), got %d", rec.callCount())
	}
}

func TestPerplexityUsesFixedModel(t *testing.T) {
	rec := &recorder{reply: chatReply}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	for _, priority := range []string{PrioritySpeed, PriorityBalanced, PriorityQuality} {
		a := NewPerplexityAdapter(Config{APIKey: "k", BaseURL: srv.URL})
		res, err := a.Generate(context.Background(), "p", "", Params{Priority: priority, MaxOutputTokens: 10})
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if res.Model != "sonar-pro" {
			t.Errorf("priority %s: Model = %q, want sonar-pro", priority, res.Model)
		}
	}
}

func TestAnthropicGenerate(t *testing.T) {
	rec := &recorder{reply: `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
"content":[{"type":"text","text":"hello "},{"type":"text","text":"world"}],
"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":4}}`}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewAnthropicAdapter(Config{APIKey: "k", BaseURL: srv.URL})
	res, err := a.Generate(context.Background(), "the whole prompt", "", Params{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 4096,
		Priority:        PriorityQuality,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Content != "hello world" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.Usage != (Usage{PromptTokens: 10, ResponseTokens: 4, TotalTokens: 14}) {
		t.Errorf("Usage = %+v", res.Usage)
	}
	if res.Model != "claude-sonnet-4-5" {
		t.Errorf("Model = %q", res.Model)
	}

	body := rec.bodies[0]
	if _, ok := body["system"]; ok {
		t.Error("expected no system block when user prompt is empty")
	}
	if body["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	if body["top_k"] != float64(40) {
		t.Errorf("top_k = %v", body["top_k"])
	}
	if !strings.HasSuffix(rec.paths[0], "/messages") {
		t.Errorf("unexpected path %q", rec.paths[0])
	}
}

func TestAnthropicGenerateHTTPError(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized, reply: `{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewAnthropicAdapter(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := a.Generate(context.Background(), "p", "", Params{MaxOutputTokens: 10})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", te.StatusCode)
	}
	if rec.callCount() != 1 {
		t.Errorf("expected exactly 1 request, got %d", rec.callCount())
	}
}

func TestGeminiGenerate(t *testing.T) {
	rec := &recorder{reply: `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello"}]}}],
"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":4,"totalTokenCount":12}}`}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	a := NewGeminiAdapter(Config{APIKey: "k", BaseURL: srv.URL})
	res, err := a.Generate(context.Background(), "sys", "user", Params{Priority: PrioritySpeed, MaxOutputTokens: 100, Temperature: 0.5, TopP: 0.9, TopK: 20})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Content != "hello" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", res.Model)
	}
	if res.Usage.TotalTokens != 7 {
		t.Errorf("TotalTokens = %d, want 7", res.Usage.TotalTokens)
	}
	if !strings.Contains(rec.paths[0], "gemini-2.5-flash") {
		t.Errorf("expected model in request path, got %q", rec.paths[0])
	}
}

func TestGeminiGenerateWithoutCandidates(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"blocked prompt", `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"empty body", `{}`, "no candidates"},
		{"no parts", `{"candidates":[{"finishReason":"RECITATION","content":{"role":"model","parts":[]}}]}`, "RECITATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(&recorder{reply: tt.reply})
			defer srv.Close()

			a := NewGeminiAdapter(Config{APIKey: "k", BaseURL: srv.URL})
			res, err := a.Generate(context.Background(), "sys", "", Params{})
			if err == nil {
				t.Fatalf("Generate() = %q, want error", res.Content)
			}
			var te *TransportError
			if !errors.As(err, &te) || te.Provider != Gemini {
				t.Fatalf("error = %v, want Gemini TransportError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}
