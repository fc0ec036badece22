package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
	"github.com/aristath/zappy/internal/logging"
	"github.com/aristath/zappy/internal/persistence"
	"github.com/aristath/zappy/internal/search"
)

// routeCall records one Route invocation.
type routeCall struct {
	role   agent.Role
	prompt string
	cfg    agent.RoleConfig
}

// fakeRouter answers per role. Roles without a handler return "X" with
// 10 prompt and 5 response tokens.
type fakeRouter struct {
	mu       sync.Mutex
	calls    []routeCall
	handlers map[agent.Role]func(ctx context.Context, prompt string) (backend.Result, error)
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{handlers: make(map[agent.Role]func(context.Context, string) (backend.Result, error))}
}

func (f *fakeRouter) on(role agent.Role, h func(ctx context.Context, prompt string) (backend.Result, error)) {
	f.handlers[role] = h
}

func (f *fakeRouter) Route(ctx context.Context, role agent.Role, systemPrompt, userPrompt string, cfg agent.RoleConfig) (backend.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, routeCall{role: role, prompt: systemPrompt, cfg: cfg})
	h := f.handlers[role]
	f.mu.Unlock()

	if h != nil {
		return h(ctx, systemPrompt)
	}
	return result("X"), nil
}

func (f *fakeRouter) callsFor(role agent.Role) []routeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []routeCall
	for _, c := range f.calls {
		if c.role == role {
			out = append(out, c)
		}
	}
	return out
}

func result(content string) backend.Result {
	return backend.Result{
		Content:  content,
		Usage:    backend.Usage{PromptTokens: 10, ResponseTokens: 5, TotalTokens: 15},
		Provider: backend.Gemini,
		Model:    "gemini-2.5-pro",
	}
}

func transportErr(p backend.ID) error {
	return &backend.TransportError{Provider: p, StatusCode: 503, Err: errors.New("service unavailable")}
}

func newTestOrchestrator(t *testing.T, r Router, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard()), WithBatchPause(0)}, opts...)
	o, err := New(r, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

type fakeSearcher struct {
	in  search.Intelligence
	err error
}

func (f fakeSearcher) Intelligence(context.Context, string) (search.Intelligence, error) {
	return f.in, f.err
}

type fakeImager struct {
	url    string
	err    error
	prompt string
}

func (f *fakeImager) Image(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.url, f.err
}

type fakeNarrator struct {
	url  string
	err  error
	text string
}

func (f *fakeNarrator) Narrate(_ context.Context, key, text string) (string, error) {
	f.text = text
	return f.url, f.err
}

type fakePublisher struct {
	name  string
	err   error
	title string
	body  string
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, title, content string) error {
	f.title, f.body = title, content
	return f.err
}

type fakeQueue struct {
	mu      sync.Mutex
	records []persistence.BlogRecord
}

func (q *fakeQueue) Submit(rec persistence.BlogRecord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, rec)
	return true
}

type fakeMetrics struct {
	mu       sync.Mutex
	stages   map[string]int
	runs     map[string]int
	warnings []string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{stages: map[string]int{}, runs: map[string]int{}}
}

func (m *fakeMetrics) Stage(role, outcome string, _ time.Duration, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[role+"/"+outcome]++
}

func (m *fakeMetrics) Run(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[outcome]++
}

func (m *fakeMetrics) Warning(feature string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, feature)
}

func blockIndex(t *testing.T, prompt, label string) int {
	t.Helper()
	i := strings.Index(prompt, "["+label+"]")
	if i < 0 {
		t.Fatalf("prompt has no [%s] block", label)
	}
	return i
}
