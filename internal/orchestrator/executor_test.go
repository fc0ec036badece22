package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
)

func TestRunStageDisabledSkipsRouter(t *testing.T) {
	r := newFakeRouter()
	m := newFakeMetrics()
	e := NewExecutor(r, m)

	for _, role := range agent.Roles {
		cfg := agent.DefaultRoleConfig(role)
		cfg.Enabled = false

		res, err := e.RunStage(context.Background(), role, "sleep", "ctx", cfg, agent.DefaultContentConfig())
		if err != nil {
			t.Fatalf("%s: unexpected error %v", role, err)
		}
		if !res.Skipped || res.Content != "" || res.Usage != (agent.TokenUsage{}) {
			t.Errorf("%s: expected empty skipped result, got %+v", role, res)
		}
	}

	if len(r.calls) != 0 {
		t.Errorf("router called %d times for disabled roles", len(r.calls))
	}
	if m.stages["writer/skipped"] != 1 {
		t.Errorf("skipped outcomes not recorded: %v", m.stages)
	}
}

func TestRunStageClampsByPriority(t *testing.T) {
	tests := []struct {
		name      string
		priority  agent.Priority
		temp      float64
		maxTokens int
		check     func(t *testing.T, cfg agent.RoleConfig)
	}{
		{
			name:      "speed caps temperature",
			priority:  agent.PrioritySpeed,
			temp:      1.8,
			maxTokens: 8192,
			check: func(t *testing.T, cfg agent.RoleConfig) {
				if cfg.Temperature > 0.5 || cfg.MaxOutputTokens > 2048 {
					t.Errorf("speed not clamped: temp %v max %d", cfg.Temperature, cfg.MaxOutputTokens)
				}
			},
		},
		{
			name:      "quality floors max tokens",
			priority:  agent.PriorityQuality,
			temp:      0.3,
			maxTokens: 1024,
			check: func(t *testing.T, cfg agent.RoleConfig) {
				if cfg.MaxOutputTokens < 4096 || cfg.Temperature < 0.7 {
					t.Errorf("quality not floored: temp %v max %d", cfg.Temperature, cfg.MaxOutputTokens)
				}
			},
		},
		{
			name:      "balanced passes through",
			priority:  agent.PriorityBalanced,
			temp:      1.8,
			maxTokens: 1024,
			check: func(t *testing.T, cfg agent.RoleConfig) {
				if cfg.Temperature != 1.8 || cfg.MaxOutputTokens != 1024 {
					t.Errorf("balanced modified values: temp %v max %d", cfg.Temperature, cfg.MaxOutputTokens)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRouter()
			e := NewExecutor(r, nil)

			cfg := agent.DefaultRoleConfig(agent.RoleWriter)
			cfg.Priority = tt.priority
			cfg.Temperature = tt.temp
			cfg.MaxOutputTokens = tt.maxTokens

			if _, err := e.RunStage(context.Background(), agent.RoleWriter, "t", "", cfg, agent.DefaultContentConfig()); err != nil {
				t.Fatalf("RunStage: %v", err)
			}
			calls := r.callsFor(agent.RoleWriter)
			if len(calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(calls))
			}
			tt.check(t, calls[0].cfg)
		})
	}
}

func TestRunStageResult(t *testing.T) {
	r := newFakeRouter()
	e := NewExecutor(r, nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	res, err := e.RunStage(context.Background(), agent.RoleSEO, "sleep", "draft", agent.DefaultRoleConfig(agent.RoleSEO), agent.DefaultContentConfig())
	if err != nil {
		t.Fatalf("RunStage: %v", err)
	}
	want := agent.StageResult{
		Role:      agent.RoleSEO,
		Content:   "X",
		Timestamp: fixed,
		Usage:     agent.TokenUsage{PromptTokens: 10, ResponseTokens: 5, TotalTokens: 15},
		Provider:  "gemini",
		Model:     "gemini-2.5-pro",
	}
	if res != want {
		t.Errorf("RunStage() = %+v, want %+v", res, want)
	}
}

func TestRunStageWrapsFailure(t *testing.T) {
	r := newFakeRouter()
	cause := transportErr(backend.OpenAI)
	r.on(agent.RoleCompliance, func(context.Context, string) (backend.Result, error) {
		return backend.Result{}, cause
	})
	e := NewExecutor(r, nil)

	_, err := e.RunStage(context.Background(), agent.RoleCompliance, "t", "c", agent.DefaultRoleConfig(agent.RoleCompliance), agent.DefaultContentConfig())

	var af *agent.AgentFailure
	if !errors.As(err, &af) || af.Role != agent.RoleCompliance {
		t.Fatalf("expected AgentFailure for compliance, got %v", err)
	}
	var te *backend.TransportError
	if !errors.As(err, &te) || te.StatusCode != 503 {
		t.Errorf("transport error not reachable through AgentFailure: %v", err)
	}
}

func TestRunStagePromptIsDeterministic(t *testing.T) {
	r := newFakeRouter()
	e := NewExecutor(r, nil)
	cfg := agent.DefaultRoleConfig(agent.RoleEditor)

	for i := 0; i < 2; i++ {
		if _, err := e.RunStage(context.Background(), agent.RoleEditor, "t", "c", cfg, agent.DefaultContentConfig()); err != nil {
			t.Fatal(err)
		}
	}
	calls := r.callsFor(agent.RoleEditor)
	if calls[0].prompt != calls[1].prompt {
		t.Error("same inputs produced different prompts")
	}
}
