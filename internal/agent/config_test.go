package agent

import (
	"errors"
	"fmt"
	"testing"
)

func TestDefaultRoleConfigs(t *testing.T) {
	cfgs := DefaultRoleConfigs()
	if len(cfgs) != len(Roles) {
		t.Fatalf("expected %d configs, got %d", len(Roles), len(cfgs))
	}

	for role, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: default config invalid: %v", role, err)
		}
		if !cfg.Enabled {
			t.Errorf("%s: expected enabled by default", role)
		}
	}

	if cfgs[RoleEnhancer].Tone != ToneFriendly {
		t.Errorf("enhancer tone = %q, want friendly", cfgs[RoleEnhancer].Tone)
	}
	if cfgs[RoleEditor].Priority != PriorityQuality {
		t.Errorf("editor priority = %q, want quality", cfgs[RoleEditor].Priority)
	}
	if cfgs[RoleWriter].Priority != PriorityBalanced {
		t.Errorf("writer priority = %q, want balanced", cfgs[RoleWriter].Priority)
	}
}

func TestClamped(t *testing.T) {
	tests := []struct {
		name      string
		priority  Priority
		temp      float64
		maxTokens int
		wantTemp  float64
		wantMax   int
	}{
		{"speed caps loose values", PrioritySpeed, 1.8, 8192, 0.5, 2048},
		{"speed keeps stricter values", PrioritySpeed, 0.2, 1000, 0.2, 1000},
		{"quality floors tight values", PriorityQuality, 0.3, 1024, 0.7, 4096},
		{"quality keeps looser values", PriorityQuality, 1.2, 8000, 1.2, 8000},
		{"balanced is untouched", PriorityBalanced, 1.8, 100, 1.8, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRoleConfig(RoleWriter)
			cfg.Priority = tt.priority
			cfg.Temperature = tt.temp
			cfg.MaxOutputTokens = tt.maxTokens

			got := cfg.Clamped()
			if got.Temperature != tt.wantTemp {
				t.Errorf("Temperature = %v, want %v", got.Temperature, tt.wantTemp)
			}
			if got.MaxOutputTokens != tt.wantMax {
				t.Errorf("MaxOutputTokens = %d, want %d", got.MaxOutputTokens, tt.wantMax)
			}
			if got.TopK != cfg.TopK || got.TopP != cfg.TopP {
				t.Error("clamping must not touch top-k or top-p")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RoleConfig)
	}{
		{"temperature too high", func(c *RoleConfig) { c.Temperature = 2.5 }},
		{"top_k zero", func(c *RoleConfig) { c.TopK = 0 }},
		{"top_p above one", func(c *RoleConfig) { c.TopP = 1.5 }},
		{"no output tokens", func(c *RoleConfig) { c.MaxOutputTokens = 0 }},
		{"bad priority", func(c *RoleConfig) { c.Priority = "fastest" }},
		{"bad tone", func(c *RoleConfig) { c.Tone = "sarcastic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRoleConfig(RoleSEO)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" SEO ")
	if err != nil {
		t.Fatalf("ParseRole() error: %v", err)
	}
	if r != RoleSEO {
		t.Errorf("ParseRole() = %q, want seo", r)
	}

	if _, err := ParseRole("janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{PromptTokens: 1, ResponseTokens: 2, TotalTokens: 3}
	b := TokenUsage{PromptTokens: 10, ResponseTokens: 20, TotalTokens: 30}
	got := a.Add(b)
	want := TokenUsage{PromptTokens: 11, ResponseTokens: 22, TotalTokens: 33}
	if got != want {
		t.Errorf("Add() = %+v, want %+v", got, want)
	}
}

func TestAgentFailureUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage: %w", &AgentFailure{Role: RoleWriter, Cause: cause})

	var af *AgentFailure
	if !errors.As(err, &af) {
		t.Fatal("expected AgentFailure in chain")
	}
	if af.Role != RoleWriter {
		t.Errorf("Role = %q", af.Role)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
}
