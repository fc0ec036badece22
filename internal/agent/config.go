package agent

import (
	"fmt"
)

// Priority biases model choice and sampling bounds.
type Priority string

const (
	PrioritySpeed    Priority = "speed"
	PriorityBalanced Priority = "balanced"
	PriorityQuality  Priority = "quality"
)

// Tone selects the voice a role writes in.
type Tone string

const (
	ToneClinical Tone = "clinical"
	ToneFriendly Tone = "friendly"
	ToneConcise  Tone = "concise"
	ToneDetailed Tone = "detailed"
	ToneCustom   Tone = "custom"
)

// RoleConfig holds the tunable parameters of one role.
type RoleConfig struct {
	Temperature           float64  `json:"temperature" yaml:"temperature"`
	TopK                  int      `json:"top_k" yaml:"top_k"`
	TopP                  float64  `json:"top_p" yaml:"top_p"`
	MaxOutputTokens       int      `json:"max_output_tokens" yaml:"max_output_tokens"`
	CustomSystemPrompt    string   `json:"custom_system_prompt,omitempty" yaml:"custom_system_prompt,omitempty"`
	Tone                  Tone     `json:"tone" yaml:"tone"`
	CustomToneInstruction string   `json:"custom_tone_instruction,omitempty" yaml:"custom_tone_instruction,omitempty"`
	Enabled               bool     `json:"enabled" yaml:"enabled"`
	Priority              Priority `json:"priority" yaml:"priority"`
}

// DefaultRoleConfig returns the built-in configuration for a role.
func DefaultRoleConfig(role Role) RoleConfig {
	cfg := RoleConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 4096,
		Tone:            ToneClinical,
		Enabled:         true,
		Priority:        PriorityBalanced,
	}

	switch role {
	case RoleEnhancer:
		cfg.Tone = ToneFriendly
	case RoleEditor:
		cfg.Priority = PriorityQuality
	}

	return cfg
}

// DefaultRoleConfigs returns one default RoleConfig per role.
func DefaultRoleConfigs() map[Role]RoleConfig {
	cfgs := make(map[Role]RoleConfig, len(Roles))
	for _, r := range Roles {
		cfgs[r] = DefaultRoleConfig(r)
	}
	return cfgs
}

// Validate checks the documented parameter ranges.
func (c RoleConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("top_k %d out of range [1, 100]", c.TopK)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p %.2f out of range [0, 1]", c.TopP)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	switch c.Priority {
	case PrioritySpeed, PriorityBalanced, PriorityQuality:
	default:
		return fmt.Errorf("unknown priority %q", c.Priority)
	}
	switch c.Tone {
	case ToneClinical, ToneFriendly, ToneConcise, ToneDetailed, ToneCustom:
	default:
		return fmt.Errorf("unknown tone %q", c.Tone)
	}
	return nil
}

// Clamped applies the priority bounds to the sampling parameters.
// speed narrows temperature to 0.5 and output to 2048 tokens; quality widens
// them to at least 0.7 and 4096; balanced leaves them alone.
func (c RoleConfig) Clamped() RoleConfig {
	switch c.Priority {
	case PrioritySpeed:
		c.Temperature = min(c.Temperature, 0.5)
		c.MaxOutputTokens = min(c.MaxOutputTokens, 2048)
	case PriorityQuality:
		c.Temperature = max(c.Temperature, 0.7)
		c.MaxOutputTokens = max(c.MaxOutputTokens, 4096)
	}
	return c
}
