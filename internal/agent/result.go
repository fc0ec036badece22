package agent

import (
	"fmt"
	"time"
)

// TokenUsage is the prompt/response/total token triple.
type TokenUsage struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// Add returns the element-wise sum of u and o.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:   u.PromptTokens + o.PromptTokens,
		ResponseTokens: u.ResponseTokens + o.ResponseTokens,
		TotalTokens:    u.TotalTokens + o.TotalTokens,
	}
}

// StageResult is one role's output within a run.
type StageResult struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Usage     TokenUsage `json:"usage"`
	Skipped   bool       `json:"skipped"`
	Provider  string     `json:"provider,omitempty"`
	Model     string     `json:"model,omitempty"`
}

// AgentFailure tags a provider failure with the role that raised it.
type AgentFailure struct {
	Role  Role
	Cause error
}

func (e *AgentFailure) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Role, e.Cause)
}

func (e *AgentFailure) Unwrap() error { return e.Cause }
