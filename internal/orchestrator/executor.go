package orchestrator

import (
	"context"
	"time"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
	"github.com/aristath/zappy/internal/prompt"
)

// Router routes one prompt to a provider. Implemented by *router.Router.
type Router interface {
	Route(ctx context.Context, role agent.Role, systemPrompt, userPrompt string, cfg agent.RoleConfig) (backend.Result, error)
}

// Metrics receives stage and run outcomes. Implemented by *metrics.Recorder.
type Metrics interface {
	Stage(role, outcome string, d time.Duration, tokens int64)
	Run(outcome string)
	Warning(feature string)
}

// Stage outcomes reported to Metrics.
const (
	outcomeCompleted = "completed"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// Executor runs a single role: prompt construction, priority clamping and routing.
type Executor struct {
	router  Router
	metrics Metrics
	now     func() time.Time
}

// NewExecutor creates an executor. metrics may be nil.
func NewExecutor(r Router, metrics Metrics) *Executor {
	return &Executor{router: r, metrics: metrics, now: time.Now}
}

// RunStage runs one role against a read-only context snapshot.
// A disabled role returns a skipped result without building a prompt or
// calling the router. Router errors come back as *agent.AgentFailure.
func (e *Executor) RunStage(ctx context.Context, role agent.Role, topic, accumulated string, cfg agent.RoleConfig, content agent.ContentConfig) (agent.StageResult, error) {
	if !cfg.Enabled {
		e.record(role, outcomeSkipped, 0, 0)
		return agent.StageResult{Role: role, Timestamp: e.now(), Skipped: true}, nil
	}

	systemPrompt := prompt.Build(role, topic, accumulated, cfg, content)
	clamped := cfg.Clamped()

	start := e.now()
	res, err := e.router.Route(ctx, role, systemPrompt, "", clamped)
	elapsed := e.now().Sub(start)
	if err != nil {
		e.record(role, outcomeFailed, elapsed, 0)
		return agent.StageResult{}, &agent.AgentFailure{Role: role, Cause: err}
	}
	e.record(role, outcomeCompleted, elapsed, int64(res.Usage.TotalTokens))

	return agent.StageResult{
		Role:      role,
		Content:   res.Content,
		Timestamp: e.now(),
		Usage: agent.TokenUsage{
			PromptTokens:   res.Usage.PromptTokens,
			ResponseTokens: res.Usage.ResponseTokens,
			TotalTokens:    res.Usage.TotalTokens,
		},
		Provider: string(res.Provider),
		Model:    res.Model,
	}, nil
}

func (e *Executor) record(role agent.Role, outcome string, d time.Duration, tokens int64) {
	if e.metrics != nil {
		e.metrics.Stage(string(role), outcome, d, tokens)
	}
}
