package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/media"
	"github.com/aristath/zappy/internal/persistence"
	"github.com/aristath/zappy/internal/prompt"
	"github.com/aristath/zappy/internal/publish"
	"github.com/aristath/zappy/internal/scheduler"
	"github.com/aristath/zappy/internal/search"
)

// State is a pipeline run state.
type State string

const (
	StateIdle              State = "idle"
	StateResearching       State = "researching"
	StateDrafting          State = "drafting"
	StateReviewingParallel State = "reviewing_parallel"
	StateEditing           State = "editing"
	StatePostProcessing    State = "post_processing"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
)

// ErrEmptyOutput is the cause of an Editor failure that produced no text.
var ErrEmptyOutput = errors.New("empty output")

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// Progress is the snapshot handed to an Observer.
type Progress struct {
	RunID       string
	Topic       string
	State       State
	ActiveRoles []agent.Role
	Stages      []agent.StageResult
	TotalTokens int
	Warnings    []string
	Err         string
	FailedRole  agent.Role
}

// Observer is called on every state transition and stage completion.
// Calls for one run never overlap.
type Observer func(Progress)

// RunResult is the frozen outcome of one run. FinalArtifact is empty
// whenever Error is set.
type RunResult struct {
	RunID         string              `json:"run_id"`
	Topic         string              `json:"topic"`
	FinalArtifact string              `json:"final_artifact,omitempty"`
	Stages        []agent.StageResult `json:"stages"`
	TotalTokens   int                 `json:"total_tokens"`
	Error         string              `json:"error,omitempty"`
	FailedRole    agent.Role          `json:"failed_role,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
	AudioURL      string              `json:"audio_url,omitempty"`
	SEO           *prompt.SEOAnalysis `json:"seo,omitempty"`
	Duration      time.Duration       `json:"duration"`
}

// Failed reports whether the run ended in StateFailed.
func (r RunResult) Failed() bool { return r.Error != "" }

// HistoryQueue accepts completed runs for asynchronous persistence.
// Submit must not block; it reports whether the record was queued.
type HistoryQueue interface {
	Submit(rec persistence.BlogRecord) bool
}

// Orchestrator drives the content pipeline.
type Orchestrator struct {
	executor   *Executor
	waves      [][]agent.Role
	logger     *slog.Logger
	metrics    Metrics
	observer   Observer
	search     search.Searcher
	imager     media.Imager
	narrator   media.Narrator
	publishers []publish.Publisher
	history    HistoryQueue
	pause      time.Duration
	newID      func() string
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }
func WithMetrics(m Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }
func WithObserver(obs Observer) Option { return func(o *Orchestrator) { o.observer = obs } }
func WithSearch(s search.Searcher) Option { return func(o *Orchestrator) { o.search = s } }
func WithImager(i media.Imager) Option { return func(o *Orchestrator) { o.imager = i } }
func WithNarrator(n media.Narrator) Option { return func(o *Orchestrator) { o.narrator = n } }
func WithHistory(h HistoryQueue) Option { return func(o *Orchestrator) { o.history = h } }
func WithBatchPause(d time.Duration) Option { return func(o *Orchestrator) { o.pause = d } }
func WithPublishers(p ...publish.Publisher) Option {
	return func(o *Orchestrator) { o.publishers = append(o.publishers, p...) }
}

// DefaultBatchPause is the delay between batch topics.
const DefaultBatchPause = 2 * time.Second

// New creates an orchestrator over the fixed pipeline graph.
func New(r Router, opts ...Option) (*Orchestrator, error) {
	waves, err := scheduler.PipelineGraph().Waves()
	if err != nil {
		return nil, fmt.Errorf("building pipeline graph: %w", err)
	}

	o := &Orchestrator{
		waves: waves,
		pause: DefaultBatchPause,
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.executor = NewExecutor(r, o.metrics)
	return o, nil
}

// run is the mutable state of one execution. The accumulated context and
// token total are only touched by the goroutine driving the run.
type run struct {
	mu       sync.Mutex
	id       string
	topic    string
	state    State
	active   []agent.Role
	stages   []agent.StageResult
	warnings []string
	total    int
	errMsg   string
	failed   agent.Role
	observe  Observer

	context strings.Builder
}

func (r *run) emitLocked() {
	if r.observe == nil {
		return
	}
	r.observe(Progress{
		RunID:       r.id,
		Topic:       r.topic,
		State:       r.state,
		ActiveRoles: slices.Clone(r.active),
		Stages:      slices.Clone(r.stages),
		TotalTokens: r.total,
		Warnings:    slices.Clone(r.warnings),
		Err:         r.errMsg,
		FailedRole:  r.failed,
	})
}

func (r *run) transition(s State, active []agent.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	r.active = slices.Clone(active)
	r.emitLocked()
}

// finish marks role as no longer active, without recording its result.
func (r *run) finish(role agent.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = slices.DeleteFunc(r.active, func(a agent.Role) bool { return a == role })
	r.emitLocked()
}

// commit appends stage results in the given order and adds their usage.
func (r *run) commit(results ...agent.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		r.stages = append(r.stages, res)
		r.total += res.Usage.TotalTokens
		r.active = slices.DeleteFunc(r.active, func(a agent.Role) bool { return a == res.Role })
	}
	r.emitLocked()
}

func (r *run) warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateFailed
	r.active = nil
	r.errMsg = err.Error()
	var af *agent.AgentFailure
	if errors.As(err, &af) {
		r.failed = af.Role
	}
	r.emitLocked()
}

// appendBlock adds a labeled block to the accumulated context.
func (r *run) appendBlock(label, content string) {
	r.context.WriteString("\n\n[")
	r.context.WriteString(label)
	r.context.WriteString("]\n")
	r.context.WriteString(content)
}

// contextLabel names a role's block in the accumulated context. The
// editor's output is the artifact and has no block.
func contextLabel(role agent.Role) string {
	switch role {
	case agent.RoleResearcher:
		return "RESEARCH REPORT"
	case agent.RoleWriter:
		return "INITIAL DRAFT"
	case agent.RoleEditor:
		return ""
	default:
		return "FEEDBACK FROM " + strings.ToUpper(role.DisplayName())
	}
}

// stateFor maps a wave of the stage graph to its run state.
func stateFor(wave []agent.Role) State {
	if len(wave) > 1 {
		return StateReviewingParallel
	}
	switch wave[0] {
	case agent.RoleResearcher:
		return StateResearching
	case agent.RoleWriter:
		return StateDrafting
	case agent.RoleEditor:
		return StateEditing
	default:
		return StateReviewingParallel
	}
}

// canonical orders roles by pipeline position.
func canonical(roles []agent.Role) []agent.Role {
	out := slices.Clone(roles)
	slices.SortFunc(out, func(a, b agent.Role) int {
		return slices.Index(agent.Roles, a) - slices.Index(agent.Roles, b)
	})
	return out
}

// Start executes one full run for topic. configs holds one RoleConfig per
// role; missing roles use defaults. The returned result always carries the
// stages committed before any failure.
func (o *Orchestrator) Start(ctx context.Context, topic string, configs map[agent.Role]agent.RoleConfig, content agent.ContentConfig) RunResult {
	started := o.now()
	r := &run{
		id:      o.newID(),
		topic:   topic,
		state:   StateIdle,
		observe: o.observer,
	}
	log := o.logger.With("run_id", r.id, "topic", topic)
	log.Info("run started")

	cfgFor := func(role agent.Role) agent.RoleConfig {
		if cfg, ok := configs[role]; ok {
			return cfg
		}
		return agent.DefaultRoleConfig(role)
	}

	var editorOut, draftOut string
	editorSkipped := true
	var seo *prompt.SEOAnalysis

	for _, wave := range o.waves {
		wave = canonical(wave)
		r.transition(stateFor(wave), wave)

		var results []agent.StageResult
		var err error
		if len(wave) == 1 {
			var res agent.StageResult
			res, err = o.runSingle(ctx, r, log, wave[0], topic, cfgFor(wave[0]), content)
			results = []agent.StageResult{res}
		} else {
			results, err = o.runParallel(ctx, r, wave, topic, cfgFor, content)
		}
		if err != nil {
			log.Error("run failed", "state", string(r.state), "error", err)
			r.fail(err)
			o.recordRun(outcomeFailed)
			return o.result(r, started, "", "", nil)
		}

		// Context blocks follow pipeline order, not completion order.
		byRole := make(map[agent.Role]agent.StageResult, len(results))
		for _, res := range results {
			byRole[res.Role] = res
		}
		for _, role := range wave {
			res := byRole[role]
			if res.Skipped {
				continue
			}
			switch role {
			case agent.RoleEditor:
				editorOut = res.Content
				editorSkipped = false
			case agent.RoleWriter:
				draftOut = res.Content
			case agent.RoleSEO:
				a := prompt.ParseSEOAnalysis(res.Content)
				seo = &a
			}
			if label := contextLabel(role); label != "" {
				r.appendBlock(label, res.Content)
			}
		}
	}

	// Only a disabled Editor hands the draft through; an empty enabled
	// Editor has already failed the run.
	artifact := editorOut
	if editorSkipped {
		artifact = draftOut
	}

	r.transition(StatePostProcessing, nil)
	artifact, audioURL := o.postProcess(ctx, r, log, topic, artifact, content)

	r.transition(StateCompleted, nil)
	o.recordRun(outcomeCompleted)
	res := o.result(r, started, artifact, audioURL, seo)
	o.submitHistory(log, res, content)
	log.Info("run completed", "tokens", res.TotalTokens, "warnings", len(res.Warnings), "duration", res.Duration)
	return res
}

func (o *Orchestrator) runSingle(ctx context.Context, r *run, log *slog.Logger, role agent.Role, topic string, cfg agent.RoleConfig, content agent.ContentConfig) (agent.StageResult, error) {
	accumulated := r.context.String()
	if role == agent.RoleResearcher && cfg.Enabled {
		accumulated = o.researchSeed(ctx, log, topic)
	}

	res, err := o.executor.RunStage(ctx, role, topic, accumulated, cfg, content)
	if err != nil {
		return agent.StageResult{}, err
	}
	if role == agent.RoleEditor && !res.Skipped && strings.TrimSpace(res.Content) == "" {
		return agent.StageResult{}, &agent.AgentFailure{Role: role, Cause: ErrEmptyOutput}
	}
	r.commit(res)
	log.Debug("stage completed", "role", string(role), "skipped", res.Skipped, "tokens", res.Usage.TotalTokens)
	return res, nil
}

// runParallel runs every role of the wave against the same context snapshot.
// The first failure cancels the siblings and discards the wave's results.
// On success the results are committed in completion order.
func (o *Orchestrator) runParallel(ctx context.Context, r *run, wave []agent.Role, topic string, cfgFor func(agent.Role) agent.RoleConfig, content agent.ContentConfig) ([]agent.StageResult, error) {
	snapshot := r.context.String()

	var mu sync.Mutex
	completed := make([]agent.StageResult, 0, len(wave))

	g, gctx := errgroup.WithContext(ctx)
	for _, role := range wave {
		cfg := cfgFor(role)
		g.Go(func() error {
			res, err := o.executor.RunStage(gctx, role, topic, snapshot, cfg, content)
			if err != nil {
				return err
			}
			mu.Lock()
			completed = append(completed, res)
			mu.Unlock()
			r.finish(role)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.commit(completed...)
	return completed, nil
}

func (o *Orchestrator) researchSeed(ctx context.Context, log *slog.Logger, topic string) string {
	if o.search == nil {
		return ""
	}
	in, err := o.search.Intelligence(ctx, topic)
	if err != nil {
		log.Warn("search intelligence unavailable", "error", err)
		return ""
	}
	return in.ContextBlock()
}

func (o *Orchestrator) result(r *run, started time.Time, artifact, audioURL string, seo *prompt.SEOAnalysis) RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunResult{
		RunID:         r.id,
		Topic:         r.topic,
		FinalArtifact: artifact,
		Stages:        slices.Clone(r.stages),
		TotalTokens:   r.total,
		Error:         r.errMsg,
		FailedRole:    r.failed,
		Warnings:      slices.Clone(r.warnings),
		AudioURL:      audioURL,
		SEO:           seo,
		Duration:      o.now().Sub(started),
	}
}

func (o *Orchestrator) recordRun(outcome string) {
	if o.metrics != nil {
		o.metrics.Run(outcome)
	}
}
