package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
)

// ErrNoProviderConfigured is returned when no backend reports credentials.
var ErrNoProviderConfigured = errors.New("no LLM provider configured")

// Recorder receives provider call outcomes. metrics.Recorder satisfies it.
type Recorder interface {
	ProviderCall(provider string, err error)
	Fallback(from, to string)
}

// Router picks a backend per role and falls back to the default once.
type Router struct {
	backends map[backend.ID]backend.Backend
	breakers *BreakerRegistry
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

// WithBreakers replaces the circuit breaker registry.
func WithBreakers(b *BreakerRegistry) Option {
	return func(r *Router) { r.breakers = b }
}

// New creates a router over the given backends.
func New(backends map[backend.ID]backend.Backend, opts ...Option) *Router {
	r := &Router{backends: backends}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.breakers == nil {
		r.breakers = NewBreakerRegistry(r.logger)
	}
	return r
}

// Preferences returns the ordered provider preference list for a role.
func Preferences(role agent.Role) []backend.ID {
	switch role {
	case agent.RoleResearcher:
		return []backend.ID{backend.Perplexity, backend.OpenAI, backend.Default}
	case agent.RoleWriter:
		return []backend.ID{backend.Anthropic, backend.OpenAI, backend.Default}
	case agent.RoleEditor, agent.RoleCompliance:
		return []backend.ID{backend.OpenAI, backend.Anthropic, backend.Default}
	default:
		return []backend.ID{backend.Default}
	}
}

func (r *Router) configured(id backend.ID) (backend.Backend, bool) {
	b, ok := r.backends[id]
	if !ok || b == nil || !b.IsConfigured() {
		return nil, false
	}
	return b, true
}

// SelectProvider returns the first configured backend in the role's
// preference list. When the list is exhausted it falls back to the first
// configured backend in canonical order.
func (r *Router) SelectProvider(role agent.Role) (backend.Backend, error) {
	for _, id := range Preferences(role) {
		if b, ok := r.configured(id); ok {
			return b, nil
		}
	}
	for _, id := range backend.All {
		if b, ok := r.configured(id); ok {
			return b, nil
		}
	}
	return nil, ErrNoProviderConfigured
}

func paramsFrom(cfg agent.RoleConfig) backend.Params {
	return backend.Params{
		Temperature:     cfg.Temperature,
		TopK:            cfg.TopK,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Priority:        string(cfg.Priority),
	}
}

// Route generates with the selected backend. A failing non-default backend
// gets exactly one retry on the default backend, if that one is configured.
func (r *Router) Route(ctx context.Context, role agent.Role, systemPrompt, userPrompt string, cfg agent.RoleConfig) (backend.Result, error) {
	selected, err := r.SelectProvider(role)
	if err != nil {
		return backend.Result{}, err
	}

	params := paramsFrom(cfg)
	res, err := r.generate(ctx, selected, systemPrompt, userPrompt, params)
	if err == nil {
		return res, nil
	}

	if selected.ID() == backend.Default || ctx.Err() != nil {
		return backend.Result{}, err
	}
	fallback, ok := r.configured(backend.Default)
	if !ok {
		return backend.Result{}, err
	}

	r.logger.Warn("provider failed, falling back",
		"role", string(role), "provider", string(selected.ID()), "fallback", string(backend.Default), "error", err)
	if r.recorder != nil {
		r.recorder.Fallback(string(selected.ID()), string(backend.Default))
	}

	res, fbErr := r.generate(ctx, fallback, systemPrompt, userPrompt, params)
	if fbErr != nil {
		return backend.Result{}, fmt.Errorf("%s: %w; fallback %s: %w", selected.ID(), err, backend.Default, fbErr)
	}
	return res, nil
}

// generate runs one backend call through its circuit breaker.
func (r *Router) generate(ctx context.Context, b backend.Backend, systemPrompt, userPrompt string, p backend.Params) (backend.Result, error) {
	cb := r.breakers.Get(string(b.ID()))

	out, err := cb.Execute(func() (interface{}, error) {
		return b.Generate(ctx, systemPrompt, userPrompt, p)
	})
	if r.recorder != nil {
		r.recorder.ProviderCall(string(b.ID()), err)
	}
	if err != nil {
		return backend.Result{}, err
	}
	return out.(backend.Result), nil
}
