// Package metrics exposes pipeline and provider counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the pipeline collectors. It satisfies router.Recorder.
type Recorder struct {
	runs          *prometheus.CounterVec
	stages        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	tokens        *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	warnings      *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_stages_total",
			Help: "Stage executions by role and outcome",
		}, []string{"role", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zappy_stage_duration_seconds",
			Help:    "Stage wall-clock duration",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}, []string{"role"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_tokens_total",
			Help: "Tokens consumed by role",
		}, []string{"role"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_provider_calls_total",
			Help: "Inference calls by provider and status",
		}, []string{"provider", "status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_provider_fallbacks_total",
			Help: "Fallbacks from a failed provider to the default",
		}, []string{"from", "to"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zappy_postprocess_warnings_total",
			Help: "Degraded post-processing features",
		}, []string{"feature"}),
	}

	if reg != nil {
		reg.MustRegister(r.runs, r.stages, r.stageDuration, r.tokens, r.providerCalls, r.fallbacks, r.warnings)
	}
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ProviderCall counts one inference call.
func (r *Recorder) ProviderCall(provider string, err error) {
	r.providerCalls.WithLabelValues(provider, status(err)).Inc()
}

// Fallback counts a switch to the default provider.
func (r *Recorder) Fallback(from, to string) {
	r.fallbacks.WithLabelValues(from, to).Inc()
}

// Stage records one stage outcome: "completed", "skipped" or "failed".
func (r *Recorder) Stage(role, outcome string, d time.Duration, tokens int64) {
	r.stages.WithLabelValues(role, outcome).Inc()
	if outcome == "skipped" {
		return
	}
	r.stageDuration.WithLabelValues(role).Observe(d.Seconds())
	if tokens > 0 {
		r.tokens.WithLabelValues(role).Add(float64(tokens))
	}
}

// Run records a finished run: "completed" or "failed".
func (r *Recorder) Run(outcome string) {
	r.runs.WithLabelValues(outcome).Inc()
}

// Warning records a degraded post-processing feature.
func (r *Recorder) Warning(feature string) {
	r.warnings.WithLabelValues(feature).Inc()
}
