package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/aristath/zappy/internal/agent"
)

// BatchReport collects the per-topic results of a batch.
type BatchReport struct {
	Results   []RunResult `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"` // Blank topics
}

// StartBatch runs each topic through Start, one at a time, pausing between
// runs. A failed topic is recorded and the batch moves on; topics are not
// retried. Cancelling ctx stops the batch and returns the partial report
// with ctx.Err().
func (o *Orchestrator) StartBatch(ctx context.Context, topics []string, configs map[agent.Role]agent.RoleConfig, content agent.ContentConfig) (BatchReport, error) {
	var report BatchReport

	pending := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t == "" {
			report.Skipped++
			continue
		}
		pending = append(pending, t)
	}

	for i, topic := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		o.logger.Info("batch topic", "index", i+1, "of", len(pending), "topic", topic)
		res := o.Start(ctx, topic, configs, content)
		report.Results = append(report.Results, res)
		if res.Failed() {
			report.Failed++
		} else {
			report.Succeeded++
		}

		if i == len(pending)-1 || o.pause <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(o.pause):
		}
	}

	return report, ctx.Err()
}
