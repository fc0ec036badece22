package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/persistence"
)

const (
	imagePromptChars = 100
	narrationChars   = 4000
)

// Post-processing feature names used in warnings and metrics.
const (
	featureImage   = "image generation"
	featurePodcast = "podcast"
	featurePublish = "auto-publish"
)

var headingRe = regexp.MustCompile(`(?m)^# (.*)$`)

// Title returns the first top-level markdown heading, or "Blog: <topic>".
func Title(content, topic string) string {
	if m := headingRe.FindStringSubmatch(content); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return "Blog: " + topic
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// postProcess runs the enabled collaborators. Every failure becomes a
// warning on the run; the artifact is returned without that enhancement.
func (o *Orchestrator) postProcess(ctx context.Context, r *run, log *slog.Logger, topic, artifact string, content agent.ContentConfig) (string, string) {
	degrade := func(feature string, err error) {
		msg := feature + " unavailable"
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		log.Warn("post-processing degraded", "feature", feature, "error", err)
		r.warn(msg)
		if o.metrics != nil {
			o.metrics.Warning(feature)
		}
	}

	if content.GenerateImages {
		if o.imager == nil {
			degrade(featureImage, nil)
		} else {
			p := fmt.Sprintf("Conceptual medical illustration for %s: %s", topic, truncate(artifact, imagePromptChars))
			url, err := o.imager.Image(ctx, p)
			if err != nil {
				degrade(featureImage, err)
			} else {
				artifact = fmt.Sprintf("![Header Image](%s)\n\n%s", url, artifact)
			}
		}
	}

	var audioURL string
	if content.PodcastEnabled {
		if o.narrator == nil {
			degrade(featurePodcast, nil)
		} else {
			url, err := o.narrator.Narrate(ctx, r.id, truncate(artifact, narrationChars))
			if err != nil {
				degrade(featurePodcast, err)
			} else {
				audioURL = url
			}
		}
	}

	if content.AutoPublish {
		if len(o.publishers) == 0 {
			degrade(featurePublish, nil)
		}
		title := Title(artifact, topic)
		for _, p := range o.publishers {
			if err := p.Publish(ctx, title, artifact); err != nil {
				degrade(featurePublish+" to "+p.Name(), err)
				continue
			}
			log.Info("published", "target", p.Name())
		}
	}

	return artifact, audioURL
}

// submitHistory hands a completed run to the history queue without blocking.
func (o *Orchestrator) submitHistory(log *slog.Logger, res RunResult, content agent.ContentConfig) {
	if o.history == nil {
		return
	}
	rec := persistence.BlogRecord{
		Keyword:   res.Topic,
		Title:     Title(res.FinalArtifact, res.Topic),
		Content:   res.FinalArtifact,
		Tokens:    res.TotalTokens,
		Structure: string(content.Structure),
	}
	if !o.history.Submit(rec) {
		log.Warn("history queue full, record dropped")
	}
}
