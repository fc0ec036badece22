package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/zappy/internal/config"
)

const sanityAPIVersion = "v2021-06-07"

// Sanity creates a post document through the Sanity mutations API.
type Sanity struct {
	cfg    config.SanityConfig
	client *http.Client
	// BaseURL overrides https://<project>.api.sanity.io.
	BaseURL string
	now     func() time.Time
}

func NewSanity(cfg config.SanityConfig, client *http.Client) *Sanity {
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	return &Sanity{cfg: cfg, client: defaultClient(client), now: time.Now}
}

func (s *Sanity) Name() string { return TargetSanity }

func (s *Sanity) Publish(ctx context.Context, title, content string) error {
	if err := config.Require("sanity", "project_id", s.cfg.ProjectID, "token", s.cfg.Token); err != nil {
		return err
	}

	base := s.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", s.cfg.ProjectID)
	}
	url := fmt.Sprintf("%s/%s/data/mutate/%s", base, sanityAPIVersion, s.cfg.Dataset)

	body := map[string]any{
		"mutations": []any{
			map[string]any{
				"create": map[string]any{
					"_type":       "post",
					"title":       title,
					"body":        content,
					"publishedAt": s.now().UTC().Format(time.RFC3339),
				},
			},
		},
	}

	return postJSON(ctx, s.client, TargetSanity, url,
		map[string]string{"Authorization": "Bearer " + s.cfg.Token},
		body, sanityMessage)
}

func sanityMessage(raw []byte) string {
	var e struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &e) != nil {
		return ""
	}
	return e.Error.Description
}
