package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/zappy/internal/config"
)

// WordPress creates a draft post through the REST API using an application password.
type WordPress struct {
	cfg    config.WordPressConfig
	client *http.Client
}

func NewWordPress(cfg config.WordPressConfig, client *http.Client) *WordPress {
	return &WordPress{cfg: cfg, client: defaultClient(client)}
}

func (w *WordPress) Name() string { return TargetWordPress }

func (w *WordPress) Publish(ctx context.Context, title, content string) error {
	if err := config.Require("wordpress",
		"base_url", w.cfg.BaseURL,
		"username", w.cfg.Username,
		"app_password", w.cfg.AppPassword,
	); err != nil {
		return err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(w.cfg.Username + ":" + w.cfg.AppPassword))
	endpoint := strings.TrimSuffix(w.cfg.BaseURL, "/") + "/wp-json/wp/v2/posts"
	body := map[string]string{
		"title":   title,
		"content": content,
		"status":  "draft",
	}

	return postJSON(ctx, w.client, TargetWordPress, endpoint,
		map[string]string{"Authorization": "Basic " + auth},
		body, wordpressMessage)
}

func wordpressMessage(raw []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	json.Unmarshal(raw, &e)
	return e.Message
}
