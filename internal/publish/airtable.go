package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aristath/zappy/internal/config"
)

const airtableBaseURL = "https://api.airtable.com/v0"

// Airtable appends a draft row to a table.
type Airtable struct {
	cfg     config.AirtableConfig
	client  *http.Client
	BaseURL string
}

func NewAirtable(cfg config.AirtableConfig, client *http.Client) *Airtable {
	if cfg.Table == "" {
		cfg.Table = "Content"
	}
	return &Airtable{cfg: cfg, client: defaultClient(client), BaseURL: airtableBaseURL}
}

func (a *Airtable) Name() string { return TargetAirtable }

func (a *Airtable) Publish(ctx context.Context, title, content string) error {
	if err := config.Require("airtable", "api_key", a.cfg.APIKey, "base_id", a.cfg.BaseID); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/%s", a.BaseURL, a.cfg.BaseID, url.PathEscape(a.cfg.Table))
	body := map[string]any{
		"fields": map[string]string{
			"Title":   title,
			"Content": content,
			"Status":  "Draft",
		},
	}

	return postJSON(ctx, a.client, TargetAirtable, endpoint,
		map[string]string{"Authorization": "Bearer " + a.cfg.APIKey},
		body, airtableMessage)
}

// airtableMessage handles both {"error": "CODE"} and {"error": {"message": ...}}.
func airtableMessage(raw []byte) string {
	var e struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &e) != nil || len(e.Error) == 0 {
		return ""
	}
	var code string
	if json.Unmarshal(e.Error, &code) == nil {
		return code
	}
	var obj struct {
		Message string `json:"message"`
	}
	json.Unmarshal(e.Error, &obj)
	return obj.Message
}
