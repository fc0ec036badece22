// Package publish sends finished articles to external CMS and commerce targets.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/zappy/internal/config"
)

// Publisher delivers one article to a target.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, title, content string) error
}

// Target names.
const (
	TargetSanity    = "sanity"
	TargetAirtable  = "airtable"
	TargetWordPress = "wordpress"
	TargetShopify   = "shopify"
)

// Targets lists every target name.
var Targets = []string{TargetSanity, TargetAirtable, TargetWordPress, TargetShopify}

// Error is a non-2xx response from a target.
type Error struct {
	Target     string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Target, e.StatusCode, e.Message)
}

// ByName returns the publisher for a target. It is returned even when its
// credentials are missing; Publish then fails with a ConfigurationError.
func ByName(cfg config.PublishConfig, name string, client *http.Client) (Publisher, error) {
	switch name {
	case TargetSanity:
		return NewSanity(cfg.Sanity, client), nil
	case TargetAirtable:
		return NewAirtable(cfg.Airtable, client), nil
	case TargetWordPress:
		return NewWordPress(cfg.WordPress, client), nil
	case TargetShopify:
		return NewShopify(cfg.Shopify, client), nil
	default:
		return nil, fmt.Errorf("unknown publish target %q (want one of %s)", name, strings.Join(Targets, ", "))
	}
}

// FromConfig returns publishers for every target with at least one
// credential set.
func FromConfig(cfg config.PublishConfig, client *http.Client) []Publisher {
	var out []Publisher
	if cfg.Sanity.ProjectID != "" || cfg.Sanity.Token != "" {
		out = append(out, NewSanity(cfg.Sanity, client))
	}
	if cfg.Airtable.APIKey != "" || cfg.Airtable.BaseID != "" {
		out = append(out, NewAirtable(cfg.Airtable, client))
	}
	if cfg.WordPress.BaseURL != "" || cfg.WordPress.Username != "" {
		out = append(out, NewWordPress(cfg.WordPress, client))
	}
	if cfg.Shopify.Shop != "" || cfg.Shopify.AccessToken != "" {
		out = append(out, NewShopify(cfg.Shopify, client))
	}
	return out
}

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// postJSON sends body as JSON and returns an *Error on a non-2xx status.
// message extracts the target's error text from the response body.
func postJSON(ctx context.Context, client *http.Client, target, url string, headers map[string]string, body any, message func([]byte) string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	if message != nil {
		msg = message(raw)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Target: target, StatusCode: resp.StatusCode, Message: msg}
}
