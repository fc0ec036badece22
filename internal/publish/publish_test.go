package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aristath/zappy/internal/config"
)

type captured struct {
	mu      sync.Mutex
	path    string
	headers http.Header
	body    map[string]any
	calls   int
}

func newTarget(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.calls++
		c.path = r.URL.EscapedPath()
		c.headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestSanityPublish(t *testing.T) {
	srv, got := newTarget(t, http.StatusOK, `{"transactionId": "t1"}`)

	s := NewSanity(config.SanityConfig{ProjectID: "p1", Token: "tok"}, srv.Client())
	s.BaseURL = srv.URL
	s.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	if err := s.Publish(context.Background(), "Sleep", "# Sleep\nbody"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.path != "/v2021-06-07/data/mutate/production" {
		t.Errorf("path = %s", got.path)
	}
	if got.headers.Get("Authorization") != "Bearer tok" {
		t.Errorf("auth = %q", got.headers.Get("Authorization"))
	}
	create := got.body["mutations"].([]any)[0].(map[string]any)["create"].(map[string]any)
	if create["_type"] != "post" || create["title"] != "Sleep" || create["publishedAt"] != "2025-03-01T09:00:00Z" {
		t.Errorf("create = %v", create)
	}
}

func TestSanityErrorMessage(t *testing.T) {
	srv, _ := newTarget(t, http.StatusForbidden, `{"error": {"description": "Insufficient permissions"}}`)

	s := NewSanity(config.SanityConfig{ProjectID: "p1", Token: "tok"}, srv.Client())
	s.BaseURL = srv.URL

	err := s.Publish(context.Background(), "t", "c")
	var pubErr *Error
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if pubErr.StatusCode != http.StatusForbidden || pubErr.Message != "Insufficient permissions" {
		t.Errorf("err = %+v", pubErr)
	}
}

func TestAirtablePublish(t *testing.T) {
	srv, got := newTarget(t, http.StatusOK, `{"id": "rec1"}`)

	a := NewAirtable(config.AirtableConfig{APIKey: "key", BaseID: "app1", Table: "Blog Posts"}, srv.Client())
	a.BaseURL = srv.URL

	if err := a.Publish(context.Background(), "T", "C"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.path != "/app1/Blog%20Posts" {
		t.Errorf("path = %s", got.path)
	}
	fields := got.body["fields"].(map[string]any)
	if fields["Title"] != "T" || fields["Content"] != "C" || fields["Status"] != "Draft" {
		t.Errorf("fields = %v", fields)
	}
}

func TestAirtableErrorShapes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"string code", `{"error": "NOT_FOUND"}`, "NOT_FOUND"},
		{"object", `{"error": {"type": "INVALID", "message": "Unknown field"}}`, "Unknown field"},
		{"unparseable", `oops`, "Unprocessable Entity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTarget(t, http.StatusUnprocessableEntity, tt.reply)
			a := NewAirtable(config.AirtableConfig{APIKey: "key", BaseID: "app1"}, srv.Client())
			a.BaseURL = srv.URL

			var pubErr *Error
			if err := a.Publish(context.Background(), "T", "C"); !errors.As(err, &pubErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if pubErr.Message != tt.want {
				t.Errorf("message = %q, want %q", pubErr.Message, tt.want)
			}
		})
	}
}

func TestWordPressPublish(t *testing.T) {
	srv, got := newTarget(t, http.StatusCreated, `{"id": 12}`)

	w := NewWordPress(config.WordPressConfig{BaseURL: srv.URL + "/", Username: "ed", AppPassword: "pw"}, srv.Client())
	if err := w.Publish(context.Background(), "T", "C"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.path != "/wp-json/wp/v2/posts" {
		t.Errorf("path = %s", got.path)
	}
	// base64("ed:pw")
	if got.headers.Get("Authorization") != "Basic ZWQ6cHc=" {
		t.Errorf("auth = %q", got.headers.Get("Authorization"))
	}
	if got.body["status"] != "draft" {
		t.Errorf("status = %v", got.body["status"])
	}
}

func TestShopifyPublish(t *testing.T) {
	srv, got := newTarget(t, http.StatusCreated, `{"article": {"id": 1}}`)

	s := NewShopify(config.ShopifyConfig{Shop: "clinic", BlogID: "42", AccessToken: "shp"}, srv.Client())
	s.BaseURL = srv.URL

	if err := s.Publish(context.Background(), "T", "<p>C</p>"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.path != "/admin/api/2024-01/blogs/42/articles.json" {
		t.Errorf("path = %s", got.path)
	}
	if got.headers.Get("X-Shopify-Access-Token") != "shp" {
		t.Error("missing access token header")
	}
	article := got.body["article"].(map[string]any)
	if article["body_html"] != "<p>C</p>" || article["published"] != false {
		t.Errorf("article = %v", article)
	}
}

func TestMissingCredentialsFailAtPublish(t *testing.T) {
	srv, got := newTarget(t, http.StatusOK, `{}`)

	for _, name := range Targets {
		t.Run(name, func(t *testing.T) {
			p, err := ByName(config.PublishConfig{}, name, srv.Client())
			if err != nil {
				t.Fatalf("ByName: %v", err)
			}
			var cfgErr *config.ConfigurationError
			if err := p.Publish(context.Background(), "T", "C"); !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
	if got.calls != 0 {
		t.Errorf("no request should be sent without credentials, got %d", got.calls)
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName(config.PublishConfig{}, "medium", nil); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.PublishConfig{
		Sanity:  config.SanityConfig{Dataset: "production"},
		Shopify: config.ShopifyConfig{Shop: "clinic"},
	}
	pubs := FromConfig(cfg, nil)
	if len(pubs) != 1 || pubs[0].Name() != TargetShopify {
		names := make([]string, 0, len(pubs))
		for _, p := range pubs {
			names = append(names, p.Name())
		}
		t.Errorf("FromConfig = %v, want [shopify]", names)
	}
}
