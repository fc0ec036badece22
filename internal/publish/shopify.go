package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aristath/zappy/internal/config"
)

const shopifyAPIVersion = "2024-01"

// Shopify creates an unpublished blog article through the Admin REST API.
type Shopify struct {
	cfg    config.ShopifyConfig
	client *http.Client
	// BaseURL overrides https://<shop>.myshopify.com.
	BaseURL string
}

func NewShopify(cfg config.ShopifyConfig, client *http.Client) *Shopify {
	return &Shopify{cfg: cfg, client: defaultClient(client)}
}

func (s *Shopify) Name() string { return TargetShopify }

func (s *Shopify) Publish(ctx context.Context, title, content string) error {
	if err := config.Require("shopify",
		"shop", s.cfg.Shop,
		"blog_id", s.cfg.BlogID,
		"access_token", s.cfg.AccessToken,
	); err != nil {
		return err
	}

	base := s.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.myshopify.com", s.cfg.Shop)
	}
	endpoint := fmt.Sprintf("%s/admin/api/%s/blogs/%s/articles.json", base, shopifyAPIVersion, s.cfg.BlogID)
	body := map[string]any{
		"article": map[string]any{
			"title":     title,
			"body_html": content,
			"published": false,
		},
	}

	return postJSON(ctx, s.client, TargetShopify, endpoint,
		map[string]string{"X-Shopify-Access-Token": s.cfg.AccessToken},
		body, shopifyMessage)
}

func shopifyMessage(raw []byte) string {
	var e struct {
		Errors json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(raw, &e) != nil || len(e.Errors) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(e.Errors, &s) == nil {
		return s
	}
	return string(e.Errors)
}
