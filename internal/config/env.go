package config

import (
	"os"

	"github.com/aristath/zappy/internal/backend"
)

var providerEnv = map[backend.ID]string{
	backend.Gemini:     "GEMINI_API_KEY",
	backend.Anthropic:  "ANTHROPIC_API_KEY",
	backend.OpenAI:     "OPENAI_API_KEY",
	backend.Perplexity: "PERPLEXITY_API_KEY",
}

// ApplyEnv overlays secrets from the environment. Non-empty variables win
// over file values. A provider's api_key_env replaces its default variable name.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	for _, id := range backend.All {
		pc := c.Providers[id]
		name := providerEnv[id]
		if pc.APIKeyEnv != "" {
			name = pc.APIKeyEnv
		}
		get(name, &pc.APIKey)
		c.Providers[id] = pc
	}

	get("SERPAPI_API_KEY", &c.Search.SerpAPIKey)
	get("REDIS_URL", &c.Search.Cache.RedisURL)

	get("SANITY_PROJECT_ID", &c.Publish.Sanity.ProjectID)
	get("SANITY_DATASET", &c.Publish.Sanity.Dataset)
	get("SANITY_TOKEN", &c.Publish.Sanity.Token)
	get("AIRTABLE_API_KEY", &c.Publish.Airtable.APIKey)
	get("AIRTABLE_BASE_ID", &c.Publish.Airtable.BaseID)
	get("AIRTABLE_TABLE_NAME", &c.Publish.Airtable.Table)
	get("WORDPRESS_URL", &c.Publish.WordPress.BaseURL)
	get("WORDPRESS_USERNAME", &c.Publish.WordPress.Username)
	get("WORDPRESS_APP_PASSWORD", &c.Publish.WordPress.AppPassword)
	get("SHOPIFY_SHOP", &c.Publish.Shopify.Shop)
	get("SHOPIFY_BLOG_ID", &c.Publish.Shopify.BlogID)
	get("SHOPIFY_ACCESS_TOKEN", &c.Publish.Shopify.AccessToken)

	get("ZAPPY_HISTORY_DSN", &c.History.DSN)
}
