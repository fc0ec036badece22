package config

import (
	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
)

// ProviderConfig holds credentials and endpoint settings for one inference provider.
type ProviderConfig struct {
	APIKey    string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIKeyEnv string            `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"` // Read into APIKey by ApplyEnv when set
	BaseURL   string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Models    map[string]string `json:"models,omitempty" yaml:"models,omitempty"` // Priority -> model override
}

// CacheConfig selects the search intelligence cache.
type CacheConfig struct {
	Backend    string `json:"backend" yaml:"backend"` // "memory", "redis", or "none"
	RedisURL   string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	TTLSeconds int    `json:"ttl_seconds" yaml:"ttl_seconds"`
	Size       int    `json:"size" yaml:"size"`
}

// SearchConfig configures the SerpAPI collaborator.
type SearchConfig struct {
	SerpAPIKey string      `json:"serpapi_key,omitempty" yaml:"serpapi_key,omitempty"`
	BaseURL    string      `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Cache      CacheConfig `json:"cache" yaml:"cache"`
}

// StorageConfig selects where generated audio is written.
type StorageConfig struct {
	Backend         string `json:"backend" yaml:"backend"` // "local" or "s3"
	Dir             string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	PublicBaseURL   string `json:"public_base_url,omitempty" yaml:"public_base_url,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `json:"force_path_style,omitempty" yaml:"force_path_style,omitempty"`
}

// MediaConfig configures image and audio generation. Both use the OpenAI provider key.
type MediaConfig struct {
	ImageModel  string        `json:"image_model" yaml:"image_model"`
	ImageSize   string        `json:"image_size" yaml:"image_size"`
	SpeechModel string        `json:"speech_model" yaml:"speech_model"`
	Voice       string        `json:"voice" yaml:"voice"`
	Storage     StorageConfig `json:"storage" yaml:"storage"`
}

type SanityConfig struct {
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Dataset   string `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
}

type AirtableConfig struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseID string `json:"base_id,omitempty" yaml:"base_id,omitempty"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
}

type WordPressConfig struct {
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	AppPassword string `json:"app_password,omitempty" yaml:"app_password,omitempty"`
}

type ShopifyConfig struct {
	Shop        string `json:"shop,omitempty" yaml:"shop,omitempty"`
	BlogID      string `json:"blog_id,omitempty" yaml:"blog_id,omitempty"`
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
}

// PublishConfig holds credentials for each publish target.
type PublishConfig struct {
	Sanity    SanityConfig    `json:"sanity" yaml:"sanity"`
	Airtable  AirtableConfig  `json:"airtable" yaml:"airtable"`
	WordPress WordPressConfig `json:"wordpress" yaml:"wordpress"`
	Shopify   ShopifyConfig   `json:"shopify" yaml:"shopify"`
}

// HistoryConfig selects the blog history store.
type HistoryConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

// BatchConfig controls the serial batch runner.
type BatchConfig struct {
	PauseSeconds float64 `json:"pause_seconds" yaml:"pause_seconds"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // Empty disables the /metrics listener
}

// Config is the top-level configuration.
type Config struct {
	Providers map[backend.ID]ProviderConfig   `json:"providers" yaml:"providers"`
	Agents    map[agent.Role]agent.RoleConfig `json:"agents" yaml:"agents"`
	Content   agent.ContentConfig             `json:"content" yaml:"content"`
	Search    SearchConfig                    `json:"search" yaml:"search"`
	Media     MediaConfig                     `json:"media" yaml:"media"`
	Publish   PublishConfig                   `json:"publish" yaml:"publish"`
	History   HistoryConfig                   `json:"history" yaml:"history"`
	Batch     BatchConfig                     `json:"batch" yaml:"batch"`
	Logging   LoggingConfig                   `json:"logging" yaml:"logging"`
	Metrics   MetricsConfig                   `json:"metrics" yaml:"metrics"`
}

// BackendConfigs returns one backend.Config per provider in canonical order.
// Providers absent from the map are returned unconfigured.
func (c *Config) BackendConfigs() []backend.Config {
	out := make([]backend.Config, 0, len(backend.All))
	for _, id := range backend.All {
		p := c.Providers[id]
		out = append(out, backend.Config{
			Type:    id,
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Models:  p.Models,
		})
	}
	return out
}

// RoleConfigs returns the config for every role, filling gaps with defaults.
func (c *Config) RoleConfigs() map[agent.Role]agent.RoleConfig {
	out := agent.DefaultRoleConfigs()
	for role, rc := range c.Agents {
		out[role] = rc
	}
	return out
}
