package config

import (
	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
)

// DefaultConfig returns the default configuration: every provider present but
// unconfigured, default role configs, and local sqlite history.
func DefaultConfig() *Config {
	providers := make(map[backend.ID]ProviderConfig, len(backend.All))
	for _, id := range backend.All {
		providers[id] = ProviderConfig{}
	}

	return &Config{
		Providers: providers,
		Agents:    agent.DefaultRoleConfigs(),
		Content:   agent.DefaultContentConfig(),
		Search: SearchConfig{
			Cache: CacheConfig{
				Backend:    "memory",
				TTLSeconds: 3600,
				Size:       256,
			},
		},
		Media: MediaConfig{
			ImageModel:  "dall-e-3",
			ImageSize:   "1024x1024",
			SpeechModel: "tts-1",
			Voice:       "alloy",
			Storage: StorageConfig{
				Backend: "local",
				Dir:     ".zappy/media",
			},
		},
		Publish: PublishConfig{
			Sanity:   SanityConfig{Dataset: "production"},
			Airtable: AirtableConfig{Table: "Content"},
		},
		History: HistoryConfig{
			Driver: "sqlite",
			DSN:    ".zappy/history.db",
		},
		Batch: BatchConfig{
			PauseSeconds: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
