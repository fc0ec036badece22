package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/zappy/internal/agent"
	"github.com/aristath/zappy/internal/backend"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed files return an error.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the conventional config locations.
// Global: ~/.zappy/config.json
// Project: .zappy/config.json (relative to cwd)
func DefaultPaths() (global, project string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".zappy", "config.json"), filepath.Join(".zappy", "config.json"), nil
}

// LoadDefault loads configuration from the conventional paths.
func LoadDefault() (*Config, error) {
	global, project, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return Load(global, project)
}

// mergeConfigFile reads a config file and merges it into base.
// Provider and agent entries merge field by field over existing entries;
// other sections overlay only the keys present in the file.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if isYAML(path) {
		data, err = yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := mergeJSON(base, data); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(doc)
}

func mergeJSON(base *Config, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if section, ok := raw["providers"]; ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(section, &entries); err != nil {
			return fmt.Errorf("providers: %w", err)
		}
		for key, entry := range entries {
			id := backend.ID(key)
			pc := base.Providers[id]
			if err := json.Unmarshal(entry, &pc); err != nil {
				return fmt.Errorf("providers.%s: %w", key, err)
			}
			base.Providers[id] = pc
		}
		delete(raw, "providers")
	}

	if section, ok := raw["agents"]; ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(section, &entries); err != nil {
			return fmt.Errorf("agents: %w", err)
		}
		for key, entry := range entries {
			role, err := agent.ParseRole(key)
			if err != nil {
				return fmt.Errorf("agents: %w", err)
			}
			rc, ok := base.Agents[role]
			if !ok {
				rc = agent.DefaultRoleConfig(role)
			}
			if err := json.Unmarshal(entry, &rc); err != nil {
				return fmt.Errorf("agents.%s: %w", key, err)
			}
			base.Agents[role] = rc
		}
		delete(raw, "agents")
	}

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(rest, base)
}

// Validate checks the settings that every run depends on. Collaborator
// credentials are checked when the collaborator is used.
func (c *Config) Validate() error {
	for _, id := range slices.Sorted(maps.Keys(c.Providers)) {
		switch id {
		case backend.Gemini, backend.Anthropic, backend.OpenAI, backend.Perplexity:
		default:
			return fmt.Errorf("providers: unknown provider %q", id)
		}
	}
	for _, role := range agent.Roles {
		rc, ok := c.Agents[role]
		if !ok {
			continue
		}
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("agents.%s: %w", role, err)
		}
	}
	switch c.History.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("history: unknown driver %q", c.History.Driver)
	}
	switch c.Search.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("search.cache: unknown backend %q", c.Search.Cache.Backend)
	}
	switch c.Media.Storage.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("media.storage: unknown backend %q", c.Media.Storage.Backend)
	}
	if c.Batch.PauseSeconds < 0 {
		return fmt.Errorf("batch: pause_seconds must not be negative")
	}
	return nil
}
