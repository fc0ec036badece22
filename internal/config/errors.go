package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or malformed settings for a collaborator.
// It is raised when the collaborator is used, not when config is loaded.
type ConfigurationError struct {
	Component string
	Missing   []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s is not configured", e.Component)
	}
	return fmt.Sprintf("%s is not configured: missing %s", e.Component, strings.Join(e.Missing, ", "))
}

// Require returns a ConfigurationError naming every empty field, or nil.
// Fields are given as name/value pairs.
func Require(component string, fields ...string) error {
	var missing []string
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigurationError{Component: component, Missing: missing}
}
