package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the user's keybinding configuration
// Each section maps an action name to a comma-separated key list
type Config struct {
	Version   string                       `json:"version"`
	Global    map[string]string            `json:"global,omitempty"`
	Recording map[string]string            `json:"recording,omitempty"`
	Prompt    map[string]string            `json:"prompt,omitempty"`
	Picker    map[string]string            `json:"picker,omitempty"`
	Editor    map[string]string            `json:"editor,omitempty"`
	Viewer    map[string]string            `json:"viewer,omitempty"`
	Custom    map[string]map[string]string `json:"custom,omitempty"`
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyConfig applies user configuration to a registry
// User bindings replace the default keys of the actions they name
func ApplyConfig(registry *Registry, config *Config) error {
	contextMappings := map[Context]map[string]string{
		ContextGlobal:    config.Global,
		ContextRecording: config.Recording,
		ContextPrompt:    config.Prompt,
		ContextPicker:    config.Picker,
		ContextEditor:    config.Editor,
		ContextViewer:    config.Viewer,
	}
	for contextName, bindings := range config.Custom {
		contextMappings[Context(contextName)] = bindings
	}

	for context, bindings := range contextMappings {
		for actionStr, keyList := range bindings {
			action := Action(actionStr)
			keys := splitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context '%s', action '%s': %w", context, action, err)
				}
			}
			registry.Unregister(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}

	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}

		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// ConfigPath returns the keybinds.json path inside dir
func ConfigPath(dir string) string {
	return filepath.Join(dir, "keybinds.json")
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
