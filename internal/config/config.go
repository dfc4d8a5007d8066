package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the local application-data directory (~/.beeactions)
	ConfigDir string

	// LogDir holds one log file per run
	LogDir string

	// LayoutDir holds one layout file per preset
	LayoutDir string

	// PresetDir holds the shortcut preset files
	PresetDir string

	// DataDir is the default base path for data containers
	DataDir string

	// SettingsFile is the application settings file (TOML)
	SettingsFile string

	// StateFile is the persisted UI state file
	StateFile string
)

// Initialize sets up the application-data directories
// It creates ~/.beeactions/ if it doesn't exist. A non-empty home overrides the location.
func Initialize(home string) error {
	if strings.TrimSpace(home) == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		home = filepath.Join(homeDir, ".beeactions")
	}

	expanded, err := ExpandPath(home)
	if err != nil {
		return err
	}

	// Set global paths
	ConfigDir = expanded
	LogDir = filepath.Join(ConfigDir, "logging")
	LayoutDir = filepath.Join(ConfigDir, "layout")
	PresetDir = filepath.Join(ConfigDir, "preset_shortcuts")
	DataDir = filepath.Join(ConfigDir, "data")
	SettingsFile = filepath.Join(ConfigDir, "settings.toml")
	StateFile = filepath.Join(ConfigDir, ".state.json")

	dirs := []string{ConfigDir, LogDir, LayoutDir, PresetDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := SaveSettings(SettingsFile, DefaultSettings()); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

// ResolveDataPath returns an absolute base path for containers
// Relative paths are resolved against the application-data directory
func ResolveDataPath(basePath string) (string, error) {
	if basePath == "" {
		return DataDir, nil
	}

	expanded, err := ExpandPath(basePath)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(expanded) {
		return expanded, nil
	}

	return filepath.Join(ConfigDir, expanded), nil
}
