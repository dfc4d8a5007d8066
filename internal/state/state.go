// Package state persists UI state between runs: the last preset, the recent
// containers and one layout file per preset.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/types"
)

const maxRecentContainers = 10

// Manager loads and saves the application state file
type Manager struct {
	path  string
	state *types.AppState
}

// NewManager creates a manager for the state file at path
func NewManager(path string) *Manager {
	return &Manager{
		path:  path,
		state: &types.AppState{},
	}
}

// Load reads the state file
// A missing file leaves the default state.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.state = &types.AppState{}
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var st types.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}

	m.state = &st
	return nil
}

// Save writes the state file
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// LastPreset returns the path of the last loaded preset
func (m *Manager) LastPreset() string {
	return m.state.LastPreset
}

// SetLastPreset records the last loaded preset
func (m *Manager) SetLastPreset(path string) error {
	m.state.LastPreset = path
	return m.Save()
}

// AddRecentContainer adds a container to the MRU (Most Recently Used) list
// The path is moved to the front, duplicates are removed and the list is
// limited to maxRecentContainers entries
func (m *Manager) AddRecentContainer(path string) error {
	recent := []string{path}
	for _, p := range m.state.RecentContainers {
		if p != path {
			recent = append(recent, p)
		}
	}

	if len(recent) > maxRecentContainers {
		recent = recent[:maxRecentContainers]
	}

	m.state.RecentContainers = recent
	return m.Save()
}

// RecentContainers returns the MRU container list
func (m *Manager) RecentContainers() []string {
	if m.state.RecentContainers == nil {
		return []string{}
	}
	return m.state.RecentContainers
}
