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

// LayoutExtension is the extension of layout files
const LayoutExtension = ".dock"

// LayoutPath returns the layout file of a preset
func LayoutPath(dir, presetName string) string {
	return filepath.Join(dir, presetName+LayoutExtension)
}

// LoadLayout reads the layout saved for a preset
// It reports false, with the default layout, when no file exists.
func LoadLayout(dir, presetName string) (types.Layout, bool, error) {
	data, err := os.ReadFile(LayoutPath(dir, presetName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.DefaultLayout(), false, nil
		}
		return types.DefaultLayout(), false, fmt.Errorf("failed to read layout: %w", err)
	}

	layout := types.DefaultLayout()
	if err := json.Unmarshal(data, &layout); err != nil {
		return types.DefaultLayout(), false, fmt.Errorf("failed to parse layout %s: %w", presetName, err)
	}
	if layout.SettingsSide != "left" && layout.SettingsSide != "right" {
		layout.SettingsSide = "left"
	}
	return layout, true, nil
}

// SaveLayout writes the layout of a preset
func SaveLayout(dir, presetName string, layout types.Layout) error {
	if presetName == "" {
		return errors.New("cannot save a layout without a preset name")
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	if err := os.WriteFile(LayoutPath(dir, presetName), data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}
