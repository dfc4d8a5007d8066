package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/types"
	"gopkg.in/yaml.v3"
)

// Supported preset file formats
const (
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// ErrNotFound is returned when no preset file matches a name
var ErrNotFound = errors.New("preset not found")

// Entry is a preset file found in the preset directory
type Entry struct {
	Name   string
	Path   string
	Format string
}

// FormatOf returns the preset format implied by a file extension
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported preset extension %q", filepath.Ext(path))
	}
}

// BaseName returns a preset file name without directory or extension
func BaseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// ValidateFilename checks that a preset name can be used as a file base name
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset filename cannot be empty")
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) || name == "." || name == ".." {
		return fmt.Errorf("preset filename %q contains invalid characters", name)
	}
	return nil
}

// Validate checks the preset name and its shortcuts
func Validate(p *types.Preset, validator *keybinds.Validator) *keybinds.ValidationResult {
	if validator == nil {
		validator = keybinds.NewValidator(nil)
	}
	result := validator.ValidateBindings(p.Actions)
	if err := ValidateFilename(p.Filename); err != nil {
		result.Errors = append(result.Errors, keybinds.ValidationError{
			Type: "invalid", Context: keybinds.ContextRecording, Message: err.Error(),
		})
	}
	return result
}

// Load reads a preset file (XML or YAML by extension)
func Load(path string) (*types.Preset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var p *types.Preset
	switch format {
	case FormatXML:
		p, err = decodeXML(data)
	case FormatYAML:
		p, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", filepath.Base(path), err)
	}

	if p.Filename == "" {
		p.Filename = BaseName(path)
	}
	if p.Actions == nil {
		p.Actions = []types.Binding{}
	}
	for i := range p.Actions {
		p.Actions[i].Key = keybinds.ShortcutKey(p.Actions[i].Key)
	}
	p.EnsureIDs()

	return p, nil
}

// Save writes the preset as <dir>/<filename>.xml and returns the path
func Save(p *types.Preset, dir string) (string, error) {
	if err := ValidateFilename(p.Filename); err != nil {
		return "", err
	}
	path := filepath.Join(dir, p.Filename+".xml")
	return path, SaveAs(p, path)
}

// SaveAs writes the preset to path, choosing the format from the extension
func SaveAs(p *types.Preset, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatXML:
		data, err = encodeXML(p)
	case FormatYAML:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}

	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	return nil
}

// List returns the presets in dir sorted by name
func List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, err := FormatOf(e.Name())
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:   BaseName(e.Name()),
			Path:   filepath.Join(dir, e.Name()),
			Format: format,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Format < out[j].Format
	})
	return out, nil
}

// Resolve returns the path of a preset given a path or a bare name in dir
func Resolve(dir, nameOrPath string) (string, error) {
	if _, err := FormatOf(nameOrPath); err == nil {
		if _, statErr := os.Stat(nameOrPath); statErr == nil {
			return nameOrPath, nil
		}
		candidate := filepath.Join(dir, filepath.Base(nameOrPath))
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, nameOrPath)
	}

	for _, ext := range []string{".xml", ".yaml", ".yml"} {
		candidate := filepath.Join(dir, nameOrPath+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, nameOrPath)
}

func decodeYAML(data []byte) (*types.Preset, error) {
	p := types.NewPreset("", "")
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}
