package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Missing subject id policies
const (
	SubjectPolicyDrop   = "drop"
	SubjectPolicyReject = "reject"
)

// Recording contains the event-recording behaviour.
type Recording struct {
	SaveSubjectID  bool   `toml:"save_subject_id"`
	MissingSubject string `toml:"missing_subject"`
	ScanType       string `toml:"scan_type"`
}

// Storage contains the default container location.
type Storage struct {
	BasePath   string `toml:"base_path"`
	BaseName   string `toml:"base_name"`
	ScanPrefix string `toml:"scan_prefix"`
}

// Logging contains the log output configuration.
type Logging struct {
	Level         string `toml:"level"`
	Format        string `toml:"format"`
	RetentionDays int    `toml:"retention_days"`
}

// Settings is the application settings file.
type Settings struct {
	Author    string    `toml:"author"`
	Actions   []string  `toml:"actions"`
	Recording Recording `toml:"recording"`
	Storage   Storage   `toml:"storage"`
	Logging   Logging   `toml:"logging"`
}

// DefaultActions is the action vocabulary offered when building presets.
var DefaultActions = []string{"Eat", "Landed", "Attack"}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	actions := make([]string, len(DefaultActions))
	copy(actions, DefaultActions)
	return Settings{
		Actions: actions,
		Recording: Recording{
			SaveSubjectID:  true,
			MissingSubject: SubjectPolicyDrop,
			ScanType:       "Scan1D",
		},
		Storage: Storage{
			BaseName:   "Dataset",
			ScanPrefix: "Scan",
		},
		Logging: Logging{
			Level:         "info",
			Format:        "console",
			RetentionDays: 30,
		},
	}
}

// LoadSettings parses and validates a settings file. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &settings, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings writes settings as TOML.
func SaveSettings(path string, settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

func (s *Settings) normalize() {
	s.Author = strings.TrimSpace(s.Author)
	s.Recording.MissingSubject = strings.ToLower(strings.TrimSpace(s.Recording.MissingSubject))
	if s.Recording.MissingSubject == "" {
		s.Recording.MissingSubject = SubjectPolicyDrop
	}
	if s.Recording.ScanType == "" {
		s.Recording.ScanType = "Scan1D"
	}
	if s.Storage.BaseName == "" {
		s.Storage.BaseName = "Dataset"
	}
	if s.Storage.ScanPrefix == "" {
		s.Storage.ScanPrefix = "Scan"
	}

	actions := s.Actions[:0]
	seen := make(map[string]struct{}, len(s.Actions))
	for _, action := range s.Actions {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		if _, ok := seen[action]; ok {
			continue
		}
		seen[action] = struct{}{}
		actions = append(actions, action)
	}
	s.Actions = actions
	if len(s.Actions) == 0 {
		s.Actions = append(s.Actions, DefaultActions...)
	}
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	switch s.Recording.MissingSubject {
	case SubjectPolicyDrop, SubjectPolicyReject:
	default:
		return fmt.Errorf("recording.missing_subject: unsupported value %q (want %q or %q)",
			s.Recording.MissingSubject, SubjectPolicyDrop, SubjectPolicyReject)
	}

	switch s.Recording.ScanType {
	case "Scan1D", "Scan2D":
	default:
		return fmt.Errorf("recording.scan_type: unsupported value %q", s.Recording.ScanType)
	}

	if strings.ContainsAny(s.Storage.ScanPrefix, `/\ `) {
		return fmt.Errorf("storage.scan_prefix: %q must not contain separators or spaces", s.Storage.ScanPrefix)
	}

	if s.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}

	switch strings.ToLower(s.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", s.Logging.Format)
	}

	return nil
}
