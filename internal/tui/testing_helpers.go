package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/state"
	"github.com/studiowebux/beeactions/internal/types"
)

// testClock is a clock advanced by hand
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testEnv bundles a model with the directories and clock behind it
type testEnv struct {
	model     *Model
	clock     *testClock
	dataDir   string
	presetDir string
	layoutDir string
}

// CreateTestModel creates a Model instance for testing with temporary directories
func CreateTestModel(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	env := &testEnv{
		clock:     &testClock{now: time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)},
		dataDir:   filepath.Join(tempDir, "data"),
		presetDir: filepath.Join(tempDir, "preset_shortcuts"),
		layoutDir: filepath.Join(tempDir, "layout"),
	}

	settings := config.DefaultSettings()
	settings.Storage.BasePath = env.dataDir

	registry := keybinds.NewDefaultRegistry()
	mgr := lifecycle.NewManager(lifecycle.Options{
		Settings: settings,
		Clock:    env.clock,
		Logger:   logging.Discard(),
		Controls: registry,
	})

	m, err := New(context.Background(), Config{
		Manager:    mgr,
		State:      state.NewManager(filepath.Join(tempDir, "state.json")),
		Keybinds:   registry,
		Logger:     logging.Discard(),
		PresetDir:  env.presetDir,
		LayoutDir:  env.layoutDir,
		Author:     "tester",
		Vocabulary: config.DefaultActions,
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Cleanup(m.Cleanup)

	env.model = &m
	return env
}

// writePreset saves a preset with the given action/key pairs and returns its path
func (e *testEnv) writePreset(t *testing.T, name string, pairs ...string) string {
	t.Helper()
	p := types.NewPreset(name, "tester")
	for i := 0; i+1 < len(pairs); i += 2 {
		p.AddBinding(pairs[i], pairs[i+1])
	}
	path, err := preset.Save(p, e.presetDir)
	if err != nil {
		t.Fatalf("Failed to save preset: %v", err)
	}
	return path
}

// press sends key presses to the model
func (e *testEnv) press(keys ...string) {
	for _, k := range keys {
		e.model.Update(keyMsg(k))
	}
}

// typeText sends each rune as a key press
func (e *testEnv) typeText(s string) {
	for _, r := range s {
		e.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// keyMsg builds the tea.KeyMsg whose String() is k
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	case "f4":
		return tea.KeyMsg{Type: tea.KeyF4}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// AssertError verifies that an error occurred
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("Expected error but got nil")
	}
}
