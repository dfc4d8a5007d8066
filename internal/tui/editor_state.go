package tui

import (
	"errors"
	"fmt"
	"sync"

	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/types"
)

// EditorState is the preset being built or modified in the editor
// It works on a copy; the loaded preset is untouched until the editor saves.
type EditorState struct {
	mu sync.RWMutex

	preset *types.Preset
	path   string
	isNew  bool
	index  int
	dirty  bool
	vocab  *keybinds.Vocabulary
}

// NewEditorState opens p for editing
// A nil preset starts an empty one; path is empty for presets never saved.
func NewEditorState(p *types.Preset, path string, author string, vocab *keybinds.Vocabulary) *EditorState {
	isNew := p == nil
	if isNew {
		p = types.NewPreset("", author)
	} else {
		p = p.Clone()
	}
	if vocab == nil {
		vocab = keybinds.NewVocabulary(nil)
	}
	for _, b := range p.Actions {
		vocab.Add(b.Action)
	}
	return &EditorState{preset: p, path: path, isNew: isNew, vocab: vocab}
}

// Preset returns the edited preset
func (s *EditorState) Preset() *types.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preset
}

// Path returns the file the preset will be saved to, or "" for a new preset
func (s *EditorState) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// IsNew reports whether the preset has never been saved
func (s *EditorState) IsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNew
}

// Dirty reports whether the preset changed since it was opened
func (s *EditorState) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Rows returns the shortcut rows
func (s *EditorState) Rows() []types.Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Binding, len(s.preset.Actions))
	copy(out, s.preset.Actions)
	return out
}

// Index returns the selected row
func (s *EditorState) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Selected returns the selected row
func (s *EditorState) Selected() (types.Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.preset.Actions) {
		return types.Binding{}, false
	}
	return s.preset.Actions[s.index], true
}

// Move shifts the selection, clamped to the rows
func (s *EditorState) Move(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = clamp(s.index+step, 0, len(s.preset.Actions)-1)
}

// AddRow appends a row labelled with the first vocabulary entry and selects it
func (s *EditorState) AddRow() types.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := s.vocab.Next("", 1)
	b := s.preset.AddBinding(label, "")
	s.index = len(s.preset.Actions) - 1
	s.dirty = true
	return b
}

// DeleteRow removes the selected row
func (s *EditorState) DeleteRow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.preset.Actions) {
		return false
	}
	s.preset.RemoveBinding(s.preset.Actions[s.index].ID)
	s.index = clamp(s.index, 0, len(s.preset.Actions)-1)
	s.dirty = true
	return true
}

// CycleLabel replaces the selected label with the next vocabulary entry
func (s *EditorState) CycleLabel(step int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.preset.Actions) {
		return ""
	}
	label := s.vocab.Next(s.preset.Actions[s.index].Action, step)
	s.preset.Actions[s.index].Action = label
	s.dirty = true
	return label
}

// SetLabel sets a free-text label on the selected row and adds it to the vocabulary
func (s *EditorState) SetLabel(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if label == "" {
		return errors.New("action label cannot be empty")
	}
	if s.index < 0 || s.index >= len(s.preset.Actions) {
		return errors.New("no shortcut row selected")
	}
	s.vocab.Add(label)
	s.preset.Actions[s.index].Action = label
	s.dirty = true
	return nil
}

// SetKey binds a key to the selected row
func (s *EditorState) SetKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.preset.Actions) {
		return errors.New("no shortcut row selected")
	}
	key = keybinds.ShortcutKey(key)
	if err := keybinds.ValidateKey(key); err != nil {
		return err
	}
	for i, b := range s.preset.Actions {
		if i != s.index && b.Key == key {
			return fmt.Errorf("key '%s' is already bound to '%s'", key, b.Action)
		}
	}
	s.preset.Actions[s.index].Key = key
	s.dirty = true
	return nil
}

// SetFilename names a new preset
func (s *EditorState) SetFilename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset.Filename = name
	s.dirty = true
}

// Saved records the file the preset was written to
func (s *EditorState) Saved(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.isNew = false
	s.dirty = false
}

// Suggest returns vocabulary labels matching pattern
func (s *EditorState) Suggest(pattern string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.Suggest(pattern)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
