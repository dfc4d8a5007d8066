package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

// FormState encapsulates the text inputs of a modal form
type FormState struct {
	mu sync.RWMutex

	title  string
	fields []formField
	focus  int
}

// NewFormState creates an empty form
func NewFormState(title string) *FormState {
	return &FormState{title: title}
}

// Title returns the form title
func (s *FormState) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// AddField appends a text field with an initial value
// The first field added receives focus.
func (s *FormState) AddField(key, label, value string) *FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 512
	in.SetValue(value)
	in.CursorEnd()
	if len(s.fields) == 0 {
		in.Focus()
	}
	s.fields = append(s.fields, formField{key: key, label: label, input: in})
	return s
}

// Len returns the number of fields
func (s *FormState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// Focus returns the index of the focused field
func (s *FormState) Focus() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// NextField moves focus forward, wrapping around
func (s *FormState) NextField() {
	s.moveFocus(1)
}

// PrevField moves focus backward, wrapping around
func (s *FormState) PrevField() {
	s.moveFocus(-1)
}

func (s *FormState) moveFocus(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.fields)
	if n == 0 {
		return
	}
	s.fields[s.focus].input.Blur()
	s.focus = ((s.focus+step)%n + n) % n
	s.fields[s.focus].input.Focus()
}

// Value returns the trimmed value of a field, or "" when the key is unknown
func (s *FormState) Value(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.fields {
		if f.key == key {
			return strings.TrimSpace(f.input.Value())
		}
	}
	return ""
}

// SetValue replaces the value of a field
func (s *FormState) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fields {
		if s.fields[i].key == key {
			s.fields[i].input.SetValue(value)
			s.fields[i].input.CursorEnd()
			return
		}
	}
}

// FocusedKey returns the key of the focused field
func (s *FormState) FocusedKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.fields) == 0 {
		return ""
	}
	return s.fields[s.focus].key
}

// Update forwards a message to the focused input
func (s *FormState) Update(msg tea.Msg) tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	s.fields[s.focus].input, cmd = s.fields[s.focus].input.Update(msg)
	return cmd
}

// Lines renders one "label value" line per field
func (s *FormState) Lines(width int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labelWidth := 0
	for _, f := range s.fields {
		labelWidth = max(labelWidth, len(f.label))
	}

	lines := make([]string, 0, len(s.fields))
	for i, f := range s.fields {
		in := f.input
		in.Width = max(10, width-labelWidth-4)
		label := f.label + strings.Repeat(" ", labelWidth-len(f.label))
		if i == s.focus {
			lines = append(lines, styleTitle.Render(label)+"  "+in.View())
		} else {
			lines = append(lines, styleSubtle.Render(label)+"  "+in.View())
		}
	}
	return lines
}
