package tui

import "sync"

// pickerItem is one choice in a picker
type pickerItem struct {
	label string
	value string
	hint  string
}

// PickerState holds a list of choices and the highlighted index
type PickerState struct {
	mu sync.RWMutex

	title string
	items []pickerItem
	index int
}

// NewPickerState creates a picker, highlighting the item whose value is selected
func NewPickerState(title string, items []pickerItem, selected string) *PickerState {
	s := &PickerState{title: title, items: items}
	for i, it := range items {
		if it.value == selected {
			s.index = i
			break
		}
	}
	return s
}

// Title returns the picker title
func (s *PickerState) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Items returns the choices
func (s *PickerState) Items() []pickerItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Index returns the highlighted index
func (s *PickerState) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Move shifts the highlight, wrapping around
func (s *PickerState) Move(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if n == 0 {
		return
	}
	s.index = ((s.index+step)%n + n) % n
}

// SetIndex highlights an item, ignoring out-of-range indexes
func (s *PickerState) SetIndex(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.index = i
	return true
}

// Selected returns the highlighted item
func (s *PickerState) Selected() (pickerItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return pickerItem{}, false
	}
	return s.items[s.index], true
}
