package keybinds

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/studiowebux/beeactions/internal/types"
)

// ErrUnknownBinding is returned when a binding ID is not loaded
var ErrUnknownBinding = errors.New("unknown shortcut binding")

// Handler receives the binding whose key was pressed
type Handler func(types.Binding)

type dispatchEntry struct {
	binding types.Binding
	key     key.Binding
}

// Dispatcher routes key presses to preset shortcuts
// Each binding is identified by its stable ID. There is one trigger per binding,
// and enabling or disabling it only flips that trigger, so repeated toggles never
// stack deliveries.
type Dispatcher struct {
	entries map[string]*dispatchEntry
	order   []string
	handler Handler
}

// NewDispatcher creates an empty dispatcher delivering to handler
func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{
		entries: make(map[string]*dispatchEntry),
		handler: handler,
	}
}

// SetHandler replaces the delivery target
func (d *Dispatcher) SetHandler(handler Handler) {
	d.handler = handler
}

// Load unbinds everything, then binds the given shortcuts in order
// Duplicate keys among enabled shortcuts are rejected and leave the dispatcher empty
func (d *Dispatcher) Load(bindings []types.Binding) error {
	d.entries = make(map[string]*dispatchEntry, len(bindings))
	d.order = d.order[:0]

	live := make(map[string]string, len(bindings))
	for _, b := range bindings {
		if _, dup := d.entries[b.ID]; dup || b.ID == "" {
			d.reset()
			return fmt.Errorf("invalid shortcut id %q for '%s'", b.ID, b.Action)
		}

		b.Key = ShortcutKey(b.Key)
		if b.Enabled && b.Key != "" {
			if other, dup := live[b.Key]; dup {
				d.reset()
				return &ValidationError{
					Type: "conflict", Context: ContextRecording, Key: b.Key,
					Message: fmt.Sprintf("bound to both '%s' and '%s'", other, b.Action),
				}
			}
			live[b.Key] = b.Action
		}

		kb := key.NewBinding(
			key.WithKeys(b.Key),
			key.WithHelp(b.Key, b.Action),
		)
		kb.SetEnabled(b.Enabled && b.Key != "")

		d.entries[b.ID] = &dispatchEntry{binding: b, key: kb}
		d.order = append(d.order, b.ID)
	}

	return nil
}

func (d *Dispatcher) reset() {
	d.entries = make(map[string]*dispatchEntry)
	d.order = nil
}

// SetEnabled enables or disables a shortcut by ID
// Calling it with the current state is a no-op
func (d *Dispatcher) SetEnabled(id string, enabled bool) error {
	entry, ok := d.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	if entry.binding.Enabled == enabled {
		return nil
	}

	if enabled && entry.binding.Key != "" {
		for _, otherID := range d.order {
			other := d.entries[otherID]
			if otherID != id && other.binding.Enabled && other.binding.Key == entry.binding.Key {
				return &ValidationError{
					Type: "conflict", Context: ContextRecording, Key: entry.binding.Key,
					Message: fmt.Sprintf("already bound to '%s'", other.binding.Action),
				}
			}
		}
	}

	entry.binding.Enabled = enabled
	entry.key.SetEnabled(enabled && entry.binding.Key != "")
	return nil
}

// Toggle flips the enabled state of a shortcut and returns the new state
func (d *Dispatcher) Toggle(id string) (bool, error) {
	entry, ok := d.entries[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	next := !entry.binding.Enabled
	if err := d.SetEnabled(id, next); err != nil {
		return entry.binding.Enabled, err
	}
	return next, nil
}

// Lookup returns the enabled shortcut bound to a key press without delivering it
func (d *Dispatcher) Lookup(k string) (types.Binding, bool) {
	press := keyPress(ShortcutKey(k))
	for _, id := range d.order {
		entry := d.entries[id]
		if key.Matches(press, entry.key) {
			return entry.binding, true
		}
	}
	return types.Binding{}, false
}

// Dispatch delivers a key press to the matching enabled shortcut
// At most one shortcut receives a given press
func (d *Dispatcher) Dispatch(k string) (types.Binding, bool) {
	b, ok := d.Lookup(k)
	if ok {
		d.Deliver(b)
	}
	return b, ok
}

// Deliver hands a shortcut returned by Lookup to the handler
func (d *Dispatcher) Deliver(b types.Binding) {
	if d.handler != nil {
		d.handler(b)
	}
}

// Bindings returns the loaded shortcuts in order, with their current enabled state
func (d *Dispatcher) Bindings() []types.Binding {
	out := make([]types.Binding, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.entries[id].binding)
	}
	return out
}

// Live reports whether a shortcut currently receives key presses
func (d *Dispatcher) Live(id string) bool {
	entry, ok := d.entries[id]
	return ok && entry.key.Enabled()
}

// HelpBindings returns the enabled shortcuts as bubbles key bindings
func (d *Dispatcher) HelpBindings() []key.Binding {
	var out []key.Binding
	for _, id := range d.order {
		if entry := d.entries[id]; entry.key.Enabled() {
			out = append(out, entry.key)
		}
	}
	return out
}
