package keybinds

import (
	"fmt"
	"strings"

	"github.com/studiowebux/beeactions/internal/types"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the first error, or nil
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &r.Errors[0]
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates control keybindings and preset shortcuts
type Validator struct {
	// reservedKeys are keys that should not be rebound
	reservedKeys map[string]bool

	// controls holds the application keys a preset shortcut may not shadow
	controls *Registry
}

// NewValidator creates a validator that checks preset shortcuts against controls
// A nil registry uses the default control bindings
func NewValidator(controls *Registry) *Validator {
	if controls == nil {
		controls = NewDefaultRegistry()
	}
	return &Validator{
		reservedKeys: map[string]bool{
			"ctrl+c": true, // Force quit should always work
		},
		controls: controls,
	}
}

// ValidateRegistry validates an entire control registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	v.checkReservedKeys(registry, result)
	v.checkShadowing(registry, result)

	return result
}

// ValidateBindings validates an ordered list of preset shortcuts
func (v *Validator) ValidateBindings(bindings []types.Binding) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	ids := make(map[string]bool, len(bindings))
	labels := make(map[string]bool, len(bindings))
	enabledKeys := make(map[string]string, len(bindings))
	allKeys := make(map[string]string, len(bindings))

	for _, b := range bindings {
		key := ShortcutKey(b.Key)

		if b.ID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Type: "invalid", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("shortcut for '%s' has no id", b.Action),
			})
		} else if ids[b.ID] {
			result.Errors = append(result.Errors, ValidationError{
				Type: "conflict", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("duplicate shortcut id %s", b.ID),
			})
		}
		ids[b.ID] = true

		if strings.TrimSpace(b.Action) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Type: "invalid", Context: ContextRecording, Key: key,
				Message: "action label cannot be empty",
			})
		} else if labels[b.Action] {
			result.Warnings = append(result.Warnings, ValidationError{
				Type: "warning", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("action '%s' appears more than once", b.Action),
			})
		}
		labels[b.Action] = true

		if key == "" {
			result.Warnings = append(result.Warnings, ValidationError{
				Type: "warning", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("action '%s' has no shortcut and cannot be triggered", b.Action),
			})
			continue
		}

		if err := ValidateKey(b.Key); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type: "invalid", Context: ContextRecording, Key: key, Message: err.Error(),
			})
			continue
		}

		if action, ok := v.controls.Match(ContextRecording, key); ok {
			result.Errors = append(result.Errors, ValidationError{
				Type: "conflict", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("reserved for %s", GetActionInfo(action).Name),
			})
			continue
		}

		if b.Enabled {
			if other, dup := enabledKeys[key]; dup {
				result.Errors = append(result.Errors, ValidationError{
					Type: "conflict", Context: ContextRecording, Key: key,
					Message: fmt.Sprintf("bound to both '%s' and '%s'", other, b.Action),
				})
			}
			enabledKeys[key] = b.Action
		} else if other, dup := allKeys[key]; dup {
			result.Warnings = append(result.Warnings, ValidationError{
				Type: "warning", Context: ContextRecording, Key: key,
				Message: fmt.Sprintf("disabled '%s' shares its key with '%s'", b.Action, other),
			})
		}
		if _, seen := allKeys[key]; !seen {
			allKeys[key] = b.Action
		}
	}

	return result
}

// checkReservedKeys checks if any reserved keys have been rebound
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for context, bindings := range registry.bindings {
		for key, action := range bindings {
			if v.reservedKeys[key] && action != ActionQuitForce {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     key,
					Message: "reserved key rebound (may cause issues)",
				})
			}
		}
	}
}

// checkShadowing checks for context-specific bindings that shadow global bindings
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	globalBindings := registry.bindings[ContextGlobal]
	if globalBindings == nil {
		return
	}

	for context, bindings := range registry.bindings {
		if context == ContextGlobal {
			continue
		}

		for key, action := range bindings {
			if globalAction, hasGlobal := globalBindings[key]; hasGlobal && action != globalAction {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     key,
					Message: fmt.Sprintf("shadows global binding (%s -> %s)", globalAction, action),
				})
			}
		}
	}
}
