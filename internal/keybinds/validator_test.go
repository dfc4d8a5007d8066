package keybinds

import (
	"strings"
	"testing"

	"github.com/studiowebux/beeactions/internal/types"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator(nil)

	if v == nil {
		t.Fatal("NewValidator returned nil")
	}

	if !v.reservedKeys["ctrl+c"] {
		t.Error("Expected ctrl+c to be a reserved key")
	}

	if v.controls == nil {
		t.Error("Expected default control registry")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name: "conflict error",
			err: ValidationError{
				Type:    "conflict",
				Context: ContextRecording,
				Key:     "e",
				Message: "bound to both 'Eat' and 'Exit'",
			},
			expected: "[conflict] e in context 'recording': bound to both 'Eat' and 'Exit'",
		},
		{
			name: "invalid error",
			err: ValidationError{
				Type:    "invalid",
				Context: ContextGlobal,
				Key:     "",
				Message: "empty key",
			},
			expected: "[invalid]  in context 'global': empty key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidationResult_String(t *testing.T) {
	tests := []struct {
		name     string
		result   *ValidationResult
		contains []string
	}{
		{
			name:     "no issues",
			result:   &ValidationResult{},
			contains: []string{"No issues found"},
		},
		{
			name: "both errors and warnings",
			result: &ValidationResult{
				Errors: []ValidationError{
					{Type: "conflict", Context: ContextRecording, Key: "e", Message: "duplicate"},
				},
				Warnings: []ValidationError{
					{Type: "warning", Context: ContextRecording, Key: "", Message: "no shortcut"},
				},
			},
			contains: []string{"Errors (1)", "Warnings (1)", "conflict", "warning"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("String() output missing %q, got:\n%s", want, got)
				}
			}
		})
	}
}

func binding(id, action, key string, enabled bool) types.Binding {
	return types.Binding{ID: id, Action: action, Key: key, Enabled: enabled}
}

func TestValidateBindings(t *testing.T) {
	tests := []struct {
		name         string
		bindings     []types.Binding
		wantErrors   int
		wantWarnings int
	}{
		{
			name: "valid preset",
			bindings: []types.Binding{
				binding("1", "Eat", "e", true),
				binding("2", "Landed", "l", true),
				binding("3", "Attack", "a", true),
			},
		},
		{
			name: "duplicate enabled key",
			bindings: []types.Binding{
				binding("1", "Eat", "e", true),
				binding("2", "Exit", "E", true),
				binding("3", "Enter", "shift+e", true),
			},
			wantErrors: 2,
		},
		{
			name: "duplicate key with one disabled",
			bindings: []types.Binding{
				binding("1", "Eat", "e", true),
				binding("2", "Exit", "e", false),
			},
			wantWarnings: 1,
		},
		{
			name: "reserved control key",
			bindings: []types.Binding{
				binding("1", "Eat", "ctrl+r", true),
			},
			wantErrors: 1,
		},
		{
			name: "empty label",
			bindings: []types.Binding{
				binding("1", "  ", "e", true),
			},
			wantErrors: 1,
		},
		{
			name: "unbound shortcut",
			bindings: []types.Binding{
				binding("1", "Eat", "", true),
			},
			wantWarnings: 1,
		},
		{
			name: "duplicate id",
			bindings: []types.Binding{
				binding("1", "Eat", "e", true),
				binding("1", "Landed", "l", true),
			},
			wantErrors: 1,
		},
		{
			name: "unknown key name",
			bindings: []types.Binding{
				binding("1", "Eat", "hyper+e", true),
			},
			wantErrors: 1,
		},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateBindings(tt.bindings)
			if len(result.Errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d:\n%s", tt.wantErrors, len(result.Errors), result)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("Expected %d warnings, got %d:\n%s", tt.wantWarnings, len(result.Warnings), result)
			}
		})
	}
}

func TestValidateRegistryWarnsOnReservedRebind(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextRecording, "ctrl+c", ActionStartSession)

	result := NewValidator(nil).ValidateRegistry(r)
	if !result.HasWarnings() {
		t.Error("Expected warnings for rebinding ctrl+c")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"e", false},
		{"E", false},
		{"ctrl+a", false},
		{"Ctrl+A", false},
		{"alt+shift+x", false},
		{"F5", false},
		{"space", false},
		{" ", false},
		{"+", false},
		{"", true},
		{"ctrl", true},
		{"ctrl+", true},
		{"meta+a", true},
		{"banana", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e", "e"},
		{"E", "E"},
		{"shift+e", "E"},
		{"Shift+Tab", "shift+tab"},
		{"shift+ctrl+A", "ctrl+shift+a"},
		{"Ctrl+A", "ctrl+a"},
		{"alt+X", "alt+x"},
		{"G", "G"},
		{" ", "space"},
		{"F1", "f1"},
		{"ctrl++", "ctrl++"},
		{"  alt+x  ", "alt+x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortcutKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e", "e"},
		{"E", "e"},
		{"shift+e", "e"},
		{"Shift+E", "e"},
		{"Ctrl+A", "ctrl+a"},
		{"ctrl+shift+A", "ctrl+a"},
		{"alt+E", "alt+e"},
		{"shift+tab", "shift+tab"},
		{"!", "!"},
		{"7", "7"},
		{"ctrl++", "ctrl++"},
		{" ", "space"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ShortcutKey(tt.in); got != tt.want {
				t.Errorf("ShortcutKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
