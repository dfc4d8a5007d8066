package keybinds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryMatchFallsBackToGlobal(t *testing.T) {
	r := NewDefaultRegistry()

	if action, ok := r.Match(ContextRecording, "ctrl+r"); !ok || action != ActionStartSession {
		t.Errorf("Expected start_session, got %q (ok=%v)", action, ok)
	}
	if action, ok := r.Match(ContextEditor, "ctrl+c"); !ok || action != ActionQuitForce {
		t.Errorf("Expected global quit_force, got %q (ok=%v)", action, ok)
	}
	if _, ok := r.Match(ContextRecording, "e"); ok {
		t.Error("Expected plain letters to be free on the recording screen")
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewRegistry()
	r.RegisterMultiple(ContextPicker, []string{"k", "up"}, ActionNavigateUp)

	if got := r.GetBindingString(ContextPicker, ActionNavigateUp); got != "k, up" {
		t.Errorf("Expected 'k, up', got %q", got)
	}
	if got := r.GetBindingString(ContextPicker, ActionSelect); got != "unbound" {
		t.Errorf("Expected 'unbound', got %q", got)
	}
}

func TestApplyConfigReplacesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	content := `{"version":"1.0","recording":{"start_session":"f5, ctrl+r"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}

	if action, ok := r.Match(ContextRecording, "f5"); !ok || action != ActionStartSession {
		t.Errorf("Expected f5 to start a session, got %q", action)
	}
	if keys := r.GetBinding(ContextRecording, ActionStartSession); len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %v", keys)
	}
}

func TestApplyConfigRejectsInvalidKey(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := &Config{Recording: map[string]string{"quit": "hyper+q"}}
	if err := ApplyConfig(r, cfg); err == nil {
		t.Error("Expected error for invalid key")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	r, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}
	if !r.HasBinding(ContextRecording, "ctrl+q") {
		t.Error("Expected default bindings")
	}
}

func TestVocabulary(t *testing.T) {
	v := NewVocabulary([]string{"Eat", "Landed", "Attack", "Eat", " "})
	if v.Len() != 3 {
		t.Fatalf("Expected 3 labels, got %d", v.Len())
	}

	if got := v.Next("Attack", 1); got != "Eat" {
		t.Errorf("Expected wrap to Eat, got %s", got)
	}
	if got := v.Next("Eat", -1); got != "Attack" {
		t.Errorf("Expected wrap to Attack, got %s", got)
	}
	if got := v.Next("Custom", 1); got != "Eat" {
		t.Errorf("Expected first label for unknown current, got %s", got)
	}

	suggestions := v.Suggest("att")
	if len(suggestions) == 0 || suggestions[0] != "Attack" {
		t.Errorf("Expected Attack first, got %v", suggestions)
	}
}
