package keybinds

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var modifierOrder = []string{"ctrl", "alt", "shift", "super"}

var namedKeys = map[string]bool{
	"enter": true, "tab": true, "space": true, "esc": true, "backspace": true,
	"delete": true, "insert": true, "home": true, "end": true,
	"pgup": true, "pgdown": true, "up": true, "down": true, "left": true, "right": true,
}

func init() {
	for i := 1; i <= 20; i++ {
		namedKeys[fmt.Sprintf("f%d", i)] = true
	}
}

// NormalizeKey converts a key sequence to its canonical form
// Modifiers are lowercased and ordered, named keys lowercased, and shift+letter folded to the uppercase letter.
// A letter combined with ctrl or alt is lowercased, matching what the terminal reports for the chord.
func NormalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.TrimSpace(key)
	if key == "" || key == "+" {
		return key
	}

	parts := strings.Split(key, "+")
	base := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	if base == "" && len(parts) >= 3 && parts[len(parts)-2] == "" {
		// "ctrl++" binds the plus key
		base = "+"
		mods = parts[:len(parts)-2]
	}

	present := make(map[string]bool, len(mods))
	for _, m := range mods {
		present[strings.ToLower(strings.TrimSpace(m))] = true
	}

	if utf8.RuneCountInString(base) > 1 || present["ctrl"] || present["alt"] {
		base = strings.ToLower(base)
	}

	if present["shift"] && len(present) == 1 && utf8.RuneCountInString(base) == 1 {
		r, _ := utf8.DecodeRuneInString(base)
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}

	var ordered []string
	for _, m := range modifierOrder {
		if present[m] {
			ordered = append(ordered, m)
			delete(present, m)
		}
	}
	for m := range present {
		// unknown modifiers are kept so ValidateKey can report them
		ordered = append(ordered, m)
	}

	return strings.Join(append(ordered, base), "+")
}

// ShortcutKey converts a preset shortcut key to its canonical form
// Letters are case-insensitive: "E", "shift+e" and "e" all bind the plain e key,
// so a shortcut fires whether or not shift or caps lock is held.
func ShortcutKey(key string) string {
	key = NormalizeKey(key)
	parts := strings.Split(key, "+")
	base := parts[len(parts)-1]
	if utf8.RuneCountInString(base) != 1 {
		return key
	}
	r, _ := utf8.DecodeRuneInString(base)
	if !unicode.IsLetter(r) {
		return key
	}

	mods := make([]string, 0, len(parts)-1)
	for _, m := range parts[:len(parts)-1] {
		if m != "shift" {
			mods = append(mods, m)
		}
	}
	return strings.Join(append(mods, string(unicode.ToLower(r))), "+")
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" && key != " " {
		return fmt.Errorf("key cannot be empty")
	}

	normalized := NormalizeKey(key)
	if normalized == "+" {
		return nil
	}

	parts := strings.Split(normalized, "+")
	base := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	if base == "" {
		if len(parts) < 3 || parts[len(parts)-2] != "" {
			return fmt.Errorf("modifier without key: %s", key)
		}
		base = "+"
		mods = parts[:len(parts)-2]
	}

	for _, m := range mods {
		known := false
		for _, valid := range modifierOrder {
			if m == valid {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown modifier %q in %s", m, key)
		}
	}

	for _, valid := range modifierOrder {
		if base == valid {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	if utf8.RuneCountInString(base) == 1 {
		r, _ := utf8.DecodeRuneInString(base)
		if !unicode.IsPrint(r) {
			return fmt.Errorf("unprintable key %q", key)
		}
		return nil
	}

	if !namedKeys[base] {
		return fmt.Errorf("unknown key name %q", base)
	}

	return nil
}

// keyPress adapts a key string to the fmt.Stringer expected by bubbles/key
type keyPress string

func (k keyPress) String() string {
	return string(k)
}
