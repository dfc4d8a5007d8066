/*
Package keybinds provides keyboard binding management for the recorder.

# Overview

Two kinds of bindings live here. Control bindings (start, stop, quit,
panels, presets) are context-aware and customizable through keybinds.json.
Preset shortcuts map operator-defined action labels to keys and are routed
by the Dispatcher.

# Key Concepts

Context Hierarchy:
  - Global: Bindings available everywhere
  - Recording: Main recording screen
  - Prompt, Picker, Editor, Capture, Viewer, Confirm: modal contexts

Keys in a specific context override the global binding.

Shortcut Identity:
  - Every preset shortcut carries a stable ID
  - Enable/disable is keyed by ID, never by list position
  - One trigger per shortcut; toggling flips it rather than re-registering

# Components

Registry (registry.go):
  - Central storage for control keybindings
  - Context-aware key matching

Dispatcher (dispatcher.go):
  - Routes key presses to enabled preset shortcuts
  - Idempotent SetEnabled, single swappable handler
  - Lookup resolves a press without delivering it
  - Shortcut letters are case-insensitive (ShortcutKey)

Validator (validator.go):
  - Detects duplicate shortcut keys among enabled shortcuts
  - Rejects shortcuts that collide with control keys
  - Warns about shadowing and unbound shortcuts

Vocabulary (vocabulary.go):
  - Suggested action labels with fuzzy matching

# Configuration File Format

Control keys are stored in JSON, action name to comma-separated keys:

	{
	  "version": "1.0",
	  "recording": {
	    "start_session": "ctrl+r,f5",
	    "stop_session": "ctrl+x,f6"
	  }
	}
*/
package keybinds
