/*
Package tui implements the terminal recording screen for beeactions.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: Maintains all application state
  - Update: Processes messages and returns commands
  - View: Renders the current state to the terminal

The recording itself lives in lifecycle.Manager. The model only turns key
presses into manager calls and renders what the manager reports.

# Key Components

  - model.go: Core state, modes and messages
  - init.go: Construction and the program entry point
  - keys.go: Keyboard input handling and keybind routing
  - actions.go: Session control, presets, containers, layout, clipboard
  - render.go: The recording screen and modal rendering

# State Management

Modal input is held by small state objects:
  - FormState: Dataset and scan metadata, subject id, container path, labels
  - PickerState: Preset and recent container pickers
  - EditorState: The preset being built or modified

# Modal System

Starting a session opens the dataset form (first scan of a container only)
and the scan form. Cancelling either one abandons the start and writes
nothing. A shortcut pressed while the scan records subject ids opens the
subject prompt; the elapsed time is captured when the key is pressed, not
when the prompt is answered.

# Keybind System

Application controls come from keybinds.Registry and use modified or
function keys. Every other key on the recording screen is offered to the
preset shortcuts through the manager's dispatcher.

# Example Usage

	err := tui.Run(ctx, tui.Config{
		Manager:   mgr,
		State:     stateMgr,
		Keybinds:  keybinds.NewDefaultRegistry(),
		PresetDir: config.PresetDir,
		LayoutDir: config.LayoutDir,
	})
*/
package tui
