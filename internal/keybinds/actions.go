package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal    Context = "global"    // Available everywhere
	ContextRecording Context = "recording" // Main recording screen
	ContextPrompt    Context = "prompt"    // Metadata forms and subject prompt
	ContextPicker    Context = "picker"    // Preset and container pickers
	ContextEditor    Context = "editor"    // Preset editor
	ContextCapture   Context = "capture"   // Shortcut capture in the editor
	ContextViewer    Context = "viewer"    // Log file viewer and help
	ContextConfirm   Context = "confirm"   // Blocking notices
)

const (
	// Global actions
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Session control
	ActionQuit          Action = "quit"           // Quit application
	ActionStartSession  Action = "start_session"  // Start the timer and open a scan
	ActionStopSession   Action = "stop_session"   // Stop the timer and close the scan
	ActionToggleBinding Action = "toggle_binding" // Enable/disable the selected shortcut
	ActionToggleSubject Action = "toggle_subject" // Enable/disable subject id capture

	// Panels and layout
	ActionToggleSettings Action = "toggle_settings" // Show/hide settings panel
	ActionToggleLog      Action = "toggle_log"      // Show/hide log panel
	ActionSwapPanels     Action = "swap_panels"     // Move settings panel left/right
	ActionSaveLayout     Action = "save_layout"     // Save layout for the current preset
	ActionLoadLayout     Action = "load_layout"     // Reload layout for the current preset

	// Presets, containers, logs
	ActionNewPreset     Action = "new_preset"     // Open the editor with an empty preset
	ActionEditPreset    Action = "edit_preset"    // Open the editor with the loaded preset
	ActionLoadPreset    Action = "load_preset"    // Pick a preset from the preset directory
	ActionOpenContainer Action = "open_container" // Pick or type a container path
	ActionShowLogFile   Action = "show_log_file"  // View this run's log file
	ActionCopyLog       Action = "copy_log"       // Copy the event log view to the clipboard
	ActionOpenHelp      Action = "open_help"      // Show help

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"    // Move up one item
	ActionNavigateDown Action = "navigate_down"  // Move down one item
	ActionPageUp       Action = "page_up"        // Move up one page
	ActionPageDown     Action = "page_down"      // Move down one page
	ActionGoToTop      Action = "go_to_top"      // Go to top
	ActionGoToBottom   Action = "go_to_bottom"   // Go to bottom
	ActionNextField    Action = "next_field"     // Next form field
	ActionPrevField    Action = "prev_field"     // Previous form field
	ActionSelect       Action = "select"         // Choose the highlighted item

	// Modal actions
	ActionSubmit     Action = "submit"      // Confirm a form or dialog
	ActionCancel     Action = "cancel"      // Dismiss a form or dialog
	ActionCloseModal Action = "close_modal" // Close current viewer

	// Preset editor actions
	ActionEditorAddRow     Action = "editor_add_row"     // Append a shortcut row
	ActionEditorDeleteRow  Action = "editor_delete_row"  // Remove the selected row
	ActionEditorCaptureKey Action = "editor_capture_key" // Record the next key as shortcut
	ActionEditorNextLabel  Action = "editor_next_label"  // Next vocabulary label
	ActionEditorPrevLabel  Action = "editor_prev_label"  // Previous vocabulary label
	ActionEditorEditLabel  Action = "editor_edit_label"  // Type a free-text label
	ActionEditorSave       Action = "editor_save"        // Save preset to disk
)

// ActionInfo contains metadata about an action
type ActionInfo struct {
	Action      Action
	Name        string
	Description string
}

// GetActionInfo returns human-readable information about an action
func GetActionInfo(action Action) ActionInfo {
	infos := map[Action]ActionInfo{
		ActionQuitForce:        {ActionQuitForce, "Force Quit", "Close the container and exit"},
		ActionQuit:             {ActionQuit, "Quit", "Close the container and exit"},
		ActionStartSession:     {ActionStartSession, "Start", "Start the timer and open a new scan"},
		ActionStopSession:      {ActionStopSession, "Stop", "Stop the timer and close the scan"},
		ActionToggleBinding:    {ActionToggleBinding, "Toggle Shortcut", "Enable or disable the selected shortcut"},
		ActionToggleSubject:    {ActionToggleSubject, "Toggle Subject", "Ask for a subject id after each event"},
		ActionToggleSettings:   {ActionToggleSettings, "Settings Panel", "Show or hide the settings panel"},
		ActionToggleLog:        {ActionToggleLog, "Log Panel", "Show or hide the event log"},
		ActionSwapPanels:       {ActionSwapPanels, "Swap Panels", "Move the settings panel to the other side"},
		ActionSaveLayout:       {ActionSaveLayout, "Save Layout", "Save the layout for this preset"},
		ActionLoadLayout:       {ActionLoadLayout, "Load Layout", "Restore the saved layout for this preset"},
		ActionNewPreset:        {ActionNewPreset, "New Preset", "Create a new shortcut preset"},
		ActionEditPreset:       {ActionEditPreset, "Modify Preset", "Edit the loaded preset"},
		ActionLoadPreset:       {ActionLoadPreset, "Load Preset", "Load a preset from the preset directory"},
		ActionOpenContainer:    {ActionOpenContainer, "Open Container", "Open or create a data container"},
		ActionShowLogFile:      {ActionShowLogFile, "Show Log", "Show this run's log file"},
		ActionCopyLog:          {ActionCopyLog, "Copy Log", "Copy the event log to the clipboard"},
		ActionOpenHelp:         {ActionOpenHelp, "Help", "Show key bindings"},
		ActionEditorAddRow:     {ActionEditorAddRow, "Add Row", "Append a shortcut row"},
		ActionEditorDeleteRow:  {ActionEditorDeleteRow, "Delete Row", "Remove the selected row"},
		ActionEditorCaptureKey: {ActionEditorCaptureKey, "Set Shortcut", "Press a key to bind it"},
		ActionEditorNextLabel:  {ActionEditorNextLabel, "Next Label", "Cycle to the next action label"},
		ActionEditorPrevLabel:  {ActionEditorPrevLabel, "Previous Label", "Cycle to the previous action label"},
		ActionEditorEditLabel:  {ActionEditorEditLabel, "Edit Label", "Type a custom action label"},
		ActionEditorSave:       {ActionEditorSave, "Save", "Save the preset"},
	}

	if info, ok := infos[action]; ok {
		return info
	}

	return ActionInfo{action, string(action), "Unknown"}
}
