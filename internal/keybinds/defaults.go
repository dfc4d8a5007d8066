package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
// Recording-screen controls use modified or function keys so plain keys stay free for presets
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerRecordingBindings(r)
	registerPromptBindings(r)
	registerPickerBindings(r)
	registerEditorBindings(r)
	registerCaptureBindings(r)
	registerViewerBindings(r)
	registerConfirmBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

func registerRecordingBindings(r *Registry) {
	r.Register(ContextRecording, "ctrl+q", ActionQuit)
	r.Register(ContextRecording, "ctrl+r", ActionStartSession)
	r.Register(ContextRecording, "ctrl+x", ActionStopSession)
	r.Register(ContextRecording, "ctrl+t", ActionToggleBinding)
	r.Register(ContextRecording, "ctrl+b", ActionToggleSubject)
	r.Register(ContextRecording, "up", ActionNavigateUp)
	r.Register(ContextRecording, "down", ActionNavigateDown)
	r.Register(ContextRecording, "f2", ActionToggleSettings)
	r.Register(ContextRecording, "f3", ActionToggleLog)
	r.Register(ContextRecording, "f4", ActionSwapPanels)
	r.Register(ContextRecording, "ctrl+w", ActionSaveLayout)
	r.Register(ContextRecording, "ctrl+l", ActionLoadLayout)
	r.Register(ContextRecording, "ctrl+n", ActionNewPreset)
	r.Register(ContextRecording, "ctrl+e", ActionEditPreset)
	r.Register(ContextRecording, "ctrl+p", ActionLoadPreset)
	r.Register(ContextRecording, "ctrl+o", ActionOpenContainer)
	r.Register(ContextRecording, "ctrl+g", ActionShowLogFile)
	r.Register(ContextRecording, "ctrl+y", ActionCopyLog)
	r.Register(ContextRecording, "f1", ActionOpenHelp)
}

func registerPromptBindings(r *Registry) {
	r.Register(ContextPrompt, "enter", ActionSubmit)
	r.Register(ContextPrompt, "esc", ActionCancel)
	r.RegisterMultiple(ContextPrompt, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextPrompt, []string{"shift+tab", "up"}, ActionPrevField)
}

func registerPickerBindings(r *Registry) {
	r.RegisterMultiple(ContextPicker, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextPicker, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextPicker, "enter", ActionSelect)
	r.RegisterMultiple(ContextPicker, []string{"esc", "q"}, ActionCancel)
}

func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "up", ActionNavigateUp)
	r.Register(ContextEditor, "down", ActionNavigateDown)
	r.Register(ContextEditor, "tab", ActionNextField)
	r.Register(ContextEditor, "shift+tab", ActionPrevField)
	r.Register(ContextEditor, "ctrl+a", ActionEditorAddRow)
	r.Register(ContextEditor, "ctrl+d", ActionEditorDeleteRow)
	r.Register(ContextEditor, "enter", ActionEditorCaptureKey)
	r.Register(ContextEditor, "right", ActionEditorNextLabel)
	r.Register(ContextEditor, "left", ActionEditorPrevLabel)
	r.Register(ContextEditor, "ctrl+l", ActionEditorEditLabel)
	r.Register(ContextEditor, "ctrl+s", ActionEditorSave)
	r.Register(ContextEditor, "esc", ActionCancel)
}

func registerCaptureBindings(r *Registry) {
	r.Register(ContextCapture, "esc", ActionCancel)
}

func registerViewerBindings(r *Registry) {
	r.RegisterMultiple(ContextViewer, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextViewer, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextViewer, "pgup", ActionPageUp)
	r.Register(ContextViewer, "pgdown", ActionPageDown)
	r.RegisterMultiple(ContextViewer, []string{"home", "g"}, ActionGoToTop)
	r.RegisterMultiple(ContextViewer, []string{"end", "G"}, ActionGoToBottom)
	r.RegisterMultiple(ContextViewer, []string{"esc", "q"}, ActionCloseModal)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"enter", "esc"}, ActionCloseModal)
}
