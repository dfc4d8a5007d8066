package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/types"
)

// handleKeyPress routes keyboard input by mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return m.quit()
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalKeys(msg)
	case ModeNotice:
		return m.handleNoticeKeys(msg)
	case ModeDatasetForm, ModeScanForm, ModeSubjectPrompt, ModeContainerInput, ModeEditorLabel, ModeEditorFilename:
		return m.handleFormKeys(msg)
	case ModePresetPicker, ModeContainerPicker:
		return m.handlePickerKeys(msg)
	case ModeEditor:
		return m.handleEditorKeys(msg)
	case ModeCapture:
		return m.handleCaptureKeys(msg)
	case ModeViewer:
		return m.handleViewerKeys(msg)
	}
	return nil
}

// handleNormalKeys handles the recording screen
// Application controls win; every other key goes to the preset shortcuts.
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextRecording, msg.String())
	if !ok {
		cmd, _ := m.recordKey(msg.String())
		return cmd
	}

	switch action {
	case keybinds.ActionQuit:
		return m.quit()
	case keybinds.ActionStartSession:
		return m.startSession()
	case keybinds.ActionStopSession:
		return m.stopSession()
	case keybinds.ActionToggleBinding:
		return m.toggleSelectedBinding()
	case keybinds.ActionToggleSubject:
		return m.toggleSubject()
	case keybinds.ActionNavigateUp:
		m.moveSelection(-1)
	case keybinds.ActionNavigateDown:
		m.moveSelection(1)
	case keybinds.ActionToggleSettings:
		return m.changeLayout(func() { m.layout.ShowSettings = !m.layout.ShowSettings })
	case keybinds.ActionToggleLog:
		return m.changeLayout(func() { m.layout.ShowLog = !m.layout.ShowLog })
	case keybinds.ActionSwapPanels:
		return m.changeLayout(func() {
			if m.layout.SettingsSide == "right" {
				m.layout.SettingsSide = "left"
			} else {
				m.layout.SettingsSide = "right"
			}
		})
	case keybinds.ActionSaveLayout:
		return m.saveLayout()
	case keybinds.ActionLoadLayout:
		return m.loadLayout()
	case keybinds.ActionNewPreset:
		return m.openEditor(true)
	case keybinds.ActionEditPreset:
		return m.openEditor(false)
	case keybinds.ActionLoadPreset:
		return m.openPresetPicker()
	case keybinds.ActionOpenContainer:
		return m.openContainerPicker()
	case keybinds.ActionShowLogFile:
		return m.showLogFile()
	case keybinds.ActionCopyLog:
		return m.copyLog()
	case keybinds.ActionOpenHelp:
		return m.showHelp()
	}
	return nil
}

// handleNoticeKeys dismisses a blocking notice
func (m *Model) handleNoticeKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String()); ok && action == keybinds.ActionCloseModal {
		m.notice = ""
		m.mode = m.prevMode
		if m.mode == ModeNotice {
			m.mode = ModeNormal
		}
	}
	return nil
}

// handleFormKeys handles every text form
func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextPrompt, msg.String())
	if !ok {
		return m.form.Update(msg)
	}

	switch action {
	case keybinds.ActionNextField:
		m.form.NextField()
		return nil
	case keybinds.ActionPrevField:
		m.form.PrevField()
		return nil
	case keybinds.ActionSubmit:
		return m.submitForm()
	case keybinds.ActionCancel:
		return m.cancelForm()
	}
	return m.form.Update(msg)
}

func (m *Model) submitForm() tea.Cmd {
	switch m.mode {
	case ModeDatasetForm:
		return m.submitDataset()
	case ModeScanForm:
		return m.submitScan()
	case ModeSubjectPrompt:
		return m.submitSubject()
	case ModeContainerInput:
		path := m.form.Value("path")
		m.form = nil
		m.mode = ModeNormal
		return m.openContainer(path)
	case ModeEditorLabel:
		return m.submitLabel()
	case ModeEditorFilename:
		return m.submitFilename()
	}
	return nil
}

func (m *Model) cancelForm() tea.Cmd {
	switch m.mode {
	case ModeDatasetForm, ModeScanForm:
		return m.cancelStart()
	case ModeSubjectPrompt:
		return m.dismissSubject()
	case ModeEditorLabel, ModeEditorFilename:
		m.form = nil
		m.mode = ModeEditor
		return nil
	}
	m.form = nil
	m.mode = ModeNormal
	return nil
}

// handlePickerKeys handles the preset and container pickers
func (m *Model) handlePickerKeys(msg tea.KeyMsg) tea.Cmd {
	// Quick select by number (1-9)
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if m.picker.SetIndex(int(s[0] - '1')) {
			return m.selectPicked()
		}
		return nil
	}

	action, ok := m.keybinds.Match(keybinds.ContextPicker, msg.String())
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionNavigateUp:
		m.picker.Move(-1)
	case keybinds.ActionNavigateDown:
		m.picker.Move(1)
	case keybinds.ActionSelect:
		return m.selectPicked()
	case keybinds.ActionCancel:
		m.picker = nil
		m.mode = ModeNormal
	}
	return nil
}

// handleEditorKeys handles the preset editor rows
func (m *Model) handleEditorKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextEditor, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionNavigateUp, keybinds.ActionPrevField:
		m.editor.Move(-1)
	case keybinds.ActionNavigateDown, keybinds.ActionNextField:
		m.editor.Move(1)
	case keybinds.ActionEditorAddRow:
		m.editor.AddRow()
	case keybinds.ActionEditorDeleteRow:
		m.editor.DeleteRow()
	case keybinds.ActionEditorNextLabel:
		m.editor.CycleLabel(1)
	case keybinds.ActionEditorPrevLabel:
		m.editor.CycleLabel(-1)
	case keybinds.ActionEditorCaptureKey:
		if _, ok := m.editor.Selected(); !ok {
			return m.setErrorMessage("Add a row first")
		}
		m.mode = ModeCapture
		return m.setStatusMessage("Press the key to bind, esc to cancel")
	case keybinds.ActionEditorEditLabel:
		b, ok := m.editor.Selected()
		if !ok {
			return m.setErrorMessage("Add a row first")
		}
		m.form = NewFormState("Action label").AddField("label", "Label:", b.Action)
		m.mode = ModeEditorLabel
	case keybinds.ActionEditorSave:
		return m.saveEditor()
	case keybinds.ActionCancel:
		dirty := m.editor.Dirty()
		m.editor = nil
		m.mode = ModeNormal
		if dirty {
			return m.setStatusMessage("Preset changes discarded")
		}
	}
	return nil
}

// handleCaptureKeys binds the next key press to the selected row
func (m *Model) handleCaptureKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextCapture, msg.String()); ok && action == keybinds.ActionCancel {
		m.mode = ModeEditor
		return nil
	}
	return m.captureKey(msg.String())
}

// handleViewerKeys scrolls the log file and help viewer
func (m *Model) handleViewerKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextViewer, msg.String())
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionNavigateUp:
		m.viewer.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		m.viewer.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.viewer.PageUp()
	case keybinds.ActionPageDown:
		m.viewer.PageDown()
	case keybinds.ActionGoToTop:
		m.viewer.GotoTop()
	case keybinds.ActionGoToBottom:
		m.viewer.GotoBottom()
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
		m.viewerTitle = ""
	}
	return nil
}

// shortcutHelp lists the live preset shortcuts
func shortcutHelp(bindings []types.Binding) [][2]string {
	rows := make([][2]string, 0, len(bindings))
	for _, b := range bindings {
		if b.Enabled && b.Key != "" {
			rows = append(rows, [2]string{b.Key, b.Action})
		}
	}
	return rows
}
