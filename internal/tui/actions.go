package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/state"
	"github.com/studiowebux/beeactions/internal/store"
)

// presetName returns the name layouts are keyed by
func (m *Model) presetName() string {
	if path := m.mgr.PresetPath(); path != "" {
		return preset.BaseName(path)
	}
	if p := m.mgr.Preset(); p != nil {
		return p.Filename
	}
	return ""
}

// loadPresetFile loads a preset, binds it and restores its layout
func (m *Model) loadPresetFile(path string) tea.Cmd {
	p, err := preset.Load(path)
	if err != nil {
		m.logger.Error("failed to load preset", "path", path, "error", err)
		return m.setErrorMessage(fmt.Sprintf("Failed to load preset: %v", err))
	}
	if err := m.mgr.LoadPreset(p, path); err != nil {
		return m.reportError(err)
	}

	for _, b := range p.Actions {
		m.vocab.Add(b.Action)
	}
	m.selected = 0

	if m.stateMgr != nil {
		if err := m.stateMgr.SetLastPreset(path); err != nil {
			m.logger.Warn("failed to remember preset", "error", err)
		}
	}

	layout, _, err := state.LoadLayout(m.layoutDir, m.presetName())
	if err != nil {
		m.logger.Warn("failed to load layout", "preset", m.presetName(), "error", err)
	}
	m.layout = layout

	return m.setStatusMessage(fmt.Sprintf("Preset loaded: %s (%d shortcuts)", m.presetName(), len(p.Actions)))
}

// reportError maps lifecycle errors to a notice or a status bar error
func (m *Model) reportError(err error) tea.Cmd {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lifecycle.ErrNoPreset):
		m.showNotice("You have to load a shortcut preset before starting")
		return nil
	case errors.Is(err, lifecycle.ErrSessionOpen):
		return m.setErrorMessage("Stop recording first")
	case errors.Is(err, lifecycle.ErrNoSession):
		return m.setErrorMessage("Not recording")
	case errors.Is(err, store.ErrLocked):
		return m.setErrorMessage("Container is used by another process")
	case errors.Is(err, recorder.ErrSubjectRequired):
		return m.setErrorMessage(fmt.Sprintf("Event rejected: %v", err))
	default:
		return m.setErrorMessage(err.Error())
	}
}

// startSession prepares a start and opens the metadata forms
func (m *Model) startSession() tea.Cmd {
	draft, err := m.mgr.PrepareStart(m.ctx, lifecycle.Provenance{Author: m.sessionAuthor()})
	if err != nil {
		return m.reportError(err)
	}
	m.draft = draft
	m.rememberContainer()

	if draft.NeedsDataset {
		m.openDatasetForm()
	} else {
		m.openScanForm()
	}
	return nil
}

// sessionAuthor is the preset author, or the configured author when the preset has none
func (m *Model) sessionAuthor() string {
	if p := m.mgr.Preset(); p != nil && p.Author != "" {
		return p.Author
	}
	return m.author
}

func (m *Model) openDatasetForm() {
	d := m.draft.Dataset
	m.form = NewFormState("Dataset info").
		AddField("author", "Author:", d.Author).
		AddField("sample", "Sample:", d.Sample).
		AddField("experiment_type", "Experiment type:", d.ExperimentType).
		AddField("description", "Description:", d.Description)
	m.mode = ModeDatasetForm
}

func (m *Model) openScanForm() {
	s := m.draft.Scan
	m.form = NewFormState(fmt.Sprintf("Scan info: %s (%s)", s.ScanName, s.ScanType)).
		AddField("author", "Author:", s.Author).
		AddField("description", "Description:", s.Description)
	m.mode = ModeScanForm
}

// submitDataset stores the dataset form in the draft and moves to the scan form
func (m *Model) submitDataset() tea.Cmd {
	m.draft.Dataset.Author = m.form.Value("author")
	m.draft.Dataset.Sample = m.form.Value("sample")
	m.draft.Dataset.ExperimentType = m.form.Value("experiment_type")
	m.draft.Dataset.Description = m.form.Value("description")
	m.openScanForm()
	m.form.SetValue("author", m.draft.Dataset.Author)
	return nil
}

// submitScan commits the start
func (m *Model) submitScan() tea.Cmd {
	m.draft.Scan.Author = m.form.Value("author")
	m.draft.Scan.Description = m.form.Value("description")

	draft := m.draft
	m.draft = nil
	m.form = nil
	m.mode = ModeNormal

	if err := m.mgr.CommitStart(m.ctx, draft); err != nil {
		return m.reportError(err)
	}
	return m.setStatusMessage(fmt.Sprintf("Recording %s", m.mgr.ScanName()))
}

// cancelStart abandons the draft without writing anything
func (m *Model) cancelStart() tea.Cmd {
	m.mgr.CancelStart(m.draft)
	m.draft = nil
	m.form = nil
	m.mode = ModeNormal
	return m.setStatusMessage("Start cancelled")
}

// stopSession closes the scan
func (m *Model) stopSession() tea.Cmd {
	if err := m.mgr.Stop(m.ctx); err != nil {
		return m.reportError(err)
	}
	return m.setStatusMessage(fmt.Sprintf("%s stopped after %.1f s", m.mgr.ScanName(), m.mgr.Stopwatch().Elapsed()))
}

// recordKey sends a key press to the preset shortcuts
// It reports whether a shortcut took the key.
func (m *Model) recordKey(key string) (tea.Cmd, bool) {
	p, ok, err := m.mgr.Trigger(key)
	if err != nil {
		return m.reportError(err), true
	}
	if !ok {
		if _, bound := m.mgr.Dispatcher().Lookup(key); bound {
			return m.setStatusMessage("Not recording. Press " + m.controlKey(keybinds.ActionStartSession) + " to start"), true
		}
		return nil, false
	}

	if p.NeedsSubject {
		m.pending = p
		m.form = NewFormState(fmt.Sprintf("%s at %.1f s", p.Action, p.Elapsed)).
			AddField("subject", "Bee number:", "")
		m.mode = ModeSubjectPrompt
		return nil, true
	}

	if _, err := m.mgr.Recorder().Commit(m.ctx, p, nil); err != nil {
		return m.reportError(err), true
	}
	return nil, true
}

// submitSubject records the pending event with the typed subject id
func (m *Model) submitSubject() tea.Cmd {
	raw := m.form.Value("subject")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Bee number must be an integer, got %q", raw))
	}

	p := m.pending
	m.pending = recorder.Pending{}
	m.form = nil
	m.mode = ModeNormal

	if _, err := m.mgr.Recorder().Commit(m.ctx, p, &id); err != nil {
		return m.reportError(err)
	}
	return nil
}

// dismissSubject applies the missing subject policy to the pending event
func (m *Model) dismissSubject() tea.Cmd {
	p := m.pending
	m.pending = recorder.Pending{}
	m.form = nil
	m.mode = ModeNormal

	if err := m.mgr.Recorder().Abandon(p); err != nil {
		return m.reportError(err)
	}
	return m.setStatusMessage(fmt.Sprintf("Dropped %s: no bee number", p.Action))
}

// toggleSelectedBinding enables or disables the highlighted shortcut
func (m *Model) toggleSelectedBinding() tea.Cmd {
	bindings := m.mgr.Dispatcher().Bindings()
	if len(bindings) == 0 {
		return m.reportError(lifecycle.ErrNoPreset)
	}
	b := bindings[clamp(m.selected, 0, len(bindings)-1)]
	enabled, err := m.mgr.ToggleBinding(b.ID)
	if err != nil {
		return m.reportError(err)
	}
	if enabled {
		return m.setStatusMessage(fmt.Sprintf("Enabled %s (%s)", b.Action, b.Key))
	}
	return m.setStatusMessage(fmt.Sprintf("Disabled %s (%s)", b.Action, b.Key))
}

// toggleSubject flips subject id capture for the next scans
func (m *Model) toggleSubject() tea.Cmd {
	opts := m.mgr.Recorder().Options()
	opts.SaveSubjectID = !opts.SaveSubjectID
	if err := m.mgr.SetRecorderOptions(opts); err != nil {
		return m.reportError(err)
	}
	if opts.SaveSubjectID {
		return m.setStatusMessage("Bee numbers will be recorded")
	}
	return m.setStatusMessage("Bee numbers will not be recorded")
}

func (m *Model) moveSelection(step int) {
	n := len(m.mgr.Dispatcher().Bindings())
	m.selected = clamp(m.selected+step, 0, n-1)
}

// changeLayout applies a layout change and saves it for the preset
func (m *Model) changeLayout(fn func()) tea.Cmd {
	fn()
	if m.presetName() == "" {
		return nil
	}
	if err := state.SaveLayout(m.layoutDir, m.presetName(), m.layout); err != nil {
		m.logger.Warn("failed to save layout", "error", err)
		return m.setErrorMessage(fmt.Sprintf("Failed to save layout: %v", err))
	}
	return nil
}

func (m *Model) saveLayout() tea.Cmd {
	name := m.presetName()
	if name == "" {
		return m.setErrorMessage("Load a preset to save its layout")
	}
	if err := state.SaveLayout(m.layoutDir, name, m.layout); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to save layout: %v", err))
	}
	return m.setStatusMessage("Layout saved for " + name)
}

func (m *Model) loadLayout() tea.Cmd {
	name := m.presetName()
	if name == "" {
		return m.setErrorMessage("Load a preset to restore its layout")
	}
	layout, found, err := state.LoadLayout(m.layoutDir, name)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to load layout: %v", err))
	}
	m.layout = layout
	if !found {
		return m.setStatusMessage("No saved layout, using defaults")
	}
	return m.setStatusMessage("Layout restored for " + name)
}

// openPresetPicker lists the preset directory
func (m *Model) openPresetPicker() tea.Cmd {
	if !m.mgr.Editable() {
		return m.reportError(lifecycle.ErrSessionOpen)
	}
	entries, err := preset.List(m.presetDir)
	if err != nil {
		return m.setErrorMessage(err.Error())
	}
	if len(entries) == 0 {
		return m.setErrorMessage("No presets in " + m.presetDir + ". Press " + m.controlKey(keybinds.ActionNewPreset) + " to create one")
	}

	items := make([]pickerItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, pickerItem{label: e.Name, value: e.Path, hint: e.Format})
	}
	m.picker = NewPickerState("Load preset", items, m.mgr.PresetPath())
	m.mode = ModePresetPicker
	return nil
}

// openContainerPicker offers a new default container, recent containers or a typed path
func (m *Model) openContainerPicker() tea.Cmd {
	if !m.mgr.Editable() {
		return m.reportError(lifecycle.ErrSessionOpen)
	}
	items := []pickerItem{{label: "New container for today", value: ""}}
	if m.stateMgr != nil {
		for _, path := range m.stateMgr.RecentContainers() {
			items = append(items, pickerItem{label: filepath.Base(path), value: path, hint: filepath.Dir(path)})
		}
	}
	items = append(items, pickerItem{label: "Other path...", value: otherPathValue})
	m.picker = NewPickerState("Open container", items, m.mgr.ContainerPath())
	m.mode = ModeContainerPicker
	return nil
}

const otherPathValue = "\x00other"

// selectPicked acts on the highlighted picker item
func (m *Model) selectPicked() tea.Cmd {
	item, ok := m.picker.Selected()
	mode := m.mode
	m.picker = nil
	m.mode = ModeNormal
	if !ok {
		return nil
	}

	switch mode {
	case ModePresetPicker:
		return m.loadPresetFile(item.value)
	case ModeContainerPicker:
		if item.value == otherPathValue {
			m.form = NewFormState("Open container").AddField("path", "Path:", m.mgr.ContainerPath())
			m.mode = ModeContainerInput
			return nil
		}
		return m.openContainer(item.value)
	}
	return nil
}

// openContainer opens a container and records it as recent
func (m *Model) openContainer(path string) tea.Cmd {
	if path != "" && filepath.Ext(path) == "" {
		path += store.Extension
	}
	if err := m.mgr.OpenContainer(m.ctx, path); err != nil {
		return m.reportError(err)
	}
	m.rememberContainer()
	return m.setStatusMessage("Opened " + m.mgr.ContainerPath())
}

func (m *Model) rememberContainer() {
	if m.stateMgr == nil || m.mgr.ContainerPath() == "" {
		return
	}
	if err := m.stateMgr.AddRecentContainer(m.mgr.ContainerPath()); err != nil {
		m.logger.Warn("failed to remember container", "error", err)
	}
}

// openEditor starts the preset editor on a copy of p, or on a new preset when p is nil
func (m *Model) openEditor(newPreset bool) tea.Cmd {
	if !m.mgr.Editable() {
		return m.reportError(lifecycle.ErrSessionOpen)
	}
	if newPreset {
		m.editor = NewEditorState(nil, "", m.author, m.vocab)
	} else {
		if m.mgr.Preset() == nil {
			return m.setErrorMessage("No preset loaded")
		}
		m.editor = NewEditorState(m.mgr.Preset(), m.mgr.PresetPath(), m.author, m.vocab)
	}
	m.mode = ModeEditor
	return nil
}

// saveEditor validates, writes and loads the edited preset
func (m *Model) saveEditor() tea.Cmd {
	p := m.editor.Preset()
	if p.Filename == "" {
		m.form = NewFormState("Preset name").AddField("filename", "Filename:", "")
		m.mode = ModeEditorFilename
		return nil
	}

	result := preset.Validate(p, keybinds.NewValidator(m.keybinds))
	if err := result.Err(); err != nil {
		return m.setErrorMessage(err.Error())
	}

	path := m.editor.Path()
	var err error
	if path == "" {
		path, err = preset.Save(p, m.presetDir)
	} else {
		err = preset.SaveAs(p, path)
	}
	if err != nil {
		m.logger.Error("failed to save preset", "preset", p.Filename, "error", err)
		return m.setErrorMessage(fmt.Sprintf("Failed to save preset: %v", err))
	}
	m.editor.Saved(path)
	m.logger.Info("preset saved", "preset", p.Filename, "path", path)

	m.editor = nil
	m.mode = ModeNormal
	return m.loadPresetFile(path)
}

// submitFilename names a new preset and saves it
func (m *Model) submitFilename() tea.Cmd {
	name := m.form.Value("filename")
	if err := preset.ValidateFilename(name); err != nil {
		return m.setErrorMessage(err.Error())
	}
	if _, err := os.Stat(filepath.Join(m.presetDir, name+".xml")); err == nil {
		return m.setErrorMessage(fmt.Sprintf("Preset %s already exists", name))
	}
	m.editor.SetFilename(name)
	m.form = nil
	m.mode = ModeEditor
	return m.saveEditor()
}

// submitLabel applies a typed label to the selected editor row
func (m *Model) submitLabel() tea.Cmd {
	label := m.form.Value("label")
	if err := m.editor.SetLabel(label); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.form = nil
	m.mode = ModeEditor
	return nil
}

// captureKey binds the pressed key to the selected editor row
func (m *Model) captureKey(key string) tea.Cmd {
	normalized := keybinds.ShortcutKey(key)
	if m.keybinds.HasBinding(keybinds.ContextRecording, normalized) || m.keybinds.HasBinding(keybinds.ContextGlobal, normalized) {
		action, _ := m.keybinds.Match(keybinds.ContextRecording, normalized)
		return m.setErrorMessage(fmt.Sprintf("'%s' is reserved for %s", normalized, keybinds.GetActionInfo(action).Name))
	}
	if err := m.editor.SetKey(normalized); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.mode = ModeEditor
	return m.setStatusMessage(fmt.Sprintf("Bound '%s'", normalized))
}

// copyLog copies the event log view to the clipboard
func (m *Model) copyLog() tea.Cmd {
	lines := m.mgr.Recorder().Lines()
	return func() tea.Msg {
		if len(lines) == 0 {
			return errorMsg("Log is empty")
		}
		if err := clipboard.WriteAll(strings.Join(lines, "\n")); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		return statusMsg(fmt.Sprintf("Log copied to clipboard (%d lines)", len(lines)))
	}
}

// showLogFile opens this run's log file in the viewer
func (m *Model) showLogFile() tea.Cmd {
	if m.logFile == "" {
		return m.setErrorMessage("No log file for this run")
	}
	data, err := os.ReadFile(m.logFile)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to read log file: %v", err))
	}
	m.openViewer(filepath.Base(m.logFile), string(data))
	m.viewer.GotoBottom()
	return nil
}

// showHelp opens the key reference in the viewer
func (m *Model) showHelp() tea.Cmd {
	m.openViewer("Help", m.helpText())
	return nil
}

func (m *Model) openViewer(title, content string) {
	m.updateViewport()
	m.viewerTitle = title
	m.viewer.SetContent(content)
	m.viewer.GotoTop()
	m.prevMode = m.mode
	m.mode = ModeViewer
}

// controlKey returns the key bound to a recording-screen action
func (m *Model) controlKey(action keybinds.Action) string {
	return m.keybinds.GetBindingString(keybinds.ContextRecording, action)
}

// quit closes everything and exits
func (m *Model) quit() tea.Cmd {
	m.Cleanup()
	return tea.Quit
}
