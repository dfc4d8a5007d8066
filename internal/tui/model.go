package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/state"
	"github.com/studiowebux/beeactions/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeNotice
	ModeDatasetForm
	ModeScanForm
	ModeSubjectPrompt
	ModePresetPicker
	ModeContainerPicker
	ModeContainerInput
	ModeEditor
	ModeCapture
	ModeEditorLabel
	ModeEditorFilename
	ModeViewer
)

// Config holds everything the TUI needs from the command layer
type Config struct {
	Manager  *lifecycle.Manager
	State    *state.Manager
	Keybinds *keybinds.Registry
	Logger   *slog.Logger

	// LogFile is this run's log file, shown by the log viewer
	LogFile   string
	PresetDir string
	LayoutDir string
	Author    string
	// Vocabulary seeds the action labels offered by the preset editor
	Vocabulary []string
	// MessageTimeout clears status messages after the given duration; zero keeps them
	MessageTimeout time.Duration
}

// Model is the bubbletea model of the recording screen and its modals
type Model struct {
	ctx      context.Context
	mgr      *lifecycle.Manager
	stateMgr *state.Manager
	keybinds *keybinds.Registry
	logger   *slog.Logger
	vocab    *keybinds.Vocabulary

	logFile        string
	presetDir      string
	layoutDir      string
	author         string
	messageTimeout time.Duration

	mode     Mode
	prevMode Mode
	width    int
	height   int

	layout   types.Layout
	selected int

	form    *FormState
	draft   *lifecycle.StartDraft
	pending recorder.Pending
	picker  *PickerState
	editor  *EditorState

	viewer      viewport.Model
	viewerTitle string
	notice      string

	statusMsg     string
	fullStatusMsg string
	errorMsg      string
	fullErrorMsg  string

	closed bool
}

// Messages
type tickMsg time.Time

type clearStatusMsg struct{}

type clearErrorMsg struct{}

type statusMsg string

type errorMsg string

const tickInterval = 100 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the elapsed-time refresh
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case tickMsg:
		cmd = tick()

	case statusMsg:
		cmd = m.setStatusMessage(string(msg))

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}

	return m, cmd
}

// View renders the current mode
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeNotice:
		return m.renderNotice()
	case ModeDatasetForm, ModeScanForm, ModeSubjectPrompt, ModeContainerInput:
		return m.renderForm()
	case ModePresetPicker, ModeContainerPicker:
		return m.renderPicker()
	case ModeEditor, ModeCapture, ModeEditorLabel, ModeEditorFilename:
		return m.renderEditor()
	case ModeViewer:
		return m.renderViewer()
	default:
		return m.renderMain()
	}
}

// Mode returns the current mode
func (m *Model) Mode() Mode { return m.mode }

// Layout returns the current screen layout
func (m *Model) Layout() types.Layout { return m.layout }

// setStatusMessage sets a status message and clears any error
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.fullErrorMsg = ""
	m.fullStatusMsg = msg
	// Truncate for footer display (max 100 chars)
	if len(msg) > 100 {
		m.statusMsg = msg[:97] + "..."
	} else {
		m.statusMsg = msg
	}

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})
	}
	return nil
}

// setErrorMessage sets an error message shown in the status bar
func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	if len(msg) > 100 {
		m.errorMsg = msg[:97] + "..."
	} else {
		m.errorMsg = msg
	}

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{}
		})
	}
	return nil
}

// showNotice opens a blocking notice that must be acknowledged
func (m *Model) showNotice(msg string) {
	m.notice = msg
	m.prevMode = m.mode
	m.mode = ModeNotice
}

// updateViewport resizes the viewer to the window
func (m *Model) updateViewport() {
	m.viewer.Width = max(20, m.width-ModalWidthMargin-ViewportPaddingHorizontal)
	m.viewer.Height = max(5, m.height-ContentOffsetLarge)
}

// Cleanup closes the session and the container and persists UI state
// It is safe to call more than once.
func (m *Model) Cleanup() {
	if m.closed {
		return
	}
	m.closed = true

	if err := m.mgr.Close(m.ctx); err != nil {
		m.logger.Error("failed to close container", "error", err)
	}
	if m.stateMgr != nil {
		if err := m.stateMgr.Save(); err != nil {
			m.logger.Warn("failed to save state", "error", err)
		}
	}
}
