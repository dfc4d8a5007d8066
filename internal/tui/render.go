package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/lifecycle"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleTimer = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 2)
)

// renderMain renders the recording screen: settings panel, timer, event log and status bar
func (m *Model) renderMain() string {
	if m.width == 0 {
		return ""
	}

	bodyHeight := m.height - 1 // Leave 1 line for status bar
	settingsWidth := 0
	if m.layout.ShowSettings {
		settingsWidth = max(36, m.width*35/100)
		if m.width < 80 {
			settingsWidth = m.width / 2
		}
	}
	centerWidth := m.width - settingsWidth

	timerHeight := 5
	logHeight := 0
	if m.layout.ShowLog {
		logHeight = bodyHeight - timerHeight - 2
		if m.layout.LogHeight > 0 && m.layout.LogHeight < logHeight {
			logHeight = m.layout.LogHeight
		}
	} else {
		timerHeight = bodyHeight - 2
	}

	timerBorder := colorGray
	if m.mgr.Recording() {
		timerBorder = colorGreen
	}
	center := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(timerBorder).
		Width(centerWidth - 2).
		Height(timerHeight).
		Render(m.renderTimer())

	if m.layout.ShowLog {
		logBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Width(centerWidth - 2).
			Height(max(1, logHeight-2)).
			Render(m.renderLog(centerWidth-4, max(1, logHeight-2)))
		center = lipgloss.JoinVertical(lipgloss.Left, center, logBox)
	}

	mainView := center
	if m.layout.ShowSettings {
		settingsBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Width(settingsWidth - 2).
			Height(bodyHeight - 2).
			Render(m.renderSettings(settingsWidth-4, bodyHeight-2))

		if m.layout.SettingsSide == "right" {
			mainView = lipgloss.JoinHorizontal(lipgloss.Top, center, settingsBox)
		} else {
			mainView = lipgloss.JoinHorizontal(lipgloss.Top, settingsBox, center)
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		mainView,
		m.renderStatusBar(),
	)
}

// renderTimer renders the elapsed time and the session state
func (m *Model) renderTimer() string {
	elapsed := m.mgr.Stopwatch().Elapsed()
	minutes := int(elapsed) / 60
	seconds := elapsed - float64(minutes*60)
	clock := fmt.Sprintf("%02d:%04.1f", minutes, seconds)

	var stateLine string
	switch m.mgr.State() {
	case lifecycle.StateSessionOpen:
		stateLine = styleSuccess.Render("● REC " + m.mgr.ScanName())
	case lifecycle.StateSessionClosed:
		stateLine = styleWarning.Render("■ " + m.mgr.ScanName() + " done")
	default:
		stateLine = styleSubtle.Render(m.mgr.State().String())
	}

	return styleTimer.Render(styleTitle.Render(clock) + "   " + stateLine)
}

// renderLog renders the event log, newest first
func (m *Model) renderLog(width, height int) string {
	lines := []string{styleTitle.Render("Log")}
	events := m.mgr.Recorder().Lines()
	if len(events) == 0 {
		lines = append(lines, styleSubtle.Render("No events"))
	}
	for _, line := range events {
		if len(lines) >= height {
			break
		}
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

// renderSettings renders the shortcut list and the recording settings
func (m *Model) renderSettings(width, height int) string {
	var lines []string

	title := "Shortcuts"
	if m.mgr.Preset() != nil {
		title = fmt.Sprintf("Shortcuts: %s", m.presetName())
	}
	lines = append(lines, styleTitle.Render(title), "")

	bindings := m.mgr.Dispatcher().Bindings()
	if len(bindings) == 0 {
		lines = append(lines, styleSubtle.Render("No preset loaded"))
		lines = append(lines, styleSubtle.Render(fmt.Sprintf("%s load | %s new", m.controlKey(keybinds.ActionLoadPreset), m.controlKey(keybinds.ActionNewPreset))))
	}

	listHeight := max(1, height-10)
	offset := 0
	if m.selected >= listHeight {
		offset = m.selected - listHeight + 1
	}
	for i := offset; i < len(bindings) && i < offset+listHeight; i++ {
		b := bindings[i]
		check := "[x]"
		if !b.Enabled {
			check = "[ ]"
		}
		key := b.Key
		if key == "" {
			key = "-"
		}
		line := truncate(fmt.Sprintf("%s %-8s %s", check, key, b.Action), width)
		switch {
		case i == m.selected:
			line = styleSelected.Render(line)
		case !b.Enabled:
			line = styleSubtle.Render(line)
		}
		lines = append(lines, line)
	}

	opts := m.mgr.Recorder().Options()
	subject := "no"
	if opts.SaveSubjectID {
		subject = "yes"
	}
	policy := opts.MissingSubject
	if policy == "" {
		policy = config.SubjectPolicyDrop
	}

	lines = append(lines, "", styleTitle.Render("Settings"))
	lines = append(lines, fmt.Sprintf("Save bee number:    %s", subject))
	lines = append(lines, fmt.Sprintf("Missing bee number: %s", policy))
	container := "-"
	if path := m.mgr.ContainerPath(); path != "" {
		container = filepath.Base(path)
	}
	lines = append(lines, truncate("Container: "+container, width))
	if name := m.mgr.ScanName(); name != "" {
		lines = append(lines, "Scan:      "+name)
	}

	return strings.Join(lines, "\n")
}

// renderStatusBar renders the bottom status line
func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf("%s | %s", strings.ToUpper(m.mgr.State().String()), m.presetLabel())

	right := ""
	if m.errorMsg != "" {
		right = styleError.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		right = styleSuccess.Render(m.statusMsg)
	} else {
		right = styleSubtle.Render(fmt.Sprintf("%s start | %s stop | %s help | %s quit",
			m.controlKey(keybinds.ActionStartSession),
			m.controlKey(keybinds.ActionStopSession),
			m.controlKey(keybinds.ActionOpenHelp),
			m.controlKey(keybinds.ActionQuit)))
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

func (m *Model) presetLabel() string {
	if name := m.presetName(); name != "" {
		return name
	}
	return "no preset"
}

// renderNotice renders a blocking notice
func (m *Model) renderNotice() string {
	content := styleWarning.Render(m.notice) + "\n\n" + styleSubtle.Render("Press enter to continue")
	return m.renderModal("Notice", content, min(m.width-ModalWidthMarginNarrow, 70), 9)
}

// renderForm renders the active text form
func (m *Model) renderForm() string {
	width := min(m.width-ModalWidthMarginNarrow, 80)
	lines := m.form.Lines(width - ViewportPaddingHorizontal)

	footer := "enter confirm | tab next field | esc cancel"
	if m.mode == ModeSubjectPrompt {
		footer = "enter record | esc drop"
		if m.mgr.Recorder().Options().MissingSubject == config.SubjectPolicyReject {
			footer = "enter record | esc reject"
		}
	}
	if m.errorMsg != "" {
		lines = append(lines, "", styleError.Render(m.errorMsg))
	}
	lines = append(lines, "", styleSubtle.Render(footer))

	return m.renderModal(m.form.Title(), strings.Join(lines, "\n"), width, len(lines)+ModalOverheadMinimal)
}

// renderPicker renders the preset or container picker
func (m *Model) renderPicker() string {
	var lines []string
	for i, it := range m.picker.Items() {
		line := fmt.Sprintf("%d. %s", i+1, it.label)
		if i >= 9 {
			line = "   " + it.label
		}
		if it.hint != "" {
			line += "  " + styleSubtle.Render(it.hint)
		}
		if i == m.picker.Index() {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	if m.errorMsg != "" {
		lines = append(lines, "", styleError.Render(m.errorMsg))
	}
	lines = append(lines, "", styleSubtle.Render("↑/↓ navigate | enter select | 1-9 quick select | esc cancel"))

	width := min(m.width-ModalWidthMarginNarrow, 90)
	return m.renderModal(m.picker.Title(), strings.Join(lines, "\n"), width, min(m.height-ModalHeightMargin, len(lines)+ModalOverheadMinimal))
}

// renderEditor renders the preset editor with the vocabulary beside it
func (m *Model) renderEditor() string {
	p := m.editor.Preset()
	title := "New preset"
	if p.Filename != "" {
		title = "Preset: " + p.Filename
	}
	if m.editor.Dirty() {
		title += " *"
	}

	var rows []string
	for i, b := range m.editor.Rows() {
		key := b.Key
		if key == "" {
			key = "-"
		}
		if i == m.editor.Index() && m.mode == ModeCapture {
			key = "<press a key>"
		}
		line := fmt.Sprintf("%-14s %s", key, b.Action)
		if i == m.editor.Index() {
			line = styleSelected.Render(line)
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, styleSubtle.Render("No shortcuts. Press "+m.keybinds.GetBindingString(keybinds.ContextEditor, keybinds.ActionEditorAddRow)+" to add one"))
	}
	if m.form != nil && (m.mode == ModeEditorLabel || m.mode == ModeEditorFilename) {
		rows = append(rows, "")
		rows = append(rows, m.form.Lines(40)...)
	}

	pattern := ""
	if m.form != nil && m.mode == ModeEditorLabel {
		pattern = m.form.Value("label")
	}
	var suggestions []string
	for _, s := range m.editor.Suggest(pattern) {
		suggestions = append(suggestions, "• "+s)
	}

	footer := "↑/↓ row | ←/→ label | enter set key | ctrl+l type label | ctrl+a add | ctrl+d delete | ctrl+s save | esc close"
	if m.errorMsg != "" {
		footer = styleError.Render(m.errorMsg) + "\n" + footer
	} else if m.statusMsg != "" {
		footer = styleSuccess.Render(m.statusMsg) + "\n" + footer
	}

	return renderSplitPaneModal(SplitPaneConfig{
		ModalWidth:       m.width - ModalWidthMargin,
		ModalHeight:      m.height - ModalHeightMargin,
		IsSplitView:      true,
		LeftTitle:        title,
		LeftContent:      strings.Join(rows, "\n"),
		LeftBorderColor:  colorCyan,
		LeftIsFocused:    true,
		RightTitle:       "Actions",
		RightContent:     strings.Join(suggestions, "\n"),
		RightBorderColor: colorGray,
		Footer:           footer,
		LeftWidthRatio:   0.65,
	}, m.width, m.height)
}

// renderViewer renders the help or log file viewer
func (m *Model) renderViewer() string {
	footer := styleSubtle.Render(fmt.Sprintf("%3.f%% | ↑/↓ scroll | pgup/pgdown page | esc close", m.viewer.ScrollPercent()*100))
	content := m.viewer.View() + "\n\n" + footer
	return m.renderModal(m.viewerTitle, content, m.width-ModalWidthMargin, m.height-ModalHeightMargin)
}

// helpText lists the application controls and the live shortcuts
func (m *Model) helpText() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Controls") + "\n")
	for _, binding := range m.keybinds.ListBindings(keybinds.ContextRecording) {
		info := keybinds.GetActionInfo(binding.Action)
		fmt.Fprintf(&b, "  %-10s %-16s %s\n", binding.Key, info.Name, styleSubtle.Render(info.Description))
	}

	b.WriteString("\n" + styleTitle.Render("Shortcuts") + "\n")
	rows := shortcutHelp(m.mgr.Dispatcher().Bindings())
	if len(rows) == 0 {
		b.WriteString(styleSubtle.Render("  No live shortcuts") + "\n")
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-10s %s\n", row[0], row[1])
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
