package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Pane title styles
var (
	styleTitleFocused = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	styleTitleUnfocused = lipgloss.NewStyle().
				Foreground(colorGray)
)

// SplitPaneConfig defines the configuration for a generic split-pane modal
type SplitPaneConfig struct {
	// Modal dimensions
	ModalWidth  int
	ModalHeight int

	// Split view control
	IsSplitView bool // If false, shows only left pane at full width

	// Left pane
	LeftTitle       string
	LeftContent     string
	LeftBorderColor lipgloss.AdaptiveColor
	LeftIsFocused   bool

	// Right pane (only used if IsSplitView is true)
	RightTitle       string
	RightContent     string
	RightBorderColor lipgloss.AdaptiveColor
	RightIsFocused   bool

	// Footer
	Footer string

	// Width ratio for split view (0.0 to 1.0, default 0.5 for equal split)
	// Left pane gets this ratio, right pane gets the remainder
	LeftWidthRatio float64
}

// renderSplitPaneModal renders a generic split-pane modal layout
func renderSplitPaneModal(cfg SplitPaneConfig, totalWidth, totalHeight int) string {
	paneHeight := max(1, cfg.ModalHeight-ModalOverheadMinimal) // Account for borders and footer

	var mainView string

	if cfg.IsSplitView {
		ratio := cfg.LeftWidthRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = SplitViewEqual
		}

		leftWidth := int(float64(cfg.ModalWidth-SplitPaneBorderWidth) * ratio)
		rightWidth := cfg.ModalWidth - leftWidth - SplitPaneBorderWidth

		leftTitleStyle := styleTitleUnfocused
		rightTitleStyle := styleTitleUnfocused
		if cfg.LeftIsFocused {
			leftTitleStyle = styleTitleFocused
		}
		if cfg.RightIsFocused {
			rightTitleStyle = styleTitleFocused
		}

		leftPane := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cfg.LeftBorderColor).
			Width(leftWidth).
			Height(paneHeight).
			Padding(0, 1).
			Render(leftTitleStyle.Render(cfg.LeftTitle) + "\n" + cfg.LeftContent)

		rightPane := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cfg.RightBorderColor).
			Width(rightWidth).
			Height(paneHeight).
			Padding(0, 1).
			Render(rightTitleStyle.Render(cfg.RightTitle) + "\n" + cfg.RightContent)

		mainView = lipgloss.JoinHorizontal(
			lipgloss.Top,
			leftPane,
			rightPane,
		)
	} else {
		leftTitleStyle := styleTitleFocused
		if !cfg.LeftIsFocused {
			leftTitleStyle = styleTitleUnfocused
		}

		mainView = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cfg.LeftBorderColor).
			Width(cfg.ModalWidth).
			Height(paneHeight).
			Padding(0, 1).
			Render(leftTitleStyle.Render(cfg.LeftTitle) + "\n" + cfg.LeftContent)
	}

	footer := styleSubtle.Render(cfg.Footer)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		mainView,
		"\n"+footer,
	)

	return lipgloss.Place(
		totalWidth,
		totalHeight,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// renderModal renders a centered bordered dialog
func (m *Model) renderModal(title, content string, width, height int) string {
	// For small terminals, use almost full screen
	width = min(width, m.width-ViewportBorderWidth)
	height = min(height, m.height-ModalHeightMarginSmall)
	if width < 30 && m.width >= 30 {
		width = 30
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Width(width).
		MaxHeight(height).
		Padding(0, 2).
		Render(styleTitle.Render(title) + "\n\n" + content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}
