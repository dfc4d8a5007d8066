package tui

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/types"
)

// New creates a new TUI model
// The last used preset is reloaded when it still exists.
func New(ctx context.Context, cfg Config) (Model, error) {
	if cfg.Manager == nil {
		return Model{}, errors.New("tui: a lifecycle manager is required")
	}
	registry := cfg.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		ctx:            ctx,
		mgr:            cfg.Manager,
		stateMgr:       cfg.State,
		keybinds:       registry,
		logger:         logger.With("component", "tui"),
		vocab:          keybinds.NewVocabulary(cfg.Vocabulary),
		logFile:        cfg.LogFile,
		presetDir:      cfg.PresetDir,
		layoutDir:      cfg.LayoutDir,
		author:         cfg.Author,
		messageTimeout: cfg.MessageTimeout,
		mode:           ModeNormal,
		layout:         types.DefaultLayout(),
		viewer:         viewport.New(80, 20),
	}

	if m.stateMgr != nil {
		if last := m.stateMgr.LastPreset(); last != "" {
			if _, err := os.Stat(last); err == nil {
				m.loadPresetFile(last)
			}
		}
	}

	return m, nil
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, cfg Config) error {
	m, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
