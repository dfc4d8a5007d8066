// Package lifecycle coordinates containers, scans and the recording session.
//
// The manager moves between four states:
//
//	NoFile -> FileOpen -> SessionOpen -> SessionClosed
//
// SessionClosed accepts the same operations as FileOpen, since a container
// hosts any number of scans. Starting a session is split into PrepareStart,
// which computes the metadata to confirm, and CommitStart, which writes the
// dataset metadata, the scan group and its series in one transaction. A
// cancelled start therefore leaves nothing behind.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/paramtree"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/timer"
	"github.com/studiowebux/beeactions/internal/types"
)

var (
	// ErrNoPreset is returned when starting without a loaded preset
	ErrNoPreset = errors.New("you have to load a shortcut preset before starting")
	// ErrSessionOpen is returned for operations refused while recording
	ErrSessionOpen = errors.New("a recording session is open")
	// ErrNoContainer is returned when no container is open
	ErrNoContainer = errors.New("no container is open")
	// ErrNoSession is returned when stopping without an open session
	ErrNoSession = recorder.ErrNoSession
)

// State is the lifecycle state
type State int

const (
	StateNoFile State = iota
	StateFileOpen
	StateSessionOpen
	StateSessionClosed
)

func (s State) String() string {
	switch s {
	case StateNoFile:
		return "no file"
	case StateFileOpen:
		return "file open"
	case StateSessionOpen:
		return "recording"
	case StateSessionClosed:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StartDraft is a start waiting for the operator to confirm its metadata
type StartDraft struct {
	NeedsDataset bool
	Dataset      types.DatasetInfo
	Scan         types.ScanInfo

	container *store.Container
}

// Confirmer lets the operator edit and confirm metadata before a start
// Returning false cancels the start.
type Confirmer interface {
	ConfirmDataset(info *types.DatasetInfo) bool
	ConfirmScan(info *types.ScanInfo) bool
}

// Options configures a manager
type Options struct {
	Settings config.Settings
	Clock    timer.Clock
	Logger   *slog.Logger
	// Controls are the application keys reserved against preset shortcuts
	Controls *keybinds.Registry
}

// Manager owns the container, the stopwatch, the recorder and the shortcut dispatcher
type Manager struct {
	settings   config.Settings
	clock      timer.Clock
	logger     *slog.Logger
	validator  *keybinds.Validator
	dispatcher *keybinds.Dispatcher
	stopwatch  *timer.Stopwatch
	recorder   *recorder.Recorder

	state      State
	container  *store.Container
	preset     *types.Preset
	presetPath string
	scan       store.Group
}

// NewManager creates a manager with no container and no preset
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = timer.System
	}

	m := &Manager{
		settings:   opts.Settings,
		clock:      clock,
		logger:     logger.With("component", "lifecycle"),
		validator:  keybinds.NewValidator(opts.Controls),
		dispatcher: keybinds.NewDispatcher(nil),
		stopwatch:  timer.New(clock),
		state:      StateNoFile,
	}
	m.recorder = recorder.New(m.stopwatch.Elapsed, recorder.OptionsFromSettings(opts.Settings.Recording), logger)
	return m
}

// BindTimer rewires the stopwatch so Start opens a session and Reset closes it
func (m *Manager) BindTimer(ctx context.Context, prov func() Provenance, confirm Confirmer) {
	m.stopwatch.SetHandlers(
		func() error {
			_, err := m.Start(ctx, prov(), confirm)
			return err
		},
		func() error {
			return m.Stop(ctx)
		},
	)
}

// State returns the current lifecycle state
func (m *Manager) State() State { return m.state }

// Recording reports whether a session is open
func (m *Manager) Recording() bool { return m.state == StateSessionOpen }

// Editable reports whether presets and settings may be edited
func (m *Manager) Editable() bool { return m.state != StateSessionOpen }

// Preset returns the loaded preset, or nil
func (m *Manager) Preset() *types.Preset { return m.preset }

// PresetPath returns the file the preset was loaded from
func (m *Manager) PresetPath() string { return m.presetPath }

// Container returns the open container, or nil
func (m *Manager) Container() *store.Container { return m.container }

// ScanName returns the name of the current or last scan
func (m *Manager) ScanName() string { return m.scan.Name }

// Stopwatch returns the session stopwatch
func (m *Manager) Stopwatch() *timer.Stopwatch { return m.stopwatch }

// Recorder returns the event recorder
func (m *Manager) Recorder() *recorder.Recorder { return m.recorder }

// Dispatcher returns the shortcut dispatcher
func (m *Manager) Dispatcher() *keybinds.Dispatcher { return m.dispatcher }

// Settings returns the application settings in use
func (m *Manager) Settings() config.Settings { return m.settings }

// ContainerPath returns the path of the open container, or ""
func (m *Manager) ContainerPath() string {
	if m.container == nil {
		return ""
	}
	return m.container.Path()
}

// SettingsTree returns the recorder settings tree
func (m *Manager) SettingsTree() *paramtree.Node {
	return m.recorder.SettingsTree()
}

// SetRecorderOptions changes subject tracking for the next scans
func (m *Manager) SetRecorderOptions(opts recorder.Options) error {
	if m.Recording() {
		return ErrSessionOpen
	}
	m.recorder.SetOptions(opts)
	m.settings.Recording.SaveSubjectID = opts.SaveSubjectID
	m.settings.Recording.MissingSubject = m.recorder.Options().MissingSubject
	return nil
}

// LoadPreset validates a preset and binds its shortcuts
func (m *Manager) LoadPreset(p *types.Preset, path string) error {
	if m.Recording() {
		return ErrSessionOpen
	}
	if p == nil {
		return ErrNoPreset
	}

	p = p.Clone()
	p.EnsureIDs()
	for i := range p.Actions {
		p.Actions[i].Key = keybinds.ShortcutKey(p.Actions[i].Key)
	}

	if err := preset.Validate(p, m.validator).Err(); err != nil {
		return fmt.Errorf("invalid preset %s: %w", p.Filename, err)
	}
	if err := m.dispatcher.Load(p.Actions); err != nil {
		return fmt.Errorf("bind preset %s: %w", p.Filename, err)
	}

	m.preset = p
	m.presetPath = path
	m.logger.Info("preset loaded", "preset", p.Filename, "shortcuts", len(p.Actions), "path", path)
	return nil
}

// SetBindingEnabled enables or disables a shortcut by id
func (m *Manager) SetBindingEnabled(id string, enabled bool) error {
	if m.preset == nil {
		return ErrNoPreset
	}
	if err := m.dispatcher.SetEnabled(id, enabled); err != nil {
		return err
	}
	m.preset.SetEnabled(id, enabled)
	return nil
}

// ToggleBinding flips a shortcut and returns its new state
func (m *Manager) ToggleBinding(id string) (bool, error) {
	if m.preset == nil {
		return false, ErrNoPreset
	}
	enabled, err := m.dispatcher.Toggle(id)
	if err != nil {
		return enabled, err
	}
	m.preset.SetEnabled(id, enabled)
	return enabled, nil
}

// OpenContainer opens or creates the container at path
// An empty path opens the next default container of the day.
func (m *Manager) OpenContainer(ctx context.Context, path string) error {
	if m.Recording() {
		return ErrSessionOpen
	}

	if path == "" {
		var err error
		if path, err = DefaultContainerPath(m.savingOptions(), m.clock.Now()); err != nil {
			return fmt.Errorf("default container path: %w", err)
		}
	}

	if m.container != nil {
		if m.container.Path() == path {
			return nil
		}
		if err := m.container.Close(); err != nil {
			m.logger.Warn("failed to close previous container", "path", m.container.Path(), "error", err)
		}
		m.container = nil
		m.state = StateNoFile
	}

	c, err := store.Open(ctx, path, m.logger)
	if err != nil {
		m.logger.Error("failed to open container", "path", path, "error", err)
		return err
	}

	m.container = c
	m.scan = store.Group{}
	m.state = StateFileOpen
	if m.preset != nil {
		m.preset.SavingOptions.CurrentFile = path
		m.preset.SavingOptions.CurrentScanName = ""
		m.preset.SavingOptions.CurrentScanPath = ""
	}
	return nil
}

func (m *Manager) savingOptions() types.SavingOptions {
	if m.preset != nil {
		opts := m.preset.SavingOptions
		if opts.BasePath == "" {
			opts.BasePath = m.settings.Storage.BasePath
		}
		return opts
	}
	opts := types.DefaultSavingOptions()
	opts.BasePath = m.settings.Storage.BasePath
	if m.settings.Storage.BaseName != "" {
		opts.BaseName = m.settings.Storage.BaseName
	}
	if m.settings.Storage.ScanPrefix != "" {
		opts.ScanPrefix = m.settings.Storage.ScanPrefix
	}
	return opts
}

func (m *Manager) scanPrefix() string {
	if prefix := m.savingOptions().ScanPrefix; prefix != "" {
		return prefix
	}
	return types.DefaultSavingOptions().ScanPrefix
}

// PrepareStart checks the start preconditions and returns the metadata to confirm
// Without a preset nothing is opened or created.
func (m *Manager) PrepareStart(ctx context.Context, prov Provenance) (*StartDraft, error) {
	if m.preset == nil {
		return nil, ErrNoPreset
	}
	if m.Recording() {
		return nil, ErrSessionOpen
	}

	if m.container == nil {
		if err := m.OpenContainer(ctx, ""); err != nil {
			return nil, err
		}
	}

	raw := m.container.RawGroup()
	attrs, err := m.container.Attributes(ctx, raw.ID)
	if err != nil {
		m.logger.Error("failed to read dataset metadata", "error", err)
		return nil, err
	}

	name, err := m.container.NextGroupName(ctx, raw, m.scanPrefix())
	if err != nil {
		m.logger.Error("failed to name scan", "error", err)
		return nil, err
	}

	now := m.clock.Now()
	draft := &StartDraft{
		NeedsDataset: !attrs.Has("type"),
		Scan: types.ScanInfo{
			Author:   prov.Author,
			DateTime: now,
			ScanType: m.settings.Recording.ScanType,
			ScanName: name,
		},
		container: m.container,
	}
	if draft.Scan.ScanType == "" {
		draft.Scan.ScanType = "Scan1D"
	}
	if draft.NeedsDataset {
		draft.Dataset = types.DatasetInfo{Author: prov.Author, DateTime: now}
	}
	return draft, nil
}

// CancelStart abandons a draft; nothing was written for it
func (m *Manager) CancelStart(draft *StartDraft) {
	if draft != nil {
		m.logger.Debug("start cancelled", "scan", draft.Scan.ScanName)
	}
}

// CommitStart writes the confirmed metadata, creates the scan and starts recording
// On failure nothing is written and the state is unchanged.
func (m *Manager) CommitStart(ctx context.Context, draft *StartDraft) error {
	if draft == nil {
		return errors.New("no start to commit")
	}
	if m.preset == nil {
		return ErrNoPreset
	}
	if m.Recording() {
		return ErrSessionOpen
	}
	if m.container == nil || m.container != draft.container {
		return ErrNoContainer
	}

	scanInfo := draft.Scan
	var scan store.Group
	var handles recorder.Handles

	err := m.container.Update(ctx, func(tx *store.Tx) error {
		raw := m.container.RawGroup()

		if draft.NeedsDataset {
			attrs, err := tx.Attributes(raw.ID)
			if err != nil {
				return err
			}
			if !attrs.Has("type") {
				blob, err := ProvenanceXML(DatasetTree(draft.Dataset), m.recorder.SettingsTree(), preset.Tree(m.preset))
				if err != nil {
					return err
				}
				if err := tx.SetAttrs(raw.ID, datasetAttrs(draft.Dataset, blob)); err != nil {
					return err
				}
			}
		}

		var err error
		scan, err = tx.CreateGroup(raw, scanInfo.ScanName, "")
		if errors.Is(err, store.ErrExists) {
			if scanInfo.ScanName, err = tx.NextGroupName(raw, m.scanPrefix()); err != nil {
				return err
			}
			scan, err = tx.CreateGroup(raw, scanInfo.ScanName, "")
		}
		if err != nil {
			return err
		}

		blob, err := ProvenanceXML(ScanTree(scanInfo), m.recorder.SettingsTree(), preset.SavingOptionsTree(m.preset.SavingOptions))
		if err != nil {
			return err
		}
		if err := tx.SetAttrs(scan.ID, scanAttrs(scanInfo, blob)); err != nil {
			return err
		}

		handles, err = m.recorder.CreateSeries(tx, m.container, scan)
		return err
	})
	if err != nil {
		m.logger.Error("failed to start scan", "scan", scanInfo.ScanName, "error", err)
		return fmt.Errorf("start %s: %w", scanInfo.ScanName, err)
	}

	if err := m.container.Flush(ctx); err != nil {
		m.logger.Warn("failed to flush new scan", "scan", scan.Name, "error", err)
	}

	m.scan = scan
	m.recorder.Attach(handles)
	m.stopwatch.Begin()
	m.state = StateSessionOpen
	m.preset.SavingOptions.CurrentScanName = scan.Name
	m.preset.SavingOptions.CurrentScanPath = path.Join("/", store.RawGroupName, scan.Name)

	m.logger.Info("scan started", "scan", scan.Name, "container", m.container.Path(), "subjects", m.recorder.TracksSubject())
	return nil
}

// Start runs PrepareStart, asks confirm for the metadata, then commits
// It returns false without error when the operator cancels.
func (m *Manager) Start(ctx context.Context, prov Provenance, confirm Confirmer) (bool, error) {
	draft, err := m.PrepareStart(ctx, prov)
	if err != nil {
		return false, err
	}

	if confirm != nil {
		if draft.NeedsDataset && !confirm.ConfirmDataset(&draft.Dataset) {
			m.CancelStart(draft)
			return false, nil
		}
		if !confirm.ConfirmScan(&draft.Scan) {
			m.CancelStart(draft)
			return false, nil
		}
	}

	if err := m.CommitStart(ctx, draft); err != nil {
		return false, err
	}
	return true, nil
}

// Stop closes the open scan: marks it done, flushes and halts the stopwatch
func (m *Manager) Stop(ctx context.Context) error {
	if !m.Recording() {
		return ErrNoSession
	}

	err := m.container.Update(ctx, func(tx *store.Tx) error {
		return tx.SetAttrs(m.scan.ID, store.Attributes{"scan_done": store.BoolAttr(true)})
	})
	if err != nil {
		m.logger.Error("failed to close scan", "scan", m.scan.Name, "error", err)
		return fmt.Errorf("stop %s: %w", m.scan.Name, err)
	}
	if err := m.container.Flush(ctx); err != nil {
		m.logger.Error("failed to flush container", "error", err)
		return fmt.Errorf("flush %s: %w", m.scan.Name, err)
	}

	m.stopwatch.Halt()
	m.recorder.Detach()
	m.state = StateSessionClosed
	m.logger.Info("scan stopped", "scan", m.scan.Name, "elapsed", m.stopwatch.Elapsed())
	return nil
}

// Trigger dispatches a key press and captures the activation
// It returns false when the key is not bound or the stopwatch is not running.
// The dispatcher handler only sees presses that were captured.
func (m *Manager) Trigger(key string) (recorder.Pending, bool, error) {
	b, ok := m.dispatcher.Lookup(key)
	if !ok || !m.stopwatch.Running() {
		return recorder.Pending{}, false, nil
	}
	m.dispatcher.Deliver(b)
	p, err := m.recorder.Begin(b.Action)
	if err != nil {
		return recorder.Pending{}, false, err
	}
	return p, true, nil
}

// Activate dispatches a key press and records the bound action
// It reports whether an event was written.
func (m *Manager) Activate(ctx context.Context, key string, prompt recorder.SubjectPrompt) (types.Event, bool, error) {
	p, ok, err := m.Trigger(key)
	if err != nil || !ok {
		return types.Event{}, false, err
	}

	if !p.NeedsSubject {
		event, err := m.recorder.Commit(ctx, p, nil)
		return event, err == nil, err
	}

	var id int
	answered := false
	if prompt != nil {
		id, answered = prompt(p)
	}
	if !answered {
		return types.Event{}, false, m.recorder.Abandon(p)
	}
	event, err := m.recorder.Commit(ctx, p, &id)
	return event, err == nil, err
}

// Close stops an open session and releases the container
// It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	if m.Recording() {
		if err := m.Stop(ctx); err != nil {
			errs = append(errs, err)
			m.stopwatch.Halt()
			m.recorder.Detach()
		}
	}
	if m.container != nil {
		if err := m.container.Close(); err != nil {
			errs = append(errs, err)
		}
		m.container = nil
	}
	m.state = StateNoFile
	return errors.Join(errs...)
}
