package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/state"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

// loadFirstPreset opens the preset picker and quick-selects the first entry
func (e *testEnv) loadFirstPreset(t *testing.T) {
	t.Helper()
	e.press("ctrl+p")
	if e.model.mode != ModePresetPicker {
		t.Fatalf("mode = %v after ctrl+p, want preset picker (error %q)", e.model.mode, e.model.errorMsg)
	}
	e.press("1")
	if e.model.mgr.Preset() == nil {
		t.Fatalf("preset not loaded: %q", e.model.errorMsg)
	}
}

// startScan starts a session, confirming the dataset form when it appears
func (e *testEnv) startScan(t *testing.T) {
	t.Helper()
	e.press("ctrl+r")
	if e.model.mode == ModeDatasetForm {
		e.press("enter")
	}
	AssertModelField(t, "mode", e.model.mode, ModeScanForm)
	e.press("enter")
	AssertModelField(t, "mode", e.model.mode, ModeNormal)
	if !e.model.mgr.Recording() {
		t.Fatalf("not recording after start: %q", e.model.errorMsg)
	}
}

func TestNew_InitializesDefaultMode(t *testing.T) {
	env := CreateTestModel(t)
	m := env.model

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "layout.ShowSettings", m.layout.ShowSettings, true)
	AssertModelField(t, "layout.ShowLog", m.layout.ShowLog, true)
	AssertModelField(t, "layout.SettingsSide", m.layout.SettingsSide, "left")
	AssertModelField(t, "state", m.mgr.State(), lifecycle.StateNoFile)

	if m.mgr.Preset() != nil {
		t.Error("no preset should be loaded")
	}
	if !strings.Contains(m.View(), "No preset loaded") {
		t.Error("main view should say no preset is loaded")
	}
}

func TestNew_RequiresManager(t *testing.T) {
	_, err := New(context.Background(), Config{})
	AssertError(t, err)
}

func TestNew_ReloadsLastPreset(t *testing.T) {
	env := CreateTestModel(t)
	path := env.writePreset(t, "bees", "Eat", "e")

	stateFile := filepath.Join(t.TempDir(), "state.json")
	st := state.NewManager(stateFile)
	AssertNoError(t, st.SetLastPreset(path))

	mgr := lifecycle.NewManager(lifecycle.Options{Settings: config.DefaultSettings(), Controls: env.model.keybinds})
	m, err := New(context.Background(), Config{
		Manager:   mgr,
		State:     st,
		Keybinds:  env.model.keybinds,
		PresetDir: env.presetDir,
		LayoutDir: env.layoutDir,
	})
	AssertNoError(t, err)
	t.Cleanup(m.Cleanup)

	if mgr.Preset() == nil || mgr.Preset().Filename != "bees" {
		t.Fatalf("last preset not reloaded: %+v", mgr.Preset())
	}
}

func TestStart_WithoutPresetShowsNotice(t *testing.T) {
	env := CreateTestModel(t)

	env.press("ctrl+r")
	AssertModelField(t, "mode", env.model.mode, ModeNotice)
	if !strings.Contains(env.model.View(), "load a shortcut preset") {
		t.Errorf("notice view = %q", env.model.View())
	}

	// Nothing may be created before a preset is loaded
	if _, err := os.Stat(env.dataDir); !os.IsNotExist(err) {
		t.Errorf("data directory created without a preset: %v", err)
	}

	// Keys other than enter/esc keep the notice up
	env.press("e")
	AssertModelField(t, "mode", env.model.mode, ModeNotice)

	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)
}

func TestRecordFlow_EatAndAttack(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e", "Attack", "a")
	env.loadFirstPreset(t)

	env.press("ctrl+r")
	AssertModelField(t, "mode", env.model.mode, ModeDatasetForm)
	env.press("tab")
	env.typeText("hive 3")
	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeScanForm)
	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)
	AssertModelField(t, "scan", env.model.mgr.ScanName(), "Scan000")

	env.clock.Advance(12 * time.Second)
	env.press("e")
	AssertModelField(t, "mode", env.model.mode, ModeSubjectPrompt)

	// Time passing while the prompt is open does not move the event
	env.clock.Advance(5 * time.Second)
	env.typeText("7")
	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)

	env.clock.Advance(3 * time.Second)
	env.press("a")
	env.typeText("9")
	env.press("enter")

	lines := env.model.mgr.Recorder().Lines()
	want := []string{
		"Elapsed time: 20 s, Bee 9 did: Attack",
		"Elapsed time: 12 s, Bee 7 did: Eat",
	}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}

	env.press("ctrl+x")
	AssertModelField(t, "state", env.model.mgr.State(), lifecycle.StateSessionClosed)

	ctx := context.Background()
	c := env.model.mgr.Container()
	scan, err := c.FindGroup(ctx, c.RawGroup(), "Scan000")
	AssertNoError(t, err)
	times, err := c.FindSeries(ctx, scan, recorder.TimeAxisSeries)
	AssertNoError(t, err)
	got, err := c.Floats(ctx, times)
	AssertNoError(t, err)
	if len(got) != 2 || got[0] != 12 || got[1] != 20 {
		t.Errorf("time_axis = %v, want [12 20]", got)
	}
	bees, err := c.FindSeries(ctx, scan, recorder.BeesSeries)
	AssertNoError(t, err)
	ids, err := c.Ints(ctx, bees)
	AssertNoError(t, err)
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Errorf("bees = %v, want [7 9]", ids)
	}

	raw, err := c.Attributes(ctx, c.RawGroup().ID)
	AssertNoError(t, err)
	AssertModelField(t, "sample", raw.String("sample"), "hive 3")
}

func TestRecordFlow_SubjectPromptPolicies(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		wantError bool
	}{
		{"drop", config.SubjectPolicyDrop, false},
		{"reject", config.SubjectPolicyReject, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := CreateTestModel(t)
			env.writePreset(t, "bees", "Eat", "e")
			env.loadFirstPreset(t)
			AssertNoError(t, env.model.mgr.SetRecorderOptions(recorder.Options{SaveSubjectID: true, MissingSubject: tt.policy}))
			env.startScan(t)

			env.press("e")
			AssertModelField(t, "mode", env.model.mode, ModeSubjectPrompt)

			// A non-numeric answer keeps the prompt open
			env.typeText("x")
			env.press("enter")
			AssertModelField(t, "mode", env.model.mode, ModeSubjectPrompt)
			if env.model.errorMsg == "" {
				t.Error("expected an error for a non-numeric bee number")
			}

			env.press("esc")
			AssertModelField(t, "mode", env.model.mode, ModeNormal)
			AssertModelField(t, "lines", len(env.model.mgr.Recorder().Lines()), 0)
			AssertModelField(t, "error shown", env.model.errorMsg != "", tt.wantError)
		})
	}
}

func TestRecordFlow_WithoutSubjects(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	env.press("ctrl+b")
	AssertModelField(t, "SaveSubjectID", env.model.mgr.Recorder().Options().SaveSubjectID, false)

	env.startScan(t)
	env.clock.Advance(4 * time.Second)
	env.press("e")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)

	lines := env.model.mgr.Recorder().Lines()
	if len(lines) != 1 || lines[0] != "Elapsed time: 4 s: Eat" {
		t.Errorf("lines = %q", lines)
	}

	// Subject tracking cannot change mid-scan
	env.press("ctrl+b")
	AssertModelField(t, "SaveSubjectID", env.model.mgr.Recorder().Options().SaveSubjectID, false)
	if env.model.errorMsg == "" {
		t.Error("expected an error when toggling subjects while recording")
	}
}

func TestShortcut_NotRecording(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	env.press("e")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)
	if !strings.Contains(env.model.statusMsg, "Not recording") {
		t.Errorf("statusMsg = %q", env.model.statusMsg)
	}

	// Unbound keys are ignored silently
	env.model.statusMsg = ""
	env.press("z")
	AssertModelField(t, "statusMsg", env.model.statusMsg, "")
}

func TestShortcut_NotRecordingSkipsHandler(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	delivered := 0
	env.model.mgr.Dispatcher().SetHandler(func(types.Binding) { delivered++ })

	env.press("e")
	if !strings.Contains(env.model.statusMsg, "Not recording") {
		t.Errorf("statusMsg = %q", env.model.statusMsg)
	}
	AssertModelField(t, "handler calls while stopped", delivered, 0)

	env.press("ctrl+b")
	env.startScan(t)
	env.press("e")
	AssertModelField(t, "handler calls while recording", delivered, 1)
}

func TestShortcut_UppercaseKeyTakesPlainPress(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "E", "Attack", "A")
	env.loadFirstPreset(t)
	env.press("ctrl+b")
	env.startScan(t)

	env.clock.Advance(2 * time.Second)
	env.press("e")
	env.clock.Advance(1 * time.Second)
	env.press("A")

	lines := env.model.mgr.Recorder().Lines()
	want := []string{
		"Elapsed time: 3 s: Attack",
		"Elapsed time: 2 s: Eat",
	}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestStart_InheritsPresetAuthor(t *testing.T) {
	tests := []struct {
		name   string
		author string
		want   string
	}{
		{"preset author", "alice", "alice"},
		{"configured author fallback", "", "tester"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := CreateTestModel(t)
			p := types.NewPreset("bees", tt.author)
			p.AddBinding("Eat", "e")
			if _, err := preset.Save(p, env.presetDir); err != nil {
				t.Fatalf("Failed to save preset: %v", err)
			}
			env.loadFirstPreset(t)

			env.press("ctrl+r")
			AssertModelField(t, "mode", env.model.mode, ModeDatasetForm)
			AssertModelField(t, "dataset author field", env.model.form.Value("author"), tt.want)
			env.press("enter")
			AssertModelField(t, "scan author field", env.model.form.Value("author"), tt.want)
			env.press("enter")
			if !env.model.mgr.Recording() {
				t.Fatalf("not recording after start: %q", env.model.errorMsg)
			}

			ctx := context.Background()
			c := env.model.mgr.Container()
			raw, err := c.Attributes(ctx, c.RawGroup().ID)
			AssertNoError(t, err)
			AssertModelField(t, "dataset author", raw.String("author"), tt.want)

			scan, err := c.FindGroup(ctx, c.RawGroup(), "Scan000")
			AssertNoError(t, err)
			attrs, err := c.Attributes(ctx, scan.ID)
			AssertNoError(t, err)
			AssertModelField(t, "scan author", attrs.String("author"), tt.want)
		})
	}
}

func TestStart_CancelWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"cancel dataset form", []string{"ctrl+r", "esc"}},
		{"cancel scan form", []string{"ctrl+r", "enter", "esc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := CreateTestModel(t)
			env.writePreset(t, "bees", "Eat", "e")
			env.loadFirstPreset(t)

			env.press(tt.keys...)
			AssertModelField(t, "mode", env.model.mode, ModeNormal)
			AssertModelField(t, "recording", env.model.mgr.Recording(), false)

			ctx := context.Background()
			c := env.model.mgr.Container()
			groups, err := c.Groups(ctx, c.RawGroup())
			AssertNoError(t, err)
			AssertModelField(t, "scan groups", len(groups), 0)

			attrs, err := c.Attributes(ctx, c.RawGroup().ID)
			AssertNoError(t, err)
			AssertModelField(t, "dataset metadata written", attrs.Has("type"), false)
		})
	}
}

func TestStart_SecondScanSkipsDatasetForm(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	env.startScan(t)
	env.press("ctrl+x")

	env.press("ctrl+r")
	AssertModelField(t, "mode", env.model.mode, ModeScanForm)
	env.press("enter")
	AssertModelField(t, "scan", env.model.mgr.ScanName(), "Scan001")
}

func TestToggleBinding(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e", "Attack", "a")
	env.loadFirstPreset(t)
	AssertNoError(t, env.model.mgr.SetRecorderOptions(recorder.Options{SaveSubjectID: false}))
	env.startScan(t)

	env.press("ctrl+t")
	if env.model.mgr.Dispatcher().Live(env.model.mgr.Preset().Actions[0].ID) {
		t.Fatal("Eat should be disabled")
	}
	env.press("e")
	AssertModelField(t, "lines", len(env.model.mgr.Recorder().Lines()), 0)

	env.press("down", "ctrl+t")
	env.press("a")
	AssertModelField(t, "lines", len(env.model.mgr.Recorder().Lines()), 0)

	env.press("up", "ctrl+t")
	env.press("e")
	AssertModelField(t, "lines", len(env.model.mgr.Recorder().Lines()), 1)
}

func TestLayout_SavedAndRestored(t *testing.T) {
	env := CreateTestModel(t)
	path := env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	env.press("f2", "f4")
	AssertModelField(t, "ShowSettings", env.model.layout.ShowSettings, false)
	AssertModelField(t, "SettingsSide", env.model.layout.SettingsSide, "right")

	if _, err := os.Stat(state.LayoutPath(env.layoutDir, "bees")); err != nil {
		t.Fatalf("layout not saved: %v", err)
	}

	env.press("f3")
	AssertModelField(t, "ShowLog", env.model.layout.ShowLog, false)
	_ = env.model.View()

	// Reloading the preset restores its layout
	env.model.layout.ShowLog = true
	env.model.loadPresetFile(path)
	AssertModelField(t, "ShowSettings", env.model.layout.ShowSettings, false)
	AssertModelField(t, "ShowLog", env.model.layout.ShowLog, false)
	AssertModelField(t, "SettingsSide", env.model.layout.SettingsSide, "right")
}

func TestEditor_NewPreset(t *testing.T) {
	env := CreateTestModel(t)

	env.press("ctrl+n")
	AssertModelField(t, "mode", env.model.mode, ModeEditor)

	env.press("ctrl+a")
	row, ok := env.model.editor.Selected()
	if !ok || row.Action != "Eat" {
		t.Fatalf("new row = %+v, want label Eat", row)
	}

	// Reserved keys are refused during capture
	env.press("enter", "ctrl+r")
	AssertModelField(t, "mode", env.model.mode, ModeCapture)
	if !strings.Contains(env.model.errorMsg, "reserved") {
		t.Errorf("errorMsg = %q", env.model.errorMsg)
	}
	env.press("l")
	AssertModelField(t, "mode", env.model.mode, ModeEditor)

	env.press("right")
	row, _ = env.model.editor.Selected()
	AssertModelField(t, "label", row.Action, "Landed")

	env.press("ctrl+a", "ctrl+l")
	AssertModelField(t, "mode", env.model.mode, ModeEditorLabel)
	for range "Eat" {
		env.model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	env.typeText("Fanning")
	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeEditor)
	env.press("enter", "f")
	_ = env.model.View()

	env.press("ctrl+s")
	AssertModelField(t, "mode", env.model.mode, ModeEditorFilename)
	env.typeText("mine")
	env.press("enter")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)

	path := filepath.Join(env.presetDir, "mine.xml")
	p, err := preset.Load(path)
	if err != nil {
		t.Fatalf("saved preset not readable: %v", err)
	}
	if len(p.Actions) != 2 || p.Actions[0].Action != "Landed" || p.Actions[0].Key != "l" || p.Actions[1].Action != "Fanning" || p.Actions[1].Key != "f" {
		t.Errorf("saved actions = %+v", p.Actions)
	}
	AssertModelField(t, "loaded preset", env.model.mgr.PresetPath(), path)
}

func TestEditor_RefusedWhileRecording(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)
	env.startScan(t)

	for _, key := range []string{"ctrl+e", "ctrl+n", "ctrl+p", "ctrl+o"} {
		env.model.errorMsg = ""
		env.press(key)
		AssertModelField(t, key+" mode", env.model.mode, ModeNormal)
		if env.model.errorMsg == "" {
			t.Errorf("%s: expected an error while recording", key)
		}
	}
}

func TestEditor_CancelKeepsLoadedPreset(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)

	env.press("ctrl+e", "ctrl+d", "esc")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)
	AssertModelField(t, "actions", len(env.model.mgr.Preset().Actions), 1)
}

func TestContainerPicker(t *testing.T) {
	env := CreateTestModel(t)

	env.press("ctrl+o")
	AssertModelField(t, "mode", env.model.mode, ModeContainerPicker)
	env.press("enter")
	AssertModelField(t, "state", env.model.mgr.State(), lifecycle.StateFileOpen)

	first := env.model.mgr.ContainerPath()
	want := filepath.Join(env.dataDir, "20240514", "Dataset_20240514_000"+store.Extension)
	AssertModelField(t, "container", first, want)

	recent := env.model.stateMgr.RecentContainers()
	if len(recent) != 1 || recent[0] != first {
		t.Errorf("recent containers = %v", recent)
	}

	// Typed paths get the container extension
	typed := filepath.Join(t.TempDir(), "custom")
	env.press("ctrl+o")
	items := env.model.picker.Items()
	AssertModelField(t, "picker items", len(items), 3)
	env.press("3")
	AssertModelField(t, "mode", env.model.mode, ModeContainerInput)
	env.model.form.SetValue("path", typed)
	env.press("enter")
	AssertModelField(t, "container", env.model.mgr.ContainerPath(), typed+store.Extension)
}

func TestViewer_HelpAndLog(t *testing.T) {
	env := CreateTestModel(t)

	env.press("f1")
	AssertModelField(t, "mode", env.model.mode, ModeViewer)
	if !strings.Contains(env.model.helpText(), "Start") {
		t.Error("help should list the start control")
	}
	_ = env.model.View()
	env.press("esc")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)

	env.press("ctrl+g")
	AssertModelField(t, "mode", env.model.mode, ModeNormal)
	if env.model.errorMsg == "" {
		t.Error("expected an error without a log file")
	}

	logFile := filepath.Join(t.TempDir(), "bee_action.log")
	AssertNoError(t, os.WriteFile(logFile, []byte("INFO scan started\n"), 0o644))
	env.model.logFile = logFile
	env.model.showLogFile()
	AssertModelField(t, "mode", env.model.mode, ModeViewer)
	AssertModelField(t, "viewerTitle", env.model.viewerTitle, "bee_action.log")
}

func TestQuit_ClosesContainer(t *testing.T) {
	env := CreateTestModel(t)
	env.writePreset(t, "bees", "Eat", "e")
	env.loadFirstPreset(t)
	env.startScan(t)

	_, cmd := env.model.Update(keyMsg("ctrl+q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	AssertModelField(t, "state", env.model.mgr.State(), lifecycle.StateNoFile)
	AssertModelField(t, "closed", env.model.closed, true)
}

func TestStatusMessage_Truncated(t *testing.T) {
	env := CreateTestModel(t)

	env.model.setStatusMessage(strings.Repeat("x", 150))
	AssertModelField(t, "statusMsg length", len(env.model.statusMsg), 100)
	AssertModelField(t, "fullStatusMsg length", len(env.model.fullStatusMsg), 150)

	env.model.setErrorMessage("boom")
	AssertModelField(t, "errorMsg", env.model.errorMsg, "boom")
	env.model.setStatusMessage("ok")
	AssertModelField(t, "errorMsg cleared", env.model.errorMsg, "")
}
