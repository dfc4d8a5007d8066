package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/recorder"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type confirmer struct {
	dataset, scan bool
	datasetCalls  int
	sample        string
}

func (c *confirmer) ConfirmDataset(info *types.DatasetInfo) bool {
	c.datasetCalls++
	info.Sample = c.sample
	return c.dataset
}

func (c *confirmer) ConfirmScan(info *types.ScanInfo) bool {
	info.Description = "morning run"
	return c.scan
}

func accept() *confirmer { return &confirmer{dataset: true, scan: true, sample: "hive 3"} }

type harness struct {
	manager *Manager
	clock   *fakeClock
	base    string
}

func newHarness(t *testing.T, subjects bool) *harness {
	t.Helper()
	base := filepath.Join(t.TempDir(), "data")

	settings := config.DefaultSettings()
	settings.Storage.BasePath = base
	settings.Recording.SaveSubjectID = subjects

	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
	m := NewManager(Options{Settings: settings, Clock: clock, Logger: logging.Discard()})
	t.Cleanup(func() { m.Close(context.Background()) })

	return &harness{manager: m, clock: clock, base: base}
}

func eatAttackPreset(base string) *types.Preset {
	p := types.NewPreset("bees", "Ada")
	p.SavingOptions.BasePath = base
	p.AddBinding("Eat", "E")
	p.AddBinding("Attack", "A")
	return p
}

func (h *harness) loadPreset(t *testing.T) *types.Preset {
	t.Helper()
	if err := h.manager.LoadPreset(eatAttackPreset(h.base), ""); err != nil {
		t.Fatalf("LoadPreset returned error: %v", err)
	}
	return h.manager.Preset()
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ok, err := h.manager.Start(context.Background(), Provenance{Author: "Ada"}, accept())
	if err != nil || !ok {
		t.Fatalf("Start returned ok=%v err=%v", ok, err)
	}
}

func (h *harness) scans(t *testing.T) []store.Group {
	t.Helper()
	c := h.manager.Container()
	groups, err := c.Groups(context.Background(), c.RawGroup())
	if err != nil {
		t.Fatalf("Groups returned error: %v", err)
	}
	return groups
}

func TestStartWithoutPresetIsRefused(t *testing.T) {
	h := newHarness(t, true)

	for i := 0; i < 2; i++ {
		draft, err := h.manager.PrepareStart(context.Background(), Provenance{Author: "Ada"})
		if !errors.Is(err, ErrNoPreset) || draft != nil {
			t.Fatalf("attempt %d: expected ErrNoPreset, got draft=%v err=%v", i, draft, err)
		}
		if ok, err := h.manager.Start(context.Background(), Provenance{}, accept()); ok || !errors.Is(err, ErrNoPreset) {
			t.Fatalf("attempt %d: expected Start to be refused, got ok=%v err=%v", i, ok, err)
		}
	}

	if h.manager.State() != StateNoFile || h.manager.Container() != nil {
		t.Errorf("Expected no state change, got %s container=%v", h.manager.State(), h.manager.Container())
	}
	if _, err := os.Stat(h.base); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected no container directory to be created, got %v", err)
	}
}

func TestCancelledStartCreatesNothing(t *testing.T) {
	tests := []struct {
		name    string
		confirm *confirmer
	}{
		{name: "dataset dialog cancelled", confirm: &confirmer{dataset: false, scan: true}},
		{name: "scan dialog cancelled", confirm: &confirmer{dataset: true, scan: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			h.loadPreset(t)

			ok, err := h.manager.Start(context.Background(), Provenance{Author: "Ada"}, tt.confirm)
			if ok || err != nil {
				t.Fatalf("Expected benign cancel, got ok=%v err=%v", ok, err)
			}
			if h.manager.State() != StateFileOpen {
				t.Errorf("Expected state %s, got %s", StateFileOpen, h.manager.State())
			}
			if got := h.scans(t); len(got) != 0 {
				t.Errorf("Expected no scan group, got %+v", got)
			}

			c := h.manager.Container()
			attrs, err := c.Attributes(context.Background(), c.RawGroup().ID)
			if err != nil {
				t.Fatalf("Attributes returned error: %v", err)
			}
			if attrs.Has("type") {
				t.Errorf("Expected no dataset metadata, got %+v", attrs)
			}
		})
	}
}

func TestEatAttackScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.loadPreset(t)
	h.start(t)

	prompt := func(id int, ok bool) recorder.SubjectPrompt {
		return func(recorder.Pending) (int, bool) { return id, ok }
	}

	h.clock.Advance(12 * time.Second)
	if _, ok, err := h.manager.Activate(ctx, "E", prompt(7, true)); err != nil || !ok {
		t.Fatalf("Activate(E) returned ok=%v err=%v", ok, err)
	}

	h.clock.Advance(33500 * time.Millisecond)
	if _, ok, err := h.manager.Activate(ctx, "A", prompt(0, false)); err != nil || ok {
		t.Fatalf("Expected Activate(A) to drop silently, got ok=%v err=%v", ok, err)
	}

	if err := h.manager.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if h.manager.State() != StateSessionClosed || !h.manager.Editable() {
		t.Errorf("Expected closed, editable session, got %s editable=%v", h.manager.State(), h.manager.Editable())
	}

	c := h.manager.Container()
	scan, err := c.FindGroup(ctx, c.RawGroup(), "Scan000")
	if err != nil {
		t.Fatalf("FindGroup returned error: %v", err)
	}

	attrs, err := c.Attributes(ctx, scan.ID)
	if err != nil {
		t.Fatalf("Attributes returned error: %v", err)
	}
	if done, ok := attrs.Bool("scan_done"); !ok || !done {
		t.Errorf("Expected scan_done=true, got %+v", attrs["scan_done"])
	}
	if attrs.String("author") != "Ada" || attrs.String("description") != "morning run" {
		t.Errorf("Unexpected scan metadata: %+v", attrs)
	}

	series := map[string]store.Series{}
	list, err := c.SeriesIn(ctx, scan)
	if err != nil {
		t.Fatalf("SeriesIn returned error: %v", err)
	}
	for _, s := range list {
		series[s.Name] = s
	}

	times, _ := c.Floats(ctx, series["time_axis"])
	actions, _ := c.Strings(ctx, series["actions"])
	bees, _ := c.Ints(ctx, series["bees"])
	if len(times) != 1 || times[0] != 12.0 {
		t.Errorf("Expected time_axis=[12], got %v", times)
	}
	if len(actions) != 1 || actions[0] != "Eat" {
		t.Errorf("Expected actions=[Eat], got %v", actions)
	}
	if len(bees) != 1 || bees[0] != 7 {
		t.Errorf("Expected bees=[7], got %v", bees)
	}
}

func TestDatasetMetadataWrittenOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.loadPreset(t)

	first := accept()
	if ok, err := h.manager.Start(ctx, Provenance{Author: "Ada"}, first); !ok || err != nil {
		t.Fatalf("first Start returned ok=%v err=%v", ok, err)
	}
	if err := h.manager.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	draft, err := h.manager.PrepareStart(ctx, Provenance{Author: "Grace"})
	if err != nil {
		t.Fatalf("PrepareStart returned error: %v", err)
	}
	if draft.NeedsDataset {
		t.Error("Expected dataset metadata to be captured only once")
	}
	if draft.Scan.ScanName != "Scan001" || draft.Scan.Author != "Grace" {
		t.Errorf("Unexpected scan draft: %+v", draft.Scan)
	}
	if err := h.manager.CommitStart(ctx, draft); err != nil {
		t.Fatalf("CommitStart returned error: %v", err)
	}

	c := h.manager.Container()
	attrs, err := c.Attributes(ctx, c.RawGroup().ID)
	if err != nil {
		t.Fatalf("Attributes returned error: %v", err)
	}
	if attrs.String("type") != "dataset" || attrs.String("author") != "Ada" || attrs.String("sample") != "hive 3" {
		t.Errorf("Unexpected dataset metadata: %+v", attrs)
	}
	if first.datasetCalls != 1 {
		t.Errorf("Expected one dataset confirmation, got %d", first.datasetCalls)
	}

	blob := attrs.String("settings")
	for _, want := range []string{`<All_settings title="All Settings" type="group">`, "<dataset_info", "<preset", "save_bee_number"} {
		if !strings.Contains(blob, want) {
			t.Errorf("Expected dataset provenance to contain %q", want)
		}
	}

	names := []string{}
	for _, g := range h.scans(t) {
		names = append(names, g.Name)
	}
	if strings.Join(names, ",") != "Scan000,Scan001" {
		t.Errorf("Expected Scan000,Scan001, got %v", names)
	}
}

func TestScanNamesIncreaseAcrossReopen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.loadPreset(t)
	h.start(t)
	path := h.manager.ContainerPath()

	if err := h.manager.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := h.manager.Close(ctx); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	if err := h.manager.OpenContainer(ctx, path); err != nil {
		t.Fatalf("OpenContainer returned error: %v", err)
	}
	draft, err := h.manager.PrepareStart(ctx, Provenance{Author: "Ada"})
	if err != nil {
		t.Fatalf("PrepareStart returned error: %v", err)
	}
	if draft.Scan.ScanName != "Scan001" {
		t.Errorf("Expected Scan001 after reopen, got %s", draft.Scan.ScanName)
	}

	c := h.manager.Container()
	scan, err := c.FindGroup(ctx, c.RawGroup(), "Scan000")
	if err != nil {
		t.Fatalf("FindGroup returned error: %v", err)
	}
	attrs, _ := c.Attributes(ctx, scan.ID)
	if done, _ := attrs.Bool("scan_done"); !done {
		t.Error("Expected Close to mark the open scan as done")
	}
}

func TestToggleOffOnDeliversExactlyOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	p := h.loadPreset(t)
	h.start(t)
	eat := p.Actions[0].ID

	if err := h.manager.SetBindingEnabled(eat, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, ok, _ := h.manager.Activate(ctx, "E", nil); ok {
		t.Error("Expected no delivery while disabled")
	}

	for i := 0; i < 3; i++ {
		if err := h.manager.SetBindingEnabled(eat, true); err != nil {
			t.Fatalf("enable #%d: %v", i, err)
		}
	}
	if _, ok, err := h.manager.Activate(ctx, "E", nil); !ok || err != nil {
		t.Fatalf("Expected one delivery, got ok=%v err=%v", ok, err)
	}

	lines := h.manager.Recorder().Lines()
	if len(lines) != 1 {
		t.Errorf("Expected exactly one recorded event, got %q", lines)
	}
	if b, _ := h.manager.Preset().Binding(eat); !b.Enabled {
		t.Error("Expected preset to reflect the enabled flag")
	}
}

func TestActivateIgnoredWhileStopped(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.loadPreset(t)

	if _, ok, err := h.manager.Activate(ctx, "E", nil); ok || err != nil {
		t.Errorf("Expected idle activation to be ignored, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := h.manager.Activate(ctx, "z", nil); ok || err != nil {
		t.Errorf("Expected unbound key to be ignored, got ok=%v err=%v", ok, err)
	}
}

func TestTriggerDeliversOnlyCapturedPresses(t *testing.T) {
	h := newHarness(t, false)
	h.loadPreset(t)

	delivered := 0
	h.manager.Dispatcher().SetHandler(func(types.Binding) { delivered++ })

	if _, ok, err := h.manager.Trigger("e"); ok || err != nil {
		t.Fatalf("Expected idle trigger to be ignored, got ok=%v err=%v", ok, err)
	}
	if delivered != 0 {
		t.Fatalf("Expected no handler call while stopped, got %d", delivered)
	}

	h.start(t)
	p, ok, err := h.manager.Trigger("e")
	if err != nil || !ok || p.Action != "Eat" {
		t.Fatalf("Trigger = %+v ok=%v err=%v", p, ok, err)
	}
	if delivered != 1 {
		t.Errorf("Expected exactly one handler call, got %d", delivered)
	}
}

func TestActivateMatchesShortcutLetterCase(t *testing.T) {
	tests := []struct {
		name   string
		press  string
		action string
	}{
		{"plain key for uppercase shortcut", "e", "Eat"},
		{"shifted key", "E", "Eat"},
		{"second shortcut", "a", "Attack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, false)
			h.loadPreset(t)
			h.start(t)

			event, ok, err := h.manager.Activate(ctx, tt.press, nil)
			if err != nil || !ok {
				t.Fatalf("Activate(%q) returned ok=%v err=%v", tt.press, ok, err)
			}
			if event.Action != tt.action {
				t.Errorf("Action = %s, want %s", event.Action, tt.action)
			}
		})
	}
}

func TestStopwatchHandlersDriveSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.loadPreset(t)
	h.manager.BindTimer(ctx, func() Provenance { return Provenance{Author: "Ada"} }, accept())

	sw := h.manager.Stopwatch()
	if err := sw.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !h.manager.Recording() || !sw.Running() {
		t.Fatalf("Expected an open session, got %s", h.manager.State())
	}

	h.clock.Advance(4 * time.Second)
	if err := sw.Reset(); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if h.manager.State() != StateSessionClosed || sw.Running() {
		t.Errorf("Expected closed session, got %s running=%v", h.manager.State(), sw.Running())
	}
	if sw.Elapsed() != 4 {
		t.Errorf("Expected elapsed frozen at 4s, got %v", sw.Elapsed())
	}
}

func TestRecordingLocksConfiguration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	p := h.loadPreset(t)
	h.start(t)

	if h.manager.Editable() {
		t.Error("Expected editing to be disabled while recording")
	}
	if err := h.manager.LoadPreset(p, ""); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen from LoadPreset, got %v", err)
	}
	if err := h.manager.OpenContainer(ctx, filepath.Join(h.base, "other.bee")); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen from OpenContainer, got %v", err)
	}
	if _, err := h.manager.PrepareStart(ctx, Provenance{}); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen from PrepareStart, got %v", err)
	}
	if err := h.manager.SetRecorderOptions(recorder.Options{SaveSubjectID: true}); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen from SetRecorderOptions, got %v", err)
	}

	if err := h.manager.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := h.manager.Stop(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession from second Stop, got %v", err)
	}
}

func TestFailedCommitLeavesFileOpen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.loadPreset(t)

	draft, err := h.manager.PrepareStart(ctx, Provenance{Author: "Ada"})
	if err != nil {
		t.Fatalf("PrepareStart returned error: %v", err)
	}
	h.manager.Container().Close()

	if err := h.manager.CommitStart(ctx, draft); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if h.manager.State() != StateFileOpen || h.manager.Recorder().Attached() || h.manager.Stopwatch().Running() {
		t.Errorf("Expected state to stay %s, got %s", StateFileOpen, h.manager.State())
	}
}

func TestDefaultContainerPath(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	opts := types.SavingOptions{BasePath: base, BaseName: "Dataset"}

	path, err := DefaultContainerPath(opts, now)
	if err != nil {
		t.Fatalf("DefaultContainerPath returned error: %v", err)
	}
	want := filepath.Join(base, "20240501", "Dataset_20240501_000.bee")
	if path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}

	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Dataset_20240501_000.bee", "Dataset_20240501_002.bee", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(base, "20240501", name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	path, err = DefaultContainerPath(opts, now)
	if err != nil {
		t.Fatalf("DefaultContainerPath returned error: %v", err)
	}
	if filepath.Base(path) != "Dataset_20240501_003.bee" {
		t.Errorf("Expected Dataset_20240501_003.bee, got %s", filepath.Base(path))
	}

	opts.CustomName = "hive"
	path, _ = DefaultContainerPath(opts, now)
	if filepath.Base(path) != "hive.bee" {
		t.Errorf("Expected custom name, got %s", path)
	}
}
