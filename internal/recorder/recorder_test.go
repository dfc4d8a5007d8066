package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/store"
)

type fixture struct {
	container *store.Container
	recorder  *Recorder
	now       float64
	handles   Handles
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()

	c, err := store.Open(ctx, filepath.Join(t.TempDir(), "data.bee"), logging.Discard())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	f := &fixture{container: c}
	f.recorder = New(func() float64 { return f.now }, opts, logging.Discard())

	err = c.Update(ctx, func(tx *store.Tx) error {
		scan, err := tx.CreateGroup(c.RawGroup(), "Scan000", "")
		if err != nil {
			return err
		}
		f.handles, err = f.recorder.CreateSeries(tx, c, scan)
		return err
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	return f
}

func (f *fixture) lengths(t *testing.T) (int, int, int) {
	t.Helper()
	ctx := context.Background()
	times, err := f.container.Len(ctx, f.handles.TimeAxis)
	if err != nil {
		t.Fatalf("Len(time_axis): %v", err)
	}
	actions, err := f.container.Len(ctx, f.handles.Actions)
	if err != nil {
		t.Fatalf("Len(actions): %v", err)
	}
	bees := -1
	if f.handles.Bees != nil {
		if bees, err = f.container.Len(ctx, *f.handles.Bees); err != nil {
			t.Fatalf("Len(bees): %v", err)
		}
	}
	return times, actions, bees
}

func answer(id int) SubjectPrompt {
	return func(Pending) (int, bool) { return id, true }
}

func dismiss(Pending) (int, bool) { return 0, false }

func TestLogWithoutSessionFailsFast(t *testing.T) {
	r := New(func() float64 { return 1 }, Options{}, logging.Discard())

	if _, err := r.Begin("Eat"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession from Begin, got %v", err)
	}
	if _, ok, err := r.Log(context.Background(), "Eat", nil); ok || !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession from Log, got ok=%v err=%v", ok, err)
	}
}

func TestEatAttackScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SaveSubjectID: true, MissingSubject: config.SubjectPolicyDrop})
	f.recorder.Attach(f.handles)

	f.now = 12.0
	event, ok, err := f.recorder.Log(ctx, "Eat", answer(7))
	if err != nil || !ok {
		t.Fatalf("Log(Eat) returned ok=%v err=%v", ok, err)
	}
	if event.SubjectID == nil || *event.SubjectID != 7 {
		t.Errorf("Expected subject 7, got %+v", event)
	}

	f.now = 45.5
	_, ok, err = f.recorder.Log(ctx, "Attack", dismiss)
	if err != nil || ok {
		t.Fatalf("Expected dismissed prompt to drop silently, got ok=%v err=%v", ok, err)
	}

	times, err := f.container.Floats(ctx, f.handles.TimeAxis)
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	actions, err := f.container.Strings(ctx, f.handles.Actions)
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	bees, err := f.container.Ints(ctx, *f.handles.Bees)
	if err != nil {
		t.Fatalf("Ints: %v", err)
	}

	if len(times) != 1 || times[0] != 12.0 {
		t.Errorf("Expected time_axis=[12], got %v", times)
	}
	if len(actions) != 1 || actions[0] != "Eat" {
		t.Errorf("Expected actions=[Eat], got %v", actions)
	}
	if len(bees) != 1 || bees[0] != 7 {
		t.Errorf("Expected bees=[7], got %v", bees)
	}

	lines := f.recorder.Lines()
	if len(lines) != 1 || lines[0] != "Elapsed time: 12 s, Bee 7 did: Eat" {
		t.Errorf("Unexpected log view: %q", lines)
	}
}

func TestRejectPolicy(t *testing.T) {
	f := newFixture(t, Options{SaveSubjectID: true, MissingSubject: config.SubjectPolicyReject})
	f.recorder.Attach(f.handles)

	f.now = 3
	_, ok, err := f.recorder.Log(context.Background(), "Attack", dismiss)
	if ok || !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("Expected ErrSubjectRequired, got ok=%v err=%v", ok, err)
	}

	times, actions, bees := f.lengths(t)
	if times != 0 || actions != 0 || bees != 0 {
		t.Errorf("Expected nothing written, got %d/%d/%d", times, actions, bees)
	}
}

func TestCommitWithoutSubjectIsRefused(t *testing.T) {
	f := newFixture(t, Options{SaveSubjectID: true})
	f.recorder.Attach(f.handles)

	p, err := f.recorder.Begin("Eat")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := f.recorder.Commit(context.Background(), p, nil); !errors.Is(err, ErrSubjectRequired) {
		t.Errorf("Expected ErrSubjectRequired, got %v", err)
	}
}

func TestSeriesGrowInLockstep(t *testing.T) {
	tests := []struct {
		name     string
		subjects bool
	}{
		{name: "with subjects", subjects: true},
		{name: "without subjects", subjects: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, Options{SaveSubjectID: tt.subjects})
			f.recorder.Attach(f.handles)

			labels := []string{"Eat", "Landed", "Attack", "Eat", "Eat"}
			for i, label := range labels {
				f.now = float64(i) * 2.5
				if _, _, err := f.recorder.Log(ctx, label, answer(i)); err != nil {
					t.Fatalf("Log(%s) returned error: %v", label, err)
				}

				times, actions, bees := f.lengths(t)
				if times != i+1 || actions != i+1 {
					t.Fatalf("after %d events: time_axis=%d actions=%d", i+1, times, actions)
				}
				if tt.subjects && bees != i+1 {
					t.Fatalf("after %d events: bees=%d", i+1, bees)
				}
				if !tt.subjects && bees != -1 {
					t.Fatalf("Expected no bees series, got length %d", bees)
				}
			}

			times, err := f.container.Floats(ctx, f.handles.TimeAxis)
			if err != nil {
				t.Fatalf("Floats: %v", err)
			}
			for i := 1; i < len(times); i++ {
				if times[i] < times[i-1] {
					t.Errorf("time_axis not monotonic at %d: %v", i, times)
				}
			}
		})
	}
}

func TestLinesNewestFirstAndClearedOnAttach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.recorder.Attach(f.handles)

	f.now = 1.2
	f.recorder.Log(ctx, "Eat", nil)
	f.now = 9.9
	f.recorder.Log(ctx, "Landed", nil)

	lines := f.recorder.Lines()
	want := []string{"Elapsed time: 9 s: Landed", "Elapsed time: 1 s: Eat"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}

	f.recorder.Attach(f.handles)
	if len(f.recorder.Lines()) != 0 {
		t.Error("Expected log view to be cleared on attach")
	}

	f.recorder.Detach()
	if f.recorder.Attached() {
		t.Error("Expected recorder to be detached")
	}
}

func TestSeriesAttributes(t *testing.T) {
	f := newFixture(t, Options{SaveSubjectID: true})

	attrs, err := f.container.Attributes(context.Background(), f.handles.TimeAxis.ID)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.String("units") != "seconds" || attrs.String("title") != "Timestamps" {
		t.Errorf("Unexpected time_axis attributes: %+v", attrs)
	}

	tree := f.recorder.SettingsTree()
	if !tree.BoolAt(false, "save_bee_number") {
		t.Error("Expected save_bee_number=true in settings tree")
	}
}
